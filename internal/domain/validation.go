package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxReasonLength   = 500
	MaxMovementAmount = "1000000000" // 1 billion
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateAmount validates a movement amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxMovementAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxMovementAmount)
	}

	return nil
}

// ValidateReason validates a movement description.
func ValidateReason(reason string) error {
	reason = strings.TrimSpace(reason)

	if reason == "" {
		return ErrMissingReason
	}

	if len(reason) > MaxReasonLength {
		return fmt.Errorf("%w: reason exceeds %d characters", ErrMissingReason, MaxReasonLength)
	}

	return nil
}

// ValidateReceiptURL validates an optional receipt reference.
func ValidateReceiptURL(receiptURL string) error {
	if receiptURL == "" {
		return nil
	}

	u, err := url.Parse(receiptURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidReceiptURL
	}

	return nil
}

// ValidateEmail validates email format.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// ValidatePassword validates password strength.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooWeak, MinPasswordLength)
	}

	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: must not exceed %d characters", ErrPasswordTooWeak, MaxPasswordLength)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
