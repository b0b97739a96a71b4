package domain

import (
	"errors"
	"fmt"
)

var (
	// Validation errors
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrMissingReason     = errors.New("reason is required")
	ErrInvalidKind       = errors.New("kind must be income or expense")
	ErrInvalidReceiptURL = errors.New("invalid receipt URL")
	ErrInvalidEmail      = errors.New("invalid email format")
	ErrPasswordTooWeak   = errors.New("password does not meet requirements")
	ErrInvalidReceipt    = errors.New("receipt image could not be processed")
	ErrEmailTaken        = errors.New("user with this email already exists")

	// Lookup errors
	ErrMovementNotFound = errors.New("movement not found")
	ErrUserNotFound     = errors.New("user not found")

	// Editability errors
	ErrNotEditable = errors.New("movement is not editable")
)

// Authentication and authorization errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)

// CollaboratorError wraps a failure from an external collaborator
// (persistence, object storage). Notification failures are never wrapped
// in it; they are logged and swallowed at the use case layer.
type CollaboratorError struct {
	Collaborator string
	Err          error
}

// Error implements the error interface.
func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s collaborator failed: %v", e.Collaborator, e.Err)
}

// Unwrap returns the underlying failure.
func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// NewCollaboratorError wraps err with the collaborator's name.
func NewCollaboratorError(collaborator string, err error) error {
	if err == nil {
		return nil
	}
	return &CollaboratorError{Collaborator: collaborator, Err: err}
}
