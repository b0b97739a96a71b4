package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a movement as money coming in or going out.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// IsValid checks if the kind is a known movement kind.
func (k Kind) IsValid() bool {
	return k == KindIncome || k == KindExpense
}

// VerificationState is the administrative confirmation state of a movement.
// The only allowed transition is pending -> verified.
type VerificationState string

const (
	VerificationPending  VerificationState = "pending"
	VerificationVerified VerificationState = "verified"
)

// Movement represents one recorded income or expense event.
type Movement struct {
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ID                 string
	OwnerID            string
	Reason             string
	ReceiptURL         string
	ExternalMessageRef string
	ExternalThreadRef  string
	Kind               Kind
	VerificationState  VerificationState
	Amount             decimal.Decimal
	// Seq is the insertion sequence assigned by the store. It breaks ties
	// between movements that share an identical CreatedAt: the higher Seq
	// is the more recent one.
	Seq int64
}

// Validate validates the mutable business fields of a movement.
func (m *Movement) Validate() error {
	if !m.Kind.IsValid() {
		return ErrInvalidKind
	}

	if err := ValidateAmount(m.Amount); err != nil {
		return err
	}

	return ValidateReason(m.Reason)
}

// Verified reports whether the movement has been administratively confirmed.
func (m *Movement) Verified() bool {
	return m.VerificationState == VerificationVerified
}

// InitialVerificationState decides the state a freshly created movement
// starts in: privileged creators self-verify, everyone else starts pending.
func InitialVerificationState(role Role) VerificationState {
	if role.CanVerify() {
		return VerificationVerified
	}
	return VerificationPending
}

// Verify applies the pending -> verified transition.
//
// It returns true when the state changed, false when the movement was
// already verified (the operation is idempotent and must not trigger a
// second notification). No field other than the verification state and
// UpdatedAt is touched.
func (m *Movement) Verify(actor *User, now time.Time) (bool, error) {
	if actor == nil || !actor.Role.CanVerify() {
		return false, ErrInsufficientRole
	}

	if m.Verified() {
		return false, nil
	}

	m.VerificationState = VerificationVerified
	m.UpdatedAt = now

	return true, nil
}

// MovementFilter narrows a movement listing.
type MovementFilter struct {
	Kind    Kind
	State   VerificationState
	OwnerID string
	Limit   int
	Offset  int
}

// Stats is the aggregate view of the whole ledger.
type Stats struct {
	IncomeTotal  decimal.Decimal
	ExpenseTotal decimal.Decimal
	Balance      decimal.Decimal
	IncomeCount  int64
	ExpenseCount int64
	TotalCount   int64
}

// NotificationRefs are the correlation identifiers returned by the
// notification collaborator; they target later verify/retract
// notifications for the same logical event.
type NotificationRefs struct {
	MessageRef string
	ThreadRef  string
}

// Complete reports whether both correlation identifiers are present.
// A verification notification is dispatched only for complete refs.
func (r NotificationRefs) Complete() bool {
	return r.MessageRef != "" && r.ThreadRef != ""
}
