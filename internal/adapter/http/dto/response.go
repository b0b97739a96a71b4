package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cajaflow/caja/internal/domain"
)

// MovementResponse represents a movement in API responses.
type MovementResponse struct {
	ID                string          `json:"id"`
	OwnerID           string          `json:"owner_id"`
	Kind              string          `json:"kind"`
	Amount            decimal.Decimal `json:"amount"`
	Reason            string          `json:"reason"`
	ReceiptURL        string          `json:"receipt_url,omitempty"`
	VerificationState string          `json:"verification_state"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// MovementFromDomain converts a domain movement to a response.
func MovementFromDomain(m *domain.Movement) *MovementResponse {
	return &MovementResponse{
		ID:                m.ID,
		OwnerID:           m.OwnerID,
		Kind:              string(m.Kind),
		Amount:            m.Amount,
		Reason:            m.Reason,
		ReceiptURL:        m.ReceiptURL,
		VerificationState: string(m.VerificationState),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// MovementsFromDomain converts domain movements to responses.
func MovementsFromDomain(movements []*domain.Movement) []*MovementResponse {
	result := make([]*MovementResponse, len(movements))
	for i, m := range movements {
		result[i] = MovementFromDomain(m)
	}
	return result
}

// ListMovementsResponse represents a paginated movement listing.
type ListMovementsResponse struct {
	Movements []*MovementResponse `json:"movements"`
	Total     int64               `json:"total"`
}

// EditabilityResponse tells a client whether a movement may still be
// edited and for how long.
type EditabilityResponse struct {
	Editable         bool   `json:"editable"`
	RemainingMinutes int    `json:"remaining_minutes"`
	Reason           string `json:"reason,omitempty"`
}

// EditabilityFromDecision converts an edit decision to a response.
func EditabilityFromDecision(d domain.EditDecision) *EditabilityResponse {
	return &EditabilityResponse{
		Editable:         d.Editable,
		RemainingMinutes: d.RemainingMinutes,
		Reason:           d.Reason,
	}
}

// VerifyMovementResponse represents the outcome of a verification.
type VerifyMovementResponse struct {
	Movement *MovementResponse `json:"movement"`
	Notified bool              `json:"notified"`
}

// SummaryResponse represents aggregate ledger statistics.
type SummaryResponse struct {
	IncomeTotal  decimal.Decimal `json:"income_total"`
	ExpenseTotal decimal.Decimal `json:"expense_total"`
	Balance      decimal.Decimal `json:"balance"`
	IncomeCount  int64           `json:"income_count"`
	ExpenseCount int64           `json:"expense_count"`
	TotalCount   int64           `json:"total_count"`
}

// SummaryFromDomain converts domain stats to a response.
func SummaryFromDomain(s *domain.Stats) *SummaryResponse {
	return &SummaryResponse{
		IncomeTotal:  s.IncomeTotal,
		ExpenseTotal: s.ExpenseTotal,
		Balance:      s.Balance,
		IncomeCount:  s.IncomeCount,
		ExpenseCount: s.ExpenseCount,
		TotalCount:   s.TotalCount,
	}
}

// ReceiptResponse represents an uploaded receipt.
type ReceiptResponse struct {
	URL string `json:"url"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromDomain converts a domain user to a response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

// UsersFromDomain converts domain users to responses.
func UsersFromDomain(users []*domain.User) []*UserResponse {
	result := make([]*UserResponse, len(users))
	for i, u := range users {
		result[i] = UserFromDomain(u)
	}
	return result
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
