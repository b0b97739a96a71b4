package dto

import (
	"github.com/shopspring/decimal"

	"github.com/cajaflow/caja/internal/domain"
	"github.com/cajaflow/caja/internal/usecase"
)

// CreateMovementRequest represents a request to record a movement.
type CreateMovementRequest struct {
	Kind       string          `json:"kind"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason"`
	ReceiptURL string          `json:"receipt_url,omitempty"`
}

// ToUseCaseInput converts to use case input for the given actor.
func (r *CreateMovementRequest) ToUseCaseInput(actor *domain.User) usecase.CreateMovementInput {
	return usecase.CreateMovementInput{
		Actor:      actor,
		Kind:       domain.Kind(r.Kind),
		Amount:     r.Amount,
		Reason:     r.Reason,
		ReceiptURL: r.ReceiptURL,
	}
}

// UpdateMovementRequest represents a partial edit of a movement. Absent
// fields are left untouched.
type UpdateMovementRequest struct {
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Reason     *string          `json:"reason,omitempty"`
	ReceiptURL *string          `json:"receipt_url,omitempty"`
}

// ToUseCaseInput converts to use case input for the given actor and movement.
func (r *UpdateMovementRequest) ToUseCaseInput(actor *domain.User, movementID string) usecase.EditMovementInput {
	return usecase.EditMovementInput{
		Actor:      actor,
		MovementID: movementID,
		Amount:     r.Amount,
		Reason:     r.Reason,
		ReceiptURL: r.ReceiptURL,
	}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterUserRequest represents a request to register a user.
type RegisterUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// ToUseCaseInput converts to use case input for the given actor.
func (r *RegisterUserRequest) ToUseCaseInput(actor *domain.User) usecase.CreateUserInput {
	return usecase.CreateUserInput{
		Actor:    actor,
		Email:    r.Email,
		Name:     r.Name,
		Password: r.Password,
		Role:     domain.Role(r.Role),
	}
}
