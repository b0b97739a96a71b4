package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cajaflow/caja/internal/adapter/http/dto"
	"github.com/cajaflow/caja/internal/adapter/http/middleware"
	"github.com/cajaflow/caja/internal/domain"
	"github.com/cajaflow/caja/internal/infrastructure/auth"
	"github.com/cajaflow/caja/internal/usecase"
)

// UserService defines the behavior needed by AuthHandler.
type UserService interface {
	Authenticate(ctx context.Context, input usecase.AuthenticateInput) (*domain.User, error)
	CreateUser(ctx context.Context, input usecase.CreateUserInput) (*domain.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

// AuthHandler handles authentication and user management endpoints.
type AuthHandler struct {
	userUC     UserService
	jwtManager *auth.JWTManager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userUC UserService, jwtManager *auth.JWTManager) *AuthHandler {
	return &AuthHandler{
		userUC:     userUC,
		jwtManager: jwtManager,
	}
}

// Login authenticates a user and issues a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := h.userUC.Authenticate(r.Context(), usecase.AuthenticateInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials", "")
		return
	}

	token, err := h.jwtManager.Generate(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Token: token,
		User:  dto.UserFromDomain(user),
	})
}

// Register creates a new user. Admin only.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := h.userUC.CreateUser(r.Context(), req.ToUseCaseInput(actor))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to register user", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.UserFromDomain(user))
}

// ListUsers lists registered users. Admin only.
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 0)
	offset := parseIntQuery(r, "offset", 0)

	users, err := h.userUC.ListUsers(r.Context(), limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list users", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.UsersFromDomain(users))
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}
