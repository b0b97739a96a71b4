package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cajaflow/caja/internal/domain"
	"github.com/cajaflow/caja/internal/infrastructure/metrics"
)

// UserUseCase handles user management operations.
type UserUseCase struct {
	userRepo UserRepository
	idGen    IDGenerator
	metrics  *metrics.Metrics
}

// NewUserUseCase creates a new user use case. metrics may be nil.
func NewUserUseCase(userRepo UserRepository, idGen IDGenerator, metrics *metrics.Metrics) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		idGen:    idGen,
		metrics:  metrics,
	}
}

// CreateUserInput represents input for registering a user.
type CreateUserInput struct {
	Actor    *domain.User
	Email    string
	Name     string
	Password string
	Role     domain.Role
}

// CreateUser registers a new user. Only a privileged actor may register
// users.
func (uc *UserUseCase) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if input.Actor == nil || !input.Actor.Role.CanManageUsers() {
		return nil, domain.ErrInsufficientRole
	}

	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}

	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	if !input.Role.IsValid() {
		return nil, fmt.Errorf("invalid role %q", input.Role)
	}

	existing, err := uc.userRepo.GetByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.NewCollaboratorError("persistence", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:             uc.idGen.Generate(),
		Email:          input.Email,
		Name:           input.Name,
		HashedPassword: hashedPassword,
		Role:           input.Role,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, domain.NewCollaboratorError("persistence", err)
	}

	user.HashedPassword = ""
	return user, nil
}

// AuthenticateInput represents authentication input.
type AuthenticateInput struct {
	Email    string
	Password string
}

// Authenticate verifies user credentials.
func (uc *UserUseCase) Authenticate(ctx context.Context, input AuthenticateInput) (*domain.User, error) {
	user, err := uc.userRepo.GetByEmail(ctx, input.Email)
	if err != nil || user == nil {
		uc.recordAuthFailure("unknown_user")
		return nil, domain.ErrUnauthorized
	}

	if !user.Active {
		uc.recordAuthFailure("inactive_user")
		return nil, domain.ErrUnauthorized
	}

	if err := verifyPassword(user.HashedPassword, input.Password); err != nil {
		uc.recordAuthFailure("bad_password")
		return nil, domain.ErrUnauthorized
	}

	if uc.metrics != nil {
		uc.metrics.AuthAttempts.WithLabelValues("success").Inc()
	}

	user.HashedPassword = ""
	return user, nil
}

func (uc *UserUseCase) recordAuthFailure(reason string) {
	if uc.metrics == nil {
		return
	}

	uc.metrics.AuthAttempts.WithLabelValues("failure").Inc()
	uc.metrics.AuthFailures.WithLabelValues(reason).Inc()
}

// GetUser retrieves a user by ID.
func (uc *UserUseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.HashedPassword = ""
	return user, nil
}

// ListUsers lists all users with pagination.
func (uc *UserUseCase) ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	users, err := uc.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, domain.NewCollaboratorError("persistence", err)
	}

	for _, user := range users {
		user.HashedPassword = ""
	}

	return users, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
