package usecase_test

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/cajaflow/caja/internal/domain"
	"github.com/cajaflow/caja/internal/usecase"
	"github.com/cajaflow/caja/internal/usecase/mocks"
)

func TestUserUseCase_CreateUser(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.CreateUserInput
		seed        func(*testing.T, *mocks.MockUserRepository)
		wantErr     error
		expectError bool
	}{
		{
			name: "admin registers a member",
			input: usecase.CreateUserInput{
				Actor:    adminActor(),
				Email:    "new@example.com",
				Name:     "New Member",
				Password: "long-enough-secret",
				Role:     domain.RoleMember,
			},
		},
		{
			name: "admin registers another admin",
			input: usecase.CreateUserInput{
				Actor:    adminActor(),
				Email:    "second@example.com",
				Name:     "Second Admin",
				Password: "long-enough-secret",
				Role:     domain.RoleAdmin,
			},
		},
		{
			name: "member may not register users",
			input: usecase.CreateUserInput{
				Actor:    memberActor(),
				Email:    "new@example.com",
				Name:     "New Member",
				Password: "long-enough-secret",
				Role:     domain.RoleMember,
			},
			wantErr:     domain.ErrInsufficientRole,
			expectError: true,
		},
		{
			name: "nil actor may not register users",
			input: usecase.CreateUserInput{
				Email:    "new@example.com",
				Password: "long-enough-secret",
				Role:     domain.RoleMember,
			},
			wantErr:     domain.ErrInsufficientRole,
			expectError: true,
		},
		{
			name: "malformed email",
			input: usecase.CreateUserInput{
				Actor:    adminActor(),
				Email:    "not-an-email",
				Password: "long-enough-secret",
				Role:     domain.RoleMember,
			},
			wantErr:     domain.ErrInvalidEmail,
			expectError: true,
		},
		{
			name: "short password",
			input: usecase.CreateUserInput{
				Actor:    adminActor(),
				Email:    "new@example.com",
				Password: "short",
				Role:     domain.RoleMember,
			},
			wantErr:     domain.ErrPasswordTooWeak,
			expectError: true,
		},
		{
			name: "unknown role",
			input: usecase.CreateUserInput{
				Actor:    adminActor(),
				Email:    "new@example.com",
				Password: "long-enough-secret",
				Role:     domain.Role("superuser"),
			},
			expectError: true,
		},
		{
			name: "duplicate email",
			input: usecase.CreateUserInput{
				Actor:    adminActor(),
				Email:    "taken@example.com",
				Password: "long-enough-secret",
				Role:     domain.RoleMember,
			},
			seed: func(t *testing.T, repo *mocks.MockUserRepository) {
				if err := repo.Create(context.Background(), &domain.User{
					ID:    "u-1",
					Email: "taken@example.com",
					Role:  domain.RoleMember,
				}); err != nil {
					t.Fatalf("seed user: %v", err)
				}
			},
			wantErr:     domain.ErrEmailTaken,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockUserRepository()
			if tt.seed != nil {
				tt.seed(t, repo)
			}

			uc := usecase.NewUserUseCase(repo, mocks.NewMockIDGenerator(), nil)
			user, err := uc.CreateUser(context.Background(), tt.input)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.Email != tt.input.Email {
				t.Errorf("expected email %q, got %q", tt.input.Email, user.Email)
			}
			if user.Role != tt.input.Role {
				t.Errorf("expected role %q, got %q", tt.input.Role, user.Role)
			}
			if !user.Active {
				t.Error("expected new users to be active")
			}
			if user.HashedPassword != "" {
				t.Error("hashed password must not leak out of the use case")
			}

			stored, err := repo.GetByEmail(context.Background(), tt.input.Email)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := bcrypt.CompareHashAndPassword([]byte(stored.HashedPassword), []byte(tt.input.Password)); err != nil {
				t.Errorf("stored hash does not match password: %v", err)
			}
		})
	}
}

func TestUserUseCase_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	seedUser := func(t *testing.T, repo *mocks.MockUserRepository, active bool) {
		t.Helper()
		if err := repo.Create(context.Background(), &domain.User{
			ID:             "u-1",
			Email:          "user@example.com",
			HashedPassword: string(hash),
			Role:           domain.RoleMember,
			Active:         active,
		}); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	t.Run("valid credentials", func(t *testing.T) {
		repo := mocks.NewMockUserRepository()
		seedUser(t, repo, true)

		uc := usecase.NewUserUseCase(repo, mocks.NewMockIDGenerator(), nil)
		user, err := uc.Authenticate(context.Background(), usecase.AuthenticateInput{
			Email:    "user@example.com",
			Password: "correct-password",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.ID != "u-1" {
			t.Errorf("expected user u-1, got %q", user.ID)
		}
		if user.HashedPassword != "" {
			t.Error("hashed password must not leak out of the use case")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := mocks.NewMockUserRepository()
		seedUser(t, repo, true)

		uc := usecase.NewUserUseCase(repo, mocks.NewMockIDGenerator(), nil)
		if _, err := uc.Authenticate(context.Background(), usecase.AuthenticateInput{
			Email:    "user@example.com",
			Password: "wrong-password",
		}); !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := mocks.NewMockUserRepository()

		uc := usecase.NewUserUseCase(repo, mocks.NewMockIDGenerator(), nil)
		if _, err := uc.Authenticate(context.Background(), usecase.AuthenticateInput{
			Email:    "ghost@example.com",
			Password: "correct-password",
		}); !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("deactivated account", func(t *testing.T) {
		repo := mocks.NewMockUserRepository()
		seedUser(t, repo, false)

		uc := usecase.NewUserUseCase(repo, mocks.NewMockIDGenerator(), nil)
		if _, err := uc.Authenticate(context.Background(), usecase.AuthenticateInput{
			Email:    "user@example.com",
			Password: "correct-password",
		}); !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestUserUseCase_ListUsers(t *testing.T) {
	repo := mocks.NewMockUserRepository()
	for _, u := range []*domain.User{
		{ID: "u-1", Email: "a@example.com", HashedPassword: "hash", Role: domain.RoleAdmin},
		{ID: "u-2", Email: "b@example.com", HashedPassword: "hash", Role: domain.RoleMember},
	} {
		if err := repo.Create(context.Background(), u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	uc := usecase.NewUserUseCase(repo, mocks.NewMockIDGenerator(), nil)
	users, err := uc.ListUsers(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	for _, u := range users {
		if u.HashedPassword != "" {
			t.Errorf("hashed password must not leak for %s", u.ID)
		}
	}
}
