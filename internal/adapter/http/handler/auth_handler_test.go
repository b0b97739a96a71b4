package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cajaflow/caja/internal/adapter/http/dto"
	"github.com/cajaflow/caja/internal/domain"
	"github.com/cajaflow/caja/internal/infrastructure/auth"
	"github.com/cajaflow/caja/internal/usecase"
)

type userServiceStub struct {
	authenticateFn func(ctx context.Context, input usecase.AuthenticateInput) (*domain.User, error)
	createFn       func(ctx context.Context, input usecase.CreateUserInput) (*domain.User, error)
	listFn         func(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

func (s *userServiceStub) Authenticate(ctx context.Context, input usecase.AuthenticateInput) (*domain.User, error) {
	return s.authenticateFn(ctx, input)
}

func (s *userServiceStub) CreateUser(ctx context.Context, input usecase.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, input)
}

func (s *userServiceStub) ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	return s.listFn(ctx, limit, offset)
}

func testJWTManager() *auth.JWTManager {
	return auth.NewJWTManager("test-secret", time.Hour)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	user := &domain.User{ID: "user-1", Email: "member@example.com", Role: domain.RoleMember}
	handler := NewAuthHandler(&userServiceStub{
		authenticateFn: func(ctx context.Context, input usecase.AuthenticateInput) (*domain.User, error) {
			if input.Email != "member@example.com" || input.Password != "secret" {
				t.Fatalf("unexpected credentials: %+v", input)
			}
			return user, nil
		},
	}, testJWTManager())

	body, _ := json.Marshal(dto.LoginRequest{Email: "member@example.com", Password: "secret"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token in the response")
	}
	if resp.User.Email != "member@example.com" {
		t.Fatalf("unexpected user in response: %+v", resp.User)
	}

	claims, err := testJWTManager().Verify(resp.Token)
	if err != nil {
		t.Fatalf("issued token failed verification: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected token subject user-1, got %s", claims.UserID)
	}
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	handler := NewAuthHandler(&userServiceStub{
		authenticateFn: func(ctx context.Context, input usecase.AuthenticateInput) (*domain.User, error) {
			return nil, domain.ErrUnauthorized
		},
	}, testJWTManager())

	body, _ := json.Marshal(dto.LoginRequest{Email: "member@example.com", Password: "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_Register(t *testing.T) {
	admin := &domain.User{ID: "admin-1", Email: "admin@example.com", Role: domain.RoleAdmin}

	tests := []struct {
		name       string
		createFn   func(ctx context.Context, input usecase.CreateUserInput) (*domain.User, error)
		actor      *domain.User
		wantStatus int
	}{
		{
			name: "success",
			createFn: func(ctx context.Context, input usecase.CreateUserInput) (*domain.User, error) {
				return &domain.User{ID: "user-2", Email: input.Email, Role: domain.RoleMember}, nil
			},
			actor:      admin,
			wantStatus: http.StatusCreated,
		},
		{
			name: "duplicate email",
			createFn: func(ctx context.Context, input usecase.CreateUserInput) (*domain.User, error) {
				return nil, domain.ErrEmailTaken
			},
			actor:      admin,
			wantStatus: http.StatusConflict,
		},
		{
			name: "non-admin actor",
			createFn: func(ctx context.Context, input usecase.CreateUserInput) (*domain.User, error) {
				return nil, domain.ErrInsufficientRole
			},
			actor:      &domain.User{ID: "user-1", Role: domain.RoleMember},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "no actor",
			actor:      nil,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(&userServiceStub{createFn: tt.createFn}, testJWTManager())

			body, _ := json.Marshal(dto.RegisterUserRequest{
				Email:    "new@example.com",
				Name:     "New User",
				Password: "secret",
				Role:     "member",
			})
			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
			if tt.actor != nil {
				req = authedRequest(req, tt.actor)
			}
			rec := httptest.NewRecorder()

			handler.Register(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAuthHandler_ListUsers(t *testing.T) {
	var gotLimit, gotOffset int
	handler := NewAuthHandler(&userServiceStub{
		listFn: func(ctx context.Context, limit, offset int) ([]*domain.User, error) {
			gotLimit, gotOffset = limit, offset
			return []*domain.User{
				{ID: "user-1", Email: "member@example.com", Role: domain.RoleMember},
			}, nil
		},
	}, testJWTManager())

	req := httptest.NewRequest(http.MethodGet, "/users?limit=25&offset=5", nil)
	rec := httptest.NewRecorder()

	handler.ListUsers(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotLimit != 25 || gotOffset != 5 {
		t.Fatalf("expected pagination 25/5, got %d/%d", gotLimit, gotOffset)
	}

	var resp []dto.UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].ID != "user-1" {
		t.Fatalf("unexpected users response: %+v", resp)
	}
}

func TestAuthHandler_GetCurrentUser(t *testing.T) {
	handler := NewAuthHandler(&userServiceStub{}, testJWTManager())

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/auth/me", nil), memberUser())
	rec := httptest.NewRecorder()

	handler.GetCurrentUser(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "user-1" {
		t.Fatalf("unexpected user: %+v", resp)
	}
}
