// seed-admin creates or updates the bootstrap admin user. Registration is
// admin-gated over the API, so the first admin has to be seeded directly
// against the database.
//
// Usage:
//
//	DATABASE_URL=... ADMIN_EMAIL=... ADMIN_PASSWORD=... go run ./cmd/seed-admin
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	postgresRepo "github.com/cajaflow/caja/internal/adapter/repository/postgres"
	"github.com/cajaflow/caja/internal/domain"
	"github.com/cajaflow/caja/internal/infrastructure/config"
	"github.com/cajaflow/caja/internal/infrastructure/postgres"
)

func main() {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	name := os.Getenv("ADMIN_NAME")
	if name == "" {
		name = "Caja Admin"
	}

	if email == "" || password == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_EMAIL and ADMIN_PASSWORD must be set")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to postgres: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	userRepo := postgresRepo.NewUserRepository(pool)
	now := time.Now().UTC()

	existing, err := userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
		os.Exit(1)
	}

	if existing == nil {
		user := &domain.User{
			ID:             postgresRepo.NewULIDGenerator().Generate(),
			Email:          email,
			Name:           name,
			HashedPassword: string(hashed),
			Role:           domain.RoleAdmin,
			Active:         true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created admin user %q\n", email)
		return
	}

	existing.Name = name
	existing.HashedPassword = string(hashed)
	existing.Role = domain.RoleAdmin
	existing.Active = true
	existing.UpdatedAt = now

	if err := userRepo.Update(ctx, existing); err != nil {
		fmt.Fprintf(os.Stderr, "failed to update admin user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Updated admin user %q\n", email)
}
