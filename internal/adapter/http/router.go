package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cajaflow/caja/internal/adapter/http/handler"
	"github.com/cajaflow/caja/internal/adapter/http/middleware"
	"github.com/cajaflow/caja/internal/infrastructure/auth"
	"github.com/cajaflow/caja/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	MovementHandler  *handler.MovementHandler
	ReceiptHandler   *handler.ReceiptHandler
	ReportHandler    *handler.ReportHandler
	AuthHandler      *handler.AuthHandler
	HealthHandler    *handler.HealthHandler
	JWTManager       *auth.JWTManager
	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
	Logging          *middleware.LoggingMiddleware
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.Logging != nil {
		r.Use(cfg.Logging.Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", cfg.AuthHandler.Login)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))

			if cfg.IdempotencyStore != nil {
				idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
				r.Use(idempotencyMiddleware.Wrap)
			}

			r.Get("/auth/me", cfg.AuthHandler.GetCurrentUser)

			r.Route("/movements", func(r chi.Router) {
				r.Post("/", cfg.MovementHandler.Create)
				r.Get("/", cfg.MovementHandler.List)
				r.Get("/{id}", cfg.MovementHandler.Get)
				r.Put("/{id}", cfg.MovementHandler.Update)
				r.Get("/{id}/editability", cfg.MovementHandler.CheckEditability)
				r.With(middleware.RequireAdmin).Post("/{id}/verify", cfg.MovementHandler.Verify)
			})

			r.Post("/receipts", cfg.ReceiptHandler.Upload)
			r.Get("/reports/summary", cfg.ReportHandler.Summary)

			// User management, admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/auth/register", cfg.AuthHandler.Register)
				r.Get("/users", cfg.AuthHandler.ListUsers)
			})
		})
	})

	return r
}
