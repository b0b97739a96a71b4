package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/cajaflow/caja/internal/adapter/http"
	"github.com/cajaflow/caja/internal/adapter/http/handler"
	"github.com/cajaflow/caja/internal/adapter/http/middleware"
	"github.com/cajaflow/caja/internal/adapter/notifier/webhook"
	postgresRepo "github.com/cajaflow/caja/internal/adapter/repository/postgres"
	redisRepo "github.com/cajaflow/caja/internal/adapter/repository/redis"
	"github.com/cajaflow/caja/internal/adapter/storage/gcs"
	"github.com/cajaflow/caja/internal/adapter/storage/imageproc"
	"github.com/cajaflow/caja/internal/infrastructure/auth"
	"github.com/cajaflow/caja/internal/infrastructure/config"
	"github.com/cajaflow/caja/internal/infrastructure/logger"
	"github.com/cajaflow/caja/internal/infrastructure/logging"
	"github.com/cajaflow/caja/internal/infrastructure/metrics"
	"github.com/cajaflow/caja/internal/infrastructure/postgres"
	"github.com/cajaflow/caja/internal/infrastructure/redis"
	"github.com/cajaflow/caja/internal/usecase"
)

const migrationsPath = "migrations"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	// Setup loggers: zerolog for the HTTP surface, slog for the use cases
	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slogger := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Apply migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, migrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("migrations applied")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories and collaborators
	movementRepo := postgresRepo.NewMovementRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	appMetrics := metrics.New()

	notifier := webhook.New(webhook.Config{
		CreateURL:  cfg.WebhookCreateURL,
		VerifyURL:  cfg.WebhookVerifyURL,
		RetractURL: cfg.WebhookRetractURL,
		Timeout:    cfg.WebhookTimeout,
	}, slogger.Logger)

	receiptStorage, err := buildReceiptStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize receipt storage")
	}
	if closer, ok := receiptStorage.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	// Initialize use cases
	movementUC := usecase.NewMovementUseCase(movementRepo, notifier, cache, idGen, slogger.Logger, appMetrics, nil)
	reportUC := usecase.NewReportUseCase(movementRepo, cache, slogger.Logger)
	receiptUC := usecase.NewReceiptUseCase(receiptStorage, imageproc.New(), idGen, appMetrics)
	userUC := usecase.NewUserUseCase(userRepo, idGen, appMetrics)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	// Initialize handlers
	movementHandler := handler.NewMovementHandler(movementUC)
	receiptHandler := handler.NewReceiptHandler(receiptUC)
	reportHandler := handler.NewReportHandler(reportUC)
	authHandler := handler.NewAuthHandler(userUC, jwtManager)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	go cleanupLimitersLoop(rateLimiter)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		MovementHandler:  movementHandler,
		ReceiptHandler:   receiptHandler,
		ReportHandler:    reportHandler,
		AuthHandler:      authHandler,
		HealthHandler:    healthHandler,
		JWTManager:       jwtManager,
		IdempotencyStore: idempotencyStore,
		RateLimiter:      rateLimiter,
		Logging:          middleware.NewLoggingMiddleware(log.Logger),
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// buildReceiptStorage returns GCS-backed storage when a bucket is
// configured, and a storage that rejects uploads otherwise so the rest of
// the service still runs.
func buildReceiptStorage(ctx context.Context, cfg *config.Config) (usecase.ReceiptStorage, error) {
	if cfg.GCSBucket == "" {
		log.Warn().Msg("GCS_BUCKET not set, receipt uploads disabled")
		return disabledReceiptStorage{}, nil
	}

	return gcs.New(ctx, cfg.GCSBucket, cfg.GCSCredentialsJSON)
}

type disabledReceiptStorage struct{}

func (disabledReceiptStorage) Store(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return "", fmt.Errorf("receipt storage is not configured")
}

func cleanupLimitersLoop(rl *middleware.RateLimiter) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		rl.CleanupLimiters()
	}
}
