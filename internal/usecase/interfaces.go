package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cajaflow/caja/internal/domain"
)

// MovementRepository defines data access for movements.
type MovementRepository interface {
	// Insert stores a new movement and fills in its insertion Seq.
	Insert(ctx context.Context, movement *domain.Movement) error
	// Update rewrites the mutable fields (amount, reason, receipt) of a movement.
	Update(ctx context.Context, movement *domain.Movement) error
	UpdateVerificationState(ctx context.Context, id string, state domain.VerificationState, updatedAt time.Time) error
	UpdateNotificationRefs(ctx context.Context, id string, refs domain.NotificationRefs) error
	GetByID(ctx context.Context, id string) (*domain.Movement, error)
	List(ctx context.Context, filter domain.MovementFilter) ([]*domain.Movement, error)
	// ListAll returns the full ledger, the peer set for the editability check.
	ListAll(ctx context.Context) ([]*domain.Movement, error)
	AggregateStats(ctx context.Context) (*domain.Stats, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

// Notifier dispatches movement events to the downstream messaging webhooks.
// All dispatches are best-effort: callers log failures and move on, they
// never fail the primary mutation because of one.
type Notifier interface {
	// MovementCreated announces a new or updated movement together with the
	// ledger balance after it, and returns any correlation refs the
	// downstream system handed back.
	MovementCreated(ctx context.Context, movement *domain.Movement, balance decimal.Decimal) (domain.NotificationRefs, error)
	// MovementVerified announces the confirmation of a movement previously
	// announced with complete correlation refs.
	MovementVerified(ctx context.Context, movement *domain.Movement) error
	// MovementRetracted retracts an earlier announcement before its
	// movement is rewritten.
	MovementRetracted(ctx context.Context, movement *domain.Movement) error
}

// ReceiptStorage stores receipt blobs and returns publicly resolvable URLs.
type ReceiptStorage interface {
	Store(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ReceiptProcessor normalizes an uploaded receipt image before storage.
type ReceiptProcessor interface {
	// Normalize re-encodes (and if needed downscales) the image, returning
	// the processed bytes and their content type.
	Normalize(data []byte) ([]byte, string, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
