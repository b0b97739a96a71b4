package usecase

import "time"

const (
	// statsCacheKey is the cache slot for the aggregate ledger summary.
	// Every mutation invalidates it.
	statsCacheKey = "reports:summary"

	// statsCacheTTL keeps the summary fresh even if an invalidation is lost.
	statsCacheTTL = 30 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour
)
