package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// EMICacheTTL is how long computed installment amounts are cached.
	// Loan terms are immutable after creation, so a long TTL is safe.
	EMICacheTTL = 12 * time.Hour

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
