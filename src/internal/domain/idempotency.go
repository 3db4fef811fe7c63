package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// IdempotencyRetention is how long a committed transaction result is kept for
// replay before the store reclaims it.
const IdempotencyRetention = 24 * time.Hour

// IdempotencyRecord is written exactly once per distinct idempotency key, at
// commit time, and never mutated afterwards.
type IdempotencyRecord struct {
	IdempotencyKey string
	AccountID      string
	Amount         decimal.Decimal
	Type           TransactionType
	Result         TransactionResult
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// Expired reports whether the record has passed its retention window and
// should be treated as absent.
func (r IdempotencyRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
