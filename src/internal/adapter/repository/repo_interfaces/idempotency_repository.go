package repo_interfaces

import (
	"context"

	"github.com/api-sage/wallet-transaction-processor/src/internal/domain"
)

type IdempotencyRepository interface {
	// Get returns the record stored for idempotencyKey, or ErrRecordNotFound
	// when no live record exists. Records past their retention window are
	// treated as absent.
	Get(ctx context.Context, idempotencyKey string) (domain.IdempotencyRecord, error)

	// DeleteExpired reclaims records whose retention window has passed and
	// returns how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
