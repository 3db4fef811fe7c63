package repo_interfaces

import (
	"context"

	"github.com/api-sage/wallet-transaction-processor/src/internal/domain"
)

type BalanceRepository interface {
	// Get returns the balance record for accountID, or ErrRecordNotFound when
	// no record exists. Point lookup, no side effects.
	Get(ctx context.Context, accountID string) (domain.BalanceRecord, error)
}
