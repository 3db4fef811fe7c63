package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/wallet-transaction-processor/src/internal/domain"
)

type BalanceRepository struct {
	db *sql.DB
}

func NewBalanceRepository(db *sql.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

func (r *BalanceRepository) Get(ctx context.Context, accountID string) (domain.BalanceRecord, error) {
	const query = `
SELECT account_id, balance::text, updated_at
FROM balance_records
WHERE account_id = $1`

	var record domain.BalanceRecord
	if err := r.db.QueryRowContext(ctx, query, accountID).Scan(
		&record.AccountID,
		&record.Balance,
		&record.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.BalanceRecord{}, domain.ErrRecordNotFound
		}
		return domain.BalanceRecord{}, fmt.Errorf("get balance record %q: %w", accountID, err)
	}

	return record, nil
}
