package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/api-sage/wallet-transaction-processor/src/internal/domain"
	"github.com/api-sage/wallet-transaction-processor/src/internal/logger"
	"github.com/shopspring/decimal"
)

type IdempotencyRepository struct {
	db *sql.DB
}

func NewIdempotencyRepository(db *sql.DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

func (r *IdempotencyRepository) Get(ctx context.Context, idempotencyKey string) (domain.IdempotencyRecord, error) {
	const query = `
SELECT idempotency_key, account_id, amount::text, transaction_type, result, created_at, expires_at
FROM idempotency_records
WHERE idempotency_key = $1
  AND expires_at > clock_timestamp()`

	var record domain.IdempotencyRecord
	var amount string
	var transactionType string
	var resultJSON []byte

	if err := r.db.QueryRowContext(ctx, query, idempotencyKey).Scan(
		&record.IdempotencyKey,
		&record.AccountID,
		&amount,
		&transactionType,
		&resultJSON,
		&record.CreatedAt,
		&record.ExpiresAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.IdempotencyRecord{}, domain.ErrRecordNotFound
		}
		return domain.IdempotencyRecord{}, fmt.Errorf("get idempotency record %q: %w", idempotencyKey, err)
	}

	parsedAmount, err := decimal.NewFromString(amount)
	if err != nil {
		return domain.IdempotencyRecord{}, fmt.Errorf("parse idempotency record %q amount: %w", idempotencyKey, err)
	}
	record.Amount = parsedAmount

	parsedType, err := domain.ParseTransactionType(transactionType)
	if err != nil {
		return domain.IdempotencyRecord{}, fmt.Errorf("parse idempotency record %q type: %w", idempotencyKey, err)
	}
	record.Type = parsedType

	if err := json.Unmarshal(resultJSON, &record.Result); err != nil {
		return domain.IdempotencyRecord{}, fmt.Errorf("decode idempotency record %q result: %w", idempotencyKey, err)
	}

	return record, nil
}

func (r *IdempotencyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `
DELETE FROM idempotency_records
WHERE expires_at <= clock_timestamp()`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("delete expired idempotency records: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired idempotency records rows affected: %w", err)
	}

	if rows > 0 {
		logger.Info("idempotency repository reclaimed expired records", logger.Fields{
			"count": rows,
		})
	}

	return rows, nil
}
