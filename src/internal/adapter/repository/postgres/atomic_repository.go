package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/api-sage/wallet-transaction-processor/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/wallet-transaction-processor/src/internal/domain"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// AtomicRepository executes conditional mutations against balance_records and
// idempotency_records inside a single database transaction. Row-level locks
// on balance_records totally order committed mutations per account.
type AtomicRepository struct {
	db *sql.DB
}

func NewAtomicRepository(db *sql.DB) *AtomicRepository {
	return &AtomicRepository{db: db}
}

func (r *AtomicRepository) ConditionalUpdate(ctx context.Context, op repo_interfaces.ConditionalBalanceUpdate) error {
	return r.CombinedAtomic(ctx, op)
}

func (r *AtomicRepository) PutIfAbsent(ctx context.Context, op repo_interfaces.IdempotencyPutIfAbsent) error {
	return r.CombinedAtomic(ctx, op)
}

func (r *AtomicRepository) CombinedAtomic(ctx context.Context, ops ...repo_interfaces.AtomicOperation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin atomic unit: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, op := range ops {
		switch typed := op.(type) {
		case repo_interfaces.ConditionalBalanceUpdate:
			err = applyBalanceUpdate(ctx, tx, typed)
		case repo_interfaces.IdempotencyPutIfAbsent:
			err = applyIdempotencyPut(ctx, tx, typed)
		default:
			err = fmt.Errorf("unsupported atomic operation %T", op)
		}
		if err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit atomic unit: %w", err)
	}

	return nil
}

func applyBalanceUpdate(ctx context.Context, tx *sql.Tx, op repo_interfaces.ConditionalBalanceUpdate) error {
	// updated_at uses clock_timestamp(), not NOW(): a transaction that waited
	// on the row lock must not stamp a time before the one it waited for.
	const updateQuery = `
UPDATE balance_records
SET balance = balance + $2::numeric,
    updated_at = clock_timestamp()
WHERE account_id = $1
  AND ($3 = false OR balance + $2::numeric >= 0)
RETURNING balance::text`

	var newBalance string
	err := tx.QueryRowContext(ctx, updateQuery, op.AccountID, op.Delta.String(), op.EnforceNonNegative).Scan(&newBalance)
	if err == nil {
		return bindNewBalance(op.NewBalance, newBalance)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update balance record %q: %w", op.AccountID, err)
	}

	// Zero rows: the record is missing, or the non-negative condition failed.
	var exists bool
	const existsQuery = `SELECT EXISTS (SELECT 1 FROM balance_records WHERE account_id = $1)`
	if err := tx.QueryRowContext(ctx, existsQuery, op.AccountID).Scan(&exists); err != nil {
		return fmt.Errorf("check balance record %q: %w", op.AccountID, err)
	}
	if exists {
		return domain.ErrBalanceConditionFailed
	}

	// Lazy creation from the implicit starting balance. The starting value is
	// a constant, so the condition is checked here; if another transaction
	// inserts the record first, the conflict branch re-checks against the
	// stored row.
	created := op.Starting.Add(op.Delta)
	if op.EnforceNonNegative && created.IsNegative() {
		return domain.ErrBalanceConditionFailed
	}

	const insertQuery = `
INSERT INTO balance_records (account_id, balance, updated_at)
VALUES ($1, $2::numeric, clock_timestamp())
ON CONFLICT (account_id) DO UPDATE
SET balance = balance_records.balance + $3::numeric,
    updated_at = clock_timestamp()
WHERE $4 = false OR balance_records.balance + $3::numeric >= 0
RETURNING balance::text`

	err = tx.QueryRowContext(
		ctx,
		insertQuery,
		op.AccountID,
		created.String(),
		op.Delta.String(),
		op.EnforceNonNegative,
	).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrBalanceConditionFailed
		}
		return fmt.Errorf("create balance record %q: %w", op.AccountID, err)
	}

	return bindNewBalance(op.NewBalance, newBalance)
}

func applyIdempotencyPut(ctx context.Context, tx *sql.Tx, op repo_interfaces.IdempotencyPutIfAbsent) error {
	record := op.Record
	if op.NewBalance != nil {
		record.Result.NewBalance = *op.NewBalance
	}

	resultJSON, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("encode idempotency record %q result: %w", record.IdempotencyKey, err)
	}

	// An expired row is logically absent; the conflict branch overwrites it
	// in place instead of waiting for the sweep. A live duplicate yields zero
	// rows and aborts the unit.
	const query = `
INSERT INTO idempotency_records (
	idempotency_key,
	account_id,
	amount,
	transaction_type,
	result,
	created_at,
	expires_at
) VALUES ($1, $2, $3::numeric, $4, $5::jsonb, $6, $7)
ON CONFLICT (idempotency_key) DO UPDATE
SET account_id = EXCLUDED.account_id,
    amount = EXCLUDED.amount,
    transaction_type = EXCLUDED.transaction_type,
    result = EXCLUDED.result,
    created_at = EXCLUDED.created_at,
    expires_at = EXCLUDED.expires_at
WHERE idempotency_records.expires_at <= clock_timestamp()`

	result, err := tx.ExecContext(
		ctx,
		query,
		record.IdempotencyKey,
		record.AccountID,
		record.Amount.String(),
		string(record.Type),
		string(resultJSON),
		record.CreatedAt,
		record.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrIdempotencyKeyExists
		}
		return fmt.Errorf("put idempotency record %q: %w", record.IdempotencyKey, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("put idempotency record %q rows affected: %w", record.IdempotencyKey, err)
	}
	if rows == 0 {
		return domain.ErrIdempotencyKeyExists
	}

	return nil
}

func bindNewBalance(target *decimal.Decimal, raw string) error {
	if target == nil {
		return nil
	}

	parsed, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("parse post-mutation balance %q: %w", raw, err)
	}

	*target = parsed
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == "23505"
	}
	return false
}
