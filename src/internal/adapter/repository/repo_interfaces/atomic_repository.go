package repo_interfaces

import (
	"context"

	"github.com/api-sage/wallet-transaction-processor/src/internal/domain"
	"github.com/shopspring/decimal"
)

// AtomicOperation is one conditional mutation inside a combined atomic unit.
// Operations execute in the order given; a later operation may observe a value
// produced by an earlier one through a shared *decimal.Decimal binding.
type AtomicOperation interface {
	atomicOperation()
}

// ConditionalBalanceUpdate adjusts the balance for AccountID by Delta,
// creating the record from Starting when none exists. With EnforceNonNegative
// set, the mutation only applies if the resulting balance stays at or above
// zero; otherwise the whole unit aborts with ErrBalanceConditionFailed.
type ConditionalBalanceUpdate struct {
	AccountID          string
	Delta              decimal.Decimal
	Starting           decimal.Decimal
	EnforceNonNegative bool

	// NewBalance, when non-nil, receives the post-mutation balance before any
	// subsequent operation in the unit runs.
	NewBalance *decimal.Decimal
}

func (ConditionalBalanceUpdate) atomicOperation() {}

// IdempotencyPutIfAbsent inserts Record only if no live record exists for its
// idempotency key; a live duplicate aborts the whole unit with
// ErrIdempotencyKeyExists. When NewBalance is non-nil its value is copied into
// Record.Result.NewBalance just before the insert, so the stored result
// carries the balance computed earlier in the same unit.
type IdempotencyPutIfAbsent struct {
	Record     domain.IdempotencyRecord
	NewBalance *decimal.Decimal
}

func (IdempotencyPutIfAbsent) atomicOperation() {}

// AtomicRepository executes conditional mutations against the backing store.
// Any storage engine with atomic multi-key conditional commits can implement
// it; all-or-nothing semantics must be real, not best-effort sequential
// writes.
type AtomicRepository interface {
	// ConditionalUpdate applies a single conditional balance mutation.
	ConditionalUpdate(ctx context.Context, op ConditionalBalanceUpdate) error

	// PutIfAbsent applies a single conditional idempotency insert.
	PutIfAbsent(ctx context.Context, op IdempotencyPutIfAbsent) error

	// CombinedAtomic executes the given operations as one all-or-nothing
	// unit across possibly-different records; any single operation's
	// precondition failure aborts all of them with no partial effect.
	CombinedAtomic(ctx context.Context, ops ...AtomicOperation) error
}
