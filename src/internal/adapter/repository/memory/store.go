package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/api-sage/wallet-transaction-processor/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/wallet-transaction-processor/src/internal/domain"
	"github.com/shopspring/decimal"
)

// Store is a map-backed stand-in for the postgres tables. The mutex makes
// each atomic unit indivisible, which is the same guarantee the postgres
// implementation gets from its transactions. BalanceRepository and
// IdempotencyRepository are read views over the shared state.
type Store struct {
	mu          sync.Mutex
	balances    map[string]domain.BalanceRecord
	idempotency map[string]domain.IdempotencyRecord
	now         func() time.Time
}

func NewStore() *Store {
	return &Store{
		balances:    make(map[string]domain.BalanceRecord),
		idempotency: make(map[string]domain.IdempotencyRecord),
		now:         time.Now,
	}
}

type BalanceRepository struct {
	store *Store
}

func NewBalanceRepository(store *Store) *BalanceRepository {
	return &BalanceRepository{store: store}
}

func (r *BalanceRepository) Get(_ context.Context, accountID string) (domain.BalanceRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	record, ok := r.store.balances[accountID]
	if !ok {
		return domain.BalanceRecord{}, domain.ErrRecordNotFound
	}

	return record, nil
}

type IdempotencyRepository struct {
	store *Store
}

func NewIdempotencyRepository(store *Store) *IdempotencyRepository {
	return &IdempotencyRepository{store: store}
}

func (r *IdempotencyRepository) Get(_ context.Context, idempotencyKey string) (domain.IdempotencyRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	record, ok := r.store.idempotency[idempotencyKey]
	if !ok || record.Expired(r.store.now()) {
		return domain.IdempotencyRecord{}, domain.ErrRecordNotFound
	}

	return record, nil
}

func (r *IdempotencyRepository) DeleteExpired(_ context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var removed int64
	now := r.store.now()
	for key, record := range r.store.idempotency {
		if record.Expired(now) {
			delete(r.store.idempotency, key)
			removed++
		}
	}

	return removed, nil
}

func (s *Store) ConditionalUpdate(ctx context.Context, op repo_interfaces.ConditionalBalanceUpdate) error {
	return s.CombinedAtomic(ctx, op)
}

func (s *Store) PutIfAbsent(ctx context.Context, op repo_interfaces.IdempotencyPutIfAbsent) error {
	return s.CombinedAtomic(ctx, op)
}

func (s *Store) CombinedAtomic(_ context.Context, ops ...repo_interfaces.AtomicOperation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Stage every mutation first so a late precondition failure leaves
	// nothing applied.
	stagedBalances := make(map[string]domain.BalanceRecord)
	stagedIdempotency := make(map[string]domain.IdempotencyRecord)

	for _, op := range ops {
		switch typed := op.(type) {
		case repo_interfaces.ConditionalBalanceUpdate:
			record, exists := stagedBalances[typed.AccountID]
			if !exists {
				record, exists = s.balances[typed.AccountID]
			}

			prior := typed.Starting
			if exists {
				parsed, err := decimal.NewFromString(record.Balance)
				if err != nil {
					return fmt.Errorf("%w: account %q balance %q", domain.ErrCorruptRecord, typed.AccountID, record.Balance)
				}
				prior = parsed
			}

			next := prior.Add(typed.Delta)
			if typed.EnforceNonNegative && next.IsNegative() {
				return domain.ErrBalanceConditionFailed
			}

			stagedBalances[typed.AccountID] = domain.BalanceRecord{
				AccountID: typed.AccountID,
				Balance:   next.String(),
				UpdatedAt: s.now(),
			}
			if typed.NewBalance != nil {
				*typed.NewBalance = next
			}
		case repo_interfaces.IdempotencyPutIfAbsent:
			record := typed.Record
			key := record.IdempotencyKey
			if existing, ok := s.idempotency[key]; ok && !existing.Expired(s.now()) {
				return domain.ErrIdempotencyKeyExists
			}
			if _, ok := stagedIdempotency[key]; ok {
				return domain.ErrIdempotencyKeyExists
			}

			if typed.NewBalance != nil {
				record.Result.NewBalance = *typed.NewBalance
			}
			stagedIdempotency[key] = record
		default:
			return fmt.Errorf("unsupported atomic operation %T", op)
		}
	}

	for accountID, record := range stagedBalances {
		s.balances[accountID] = record
	}
	for key, record := range stagedIdempotency {
		s.idempotency[key] = record
	}

	return nil
}

// SetBalance overwrites the stored balance text for an account. Test seam for
// exercising corrupt-record handling.
func (s *Store) SetBalance(accountID, balance string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances[accountID] = domain.BalanceRecord{
		AccountID: accountID,
		Balance:   balance,
		UpdatedAt: s.now(),
	}
}

// SetClock replaces the store's time source. Test seam for expiry behaviour.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.now = now
}
