package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/api-sage/wallet-transaction-processor/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/wallet-transaction-processor/src/internal/domain"
	"github.com/shopspring/decimal"
)

func testRecord(key string) domain.IdempotencyRecord {
	now := time.Now().UTC()
	return domain.IdempotencyRecord{
		IdempotencyKey: key,
		AccountID:      "u1",
		Amount:         decimal.NewFromInt(50),
		Type:           domain.TransactionTypeCredit,
		Result: domain.TransactionResult{
			AccountID:     "u1",
			TransactionID: "t-" + key,
			Type:          domain.TransactionTypeCredit,
			Amount:        decimal.NewFromInt(50),
		},
		CreatedAt: now,
		ExpiresAt: now.Add(domain.IdempotencyRetention),
	}
}

func TestCombinedAtomicAllOrNothing(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.PutIfAbsent(ctx, repo_interfaces.IdempotencyPutIfAbsent{Record: testRecord("k1")}); err != nil {
		t.Fatalf("seed idempotency record: %v", err)
	}

	// The duplicate put must abort the whole unit, including the balance
	// mutation listed before it.
	err := store.CombinedAtomic(ctx,
		repo_interfaces.ConditionalBalanceUpdate{
			AccountID: "u1",
			Delta:     decimal.NewFromInt(50),
			Starting:  decimal.NewFromInt(100),
		},
		repo_interfaces.IdempotencyPutIfAbsent{Record: testRecord("k1")},
	)
	if !errors.Is(err, domain.ErrIdempotencyKeyExists) {
		t.Fatalf("expected ErrIdempotencyKeyExists, got %v", err)
	}

	if _, err := NewBalanceRepository(store).Get(ctx, "u1"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected no balance record after aborted unit, got %v", err)
	}
}

func TestConditionalUpdateEnforcesNonNegative(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.ConditionalUpdate(ctx, repo_interfaces.ConditionalBalanceUpdate{
		AccountID:          "u1",
		Delta:              decimal.NewFromInt(-150),
		Starting:           decimal.NewFromInt(100),
		EnforceNonNegative: true,
	})
	if !errors.Is(err, domain.ErrBalanceConditionFailed) {
		t.Fatalf("expected ErrBalanceConditionFailed, got %v", err)
	}

	if _, err := NewBalanceRepository(store).Get(ctx, "u1"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected no balance record after failed condition, got %v", err)
	}
}

func TestConditionalUpdateBindsNewBalance(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	var newBalance decimal.Decimal
	err := store.ConditionalUpdate(ctx, repo_interfaces.ConditionalBalanceUpdate{
		AccountID:  "u1",
		Delta:      decimal.NewFromInt(-30),
		Starting:   decimal.NewFromInt(100),
		NewBalance: &newBalance,
	})
	if err != nil {
		t.Fatalf("conditional update: %v", err)
	}
	if newBalance.String() != "70" {
		t.Fatalf("expected bound balance 70, got %s", newBalance.String())
	}
}

func TestPutIfAbsentOverwritesExpiredRecord(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.PutIfAbsent(ctx, repo_interfaces.IdempotencyPutIfAbsent{Record: testRecord("k1")}); err != nil {
		t.Fatalf("seed idempotency record: %v", err)
	}

	store.SetClock(func() time.Time { return time.Now().Add(domain.IdempotencyRetention + time.Minute) })

	replacement := testRecord("k1")
	replacement.Result.TransactionID = "t-replacement"
	replacement.ExpiresAt = time.Now().Add(2 * domain.IdempotencyRetention)
	if err := store.PutIfAbsent(ctx, repo_interfaces.IdempotencyPutIfAbsent{Record: replacement}); err != nil {
		t.Fatalf("expected expired record to be replaced, got %v", err)
	}
}

func TestDeleteExpiredReclaimsOnlyExpired(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	expired := testRecord("old")
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	if err := store.PutIfAbsent(ctx, repo_interfaces.IdempotencyPutIfAbsent{Record: expired}); err != nil {
		t.Fatalf("seed expired record: %v", err)
	}
	if err := store.PutIfAbsent(ctx, repo_interfaces.IdempotencyPutIfAbsent{Record: testRecord("live")}); err != nil {
		t.Fatalf("seed live record: %v", err)
	}

	repo := NewIdempotencyRepository(store)
	removed, err := repo.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 reclaimed record, got %d", removed)
	}

	if _, err := repo.Get(ctx, "live"); err != nil {
		t.Fatalf("expected live record to survive, got %v", err)
	}
}
