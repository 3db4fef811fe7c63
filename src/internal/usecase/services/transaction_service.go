package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/wallet-transaction-processor/src/internal/adapter/http/models"
	"github.com/api-sage/wallet-transaction-processor/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/wallet-transaction-processor/src/internal/commons"
	"github.com/api-sage/wallet-transaction-processor/src/internal/domain"
	"github.com/api-sage/wallet-transaction-processor/src/internal/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionService applies credit and debit transactions exactly once. All
// coordination lives in the atomic guarantees of the backing store; the
// service itself is stateless and safe to call from any number of goroutines
// or processes.
type TransactionService struct {
	idempotencyRepo repo_interfaces.IdempotencyRepository
	atomicRepo      repo_interfaces.AtomicRepository
	startingBalance decimal.Decimal
	retention       time.Duration
}

func NewTransactionService(
	idempotencyRepo repo_interfaces.IdempotencyRepository,
	atomicRepo repo_interfaces.AtomicRepository,
	startingBalance decimal.Decimal,
	retention time.Duration,
) *TransactionService {
	return &TransactionService{
		idempotencyRepo: idempotencyRepo,
		atomicRepo:      atomicRepo,
		startingBalance: startingBalance,
		retention:       retention,
	}
}

// Transact validates the request, replays a previously committed result for
// the same idempotency key, and otherwise commits the balance mutation and
// the idempotency record as one all-or-nothing unit. Re-submitting with the
// same key is always safe and returns the original result.
func (s *TransactionService) Transact(ctx context.Context, req models.TransactRequest) (commons.Response[models.TransactResponse], error) {
	logger.Info("transaction service transact request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	idempotencyKey := strings.TrimSpace(req.IdempotencyKey)
	if idempotencyKey == "" {
		err := fmt.Errorf("%w: idempotencyKey must be a non-empty string", domain.ErrInvalidArgument)
		return commons.ErrorResponse[models.TransactResponse]("validation failed", err.Error()), err
	}

	accountID := strings.TrimSpace(req.AccountID)
	if accountID == "" {
		err := fmt.Errorf("%w: accountId must be a non-empty string", domain.ErrInvalidArgument)
		return commons.ErrorResponse[models.TransactResponse]("validation failed", err.Error()), err
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return commons.ErrorResponse[models.TransactResponse]("validation failed", err.Error()), err
	}

	transactionType, err := domain.ParseTransactionType(req.Type)
	if err != nil {
		return commons.ErrorResponse[models.TransactResponse]("validation failed", err.Error()), err
	}

	// Step 1: a key seen before replays the stored result with no mutation
	// and no new transactionId.
	existing, err := s.idempotencyRepo.Get(ctx, idempotencyKey)
	if err == nil {
		logger.Info("transaction service replayed existing transaction", logger.Fields{
			"idempotencyKey": idempotencyKey,
			"transactionId":  existing.Result.TransactionID,
		})
		return commons.SuccessResponse("transaction already processed", mapResultToResponse(existing.Result)), nil
	}
	if !errors.Is(err, domain.ErrRecordNotFound) {
		wrappedErr := fmt.Errorf("%w: check idempotency for key %q: %w", domain.ErrTransactionFailed, idempotencyKey, err)
		logger.Error("transaction service idempotency check failed", wrappedErr, logger.Fields{
			"idempotencyKey": idempotencyKey,
		})
		return commons.ErrorResponse[models.TransactResponse]("failed to process transaction", "Unable to process transaction right now"), wrappedErr
	}

	// Step 2: one atomic unit combining the conditional balance mutation and
	// the idempotency insert. Both apply or neither does.
	delta := amount
	if transactionType == domain.TransactionTypeDebit {
		delta = amount.Neg()
	}

	now := time.Now().UTC()
	var newBalance decimal.Decimal
	record := domain.IdempotencyRecord{
		IdempotencyKey: idempotencyKey,
		AccountID:      accountID,
		Amount:         amount,
		Type:           transactionType,
		Result: domain.TransactionResult{
			AccountID:     accountID,
			TransactionID: uuid.NewString(),
			Type:          transactionType,
			Amount:        amount,
		},
		CreatedAt: now,
		ExpiresAt: now.Add(s.retention),
	}

	commitErr := s.atomicRepo.CombinedAtomic(
		ctx,
		repo_interfaces.ConditionalBalanceUpdate{
			AccountID:          accountID,
			Delta:              delta,
			Starting:           s.startingBalance,
			EnforceNonNegative: transactionType == domain.TransactionTypeDebit,
			NewBalance:         &newBalance,
		},
		repo_interfaces.IdempotencyPutIfAbsent{
			Record:     record,
			NewBalance: &newBalance,
		},
	)

	// Step 3: resolve the two abort causes; anything else surfaces as a
	// transaction failure with enough context to retry the same key safely.
	switch {
	case commitErr == nil:
		result := record.Result
		result.NewBalance = newBalance

		logger.Info("transaction service transact success", logger.Fields{
			"idempotencyKey": idempotencyKey,
			"accountId":      accountID,
			"transactionId":  result.TransactionID,
			"type":           string(result.Type),
			"newBalance":     result.NewBalance.String(),
		})
		return commons.SuccessResponse("transaction processed successfully", mapResultToResponse(result)), nil

	case errors.Is(commitErr, domain.ErrBalanceConditionFailed):
		err := fmt.Errorf("%w: debit of %s for account %q", domain.ErrInsufficientBalance, amount.String(), accountID)
		logger.Info("transaction service insufficient balance", logger.Fields{
			"idempotencyKey": idempotencyKey,
			"accountId":      accountID,
			"amount":         amount.String(),
		})
		return commons.ErrorResponse[models.TransactResponse]("Insufficient balance", err.Error()), err

	case errors.Is(commitErr, domain.ErrIdempotencyKeyExists):
		// A concurrent request with the same key won the commit race. One
		// re-read closes the check-then-act window; no retry loop.
		winner, readErr := s.idempotencyRepo.Get(ctx, idempotencyKey)
		if readErr != nil {
			wrappedErr := fmt.Errorf("%w: resolve idempotency conflict for key %q: %w", domain.ErrTransactionFailed, idempotencyKey, readErr)
			logger.Error("transaction service conflict resolution failed", wrappedErr, logger.Fields{
				"idempotencyKey": idempotencyKey,
			})
			return commons.ErrorResponse[models.TransactResponse]("failed to process transaction", "Unable to process transaction right now"), wrappedErr
		}

		logger.Info("transaction service replayed concurrent winner", logger.Fields{
			"idempotencyKey": idempotencyKey,
			"transactionId":  winner.Result.TransactionID,
		})
		return commons.SuccessResponse("transaction already processed", mapResultToResponse(winner.Result)), nil

	default:
		wrappedErr := fmt.Errorf("%w: commit for key %q account %q: %w", domain.ErrTransactionFailed, idempotencyKey, accountID, commitErr)
		logger.Error("transaction service commit failed", wrappedErr, logger.Fields{
			"idempotencyKey": idempotencyKey,
			"accountId":      accountID,
		})
		return commons.ErrorResponse[models.TransactResponse]("failed to process transaction", "Unable to process transaction right now"), wrappedErr
	}
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w, got %q", domain.ErrInvalidAmount, raw)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, fmt.Errorf("%w, got %s", domain.ErrInvalidAmount, amount.String())
	}

	return amount, nil
}

func mapResultToResponse(result domain.TransactionResult) models.TransactResponse {
	return models.TransactResponse{
		AccountID:     result.AccountID,
		NewBalance:    result.NewBalance.String(),
		TransactionID: result.TransactionID,
		Type:          string(result.Type),
		Amount:        result.Amount.String(),
	}
}
