package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/api-sage/wallet-transaction-processor/src/internal/adapter/http/models"
	"github.com/api-sage/wallet-transaction-processor/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/wallet-transaction-processor/src/internal/commons"
	"github.com/api-sage/wallet-transaction-processor/src/internal/domain"
	"github.com/api-sage/wallet-transaction-processor/src/internal/logger"
	"github.com/shopspring/decimal"
)

type BalanceService struct {
	balanceRepo     repo_interfaces.BalanceRepository
	startingBalance decimal.Decimal
}

func NewBalanceService(balanceRepo repo_interfaces.BalanceRepository, startingBalance decimal.Decimal) *BalanceService {
	return &BalanceService{
		balanceRepo:     balanceRepo,
		startingBalance: startingBalance,
	}
}

// GetBalance returns the current balance for an account. An account with no
// record reports the starting balance; no record is created by reading.
func (s *BalanceService) GetBalance(ctx context.Context, accountID string) (commons.Response[models.BalanceResponse], error) {
	logger.Info("balance service get balance request", logger.Fields{
		"accountId": accountID,
	})

	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		err := fmt.Errorf("%w: accountId must be a non-empty string", domain.ErrInvalidArgument)
		return commons.ErrorResponse[models.BalanceResponse]("validation failed", err.Error()), err
	}

	record, err := s.balanceRepo.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			response := models.BalanceResponse{
				AccountID: accountID,
				Balance:   s.startingBalance.String(),
			}
			return commons.SuccessResponse("balance retrieved successfully", response), nil
		}

		wrappedErr := fmt.Errorf("%w: get balance for account %q: %w", domain.ErrTransactionFailed, accountID, err)
		logger.Error("balance service get balance repository failed", wrappedErr, logger.Fields{
			"accountId": accountID,
		})
		return commons.ErrorResponse[models.BalanceResponse]("failed to get balance", "Unable to fetch balance right now"), wrappedErr
	}

	balance, parseErr := decimal.NewFromString(strings.TrimSpace(record.Balance))
	if parseErr != nil {
		err := fmt.Errorf("%w for account %q", domain.ErrCorruptRecord, accountID)
		logger.Error("balance service get balance corrupt record", err, logger.Fields{
			"accountId": accountID,
		})
		return commons.ErrorResponse[models.BalanceResponse]("failed to get balance", err.Error()), err
	}

	response := models.BalanceResponse{
		AccountID: record.AccountID,
		Balance:   balance.String(),
	}

	logger.Info("balance service get balance success", logger.Fields{
		"accountId": response.AccountID,
		"balance":   response.Balance,
	})

	return commons.SuccessResponse("balance retrieved successfully", response), nil
}
