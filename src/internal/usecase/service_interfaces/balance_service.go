package service_interfaces

import (
	"context"

	"github.com/api-sage/wallet-transaction-processor/src/internal/adapter/http/models"
	"github.com/api-sage/wallet-transaction-processor/src/internal/commons"
)

type BalanceService interface {
	GetBalance(ctx context.Context, accountID string) (commons.Response[models.BalanceResponse], error)
}
