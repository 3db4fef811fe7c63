package service_interfaces

import (
	"context"

	"github.com/api-sage/wallet-transaction-processor/src/internal/adapter/http/models"
	"github.com/api-sage/wallet-transaction-processor/src/internal/commons"
)

type TransactionService interface {
	Transact(ctx context.Context, req models.TransactRequest) (commons.Response[models.TransactResponse], error)
}
