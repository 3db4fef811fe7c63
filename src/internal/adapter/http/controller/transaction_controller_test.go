package controller_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/api-sage/wallet-transaction-processor/src/internal/adapter/http/controller"
	"github.com/api-sage/wallet-transaction-processor/src/internal/adapter/http/models"
	"github.com/api-sage/wallet-transaction-processor/src/internal/adapter/http/router"
	"github.com/api-sage/wallet-transaction-processor/src/internal/adapter/repository/memory"
	"github.com/api-sage/wallet-transaction-processor/src/internal/commons"
	"github.com/api-sage/wallet-transaction-processor/src/internal/domain"
	"github.com/api-sage/wallet-transaction-processor/src/internal/usecase/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()

	store := memory.NewStore()
	starting := decimal.NewFromInt(100)
	balanceService := services.NewBalanceService(memory.NewBalanceRepository(store), starting)
	transactionService := services.NewTransactionService(
		memory.NewIdempotencyRepository(store),
		store,
		starting,
		domain.IdempotencyRetention,
	)

	return router.New(
		controller.NewBalanceController(balanceService),
		controller.NewTransactionController(transactionService),
		nil,
	)
}

func postTransaction(t *testing.T, mux *http.ServeMux, req models.TransactRequest) (*httptest.ResponseRecorder, commons.Response[models.TransactResponse]) {
	t.Helper()

	body, err := json.Marshal(req)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	httpReq := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewReader(body))
	mux.ServeHTTP(rr, httpReq)

	var response commons.Response[models.TransactResponse]
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))

	return rr, response
}

func TestTransactionEndpointCreditAndReplay(t *testing.T) {
	mux := newTestMux(t)

	req := models.TransactRequest{
		IdempotencyKey: "k1",
		AccountID:      "u1",
		Amount:         "50",
		Type:           "credit",
	}

	rr, first := postTransaction(t, mux, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, first.Data)
	assert.Equal(t, "150", first.Data.NewBalance)

	rr, replay := postTransaction(t, mux, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, replay.Data)
	assert.Equal(t, first.Data.TransactionID, replay.Data.TransactionID)
	assert.Equal(t, "150", replay.Data.NewBalance)
}

func TestTransactionEndpointValidation(t *testing.T) {
	mux := newTestMux(t)

	rr, response := postTransaction(t, mux, models.TransactRequest{
		IdempotencyKey: "k1",
		AccountID:      "u1",
		Amount:         "abc",
		Type:           "credit",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, response.Success)
}

func TestTransactionEndpointInsufficientBalance(t *testing.T) {
	mux := newTestMux(t)

	rr, response := postTransaction(t, mux, models.TransactRequest{
		IdempotencyKey: "k3",
		AccountID:      "u3",
		Amount:         "150",
		Type:           "debit",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.False(t, response.Success)
	assert.Equal(t, "Insufficient balance", response.Message)
}

func TestBalanceEndpoint(t *testing.T) {
	mux := newTestMux(t)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/balances?accountId=u1", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var response commons.Response[models.BalanceResponse]
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	require.NotNil(t, response.Data)
	assert.Equal(t, "100", response.Data.Balance)
}

func TestBalanceEndpointRequiresAccountID(t *testing.T) {
	mux := newTestMux(t)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/balances", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
