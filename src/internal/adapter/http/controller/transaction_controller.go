package controller

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/api-sage/wallet-transaction-processor/src/internal/adapter/http/models"
	"github.com/api-sage/wallet-transaction-processor/src/internal/commons"
	"github.com/api-sage/wallet-transaction-processor/src/internal/usecase/service_interfaces"
)

type TransactionController struct {
	service service_interfaces.TransactionService
}

func NewTransactionController(service service_interfaces.TransactionService) *TransactionController {
	return &TransactionController{service: service}
}

func (c *TransactionController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	handler := http.HandlerFunc(c.transact)
	if authMiddleware != nil {
		handler = authMiddleware(handler).ServeHTTP
	}
	mux.Handle("/transactions", http.HandlerFunc(handler))
}

func (c *TransactionController) transact(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.TransactResponse]("method not allowed"))
		return
	}

	var req models.TransactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.TransactResponse]("invalid request body", err.Error()))
		return
	}

	logRequest(r, req)

	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.TransactResponse]("validation failed", err.Error()))
		return
	}

	// Duplicate submissions are not an error: a replayed result comes back as
	// a plain success carrying the original transactionId.
	response, err := c.service.Transact(r.Context(), req)
	if err != nil {
		status := statusForError(err)
		logError(r, err, nil)
		writeJSON(w, status, response)
		return
	}

	logResponse(r, http.StatusOK, response, start)
	writeJSON(w, http.StatusOK, response)
}
