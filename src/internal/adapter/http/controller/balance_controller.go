package controller

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/api-sage/wallet-transaction-processor/src/internal/adapter/http/models"
	"github.com/api-sage/wallet-transaction-processor/src/internal/commons"
	"github.com/api-sage/wallet-transaction-processor/src/internal/usecase/service_interfaces"
)

type BalanceController struct {
	service service_interfaces.BalanceService
}

func NewBalanceController(service service_interfaces.BalanceService) *BalanceController {
	return &BalanceController{service: service}
}

func (c *BalanceController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	handler := http.HandlerFunc(c.getBalance)
	if authMiddleware != nil {
		handler = authMiddleware(handler).ServeHTTP
	}
	mux.Handle("/balances", http.HandlerFunc(handler))
}

func (c *BalanceController) getBalance(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.BalanceResponse]("method not allowed"))
		return
	}

	accountID := r.URL.Query().Get("accountId")
	logRequest(r, nil)

	response, err := c.service.GetBalance(r.Context(), accountID)
	if err != nil {
		status := statusForError(err)
		logError(r, err, nil)
		writeJSON(w, status, response)
		return
	}

	logResponse(r, http.StatusOK, response, start)
	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
