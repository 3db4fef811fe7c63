package models

import (
	"errors"
	"strings"
)

// TransactRequest is the transport-level shape of a transaction submission.
// Amount stays caller-supplied text; the engine parses it.
type TransactRequest struct {
	IdempotencyKey string `json:"idempotencyKey"`
	AccountID      string `json:"accountId"`
	Amount         string `json:"amount"`
	Type           string `json:"type"`
}

func (r TransactRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.IdempotencyKey) == "" {
		errs = append(errs, "idempotencyKey is required")
	}
	if strings.TrimSpace(r.AccountID) == "" {
		errs = append(errs, "accountId is required")
	}
	if strings.TrimSpace(r.Amount) == "" {
		errs = append(errs, "amount is required")
	}
	if strings.TrimSpace(r.Type) == "" {
		errs = append(errs, "type is required")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

type TransactResponse struct {
	AccountID     string `json:"accountId"`
	NewBalance    string `json:"newBalance"`
	TransactionID string `json:"transactionId"`
	Type          string `json:"type"`
	Amount        string `json:"amount"`
}
