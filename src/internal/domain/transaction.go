package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

func ParseTransactionType(raw string) (TransactionType, error) {
	switch TransactionType(strings.TrimSpace(raw)) {
	case TransactionTypeCredit:
		return TransactionTypeCredit, nil
	case TransactionTypeDebit:
		return TransactionTypeDebit, nil
	default:
		return "", fmt.Errorf("%w, got %q", ErrInvalidType, raw)
	}
}

// TransactionResult is the committed outcome of a transaction. It is stored
// inside the idempotency record and returned unchanged to every caller that
// submits the same idempotency key.
type TransactionResult struct {
	AccountID     string          `json:"accountId"`
	NewBalance    decimal.Decimal `json:"newBalance"`
	TransactionID string          `json:"transactionId"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
}
