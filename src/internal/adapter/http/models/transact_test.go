package models

import (
	"strings"
	"testing"
)

func TestTransactRequestValidate(t *testing.T) {
	req := TransactRequest{
		IdempotencyKey: "k1",
		AccountID:      "u1",
		Amount:         "10.50",
		Type:           "credit",
	}

	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestTransactRequestValidateReportsAllMissingFields(t *testing.T) {
	err := TransactRequest{}.Validate()
	if err == nil {
		t.Fatal("expected validation error for empty request")
	}

	for _, field := range []string{"idempotencyKey", "accountId", "amount", "type"} {
		if !strings.Contains(err.Error(), field) {
			t.Fatalf("expected error to mention %s, got %q", field, err.Error())
		}
	}
}
