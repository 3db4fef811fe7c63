package domain

import "time"

// BalanceRecord holds the current balance for an account. Balance is kept as
// the stored text and parsed with decimal.NewFromString at use sites, so a
// corrupted stored value surfaces at read time instead of silently scanning
// to zero.
type BalanceRecord struct {
	AccountID string
	Balance   string
	UpdatedAt time.Time
}
