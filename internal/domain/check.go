package domain

import "github.com/shopspring/decimal"

// BalanceCheck compares a user's stored balance against the balance
// recomputed from the transaction table.
type BalanceCheck struct {
	UserID   int64
	UserName string
	Stored   decimal.Decimal
	Computed decimal.Decimal
}

// Matches reports whether the cached balance equals the recomputed one.
func (c BalanceCheck) Matches() bool {
	return c.Stored.Equal(c.Computed)
}
