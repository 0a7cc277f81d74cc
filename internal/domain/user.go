package domain

import "github.com/shopspring/decimal"

// User is a ledger participant. Balance is a cached aggregate kept equal to
// the signed sum of transactions referencing the user; the database triggers
// installed by the initial migration maintain it on every transaction write.
type User struct {
	ID      int64
	Name    string
	Balance decimal.Decimal
}
