package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an immutable financial event: ConvertedAmount moved from
// UserFrom to UserTo, expressed in the system base currency. UserCreated is
// who initiated it and may differ from UserFrom for automated entries.
type Transaction struct {
	ID                 int64
	UserFromID         int64
	UserToID           int64
	UserCreatedID      int64
	OriginalAmount     *decimal.Decimal
	OriginalCurrencyID *int64
	ConvertedAmount    decimal.Decimal
	StandingOrderID    *int64
	AgentID            *int64
	Note               *string
	DtCreatedUTC       time.Time
	DtDueUTC           time.Time
}

// Validate checks the invariants the schema also enforces. It runs before any
// write so the caller gets a typed error instead of a constraint failure.
func (t *Transaction) Validate() error {
	if t.UserFromID == t.UserToID {
		return fmt.Errorf("%w: sender and recipient must differ", ErrValidation)
	}
	if t.ConvertedAmount.IsNegative() {
		return fmt.Errorf("%w: converted amount must not be negative", ErrValidation)
	}
	if (t.OriginalAmount == nil) != (t.OriginalCurrencyID == nil) {
		return fmt.Errorf("%w: original amount and original currency must both be set or both be absent", ErrValidation)
	}
	if t.OriginalAmount != nil && t.OriginalAmount.IsNegative() {
		return fmt.Errorf("%w: original amount must not be negative", ErrValidation)
	}
	if t.DtDueUTC.After(t.DtCreatedUTC) {
		return fmt.Errorf("%w: due date must not be in the future", ErrValidation)
	}
	return nil
}
