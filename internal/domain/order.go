package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StandingOrder is a template for automatically generated recurring
// transactions. DtNextUTC is the next unexecuted occurrence; nil means the
// order is disabled or naturally expired, which is irreversible.
type StandingOrder struct {
	ID           int64
	Name         string
	UserFromID   int64
	UserToID     int64
	Amount       decimal.Decimal
	Note         *string
	RRule        string
	DtNextUTC    *time.Time
	DtCreatedUTC time.Time
}

// Active reports whether the order still has occurrences to execute.
func (o *StandingOrder) Active() bool {
	return o.DtNextUTC != nil
}

// Validate checks order invariants. Unlike Pay, which flips direction on a
// negative amount, standing orders represent a fixed recurring direction and
// require a strictly positive amount.
func (o *StandingOrder) Validate() error {
	if o.UserFromID == o.UserToID {
		return fmt.Errorf("%w: recipient must not be the same as the sender", ErrValidation)
	}
	if !o.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	}
	return nil
}
