package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Read-only projections exposed to tabular export consumers. Formatting
// (JSON/CSV/plain text) is the caller's business.

// TransactionRecord is a transaction joined with user, currency and agent
// names.
type TransactionRecord struct {
	ID               int64
	UserFrom         string
	UserTo           string
	UserCreated      string
	ConvertedAmount  decimal.Decimal
	OriginalAmount   *decimal.Decimal
	OriginalCurrency *string
	StandingOrder    *string
	Agent            *string
	Note             *string
	DtCreatedUTC     time.Time
	DtDueUTC         time.Time
	Tags             []string
}

// OrderRecord is a standing order joined with user names.
type OrderRecord struct {
	ID           int64
	Name         string
	UserFrom     string
	UserTo       string
	Amount       decimal.Decimal
	Note         *string
	RRule        string
	DtNextUTC    *time.Time
	DtCreatedUTC time.Time
}

// TagRecord is a tag with its computed hierarchical name.
type TagRecord struct {
	ID               int64
	Name             string
	HierarchicalName string
	Description      *string
	ParentID         *int64
}
