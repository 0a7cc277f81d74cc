package domain

// Currency is an ISO 4217 currency. A small default set is seeded at schema
// setup; any other currency must exist before a transaction references it.
type Currency struct {
	ID      int64
	ISO4217 string
	Name    *string
}

// DefaultCurrencies are seeded idempotently by the migrator.
var DefaultCurrencies = map[string]string{
	"USD": "United States dollar",
	"EUR": "Euro",
}
