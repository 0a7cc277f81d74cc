package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpay/mpay/internal/domain"
	"github.com/mpay/mpay/internal/usecase"
)

// CurrencyRepository implements usecase.CurrencyRepository.
type CurrencyRepository struct {
	pool *pgxpool.Pool
}

// NewCurrencyRepository creates a new CurrencyRepository.
func NewCurrencyRepository(pool *pgxpool.Pool) *CurrencyRepository {
	return &CurrencyRepository{pool: pool}
}

// GetByCode retrieves a currency by its ISO 4217 code.
func (r *CurrencyRepository) GetByCode(ctx context.Context, tx usecase.Transaction, code string) (*domain.Currency, error) {
	query := `
		SELECT id, iso_4217, name
		FROM currencies
		WHERE iso_4217 = $1
	`

	var currency domain.Currency
	err := pick(r.pool, tx).QueryRow(ctx, query, code).Scan(&currency.ID, &currency.ISO4217, &currency.Name)
	if err != nil {
		return nil, mapError(err)
	}

	return &currency, nil
}
