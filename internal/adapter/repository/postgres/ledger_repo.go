package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mpay/mpay/internal/domain"
)

// LedgerRepository implements usecase.LedgerRepository, the read-back queries
// behind the consistency check.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// foreignKeyScans enumerates every reference of the schema. The constraints
// normally make orphans impossible; the scan catches manual meddling and
// restores done with constraints disabled.
var foreignKeyScans = []struct {
	description string
	query       string
}{
	{
		"transactions referencing a missing sender",
		`SELECT count(*) FROM transactions t LEFT JOIN users u ON u.id = t.user_from_id WHERE u.id IS NULL`,
	},
	{
		"transactions referencing a missing recipient",
		`SELECT count(*) FROM transactions t LEFT JOIN users u ON u.id = t.user_to_id WHERE u.id IS NULL`,
	},
	{
		"transactions referencing a missing creator",
		`SELECT count(*) FROM transactions t LEFT JOIN users u ON u.id = t.user_created_id WHERE u.id IS NULL`,
	},
	{
		"transactions referencing a missing currency",
		`SELECT count(*) FROM transactions t LEFT JOIN currencies c ON c.id = t.original_currency_id
		 WHERE t.original_currency_id IS NOT NULL AND c.id IS NULL`,
	},
	{
		"transactions referencing a missing standing order",
		`SELECT count(*) FROM transactions t LEFT JOIN standing_orders o ON o.id = t.standing_order_id
		 WHERE t.standing_order_id IS NOT NULL AND o.id IS NULL`,
	},
	{
		"transactions referencing a missing agent",
		`SELECT count(*) FROM transactions t LEFT JOIN agents a ON a.id = t.agent_id
		 WHERE t.agent_id IS NOT NULL AND a.id IS NULL`,
	},
	{
		"tag associations referencing a missing transaction",
		`SELECT count(*) FROM transactions_tags tt LEFT JOIN transactions t ON t.id = tt.transaction_id WHERE t.id IS NULL`,
	},
	{
		"tag associations referencing a missing tag",
		`SELECT count(*) FROM transactions_tags tt LEFT JOIN tags tg ON tg.id = tt.tag_id WHERE tg.id IS NULL`,
	},
	{
		"tags referencing a missing parent",
		`SELECT count(*) FROM tags t LEFT JOIN tags p ON p.id = t.parent_id
		 WHERE t.parent_id IS NOT NULL AND p.id IS NULL`,
	},
	{
		"standing orders referencing a missing sender",
		`SELECT count(*) FROM standing_orders o LEFT JOIN users u ON u.id = o.user_from_id WHERE u.id IS NULL`,
	},
	{
		"standing orders referencing a missing recipient",
		`SELECT count(*) FROM standing_orders o LEFT JOIN users u ON u.id = o.user_to_id WHERE u.id IS NULL`,
	},
}

// OrphanedRows scans every foreign key of the schema for dangling references.
func (r *LedgerRepository) OrphanedRows(ctx context.Context) ([]string, error) {
	var violations []string
	for _, scan := range foreignKeyScans {
		var count int64
		if err := r.pool.QueryRow(ctx, scan.query).Scan(&count); err != nil {
			return nil, fmt.Errorf("orphan scan: %w", err)
		}
		if count > 0 {
			violations = append(violations, fmt.Sprintf("%d %s", count, scan.description))
		}
	}

	return violations, nil
}

// SumBalances returns the sum of all user balances and the user count.
func (r *LedgerRepository) SumBalances(ctx context.Context) (decimal.Decimal, int64, error) {
	var (
		sum   decimal.Decimal
		count int64
	)
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(balance), 0), COUNT(*) FROM users`).Scan(&sum, &count)
	if err != nil {
		return decimal.Zero, 0, err
	}

	return sum, count, nil
}

// BalanceChecks recomputes every user's balance from the transaction table,
// independently of the cached column.
func (r *LedgerRepository) BalanceChecks(ctx context.Context) ([]domain.BalanceCheck, error) {
	query := `
		SELECT
			u.id,
			u.name,
			u.balance,
			COALESCE((SELECT SUM(converted_amount) FROM transactions WHERE user_to_id = u.id), 0)
			- COALESCE((SELECT SUM(converted_amount) FROM transactions WHERE user_from_id = u.id), 0)
		FROM users u
		ORDER BY u.id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []domain.BalanceCheck
	for rows.Next() {
		var c domain.BalanceCheck
		if err := rows.Scan(&c.UserID, &c.UserName, &c.Stored, &c.Computed); err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}

	return checks, rows.Err()
}
