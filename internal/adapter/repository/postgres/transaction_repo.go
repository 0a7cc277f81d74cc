package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpay/mpay/internal/domain"
	"github.com/mpay/mpay/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository. Inserts and
// deletes fire the balance triggers inside the caller's unit of work.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create inserts a new transaction and fills in its generated id.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	query := `
		INSERT INTO transactions (
			user_from_id, user_to_id, user_created_id,
			original_amount, original_currency_id, converted_amount,
			standing_order_id, agent_id, note,
			dt_created_utc, dt_due_utc
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := pick(r.pool, tx).QueryRow(ctx, query,
		txn.UserFromID,
		txn.UserToID,
		txn.UserCreatedID,
		txn.OriginalAmount,
		txn.OriginalCurrencyID,
		txn.ConvertedAmount,
		txn.StandingOrderID,
		txn.AgentID,
		txn.Note,
		txn.DtCreatedUTC,
		txn.DtDueUTC,
	).Scan(&txn.ID)
	if err != nil {
		return fmt.Errorf("create transaction: %w", mapError(err))
	}

	return nil
}

// Delete removes a transaction. The delete trigger reverses its balance
// effect.
func (r *TransactionRepository) Delete(ctx context.Context, tx usecase.Transaction, id int64) error {
	tag, err := pick(r.pool, tx).Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// ListByUser returns every transaction the user participates in, newest due
// first, joined with names and tag lists.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.TransactionRecord, error) {
	query := `
		SELECT
			t.id,
			u_from.name,
			u_to.name,
			u_created.name,
			t.converted_amount,
			t.original_amount,
			cur.iso_4217,
			ord.name,
			ag.name,
			t.note,
			t.dt_created_utc,
			t.dt_due_utc,
			COALESCE(array_agg(tg.name ORDER BY tg.name) FILTER (WHERE tg.id IS NOT NULL), '{}')
		FROM transactions t
		JOIN users u_from ON u_from.id = t.user_from_id
		JOIN users u_to ON u_to.id = t.user_to_id
		JOIN users u_created ON u_created.id = t.user_created_id
		LEFT JOIN currencies cur ON cur.id = t.original_currency_id
		LEFT JOIN standing_orders ord ON ord.id = t.standing_order_id
		LEFT JOIN agents ag ON ag.id = t.agent_id
		LEFT JOIN transactions_tags tt ON tt.transaction_id = t.id
		LEFT JOIN tags tg ON tg.id = tt.tag_id
		WHERE t.user_from_id = $1 OR t.user_to_id = $1
		GROUP BY t.id, u_from.name, u_to.name, u_created.name, cur.iso_4217, ord.name, ag.name
		ORDER BY t.dt_due_utc DESC, t.id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.TransactionRecord
	for rows.Next() {
		var rec domain.TransactionRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.UserFrom,
			&rec.UserTo,
			&rec.UserCreated,
			&rec.ConvertedAmount,
			&rec.OriginalAmount,
			&rec.OriginalCurrency,
			&rec.StandingOrder,
			&rec.Agent,
			&rec.Note,
			&rec.DtCreatedUTC,
			&rec.DtDueUTC,
			&rec.Tags,
		); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}
