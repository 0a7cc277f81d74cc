package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpay/mpay/internal/domain"
	"github.com/mpay/mpay/internal/usecase"
)

// OrderRepository implements usecase.OrderRepository.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts a new standing order and fills in its generated id.
func (r *OrderRepository) Create(ctx context.Context, tx usecase.Transaction, order *domain.StandingOrder) error {
	query := `
		INSERT INTO standing_orders (
			name, user_from_id, user_to_id, amount, note,
			rrule_str, dt_next_utc, dt_created_utc
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := pick(r.pool, tx).QueryRow(ctx, query,
		order.Name,
		order.UserFromID,
		order.UserToID,
		order.Amount,
		order.Note,
		order.RRule,
		order.DtNextUTC,
		order.DtCreatedUTC,
	).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("create standing order: %w", mapError(err))
	}

	return nil
}

// GetByNameAndSender retrieves a standing order by its (name, sender) key.
func (r *OrderRepository) GetByNameAndSender(ctx context.Context, tx usecase.Transaction, name string, userFromID int64) (*domain.StandingOrder, error) {
	query := `
		SELECT id, name, user_from_id, user_to_id, amount, note,
		       rrule_str, dt_next_utc, dt_created_utc
		FROM standing_orders
		WHERE name = $1 AND user_from_id = $2
	`

	var order domain.StandingOrder
	err := pick(r.pool, tx).QueryRow(ctx, query, name, userFromID).Scan(
		&order.ID,
		&order.Name,
		&order.UserFromID,
		&order.UserToID,
		&order.Amount,
		&order.Note,
		&order.RRule,
		&order.DtNextUTC,
		&order.DtCreatedUTC,
	)
	if err != nil {
		return nil, mapError(err)
	}

	return &order, nil
}

// ListDueIDs returns ids of active orders with dt_next_utc strictly before
// now. The rows themselves are read later under a lock.
func (r *OrderRepository) ListDueIDs(ctx context.Context, now time.Time) ([]int64, error) {
	query := `
		SELECT id
		FROM standing_orders
		WHERE dt_next_utc IS NOT NULL AND dt_next_utc < $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// GetByIDForUpdate retrieves a standing order with a FOR UPDATE lock held
// until the enclosing unit of work finishes.
func (r *OrderRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.StandingOrder, error) {
	query := `
		SELECT id, name, user_from_id, user_to_id, amount, note,
		       rrule_str, dt_next_utc, dt_created_utc
		FROM standing_orders
		WHERE id = $1
		FOR UPDATE
	`

	var order domain.StandingOrder
	err := pick(r.pool, tx).QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.Name,
		&order.UserFromID,
		&order.UserToID,
		&order.Amount,
		&order.Note,
		&order.RRule,
		&order.DtNextUTC,
		&order.DtCreatedUTC,
	)
	if err != nil {
		return nil, mapError(err)
	}

	return &order, nil
}

// UpdateNext moves an order's next occurrence. A nil next disables the order
// permanently.
func (r *OrderRepository) UpdateNext(ctx context.Context, tx usecase.Transaction, id int64, next *time.Time) error {
	query := `
		UPDATE standing_orders
		SET dt_next_utc = $2
		WHERE id = $1
	`

	tag, err := pick(r.pool, tx).Exec(ctx, query, id, next)
	if err != nil {
		return fmt.Errorf("update standing order: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// List returns all standing orders joined with user names, disabled ones
// included.
func (r *OrderRepository) List(ctx context.Context) ([]*domain.OrderRecord, error) {
	query := `
		SELECT o.id, o.name, u_from.name, u_to.name, o.amount, o.note,
		       o.rrule_str, o.dt_next_utc, o.dt_created_utc
		FROM standing_orders o
		JOIN users u_from ON u_from.id = o.user_from_id
		JOIN users u_to ON u_to.id = o.user_to_id
		ORDER BY o.id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.OrderRecord
	for rows.Next() {
		var rec domain.OrderRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Name,
			&rec.UserFrom,
			&rec.UserTo,
			&rec.Amount,
			&rec.Note,
			&rec.RRule,
			&rec.DtNextUTC,
			&rec.DtCreatedUTC,
		); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}
