package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpay/mpay/internal/domain"
	"github.com/mpay/mpay/internal/usecase"
)

// UserRepository implements usecase.UserRepository.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user and fills in its generated id.
func (r *UserRepository) Create(ctx context.Context, tx usecase.Transaction, user *domain.User) error {
	query := `
		INSERT INTO users (name, balance)
		VALUES ($1, $2)
		RETURNING id
	`

	err := pick(r.pool, tx).QueryRow(ctx, query, user.Name, user.Balance).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("create user: %w", mapError(err))
	}

	return nil
}

// GetByName retrieves a user by name.
func (r *UserRepository) GetByName(ctx context.Context, tx usecase.Transaction, name string) (*domain.User, error) {
	query := `
		SELECT id, name, balance
		FROM users
		WHERE name = $1
	`

	var user domain.User
	err := pick(r.pool, tx).QueryRow(ctx, query, name).Scan(&user.ID, &user.Name, &user.Balance)
	if err != nil {
		return nil, mapError(err)
	}

	return &user, nil
}

// List returns all users ordered by name.
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	query := `
		SELECT id, name, balance
		FROM users
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Balance); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}

	return users, rows.Err()
}
