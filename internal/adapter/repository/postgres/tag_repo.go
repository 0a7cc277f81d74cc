package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpay/mpay/internal/domain"
	"github.com/mpay/mpay/internal/usecase"
)

// TagRepository implements usecase.TagRepository.
type TagRepository struct {
	pool *pgxpool.Pool
}

// NewTagRepository creates a new TagRepository.
func NewTagRepository(pool *pgxpool.Pool) *TagRepository {
	return &TagRepository{pool: pool}
}

// Create inserts a new tag and fills in its generated id.
func (r *TagRepository) Create(ctx context.Context, tx usecase.Transaction, tag *domain.Tag) error {
	query := `
		INSERT INTO tags (name, description, parent_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := pick(r.pool, tx).QueryRow(ctx, query, tag.Name, tag.Description, tag.ParentID).Scan(&tag.ID)
	if err != nil {
		return fmt.Errorf("create tag: %w", mapError(err))
	}

	return nil
}

// GetByNameAndParent resolves one step of a hierarchical walk. A nil parentID
// matches root tags only; IS NOT DISTINCT FROM makes the NULL comparison
// work in a single query.
func (r *TagRepository) GetByNameAndParent(ctx context.Context, tx usecase.Transaction, name string, parentID *int64) (*domain.Tag, error) {
	query := `
		SELECT id, name, description, parent_id
		FROM tags
		WHERE name = $1 AND parent_id IS NOT DISTINCT FROM $2
	`

	var tag domain.Tag
	err := pick(r.pool, tx).QueryRow(ctx, query, name, parentID).Scan(
		&tag.ID,
		&tag.Name,
		&tag.Description,
		&tag.ParentID,
	)
	if err != nil {
		return nil, mapError(err)
	}

	return &tag, nil
}

// Delete removes a tag. Associations cascade away in the store; child tags
// block the delete via their parent foreign key.
func (r *TagRepository) Delete(ctx context.Context, tx usecase.Transaction, id int64) error {
	tag, err := pick(r.pool, tx).Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// List returns all tags ordered by id.
func (r *TagRepository) List(ctx context.Context) ([]*domain.Tag, error) {
	query := `
		SELECT id, name, description, parent_id
		FROM tags
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Description, &tag.ParentID); err != nil {
			return nil, err
		}
		tags = append(tags, &tag)
	}

	return tags, rows.Err()
}

// AddTransactionTag associates a tag with a transaction. Idempotent.
func (r *TagRepository) AddTransactionTag(ctx context.Context, tx usecase.Transaction, transactionID, tagID int64) error {
	query := `
		INSERT INTO transactions_tags (transaction_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	if _, err := pick(r.pool, tx).Exec(ctx, query, transactionID, tagID); err != nil {
		return fmt.Errorf("tag transaction: %w", mapError(err))
	}

	return nil
}

// RemoveTransactionTag removes a tag association. Idempotent.
func (r *TagRepository) RemoveTransactionTag(ctx context.Context, tx usecase.Transaction, transactionID, tagID int64) error {
	query := `
		DELETE FROM transactions_tags
		WHERE transaction_id = $1 AND tag_id = $2
	`

	if _, err := pick(r.pool, tx).Exec(ctx, query, transactionID, tagID); err != nil {
		return fmt.Errorf("untag transaction: %w", mapError(err))
	}

	return nil
}
