package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpay/mpay/internal/domain"
	"github.com/mpay/mpay/internal/usecase"
)

// AgentRepository implements usecase.AgentRepository.
type AgentRepository struct {
	pool *pgxpool.Pool
}

// NewAgentRepository creates a new AgentRepository.
func NewAgentRepository(pool *pgxpool.Pool) *AgentRepository {
	return &AgentRepository{pool: pool}
}

// Create inserts a new agent and fills in its generated id.
func (r *AgentRepository) Create(ctx context.Context, tx usecase.Transaction, agent *domain.Agent) error {
	query := `
		INSERT INTO agents (name, description)
		VALUES ($1, $2)
		RETURNING id
	`

	err := pick(r.pool, tx).QueryRow(ctx, query, agent.Name, agent.Description).Scan(&agent.ID)
	if err != nil {
		return fmt.Errorf("create agent: %w", mapError(err))
	}

	return nil
}

// GetByName retrieves an agent by name.
func (r *AgentRepository) GetByName(ctx context.Context, tx usecase.Transaction, name string) (*domain.Agent, error) {
	query := `
		SELECT id, name, description
		FROM agents
		WHERE name = $1
	`

	var agent domain.Agent
	err := pick(r.pool, tx).QueryRow(ctx, query, name).Scan(&agent.ID, &agent.Name, &agent.Description)
	if err != nil {
		return nil, mapError(err)
	}

	return &agent, nil
}
