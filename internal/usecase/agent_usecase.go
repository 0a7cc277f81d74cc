package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mpay/mpay/internal/domain"
)

// AgentUseCase handles agent management.
type AgentUseCase struct {
	txManager TransactionManager
	agentRepo AgentRepository
	logger    zerolog.Logger
}

// NewAgentUseCase creates a new AgentUseCase.
func NewAgentUseCase(txManager TransactionManager, agentRepo AgentRepository, logger zerolog.Logger) *AgentUseCase {
	return &AgentUseCase{
		txManager: txManager,
		agentRepo: agentRepo,
		logger:    logger,
	}
}

// CreateAgent creates an agent.
func (uc *AgentUseCase) CreateAgent(ctx context.Context, name string, description *string) (*domain.Agent, error) {
	name, err := domain.SanitizeAgentName(name)
	if err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	agent := &domain.Agent{
		Name:        name,
		Description: description,
	}

	if err := uc.agentRepo.Create(ctx, tx, agent); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.logger.Info().Str("agent", name).Msg("agent created")

	return agent, nil
}

// getOrConfirmAgent resolves an agent by name, offering to create it when
// missing. Shared by Pay and ImportBatch.
func getOrConfirmAgent(
	ctx context.Context,
	tx Transaction,
	repo AgentRepository,
	confirm ConfirmFunc,
	name string,
) (*domain.Agent, error) {
	name, err := domain.SanitizeAgentName(name)
	if err != nil {
		return nil, err
	}

	agent, err := repo.GetByName(ctx, tx, name)
	if err == nil {
		return agent, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	if !confirm("Agent " + name + " does not exist. Create?") {
		return nil, confirmationDeclined("agent " + name + " does not exist")
	}

	agent = &domain.Agent{Name: name}
	if err := repo.Create(ctx, tx, agent); err != nil {
		return nil, err
	}

	return agent, nil
}
