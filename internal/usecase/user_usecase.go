package usecase

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mpay/mpay/internal/domain"
)

// UserUseCase handles user management.
type UserUseCase struct {
	txManager TransactionManager
	userRepo  UserRepository
	logger    zerolog.Logger
}

// NewUserUseCase creates a new UserUseCase.
func NewUserUseCase(txManager TransactionManager, userRepo UserRepository, logger zerolog.Logger) *UserUseCase {
	return &UserUseCase{
		txManager: txManager,
		userRepo:  userRepo,
		logger:    logger,
	}
}

// CreateUser creates a user with zero balance. The name must be lowercase
// alphanumeric plus underscore.
func (uc *UserUseCase) CreateUser(ctx context.Context, name string) (*domain.User, error) {
	name, err := domain.SanitizeUserName(name)
	if err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	user := &domain.User{
		Name:    name,
		Balance: decimal.Zero,
	}

	if err := uc.userRepo.Create(ctx, tx, user); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.logger.Info().Str("user", name).Msg("user created")

	return user, nil
}

// ListUsers returns all users with their cached balances.
func (uc *UserUseCase) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return uc.userRepo.List(ctx)
}
