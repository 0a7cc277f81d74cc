package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mpay/mpay/internal/domain"
	"github.com/mpay/mpay/internal/infrastructure/metrics"
)

// CheckUseCase verifies the invariants of the whole ledger.
type CheckUseCase struct {
	ledgerRepo LedgerRepository
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// NewCheckUseCase creates a new CheckUseCase.
func NewCheckUseCase(ledgerRepo LedgerRepository, logger zerolog.Logger, m *metrics.Metrics) *CheckUseCase {
	return &CheckUseCase{
		ledgerRepo: ledgerRepo,
		logger:     logger,
		metrics:    m,
	}
}

// Check runs the full consistency check: referential integrity, the global
// zero-sum invariant, and a per-user recomputation of every cached balance
// from the transaction table. The first violation found is reported as
// ErrIntegrity.
func (uc *CheckUseCase) Check(ctx context.Context) error {
	uc.metrics.ChecksRun.Inc()

	if err := uc.check(ctx); err != nil {
		uc.metrics.ChecksFailed.Inc()
		return err
	}

	uc.logger.Info().Msg("consistency check passed")

	return nil
}

func (uc *CheckUseCase) check(ctx context.Context) error {
	orphans, err := uc.ledgerRepo.OrphanedRows(ctx)
	if err != nil {
		return err
	}
	if len(orphans) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrIntegrity, orphans[0])
	}

	sum, userCount, err := uc.ledgerRepo.SumBalances(ctx)
	if err != nil {
		return err
	}
	// An empty ledger sums to NULL, not zero; only enforce with users present.
	if userCount > 0 && !sum.IsZero() {
		return fmt.Errorf("%w: balances sum to %s instead of zero", domain.ErrIntegrity, sum.String())
	}

	checks, err := uc.ledgerRepo.BalanceChecks(ctx)
	if err != nil {
		return err
	}
	for _, c := range checks {
		if !c.Matches() {
			return fmt.Errorf("%w: balance of user %s is %s but transactions sum to %s",
				domain.ErrIntegrity, c.UserName, c.Stored.String(), c.Computed.String())
		}
	}

	return nil
}
