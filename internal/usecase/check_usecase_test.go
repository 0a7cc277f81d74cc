package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mpay/mpay/internal/domain"
	"github.com/mpay/mpay/internal/infrastructure/metrics"
	"github.com/mpay/mpay/internal/usecase"
	"github.com/mpay/mpay/internal/usecase/mocks"
)

func TestCheckUseCase_Check(t *testing.T) {
	ctx := context.Background()

	newCheck := func(ledger *mocks.MockLedgerRepository) *usecase.CheckUseCase {
		return usecase.NewCheckUseCase(ledger, zerolog.Nop(), metrics.New(prometheus.NewRegistry()))
	}

	t.Run("clean ledger passes", func(t *testing.T) {
		ledger := mocks.NewMockLedgerRepository()
		ledger.SumBalancesFunc = func(ctx context.Context) (decimal.Decimal, int64, error) {
			return decimal.Zero, 2, nil
		}
		ledger.BalanceChecksFunc = func(ctx context.Context) ([]domain.BalanceCheck, error) {
			return []domain.BalanceCheck{
				{UserID: 1, UserName: "alice", Stored: decimal.NewFromInt(-3), Computed: decimal.NewFromInt(-3)},
				{UserID: 2, UserName: "bob", Stored: decimal.NewFromInt(3), Computed: decimal.NewFromInt(3)},
			}, nil
		}

		if err := newCheck(ledger).Check(ctx); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("empty ledger passes despite the NULL sum", func(t *testing.T) {
		ledger := mocks.NewMockLedgerRepository()
		ledger.SumBalancesFunc = func(ctx context.Context) (decimal.Decimal, int64, error) {
			return decimal.Zero, 0, nil
		}

		if err := newCheck(ledger).Check(ctx); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("orphaned rows fail first", func(t *testing.T) {
		ledger := mocks.NewMockLedgerRepository()
		ledger.OrphanedRowsFunc = func(ctx context.Context) ([]string, error) {
			return []string{"transaction 7 references missing user 99"}, nil
		}

		err := newCheck(ledger).Check(ctx)
		if !errors.Is(err, domain.ErrIntegrity) {
			t.Fatalf("expected ErrIntegrity, got %v", err)
		}
		if !strings.Contains(err.Error(), "transaction 7") {
			t.Errorf("error should describe the orphan: %v", err)
		}
	})

	t.Run("nonzero balance sum fails", func(t *testing.T) {
		ledger := mocks.NewMockLedgerRepository()
		ledger.SumBalancesFunc = func(ctx context.Context) (decimal.Decimal, int64, error) {
			return decimal.RequireFromString("0.01"), 3, nil
		}

		err := newCheck(ledger).Check(ctx)
		if !errors.Is(err, domain.ErrIntegrity) {
			t.Fatalf("expected ErrIntegrity, got %v", err)
		}
		if !strings.Contains(err.Error(), "0.01") {
			t.Errorf("error should carry the offending sum: %v", err)
		}
	})

	t.Run("cached balance mismatch names the user", func(t *testing.T) {
		ledger := mocks.NewMockLedgerRepository()
		ledger.SumBalancesFunc = func(ctx context.Context) (decimal.Decimal, int64, error) {
			return decimal.Zero, 2, nil
		}
		ledger.BalanceChecksFunc = func(ctx context.Context) ([]domain.BalanceCheck, error) {
			return []domain.BalanceCheck{
				{UserID: 1, UserName: "alice", Stored: decimal.NewFromInt(5), Computed: decimal.NewFromInt(4)},
			}, nil
		}

		err := newCheck(ledger).Check(ctx)
		if !errors.Is(err, domain.ErrIntegrity) {
			t.Fatalf("expected ErrIntegrity, got %v", err)
		}
		if !strings.Contains(err.Error(), "alice") {
			t.Errorf("error should name the user: %v", err)
		}
	})
}
