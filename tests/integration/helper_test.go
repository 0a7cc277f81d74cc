package integration

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	repo "github.com/mpay/mpay/internal/adapter/repository/postgres"
	"github.com/mpay/mpay/internal/infrastructure/metrics"
	"github.com/mpay/mpay/internal/usecase"
	"github.com/mpay/mpay/tests/testutil"
)

// deps wires the real repositories for one test.
type deps struct {
	db      *testutil.TestDB
	metrics *metrics.Metrics

	txManager  *repo.TxManager
	userRepo   *repo.UserRepository
	tagRepo    *repo.TagRepository
	agentRepo  *repo.AgentRepository
	txnRepo    *repo.TransactionRepository
	orderRepo  *repo.OrderRepository
	ledgerRepo *repo.LedgerRepository
}

func newDeps(t *testing.T) *deps {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := testutil.NewTestDB(t)
	t.Cleanup(db.Cleanup)

	pool := db.Pool

	return &deps{
		db:         db,
		metrics:    metrics.New(prometheus.NewRegistry()),
		txManager:  repo.NewTxManager(pool),
		userRepo:   repo.NewUserRepository(pool),
		tagRepo:    repo.NewTagRepository(pool),
		agentRepo:  repo.NewAgentRepository(pool),
		txnRepo:    repo.NewTransactionRepository(pool),
		orderRepo:  repo.NewOrderRepository(pool),
		ledgerRepo: repo.NewLedgerRepository(pool),
	}
}

func (d *deps) payments(currentUser string, confirm usecase.ConfirmFunc) *usecase.PaymentUseCase {
	return usecase.NewPaymentUseCase(
		d.txManager,
		d.userRepo,
		repo.NewCurrencyRepository(d.db.Pool),
		d.agentRepo,
		d.tagRepo,
		d.txnRepo,
		confirm,
		currentUser,
		zerolog.Nop(),
		d.metrics,
	)
}

func (d *deps) orders(confirm usecase.ConfirmFunc) *usecase.OrderUseCase {
	return usecase.NewOrderUseCase(
		d.txManager,
		d.userRepo,
		d.orderRepo,
		d.txnRepo,
		confirm,
		zerolog.Nop(),
		d.metrics,
	)
}

func (d *deps) tags() *usecase.TagUseCase {
	return usecase.NewTagUseCase(d.txManager, d.tagRepo, zerolog.Nop())
}

func (d *deps) check() *usecase.CheckUseCase {
	return usecase.NewCheckUseCase(d.ledgerRepo, zerolog.Nop(), d.metrics)
}
