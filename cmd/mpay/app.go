package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	repo "github.com/mpay/mpay/internal/adapter/repository/postgres"
	"github.com/mpay/mpay/internal/infrastructure/config"
	"github.com/mpay/mpay/internal/infrastructure/logger"
	"github.com/mpay/mpay/internal/infrastructure/metrics"
	"github.com/mpay/mpay/internal/infrastructure/postgres"
	"github.com/mpay/mpay/internal/usecase"
)

// app wires configuration, the connection pool and the usecases for one CLI
// invocation.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	pool     *pgxpool.Pool
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	users  *usecase.UserUseCase
	agents *usecase.AgentUseCase
	tags   *usecase.TagUseCase
	orders *usecase.OrderUseCase
	check  *usecase.CheckUseCase
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		return nil, err
	}

	upToDate, err := postgres.NewMigrator(cfg.DatabaseURL, log).UpToDate()
	if err != nil {
		pool.Close()
		return nil, err
	}
	if !upToDate {
		pool.Close()
		return nil, fmt.Errorf("database schema is not up to date, run \"mpay admin init\"")
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	txManager := repo.NewTxManager(pool)
	userRepo := repo.NewUserRepository(pool)
	tagRepo := repo.NewTagRepository(pool)
	agentRepo := repo.NewAgentRepository(pool)
	orderRepo := repo.NewOrderRepository(pool)
	txnRepo := repo.NewTransactionRepository(pool)
	ledgerRepo := repo.NewLedgerRepository(pool)

	a := &app{
		cfg:      cfg,
		logger:   log,
		pool:     pool,
		registry: registry,
		metrics:  m,
		users:    usecase.NewUserUseCase(txManager, userRepo, log),
		agents:   usecase.NewAgentUseCase(txManager, agentRepo, log),
		tags:     usecase.NewTagUseCase(txManager, tagRepo, log),
		orders:   usecase.NewOrderUseCase(txManager, userRepo, orderRepo, txnRepo, confirm, log, m),
		check:    usecase.NewCheckUseCase(ledgerRepo, log, m),
	}

	return a, nil
}

// payments builds the payment usecase for the configured current user.
func (a *app) payments() (*usecase.PaymentUseCase, error) {
	user, err := a.cfg.RequireUser()
	if err != nil {
		return nil, err
	}

	return usecase.NewPaymentUseCase(
		repo.NewTxManager(a.pool),
		repo.NewUserRepository(a.pool),
		repo.NewCurrencyRepository(a.pool),
		repo.NewAgentRepository(a.pool),
		repo.NewTagRepository(a.pool),
		repo.NewTransactionRepository(a.pool),
		confirm,
		user,
		a.logger,
		a.metrics,
	), nil
}

// close releases the pool and flushes the metrics textfile when configured.
func (a *app) close() {
	if a.cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(a.registry, a.cfg.MetricsFile); err != nil {
			a.logger.Warn().Err(err).Msg("failed to write metrics textfile")
		}
	}
	a.pool.Close()
}

// confirm asks the question on the terminal unless --yes or --no decided it
// upfront.
func confirm(question string) bool {
	if assumeYes {
		return true
	}
	if assumeNo {
		return false
	}

	fmt.Printf("%s [y/N] ", question)

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
