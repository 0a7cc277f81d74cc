package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/mpay/mpay/internal/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var migrationVersionRe = regexp.MustCompile(`^(\d+)_.*\.up\.sql$`)

// Migrator applies the embedded schema migration chain.
type Migrator struct {
	databaseURL string
	logger      zerolog.Logger
}

// NewMigrator creates a new Migrator.
func NewMigrator(databaseURL string, logger zerolog.Logger) *Migrator {
	return &Migrator{
		databaseURL: databaseURL,
		logger:      logger,
	}
}

func (m *Migrator) open() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	mig, err := migrate.NewWithSourceInstance("iofs", src, m.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return mig, nil
}

// Up applies all pending migrations.
func (m *Migrator) Up() error {
	mig, err := m.open()
	if err != nil {
		return err
	}
	defer mig.Close()

	if err := mig.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info().Msg("database migrations: no change")
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	m.logger.Info().Msg("database migrations: applied successfully")
	return nil
}

// Down rolls back the last migration.
func (m *Migrator) Down() error {
	mig, err := m.open()
	if err != nil {
		return err
	}
	defer mig.Close()

	if err := mig.Steps(-1); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	m.logger.Info().Msg("database migrations: rolled back successfully")
	return nil
}

// UpToDate reports whether the database sits exactly at the embedded head
// version. A dirty database is an error.
func (m *Migrator) UpToDate() (bool, error) {
	head, err := headVersion()
	if err != nil {
		return false, err
	}

	mig, err := m.open()
	if err != nil {
		return false, err
	}
	defer mig.Close()

	version, dirty, err := mig.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		return false, fmt.Errorf("database schema is dirty at version %d", version)
	}

	return version == head, nil
}

// headVersion is the highest version among the embedded up migrations.
func headVersion() (uint, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return 0, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	var head uint64
	for _, entry := range entries {
		match := migrationVersionRe.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		version, err := strconv.ParseUint(match[1], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("bad migration name %q: %w", entry.Name(), err)
		}
		if version > head {
			head = version
		}
	}
	if head == 0 {
		return 0, errors.New("no embedded up migrations found")
	}

	return uint(head), nil
}

// SeedCurrencies inserts the default currency set. Idempotent.
func SeedCurrencies(ctx context.Context, pool *pgxpool.Pool) error {
	for code, name := range domain.DefaultCurrencies {
		_, err := pool.Exec(ctx,
			`INSERT INTO currencies (iso_4217, name) VALUES ($1, $2) ON CONFLICT (iso_4217) DO NOTHING`,
			code, name,
		)
		if err != nil {
			return fmt.Errorf("seed currency %s: %w", code, err)
		}
	}

	return nil
}
