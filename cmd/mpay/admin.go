package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mpay/mpay/internal/infrastructure/config"
	"github.com/mpay/mpay/internal/infrastructure/logger"
	"github.com/mpay/mpay/internal/infrastructure/postgres"
	"github.com/mpay/mpay/internal/usecase"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Schema and maintenance operations",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Apply pending schema migrations and seed default currencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

			if err := postgres.NewMigrator(cfg.DatabaseURL, log).Up(); err != nil {
				return err
			}

			pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.SeedCurrencies(ctx, pool); err != nil {
				return err
			}

			fmt.Println("Database initialized.")
			return nil
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Verify referential integrity and balance invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			if err := app.check.Check(ctx); err != nil {
				return err
			}

			fmt.Println("Consistency check passed.")
			return nil
		},
	}

	cronCmd := &cobra.Command{
		Use:   "cron",
		Short: "Execute all due standing orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			return app.orders.ExecuteDueOrders(ctx, time.Now().UTC())
		},
	}

	var (
		user1 string
		user2 string
		agent string
	)
	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import transactions between two users from a CSV file",
		Long: `Import transactions from a CSV file with an amount,dt_due_utc,note
header. Positive amounts increase user1's balance, negative ones decrease it.
The whole file is one unit of work, confirmed before commit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			rows, err := readImportFile(args[0])
			if err != nil {
				return err
			}

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			if user1 == "" {
				user1, err = app.cfg.RequireUser()
				if err != nil {
					return err
				}
			}

			payments, err := app.payments()
			if err != nil {
				return err
			}

			return payments.ImportBatch(ctx, rows, user1, user2, agent)
		},
	}
	importCmd.Flags().StringVar(&user1, "user1", "", "User the amount signs refer to (defaults to MPAY_USER)")
	importCmd.Flags().StringVar(&user2, "user2", "", "Counterparty user")
	importCmd.Flags().StringVar(&agent, "agent", "", "Agent recorded on every imported row")
	importCmd.MarkFlagRequired("user2")
	importCmd.MarkFlagRequired("agent")

	cmd.AddCommand(initCmd, checkCmd, cronCmd, importCmd)
	return cmd
}

func readImportFile(path string) ([]usecase.ImportRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"amount", "dt_due_utc", "note"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("csv is missing the %q column", required)
		}
	}

	var rows []usecase.ImportRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		amount, err := decimal.NewFromString(record[col["amount"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad amount %q", line, record[col["amount"]])
		}
		due, err := parseDue(record[col["dt_due_utc"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rows = append(rows, usecase.ImportRow{
			Amount: amount,
			Due:    due,
			Note:   record[col["note"]],
		})
	}

	return rows, nil
}
