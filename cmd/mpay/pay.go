package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mpay/mpay/internal/usecase"
)

func newPayCmd() *cobra.Command {
	var (
		due              string
		originalCurrency string
		originalAmount   string
		agent            string
		note             string
		tagPaths         []string
	)

	cmd := &cobra.Command{
		Use:   "pay RECIPIENT AMOUNT",
		Short: "Record a payment from you to the recipient",
		Long: `Record a payment from you to the recipient. A negative amount records
money flowing the other way.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("bad amount %q: %w", args[1], err)
			}

			input := usecase.PayInput{
				Recipient:       args[0],
				ConvertedAmount: amount,
				TagPaths:        tagPaths,
			}

			if due != "" {
				t, err := parseDue(due)
				if err != nil {
					return err
				}
				input.Due = &t
			}
			if originalCurrency != "" {
				input.OriginalCurrency = &originalCurrency
			}
			if originalAmount != "" {
				a, err := decimal.NewFromString(originalAmount)
				if err != nil {
					return fmt.Errorf("bad original amount %q: %w", originalAmount, err)
				}
				input.OriginalAmount = &a
			}
			if agent != "" {
				input.Agent = &agent
			}
			if note != "" {
				input.Note = &note
			}

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			payments, err := app.payments()
			if err != nil {
				return err
			}

			id, err := payments.Pay(ctx, input)
			if err != nil {
				return err
			}

			fmt.Printf("Transaction %d recorded.\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&due, "due", "", "Due timestamp (\"2006-01-02\" or \"2006-01-02 15:04:05\", UTC, defaults to now)")
	cmd.Flags().StringVar(&originalCurrency, "original-currency", "", "ISO 4217 code of the original currency")
	cmd.Flags().StringVar(&originalAmount, "original-amount", "", "Amount in the original currency")
	cmd.Flags().StringVar(&agent, "agent", "", "Agent (counterparty) of the payment")
	cmd.Flags().StringVar(&note, "note", "", "Free-form note")
	cmd.Flags().StringSliceVarP(&tagPaths, "tag", "t", nil, "Tag to attach, hierarchical names allowed (repeatable)")

	return cmd
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List the transactions you participate in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			payments, err := app.payments()
			if err != nil {
				return err
			}

			records, err := payments.History(ctx)
			if err != nil {
				return err
			}

			headers := []string{"id", "from", "to", "amount", "agent", "note", "tags", "due"}
			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{
					fmt.Sprint(r.ID),
					r.UserFrom,
					r.UserTo,
					r.ConvertedAmount.StringFixed(3),
					orEmpty(r.Agent),
					orEmpty(r.Note),
					strings.Join(r.Tags, ","),
					formatTime(r.DtDueUTC),
				})
			}

			return render(headers, rows, records)
		},
	}
}

func parseDue(s string) (time.Time, error) {
	for _, layout := range []string{timeLayout, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad due timestamp %q", s)
}
