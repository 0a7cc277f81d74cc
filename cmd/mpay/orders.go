package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mpay/mpay/internal/recurrence"
	"github.com/mpay/mpay/internal/usecase"
)

func newOrderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Standing order management",
	}

	var note string
	createCmd := &cobra.Command{
		Use:   "create NAME RECIPIENT AMOUNT RRULE",
		Short: "Create a standing order from you to the recipient",
		Long: `Create a standing order from you to the recipient. The RRULE follows
iCal recurrence syntax; a missing DTSTART defaults to today's UTC midnight.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := decimal.NewFromString(args[2])
			if err != nil {
				return fmt.Errorf("bad amount %q: %w", args[2], err)
			}

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			sender, err := app.cfg.RequireUser()
			if err != nil {
				return err
			}

			midnight := time.Now().UTC().Truncate(24 * time.Hour)
			input := usecase.CreateOrderInput{
				Name:      args[0],
				Sender:    sender,
				Recipient: args[1],
				Amount:    amount,
				RRule:     recurrence.Normalize(args[3], midnight),
			}
			if note != "" {
				input.Note = &note
			}

			order, err := app.orders.CreateOrder(ctx, input)
			if err != nil {
				return err
			}

			fmt.Printf("Standing order %s created, first occurrence %s.\n",
				order.Name, formatTimePtr(order.DtNextUTC))
			return nil
		},
	}
	createCmd.Flags().StringVar(&note, "note", "", "Note copied to every generated transaction")

	disableCmd := &cobra.Command{
		Use:   "disable NAME",
		Short: "Disable a standing order permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			sender, err := app.cfg.RequireUser()
			if err != nil {
				return err
			}

			disabled, err := app.orders.DisableOrder(ctx, args[0], sender)
			if err != nil {
				return err
			}
			if !disabled {
				fmt.Println("Left unchanged.")
				return nil
			}

			fmt.Printf("Standing order %s disabled.\n", args[0])
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all standing orders, disabled ones included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			records, err := app.orders.ListOrders(ctx)
			if err != nil {
				return err
			}

			headers := []string{"id", "name", "from", "to", "amount", "rrule", "next"}
			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{
					fmt.Sprint(r.ID),
					r.Name,
					r.UserFrom,
					r.UserTo,
					r.Amount.StringFixed(3),
					r.RRule,
					formatTimePtr(r.DtNextUTC),
				})
			}

			return render(headers, rows, records)
		},
	}

	cmd.AddCommand(createCmd, disableCmd, listCmd)
	return cmd
}
