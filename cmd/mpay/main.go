package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	assumeYes bool
	assumeNo  bool
	format    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "mpay",
		Short:         "Personal shared-ledger tracker",
		Long:          `mpay tracks payments, balances and standing orders between a small set of users.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Answer yes to all confirmation prompts")
	rootCmd.PersistentFlags().BoolVarP(&assumeNo, "no", "n", false, "Answer no to all confirmation prompts")
	rootCmd.PersistentFlags().StringVar(&format, "format", "table", "Output format: table, json or csv")

	rootCmd.AddCommand(
		newPayCmd(),
		newHistoryCmd(),
		newUserCmd(),
		newTagCmd(),
		newOrderCmd(),
		newAdminCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
