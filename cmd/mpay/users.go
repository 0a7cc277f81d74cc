package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User management",
	}

	createCmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a user with zero balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			user, err := app.users.CreateUser(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("User %s created.\n", user.Name)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List users and their balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			users, err := app.users.ListUsers(ctx)
			if err != nil {
				return err
			}

			headers := []string{"id", "name", "balance"}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				rows = append(rows, []string{fmt.Sprint(u.ID), u.Name, u.Balance.StringFixed(3)})
			}

			return render(headers, rows, users)
		},
	}

	agentCmd := &cobra.Command{
		Use:   "create-agent NAME [DESCRIPTION]",
		Short: "Create an agent",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			var description *string
			if len(args) == 2 {
				description = &args[1]
			}

			agent, err := app.agents.CreateAgent(ctx, args[0], description)
			if err != nil {
				return err
			}

			fmt.Printf("Agent %s created.\n", agent.Name)
			return nil
		},
	}

	cmd.AddCommand(createCmd, listCmd, agentCmd)
	return cmd
}
