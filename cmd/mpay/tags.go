package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newTagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Tag management",
	}

	var (
		description string
		parent      string
	)
	createCmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a tag, optionally under a parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			var descPtr, parentPtr *string
			if description != "" {
				descPtr = &description
			}
			if parent != "" {
				parentPtr = &parent
			}

			tag, err := app.tags.CreateTag(ctx, args[0], descPtr, parentPtr)
			if err != nil {
				return err
			}

			fmt.Printf("Tag %s created.\n", tag.Name)
			return nil
		},
	}
	createCmd.Flags().StringVar(&description, "description", "", "Tag description")
	createCmd.Flags().StringVar(&parent, "parent", "", "Parent tag, hierarchical names allowed")

	deleteCmd := &cobra.Command{
		Use:   "delete PATH",
		Short: "Delete a tag, keeping the transactions it was attached to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			return app.tags.DeleteTag(ctx, args[0])
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all tags with their hierarchical names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			records, err := app.tags.ListTags(ctx)
			if err != nil {
				return err
			}

			headers := []string{"id", "name", "description"}
			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{fmt.Sprint(r.ID), r.HierarchicalName, orEmpty(r.Description)})
			}

			return render(headers, rows, records)
		},
	}

	treeCmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the tag forest as a tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			tree, err := app.tags.TagTree(ctx)
			if err != nil {
				return err
			}

			fmt.Print(tree)
			return nil
		},
	}

	var tagPaths []string
	assignCmd := &cobra.Command{
		Use:   "assign TRANSACTION_ID...",
		Short: "Attach tags to transactions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ids, err := parseIDs(args)
			if err != nil {
				return err
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

			return payments.AddTags(ctx, ids, tagPaths)
		},
	}
	assignCmd.Flags().StringSliceVarP(&tagPaths, "tag", "t", nil, "Tag to attach (repeatable)")
	assignCmd.MarkFlagRequired("tag")

	var removePaths []string
	unassignCmd := &cobra.Command{
		Use:   "unassign TRANSACTION_ID...",
		Short: "Detach tags from transactions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ids, err := parseIDs(args)
			if err != nil {
				return err
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

			return payments.RemoveTags(ctx, ids, removePaths)
		},
	}
	unassignCmd.Flags().StringSliceVarP(&removePaths, "tag", "t", nil, "Tag to detach (repeatable)")
	unassignCmd.MarkFlagRequired("tag")

	cmd.AddCommand(createCmd, deleteCmd, listCmd, treeCmd, assignCmd, unassignCmd)
	return cmd
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad transaction id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
