package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"ledger/internal/core"
	"ledger/internal/services"
)

func tagsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage tags",
		Long:  `List the built-in and custom tags, add custom tags and remove them.`,
	}

	cmd.AddCommand(listTagsCmd(a))
	cmd.AddCommand(addTagCmd(a))
	cmd.AddCommand(removeTagCmd(a))

	return cmd
}

func listTagsCmd(a *app) *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				tags []core.Tag
				err  error
			)
			if typ == "" {
				tags, err = a.svc.Tags.ListAll(cmd.Context())
			} else {
				t, perr := core.ParseTxType(typ)
				if perr != nil {
					return perr
				}
				tags, err = a.svc.Tags.ListByType(cmd.Context(), t)
			}
			if err != nil {
				return fmt.Errorf("list tags: %w", err)
			}

			tw := newTable(cmd.OutOrStdout(), "ID", "Name", "Type", "Icon", "Color", "Custom")
			for _, t := range tags {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%t\n", t.ID, t.Name, t.Type, t.Icon, t.Color, t.IsCustom)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "only list tags of this type (expense, income)")
	return cmd
}

func addTagCmd(a *app) *cobra.Command {
	var in services.NewTag
	var typ string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a custom tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := core.ParseTxType(typ)
			if err != nil {
				return err
			}
			in.Name = args[0]
			in.Type = t

			created, err := a.svc.Tags.Create(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("add tag: %w", err)
			}
			printSuccess(cmd.OutOrStdout(), "Created tag %d (%s)", created.ID, created.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", string(core.Expense), "tag type (expense, income)")
	cmd.Flags().StringVar(&in.Icon, "icon", "", "icon name")
	cmd.Flags().StringVar(&in.Color, "color", "", "color as #RRGGBB")
	return cmd
}

func removeTagCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Remove a custom tag",
		Long: `Remove a custom tag. Built-in tags cannot be removed. Transactions
that used the tag keep it and are shown under Other.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.svc.Tags.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("remove tag: %w", err)
			}
			printSuccess(cmd.OutOrStdout(), "Removed tag %d", id)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// optionalTag maps the zero flag value to no tag.
func optionalTag(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
