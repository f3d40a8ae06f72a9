package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledger/internal/core"
	"ledger/internal/services"
)

func recurringCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Manage recurring expenses",
		Long: `Keep a list of monthly obligations. Entries are informational:
they are never turned into transactions.`,
	}

	cmd.AddCommand(listRecurringCmd(a))
	cmd.AddCommand(addRecurringCmd(a))
	cmd.AddCommand(removeRecurringCmd(a))

	return cmd
}

func listRecurringCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recurring expenses with their next occurrence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := a.svc.Recurring.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list recurring expenses: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No recurring expenses. Use 'ledgerctl recurring add' to create one."))
				return nil
			}

			today := core.DateOf(a.now())
			tw := newTable(out, "ID", "Day", "Tag", "Amount", "Currency", "Next", "Note")
			for _, re := range entries {
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
					re.ID,
					re.DayOfMonth,
					tagLabel(re.TagID, re.Tag),
					formatAmount(re.Amount),
					re.Currency,
					core.NextOccurrence(re.RecurringExpense, today),
					re.Note)
			}
			return tw.Flush()
		},
	}
}

func addRecurringCmd(a *app) *cobra.Command {
	var (
		day      int
		currency string
		tagID    int64
		note     string
	)

	cmd := &cobra.Command{
		Use:   "add AMOUNT",
		Short: "Add a recurring expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := core.ParseAmount(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}
			if currency == "" {
				if currency, err = a.svc.Settings.DefaultCurrency(ctx); err != nil {
					return fmt.Errorf("default currency: %w", err)
				}
			}

			id, err := a.svc.Recurring.Create(ctx, services.NewRecurringExpense{
				Amount:     amount,
				Currency:   currency,
				DayOfMonth: day,
				TagID:      optionalTag(tagID),
				Note:       note,
			})
			if err != nil {
				return fmt.Errorf("add recurring expense: %w", err)
			}
			printSuccess(cmd.OutOrStdout(), "Created recurring expense %d", id)
			return nil
		},
	}

	cmd.Flags().IntVar(&day, "day", 1, "day of month (1-31, clamped to short months)")
	cmd.Flags().StringVar(&currency, "currency", "", "ISO 4217 code (default: the defaultCurrency setting)")
	cmd.Flags().Int64Var(&tagID, "tag", 0, "tag id")
	cmd.Flags().StringVar(&note, "note", "", "free-form note")
	return cmd
}

func removeRecurringCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Remove a recurring expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.svc.Recurring.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("remove recurring expense: %w", err)
			}
			printSuccess(cmd.OutOrStdout(), "Removed recurring expense %d", id)
			return nil
		},
	}
}
