package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ledger/internal/core"
	"ledger/internal/services"
)

func txCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Record, list and remove transactions",
	}

	cmd.AddCommand(addTxCmd(a))
	cmd.AddCommand(listTxCmd(a))
	cmd.AddCommand(removeTxCmd(a))

	return cmd
}

func addTxCmd(a *app) *cobra.Command {
	var (
		currency string
		date     string
		tagID    int64
		typ      string
		note     string
	)

	cmd := &cobra.Command{
		Use:   "add AMOUNT",
		Short: "Record a transaction",
		Long: `Record a transaction. The currency defaults to the defaultCurrency
setting and the date to now.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := core.ParseAmount(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}
			t, err := core.ParseTxType(typ)
			if err != nil {
				return err
			}

			when := a.now()
			if date != "" {
				d, err := core.ParseDate(date)
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", date, err)
				}
				when = d.Time
			}

			if currency == "" {
				if currency, err = a.svc.Settings.DefaultCurrency(ctx); err != nil {
					return fmt.Errorf("default currency: %w", err)
				}
			}

			id, err := a.svc.Ledger.Insert(ctx, services.NewTransaction{
				Amount:   amount,
				Currency: currency,
				Date:     when,
				TagID:    optionalTag(tagID),
				Type:     t,
				Note:     note,
			})
			if err != nil {
				return fmt.Errorf("record transaction: %w", err)
			}
			printSuccess(cmd.OutOrStdout(), "Recorded transaction %d", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&currency, "currency", "", "ISO 4217 code (default: the defaultCurrency setting)")
	cmd.Flags().StringVar(&date, "date", "", "transaction date (YYYY-MM-DD, default now)")
	cmd.Flags().Int64Var(&tagID, "tag", 0, "tag id")
	cmd.Flags().StringVar(&typ, "type", string(core.Expense), "transaction type (expense, income)")
	cmd.Flags().StringVar(&note, "note", "", "free-form note (max 200 characters)")
	return cmd
}

func listTxCmd(a *app) *cobra.Command {
	var (
		wf     windowFlags
		tagIDs []int64
		typ    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions in a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, err := wf.window(a.now())
			if err != nil {
				return err
			}
			var t core.TxType
			if typ != "" {
				if t, err = core.ParseTxType(typ); err != nil {
					return err
				}
			}

			snap, err := a.svc.Reports.Refresh(cmd.Context(), services.ListRequest{Window: w, TagIDs: tagIDs, Type: t})
			if err != nil {
				return fmt.Errorf("list transactions: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s to %s\n", snap.Start, snap.End)
			if len(snap.Transactions) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No transactions in this window."))
				return nil
			}

			tw := newTable(out, "ID", "Date", "Type", "Tag", "Amount", "Currency", "Note")
			for _, tx := range snap.Transactions {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					tx.ID,
					tx.Date.Format(time.DateTime),
					tx.Type,
					tagLabel(tx.TagID, tx.Tag),
					formatAmount(tx.Amount),
					tx.Currency,
					tx.Note)
			}
			return tw.Flush()
		},
	}

	wf.register(cmd)
	cmd.Flags().Int64SliceVar(&tagIDs, "tag", nil, "only these tag ids (repeatable or comma separated)")
	cmd.Flags().StringVar(&typ, "type", "", "only this type (expense, income)")
	return cmd
}

func removeTxCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Remove a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.svc.Ledger.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("remove transaction: %w", err)
			}
			printSuccess(cmd.OutOrStdout(), "Removed transaction %d", id)
			return nil
		},
	}
}
