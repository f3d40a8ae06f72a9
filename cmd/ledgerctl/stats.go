package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ledger/internal/core"
	"ledger/internal/services"
)

func statsCmd(a *app) *cobra.Command {
	var (
		wf       windowFlags
		typ      string
		currency string
		tagIDs   []int64
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Per-tag breakdown of a window",
		Long: `Sum the window's transactions of one type and one currency per tag.

The requested currency is used when the window has transactions in it;
otherwise the first currency found in the window, otherwise the default
currency.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, err := wf.window(a.now())
			if err != nil {
				return err
			}
			t, err := core.ParseTxType(typ)
			if err != nil {
				return err
			}

			report, err := a.svc.Reports.Statistics(cmd.Context(), services.StatsRequest{
				Window:   w,
				Type:     t,
				Currency: currency,
				TagIDs:   tagIDs,
			})
			if err != nil {
				return fmt.Errorf("statistics: %w", err)
			}

			out := cmd.OutOrStdout()
			b := report.Breakdown
			fmt.Fprintf(out, "%s to %s, %s in %s\n", report.Start, report.End, b.Type, b.Currency)
			if len(report.Currencies) > 0 {
				fmt.Fprintf(out, "Currencies in window: %s\n", strings.Join(report.Currencies, ", "))
			}
			if len(b.Buckets) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("Nothing to report."))
				return nil
			}

			tw := newTable(out, "Tag", "Sum", "Share")
			for _, bucket := range b.Buckets {
				fmt.Fprintf(tw, "%s\t%s\t%d%%\n", bucket.TagName, formatAmount(bucket.Sum), bucket.Percentage)
			}
			fmt.Fprintf(tw, "%s\t%s\t\n", headerStyle.Render("Total"), formatAmount(b.Total))
			return tw.Flush()
		},
	}

	wf.register(cmd)
	cmd.Flags().StringVar(&typ, "type", string(core.Expense), "transaction type (expense, income)")
	cmd.Flags().StringVar(&currency, "currency", "", "preferred currency (default: the defaultCurrency setting)")
	cmd.Flags().Int64SliceVar(&tagIDs, "tag", nil, "only these tag ids (repeatable or comma separated)")
	return cmd
}
