package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ledger/internal/core"
)

type windowFlags struct {
	start string
	end   string
	month string
}

func (f *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "first day of the window (YYYY-MM-DD, default one month ago)")
	cmd.Flags().StringVar(&f.end, "end", "", "last day of the window (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&f.month, "month", "", "calendar month (YYYY-MM); overrides --start and --end")
}

// window starts from the default sliding window and applies the flags.
func (f *windowFlags) window(now time.Time) (core.Window, error) {
	w := core.DefaultWindow(now)

	if f.month != "" {
		t, err := time.Parse("2006-01", f.month)
		if err != nil {
			return core.Window{}, fmt.Errorf("invalid --month %q: use YYYY-MM", f.month)
		}
		w.Mode = core.MonthlyMode
		w.Monthly = core.MonthlyWindow{Year: t.Year(), Month: t.Month()}
		return w, nil
	}

	if f.start != "" {
		d, err := core.ParseDate(f.start)
		if err != nil {
			return core.Window{}, fmt.Errorf("invalid --start %q: %w", f.start, err)
		}
		w.Sliding.Start = d
	}
	if f.end != "" {
		d, err := core.ParseDate(f.end)
		if err != nil {
			return core.Window{}, fmt.Errorf("invalid --end %q: %w", f.end, err)
		}
		w.Sliding.End = d
	}
	return w, nil
}
