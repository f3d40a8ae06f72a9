package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

func newTable(w io.Writer, columns ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	styled := make([]string, len(columns))
	for i, c := range columns {
		styled[i] = headerStyle.Render(c)
	}
	fmt.Fprintln(tw, strings.Join(styled, "\t"))
	return tw
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(core.AmountScale)
}

// tagLabel names the tag a row points at. Untagged rows and dangling
// references both render as Other; dangling ones get a marker.
func tagLabel(tagID *int64, ref core.TagRef) string {
	name := ref.Display().Name
	if ref.IsMissing() && tagID != nil {
		return name + " " + mutedStyle.Render("(deleted tag)")
	}
	return name
}

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, successStyle.Render(fmt.Sprintf(format, args...)))
}
