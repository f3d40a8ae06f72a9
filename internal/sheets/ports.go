// Package sheets mirrors ledger transactions into a spreadsheet, one row per
// transaction keyed by its id.
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ledger/internal/core"
)

// Header is the first row of a mirror sheet.
var Header = []any{"ID", "Date", "Type", "Tag", "Amount", "Currency", "Note"}

// Row is the spreadsheet form of a transaction.
type Row struct {
	ID       int64
	Date     string
	Type     string
	Tag      string
	Amount   string
	Currency string
	Note     string
}

// TransactionMirror is an outbound adapter kept in step with the ledger.
type TransactionMirror interface {
	// Upsert writes r, replacing any existing row with the same id.
	Upsert(ctx context.Context, r Row) error
	// Remove deletes the row with id; a missing row is not an error.
	Remove(ctx context.Context, id int64) error
}

// RowLister is implemented by mirrors that can read their rows back.
type RowLister interface {
	ListRows(ctx context.Context) ([]Row, error)
}

// RowFromTransaction renders v; a missing tag shows as "Other".
func RowFromTransaction(v core.TransactionView) Row {
	return Row{
		ID:       v.ID,
		Date:     v.Date.Format("2006-01-02 15:04:05"),
		Type:     string(v.Type),
		Tag:      v.Tag.Display().Name,
		Amount:   v.Amount.StringFixed(core.AmountScale),
		Currency: v.Currency,
		Note:     v.Note,
	}
}

// Values returns the cells of r in Header order.
func (r Row) Values() []any {
	return []any{strconv.FormatInt(r.ID, 10), r.Date, r.Type, r.Tag, r.Amount, r.Currency, r.Note}
}

// Day returns the calendar date of the row's Date cell.
func (r Row) Day() (core.Date, error) {
	if len(r.Date) < len(time.DateOnly) {
		return core.Date{}, core.ErrInvalidDate
	}
	return core.ParseDate(r.Date[:len(time.DateOnly)])
}

// ParseRow reads cells in Header order. The header row and rows without a
// numeric id are rejected.
func ParseRow(cells []any) (Row, error) {
	get := func(i int) string {
		if i >= len(cells) {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(cells[i]))
	}
	id, err := strconv.ParseInt(get(0), 10, 64)
	if err != nil {
		return Row{}, fmt.Errorf("row id %q: %w", get(0), err)
	}
	return Row{
		ID:       id,
		Date:     get(1),
		Type:     get(2),
		Tag:      get(3),
		Amount:   get(4),
		Currency: get(5),
		Note:     get(6),
	}, nil
}
