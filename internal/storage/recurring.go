package storage

import (
	"context"
	"database/sql"
	"log/slog"

	"ledger/internal/core"
)

// ListRecurring returns every recurring expense with its tag resolved,
// ordered by day of month.
func (r *SQLiteRepository) ListRecurring(ctx context.Context) ([]core.RecurringExpenseView, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT r.id, r.amount, r.currency, r.day_of_month, r.tag_id, r.note, `+
		joinedTagColumns+`
FROM recurring_expenses r
LEFT JOIN tags tg ON tg.id = r.tag_id
ORDER BY r.day_of_month, r.id`)
	if err != nil {
		return nil, core.NewStorageError("list recurring expenses", err)
	}
	defer rows.Close()

	out := []core.RecurringExpenseView{}
	for rows.Next() {
		var (
			v      core.RecurringExpenseView
			amount string
			tagID  sql.NullInt64
			note   sql.NullString
			joined joinedTag
		)
		if err := rows.Scan(&v.ID, &amount, &v.Currency, &v.DayOfMonth, &tagID, &note,
			&joined.id, &joined.name, &joined.typ, &joined.icon, &joined.color, &joined.isCustom); err != nil {
			return nil, core.NewStorageError("scan recurring expense", err)
		}
		if v.Amount, err = parseAmount(amount); err != nil {
			return nil, core.NewStorageError("scan recurring expense", err)
		}
		v.TagID = idPtr(tagID)
		v.Note = note.String
		v.Tag = joined.ref()
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("iterate recurring expenses", err)
	}
	return out, nil
}

func (r *SQLiteRepository) InsertRecurring(ctx context.Context, re core.RecurringExpense) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO recurring_expenses (amount, currency, day_of_month, tag_id, note) VALUES (?, ?, ?, ?, ?)",
		re.Amount.String(), re.Currency, re.DayOfMonth, nullableID(re.TagID), nullableString(re.Note))
	if err != nil {
		return 0, core.NewStorageError("insert recurring expense", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, core.NewStorageError("insert recurring expense", err)
	}

	slog.InfoContext(ctx, "Recurring expense saved to SQLite",
		"id", id,
		"amount", re.Amount.String(),
		"currency", re.Currency,
		"day_of_month", re.DayOfMonth)

	return id, nil
}

func (r *SQLiteRepository) DeleteRecurring(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM recurring_expenses WHERE id = ?", id); err != nil {
		return core.NewStorageError("delete recurring expense", err)
	}
	return nil
}
