package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ledger/internal/core"
)

const transactionSelect = `SELECT t.id, t.amount, t.currency, t.date, t.tag_id, t.type, t.note, ` +
	joinedTagColumns + `
FROM transactions t
LEFT JOIN tags tg ON tg.id = t.tag_id`

// InsertTransaction stores tx and returns its id. The caller validates.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO transactions (amount, currency, date, tag_id, type, note) VALUES (?, ?, ?, ?, ?, ?)",
		tx.Amount.String(), tx.Currency, formatDate(tx.Date), nullableID(tx.TagID), string(tx.Type), nullableString(tx.Note))
	if err != nil {
		return 0, core.NewStorageError("insert transaction", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, core.NewStorageError("insert transaction", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"amount", tx.Amount.String(),
		"currency", tx.Currency,
		"type", tx.Type,
		"date", formatDate(tx.Date))

	return id, nil
}

// DeleteTransaction removes a transaction; a missing id is not an error.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return false, core.NewStorageError("delete transaction", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, core.NewStorageError("delete transaction", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Transaction deleted", "id", id)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.TransactionView, error) {
	row := r.db.QueryRowContext(ctx, transactionSelect+" WHERE t.id = ?", id)
	v, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.TransactionView{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.TransactionView{}, core.NewStorageError("get transaction", err)
	}
	return v, nil
}

// QueryTransactions returns the transactions matching f, newest first.
func (r *SQLiteRepository) QueryTransactions(ctx context.Context, f core.TransactionFilter) ([]core.TransactionView, error) {
	query, args := buildTransactionQuery(f)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, core.NewStorageError("query transactions", err)
	}
	defer rows.Close()

	out := []core.TransactionView{}
	for rows.Next() {
		v, err := scanTransaction(rows)
		if err != nil {
			return nil, core.NewStorageError("scan transaction", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("iterate transactions", err)
	}
	return out, nil
}

// DistinctCurrencies lists the currencies used in [start, end], ascending.
func (r *SQLiteRepository) DistinctCurrencies(ctx context.Context, start, end core.Date) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT currency FROM transactions WHERE date(date) BETWEEN ? AND ? ORDER BY currency",
		start.String(), end.String())
	if err != nil {
		return nil, core.NewStorageError("distinct currencies", err)
	}
	defer rows.Close()

	currencies := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, core.NewStorageError("scan currency", err)
		}
		currencies = append(currencies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("iterate currencies", err)
	}
	return currencies, nil
}

// buildTransactionQuery adds the tag clause only for a non-empty tag set, so
// an empty selection means "all tags" rather than "none".
func buildTransactionQuery(f core.TransactionFilter) (string, []any) {
	var b strings.Builder
	b.WriteString(transactionSelect)
	b.WriteString("\nWHERE date(t.date) BETWEEN ? AND ?")
	args := []any{f.Start.String(), f.End.String()}

	if len(f.TagIDs) > 0 {
		b.WriteString(" AND t.tag_id IN (")
		for i, id := range f.TagIDs {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("?")
			args = append(args, id)
		}
		b.WriteString(")")
	}

	if f.Type != "" {
		b.WriteString(" AND t.type = ?")
		args = append(args, string(f.Type))
	}

	b.WriteString("\nORDER BY t.date DESC, t.id DESC")
	return b.String(), args
}

func scanTransaction(s rowScanner) (core.TransactionView, error) {
	var (
		v      core.TransactionView
		amount string
		date   string
		tagID  sql.NullInt64
		typ    string
		note   sql.NullString
		joined joinedTag
	)
	err := s.Scan(&v.ID, &amount, &v.Currency, &date, &tagID, &typ, &note,
		&joined.id, &joined.name, &joined.typ, &joined.icon, &joined.color, &joined.isCustom)
	if err != nil {
		return core.TransactionView{}, err
	}

	if v.Amount, err = parseAmount(amount); err != nil {
		return core.TransactionView{}, err
	}
	if v.Date, err = parseDate(date); err != nil {
		return core.TransactionView{}, err
	}
	v.TagID = idPtr(tagID)
	v.Type = core.TxType(typ)
	v.Note = note.String
	v.Tag = joined.ref()
	return v, nil
}
