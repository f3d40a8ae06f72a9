// Package storage is the SQLite-backed entity store for tags, transactions,
// recurring expenses and settings.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/core"

	_ "modernc.org/sqlite"
)

// dateLayout is the on-disk form of transaction timestamps: the wall clock
// the entry was recorded at, without an offset, so date() filters see the
// user's calendar day. Rows read back carry that wall clock in time.UTC.
const dateLayout = "2006-01-02 15:04:05"

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// applies pending migrations.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := buildDSN(dbPath)

	if err := RunMigrations(dsn); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func buildDSN(dbPath string) string {
	return "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return core.NewStorageError("ping", r.db.PingContext(ctx))
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err == nil {
		return t, nil
	}
	// Rows written by hand may carry only the calendar date.
	if d, derr := time.ParseInLocation(time.DateOnly, s, time.UTC); derr == nil {
		return d, nil
	}
	return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func idPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	id := n.Int64
	return &id
}

// joinedTag holds the LEFT JOINed tag columns of a transaction or recurring
// row; all of them are NULL when the reference dangles.
type joinedTag struct {
	id       sql.NullInt64
	name     sql.NullString
	typ      sql.NullString
	icon     sql.NullString
	color    sql.NullString
	isCustom sql.NullBool
}

func (j joinedTag) ref() core.TagRef {
	if !j.id.Valid {
		return core.Missing
	}
	return core.Resolved(core.Tag{
		ID:       j.id.Int64,
		Name:     j.name.String,
		Type:     core.TxType(j.typ.String),
		Icon:     j.icon.String,
		Color:    j.color.String,
		IsCustom: j.isCustom.Bool,
	})
}

const joinedTagColumns = "tg.id, tg.name, tg.type, tg.icon, tg.color, tg.is_custom"
