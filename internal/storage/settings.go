package storage

import (
	"context"
	"database/sql"
	"errors"

	"ledger/internal/core"
)

// GetSetting reports ok=false for an absent key.
func (r *SQLiteRepository) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, core.NewStorageError("get setting", err)
	}
	return value, true, nil
}

func (r *SQLiteRepository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, "INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value)
	return core.NewStorageError("set setting", err)
}

// SetSettingIfAbsent writes value only when key has no value yet and reports
// whether it did.
func (r *SQLiteRepository) SetSettingIfAbsent(ctx context.Context, key, value string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return false, core.NewStorageError("seed setting", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, core.NewStorageError("seed setting", err)
	}
	return n > 0, nil
}
