package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"ledger/internal/core"
)

const tagColumns = "id, name, type, icon, color, is_custom"

// ListTags returns every tag ordered by type, then id.
func (r *SQLiteRepository) ListTags(ctx context.Context) ([]core.Tag, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+tagColumns+" FROM tags ORDER BY type, id")
	if err != nil {
		return nil, core.NewStorageError("list tags", err)
	}
	return scanTags(rows)
}

// ListTagsByType returns the tags of one type ordered by id.
func (r *SQLiteRepository) ListTagsByType(ctx context.Context, typ core.TxType) ([]core.Tag, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+tagColumns+" FROM tags WHERE type = ? ORDER BY id", string(typ))
	if err != nil {
		return nil, core.NewStorageError("list tags by type", err)
	}
	return scanTags(rows)
}

func (r *SQLiteRepository) GetTag(ctx context.Context, id int64) (core.Tag, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+tagColumns+" FROM tags WHERE id = ?", id)
	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Tag{}, fmt.Errorf("tag %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Tag{}, core.NewStorageError("get tag", err)
	}
	return t, nil
}

// CreateTag inserts t and returns it with its assigned id.
func (r *SQLiteRepository) CreateTag(ctx context.Context, t core.Tag) (core.Tag, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO tags (name, type, icon, color, is_custom) VALUES (?, ?, ?, ?, ?)",
		t.Name, string(t.Type), t.Icon, t.Color, t.IsCustom)
	if err != nil {
		return core.Tag{}, core.NewStorageError("insert tag", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Tag{}, core.NewStorageError("insert tag", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Tag saved to SQLite",
		"id", t.ID,
		"name", t.Name,
		"type", t.Type,
		"is_custom", t.IsCustom)

	return t, nil
}

// DeleteCustomTag removes a custom tag. Built-in and unknown ids are left
// alone and report false.
func (r *SQLiteRepository) DeleteCustomTag(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tags WHERE id = ? AND is_custom = 1", id)
	if err != nil {
		return false, core.NewStorageError("delete tag", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, core.NewStorageError("delete tag", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Tag deleted", "id", id)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTag(s rowScanner) (core.Tag, error) {
	var (
		t   core.Tag
		typ string
	)
	if err := s.Scan(&t.ID, &t.Name, &typ, &t.Icon, &t.Color, &t.IsCustom); err != nil {
		return core.Tag{}, err
	}
	t.Type = core.TxType(typ)
	return t, nil
}

func scanTags(rows *sql.Rows) ([]core.Tag, error) {
	defer rows.Close()

	tags := []core.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, core.NewStorageError("scan tag", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("iterate tags", err)
	}
	return tags, nil
}
