// Package memory is an in-process TransactionMirror for development and
// tests.
package memory

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	ports "ledger/internal/sheets"
)

var (
	_ ports.TransactionMirror = (*Mirror)(nil)
	_ ports.RowLister         = (*Mirror)(nil)
)

type Mirror struct {
	mu   sync.Mutex
	rows map[int64]ports.Row
}

func New() *Mirror {
	return &Mirror{rows: make(map[int64]ports.Row)}
}

func (m *Mirror) Upsert(ctx context.Context, r ports.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[r.ID] = r
	slog.DebugContext(ctx, "Mirrored row", "id", r.ID, "rows", len(m.rows))
	return nil
}

func (m *Mirror) Remove(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

// Rows returns a snapshot ordered by id.
func (m *Mirror) Rows() []ports.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ports.Row, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b ports.Row) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

func (m *Mirror) ListRows(context.Context) ([]ports.Row, error) {
	return m.Rows(), nil
}
