package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/metrics"
	"ledger/internal/sheets"
)

// TransactionReader is the part of the ledger the worker reads from.
type TransactionReader interface {
	Get(ctx context.Context, id int64) (core.TransactionView, error)
	Query(ctx context.Context, f core.TransactionFilter) ([]core.TransactionView, error)
}

// SyncWorker keeps a TransactionMirror in step with the ledger. Events only
// carry ids, so every change is re-read from the ledger before it is
// written out.
type SyncWorker struct {
	ledger TransactionReader
	mirror sheets.TransactionMirror
}

func NewSyncWorker(ledger TransactionReader, mirror sheets.TransactionMirror) *SyncWorker {
	return &SyncWorker{ledger: ledger, mirror: mirror}
}

// HandleEvent applies one ledger event. It satisfies amqp.Handler; a
// returned error requeues the message.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"event_id", ev.EventID,
		"kind", ev.Kind,
		"transaction_id", ev.TransactionID)

	var err error
	switch ev.Kind {
	case amqp.TransactionCreated:
		err = w.syncTransaction(ctx, ev.TransactionID)
	case amqp.TransactionDeleted:
		err = w.mirror.Remove(ctx, ev.TransactionID)
	default:
		err = fmt.Errorf("unsupported event kind %q", ev.Kind)
	}

	metrics.MirrorApplied.WithLabelValues(string(ev.Kind), metrics.Result(err, nil)).Inc()
	if err != nil {
		slog.ErrorContext(ctx, "Failed to apply ledger event",
			"event_id", ev.EventID,
			"kind", ev.Kind,
			"transaction_id", ev.TransactionID,
			"error", err)
		return err
	}
	return nil
}

// syncTransaction writes the current state of id. A transaction deleted
// before its created event arrived is removed instead.
func (w *SyncWorker) syncTransaction(ctx context.Context, id int64) error {
	tx, err := w.ledger.Get(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Transaction gone before sync, removing row", "transaction_id", id)
		return w.mirror.Remove(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}
	if err := w.mirror.Upsert(ctx, sheets.RowFromTransaction(tx)); err != nil {
		return fmt.Errorf("upsert row: %w", err)
	}
	return nil
}

// Resync writes every transaction dated in [start, end]. It recovers rows
// whose events were lost while the worker was down. Mirrors that can list
// their rows also lose rows in the range whose transaction no longer exists.
func (w *SyncWorker) Resync(ctx context.Context, start, end core.Date) (int, error) {
	txs, err := w.ledger.Query(ctx, core.TransactionFilter{Start: start, End: end})
	if err != nil {
		return 0, fmt.Errorf("query transactions: %w", err)
	}

	synced, failed := 0, 0
	live := make(map[int64]struct{}, len(txs))
	for _, tx := range txs {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		live[tx.ID] = struct{}{}
		if err := w.mirror.Upsert(ctx, sheets.RowFromTransaction(tx)); err != nil {
			slog.ErrorContext(ctx, "Failed to resync transaction", "transaction_id", tx.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	pruned, err := w.prune(ctx, start, end, live)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to prune mirror rows", "error", err)
		failed++
	}

	slog.InfoContext(ctx, "Resync completed",
		"start", start.String(),
		"end", end.String(),
		"total", len(txs),
		"synced", synced,
		"pruned", pruned,
		"errors", failed)
	return synced, nil
}

// prune removes rows dated in [start, end] whose id is not in live. Rows
// with an unreadable date are left alone.
func (w *SyncWorker) prune(ctx context.Context, start, end core.Date, live map[int64]struct{}) (int, error) {
	lister, ok := w.mirror.(sheets.RowLister)
	if !ok {
		return 0, nil
	}
	rows, err := lister.ListRows(ctx)
	if err != nil {
		return 0, fmt.Errorf("list rows: %w", err)
	}

	pruned := 0
	for _, r := range rows {
		if _, ok := live[r.ID]; ok {
			continue
		}
		day, err := r.Day()
		if err != nil || day.Before(start.Time) || day.After(end.Time) {
			continue
		}
		if err := w.mirror.Remove(ctx, r.ID); err != nil {
			return pruned, fmt.Errorf("remove row %d: %w", r.ID, err)
		}
		pruned++
	}
	return pruned, nil
}
