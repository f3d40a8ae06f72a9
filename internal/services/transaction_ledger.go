package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/metrics"
)

// NewTransaction is the input of TransactionLedger.Insert. Currency is
// required; callers fill it from SettingsStore.DefaultCurrency when the
// user did not pick one.
type NewTransaction struct {
	Amount   decimal.Decimal
	Currency string
	Date     time.Time
	TagID    *int64
	Type     core.TxType
	Note     string
}

// TransactionLedger records and queries transactions and announces every
// committed change to an optional publisher.
type TransactionLedger struct {
	store     TransactionStore
	tags      TagStore
	publisher EventPublisher
}

// NewTransactionLedger builds a ledger; publisher may be nil.
func NewTransactionLedger(store TransactionStore, tags TagStore, publisher EventPublisher) *TransactionLedger {
	return &TransactionLedger{store: store, tags: tags, publisher: publisher}
}

// Insert validates in, checks that its tag exists and matches its type, and
// stores it.
func (l *TransactionLedger) Insert(ctx context.Context, in NewTransaction) (int64, error) {
	id, err := l.insert(ctx, in)
	metrics.LedgerOperations.WithLabelValues("transaction_insert", metrics.Result(err, core.IsValidation)).Inc()
	return id, err
}

func (l *TransactionLedger) insert(ctx context.Context, in NewTransaction) (int64, error) {
	tx := core.Transaction{
		Amount:   in.Amount.Round(core.AmountScale),
		Currency: strings.ToUpper(strings.TrimSpace(in.Currency)),
		Date:     in.Date,
		TagID:    in.TagID,
		Type:     in.Type,
		Note:     strings.TrimSpace(in.Note),
	}
	if err := tx.Validate(); err != nil {
		return 0, err
	}

	if tx.TagID != nil {
		tag, err := l.tags.GetTag(ctx, *tx.TagID)
		if errors.Is(err, core.ErrNotFound) {
			return 0, &core.ValidationError{Field: "tag_id", Err: core.ErrUnknownTag}
		}
		if err != nil {
			return 0, fmt.Errorf("resolve tag: %w", err)
		}
		if tag.Type != tx.Type {
			return 0, &core.ValidationError{Field: "tag_id", Err: core.ErrTagTypeMismatch}
		}
	}

	id, err := l.store.InsertTransaction(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}

	l.publish(ctx, amqp.TransactionCreated, id)
	return id, nil
}

// Delete removes a transaction. Deleting an unknown id succeeds silently.
func (l *TransactionLedger) Delete(ctx context.Context, id int64) error {
	deleted, err := l.store.DeleteTransaction(ctx, id)
	metrics.LedgerOperations.WithLabelValues("transaction_delete", metrics.Result(err, nil)).Inc()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if deleted {
		l.publish(ctx, amqp.TransactionDeleted, id)
	}
	return nil
}

func (l *TransactionLedger) Get(ctx context.Context, id int64) (core.TransactionView, error) {
	return l.store.GetTransaction(ctx, id)
}

// Query returns the transactions in f, newest first.
func (l *TransactionLedger) Query(ctx context.Context, f core.TransactionFilter) ([]core.TransactionView, error) {
	if f.Type != "" && !f.Type.Valid() {
		return nil, &core.ValidationError{Field: "type", Err: core.ErrInvalidType}
	}
	txs, err := l.store.QueryTransactions(ctx, f)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to query transactions",
			"start", f.Start.String(), "end", f.End.String(), "error", err)
		return nil, err
	}
	return txs, nil
}

// DistinctCurrencies lists the currencies used in [start, end], ascending.
func (l *TransactionLedger) DistinctCurrencies(ctx context.Context, start, end core.Date) ([]string, error) {
	currencies, err := l.store.DistinctCurrencies(ctx, start, end)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list currencies",
			"start", start.String(), "end", end.String(), "error", err)
		return nil, err
	}
	return currencies, nil
}

// publish never fails the caller: the row is already committed.
func (l *TransactionLedger) publish(ctx context.Context, kind amqp.EventKind, id int64) {
	if l.publisher == nil {
		return
	}
	ev := amqp.NewLedgerEvent(kind, id)
	if err := l.publisher.Publish(ctx, ev); err != nil {
		metrics.EventsPublished.WithLabelValues(string(kind), "error").Inc()
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"event_id", ev.EventID, "kind", kind, "transaction_id", id, "error", err)
		return
	}
	metrics.EventsPublished.WithLabelValues(string(kind), "ok").Inc()
}
