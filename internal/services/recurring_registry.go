package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/metrics"
)

type NewRecurringExpense struct {
	Amount     decimal.Decimal
	Currency   string
	DayOfMonth int
	TagID      *int64
	Note       string
}

// RecurringRegistry keeps the list of monthly obligations. Entries are
// descriptive: nothing turns them into transactions.
type RecurringRegistry struct {
	store RecurringStore
	tags  TagStore
}

func NewRecurringRegistry(store RecurringStore, tags TagStore) *RecurringRegistry {
	return &RecurringRegistry{store: store, tags: tags}
}

// List returns every entry ordered by day of month.
func (r *RecurringRegistry) List(ctx context.Context) ([]core.RecurringExpenseView, error) {
	return r.store.ListRecurring(ctx)
}

func (r *RecurringRegistry) Create(ctx context.Context, in NewRecurringExpense) (int64, error) {
	re := core.RecurringExpense{
		Amount:     in.Amount.Round(core.AmountScale),
		Currency:   strings.ToUpper(strings.TrimSpace(in.Currency)),
		DayOfMonth: in.DayOfMonth,
		TagID:      in.TagID,
		Note:       strings.TrimSpace(in.Note),
	}
	if err := re.Validate(); err != nil {
		metrics.LedgerOperations.WithLabelValues("recurring_create", "invalid").Inc()
		return 0, err
	}

	if re.TagID != nil {
		if _, err := r.tags.GetTag(ctx, *re.TagID); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				metrics.LedgerOperations.WithLabelValues("recurring_create", "invalid").Inc()
				return 0, &core.ValidationError{Field: "tag_id", Err: core.ErrUnknownTag}
			}
			return 0, fmt.Errorf("resolve tag: %w", err)
		}
	}

	id, err := r.store.InsertRecurring(ctx, re)
	metrics.LedgerOperations.WithLabelValues("recurring_create", metrics.Result(err, nil)).Inc()
	if err != nil {
		return 0, fmt.Errorf("save recurring expense: %w", err)
	}
	return id, nil
}

// Delete is idempotent.
func (r *RecurringRegistry) Delete(ctx context.Context, id int64) error {
	err := r.store.DeleteRecurring(ctx, id)
	metrics.LedgerOperations.WithLabelValues("recurring_delete", metrics.Result(err, nil)).Inc()
	return err
}
