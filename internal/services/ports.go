// Package services implements the ledger operations on top of the entity
// store: the tag catalog, the transaction ledger, recurring expenses,
// settings and reports.
package services

import (
	"context"

	"ledger/internal/amqp"
	"ledger/internal/core"
)

// Store ports, satisfied by *storage.SQLiteRepository.
type (
	TagStore interface {
		ListTags(ctx context.Context) ([]core.Tag, error)
		ListTagsByType(ctx context.Context, typ core.TxType) ([]core.Tag, error)
		GetTag(ctx context.Context, id int64) (core.Tag, error)
		CreateTag(ctx context.Context, t core.Tag) (core.Tag, error)
		DeleteCustomTag(ctx context.Context, id int64) (bool, error)
	}

	TransactionStore interface {
		InsertTransaction(ctx context.Context, tx core.Transaction) (int64, error)
		DeleteTransaction(ctx context.Context, id int64) (bool, error)
		GetTransaction(ctx context.Context, id int64) (core.TransactionView, error)
		QueryTransactions(ctx context.Context, f core.TransactionFilter) ([]core.TransactionView, error)
		DistinctCurrencies(ctx context.Context, start, end core.Date) ([]string, error)
	}

	RecurringStore interface {
		ListRecurring(ctx context.Context) ([]core.RecurringExpenseView, error)
		InsertRecurring(ctx context.Context, re core.RecurringExpense) (int64, error)
		DeleteRecurring(ctx context.Context, id int64) error
	}

	SettingStore interface {
		GetSetting(ctx context.Context, key string) (string, bool, error)
		SetSetting(ctx context.Context, key, value string) error
		SetSettingIfAbsent(ctx context.Context, key, value string) (bool, error)
	}
)

// EventPublisher announces committed ledger changes. *amqp.Client
// implements it.
type EventPublisher interface {
	Publish(ctx context.Context, ev amqp.LedgerEvent) error
}
