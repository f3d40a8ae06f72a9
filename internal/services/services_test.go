package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/amqp"
	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/storage"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []amqp.LedgerEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, ev amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) kinds() []amqp.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.EventKind, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Kind
	}
	return out
}

type fixture struct {
	repo      *storage.SQLiteRepository
	tags      *TagCatalog
	ledger    *TransactionLedger
	recurring *RecurringRegistry
	settings  *SettingsStore
	reports   *ReportService
	publisher *fakePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	pub := &fakePublisher{}
	f := &fixture{
		repo:      repo,
		tags:      NewTagCatalog(repo, cache.NewLRU[[]core.Tag](8, time.Minute)),
		ledger:    NewTransactionLedger(repo, repo, pub),
		recurring: NewRecurringRegistry(repo, repo),
		settings:  NewSettingsStore(repo, "CNY"),
		publisher: pub,
	}
	f.reports = NewReportService(f.ledger, f.tags, f.settings)
	return f
}

func tagID(id int64) *int64 { return &id }

func (f *fixture) tagByName(t *testing.T, name string) core.Tag {
	t.Helper()
	all, err := f.tags.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	for _, tag := range all {
		if tag.Name == name {
			return tag
		}
	}
	t.Fatalf("tag %q not found", name)
	return core.Tag{}
}

func (f *fixture) add(t *testing.T, amount, currency string, date time.Time, tag *core.Tag, typ core.TxType) int64 {
	t.Helper()
	in := NewTransaction{
		Amount:   decimal.RequireFromString(amount),
		Currency: currency,
		Date:     date,
		Type:     typ,
	}
	if tag != nil {
		in.TagID = tagID(tag.ID)
	}
	id, err := f.ledger.Insert(context.Background(), in)
	if err != nil {
		t.Fatalf("insert %s %s: %v", amount, currency, err)
	}
	return id
}

func march(day int) time.Time {
	return time.Date(2024, 3, day, 9, 0, 0, 0, time.UTC)
}

func marchWindow() core.Window {
	return core.Window{Mode: core.MonthlyMode, Monthly: core.MonthlyWindow{Year: 2024, Month: time.March}}
}

func TestTagCatalogCreateDefaultsAndValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tag, err := f.tags.Create(ctx, NewTag{Name: "  Coffee ", Type: core.Expense})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tag.Name != "Coffee" || tag.Icon != "tag" || tag.Color != "#607D8B" || !tag.IsCustom {
		t.Fatalf("unexpected tag %+v", tag)
	}

	bad := []NewTag{
		{Name: "   ", Type: core.Expense},
		{Name: "x", Type: "transfer"},
		{Name: "x", Type: core.Income, Color: "blue"},
	}
	for _, in := range bad {
		if _, err := f.tags.Create(ctx, in); !core.IsValidation(err) {
			t.Fatalf("%+v: expected validation error, got %v", in, err)
		}
	}
}

func TestTagCatalogCacheInvalidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before, err := f.tags.ListByType(ctx, core.Income)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(before) != 1 {
		t.Fatalf("expected 1 income tag, got %d", len(before))
	}

	bonus, err := f.tags.Create(ctx, NewTag{Name: "Bonus", Type: core.Income, Color: "#4CAF50"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	after, _ := f.tags.ListByType(ctx, core.Income)
	if len(after) != 2 {
		t.Fatalf("cache not invalidated on create: %d tags", len(after))
	}

	if err := f.tags.Delete(ctx, bonus.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	after, _ = f.tags.ListByType(ctx, core.Income)
	if len(after) != 1 {
		t.Fatalf("cache not invalidated on delete: %d tags", len(after))
	}

	// Callers may not corrupt the cached slice.
	after[0].Name = "mutated"
	again, _ := f.tags.ListByType(ctx, core.Income)
	if again[0].Name != "Salary" {
		t.Fatalf("cached slice was shared: %q", again[0].Name)
	}
}

func TestTagCatalogDeleteBuiltinIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	food := f.tagByName(t, "Food")

	if err := f.tags.Delete(ctx, food.ID); err != nil {
		t.Fatalf("delete built-in: %v", err)
	}
	if err := f.tags.Delete(ctx, 424242); err != nil {
		t.Fatalf("delete unknown: %v", err)
	}
	if _, err := f.tags.Get(ctx, food.ID); err != nil {
		t.Fatalf("built-in tag vanished: %v", err)
	}
}

func TestDeletedTagKeepsTransactions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gym, err := f.tags.Create(ctx, NewTag{Name: "Gym", Type: core.Expense})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.add(t, "40", "CNY", march(3), &gym, core.Expense)
	f.add(t, "60", "CNY", march(4), &gym, core.Expense)

	if err := f.tags.Delete(ctx, gym.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	txs, err := f.ledger.Query(ctx, core.TransactionFilter{Start: core.NewDate(2024, 3, 1), End: core.NewDate(2024, 3, 31)})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("transactions lost with their tag: %d", len(txs))
	}
	for _, tx := range txs {
		if tx.TagID == nil || *tx.TagID != gym.ID || !tx.Tag.IsMissing() {
			t.Fatalf("expected dangling reference, got %+v", tx)
		}
	}

	ref, err := f.tags.Resolve(ctx, tagID(gym.ID))
	if err != nil || !ref.IsMissing() {
		t.Fatalf("resolve deleted tag = %+v, %v", ref, err)
	}

	report, err := f.reports.Statistics(ctx, StatsRequest{Window: marchWindow()})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	b := report.Breakdown.Buckets
	if len(b) != 1 || b[0].TagID != core.OtherTagID || b[0].TagName != "Other" || b[0].Percentage != 100 {
		t.Fatalf("expected a single Other bucket, got %+v", b)
	}
}

func TestLedgerInsertValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	food := f.tagByName(t, "Food")
	salary := f.tagByName(t, "Salary")

	cases := []struct {
		name string
		in   NewTransaction
		want error
	}{
		{"zero amount", NewTransaction{Amount: decimal.Zero, Currency: "CNY", Date: march(1), Type: core.Expense}, core.ErrInvalidAmount},
		{"negative amount", NewTransaction{Amount: decimal.NewFromInt(-5), Currency: "CNY", Date: march(1), Type: core.Expense}, core.ErrInvalidAmount},
		{"blank currency", NewTransaction{Amount: decimal.NewFromInt(5), Currency: " ", Date: march(1), Type: core.Expense}, core.ErrInvalidCurrency},
		{"bad type", NewTransaction{Amount: decimal.NewFromInt(5), Currency: "CNY", Date: march(1), Type: "gift"}, core.ErrInvalidType},
		{"unknown tag", NewTransaction{Amount: decimal.NewFromInt(5), Currency: "CNY", Date: march(1), Type: core.Expense, TagID: tagID(9999)}, core.ErrUnknownTag},
		{"tag type mismatch", NewTransaction{Amount: decimal.NewFromInt(5), Currency: "CNY", Date: march(1), Type: core.Expense, TagID: tagID(salary.ID)}, core.ErrTagTypeMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ledger.Insert(ctx, tc.in)
			if !core.IsValidation(err) || !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	id, err := f.ledger.Insert(ctx, NewTransaction{
		Amount: decimal.RequireFromString("12.345"), Currency: "cny", Date: march(1), Type: core.Expense, TagID: tagID(food.ID),
	})
	if err != nil {
		t.Fatalf("valid insert: %v", err)
	}
	got, err := f.ledger.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Currency != "CNY" || !got.Amount.Equal(decimal.RequireFromString("12.35")) {
		t.Fatalf("stored %s %s", got.Amount, got.Currency)
	}
	if len(f.publisher.kinds()) != 1 {
		t.Fatalf("only the valid insert should publish, got %v", f.publisher.kinds())
	}
}

func TestLedgerKeepsEntryWallClock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	food := f.tagByName(t, "Food")

	cases := []struct {
		name string
		at   time.Time
		day  string
	}{
		{"east of utc", time.Date(2024, 3, 1, 7, 0, 0, 0, time.FixedZone("CST", 8*3600)), "2024-03-01 07:00:00"},
		{"west of utc", time.Date(2024, 3, 31, 20, 0, 0, 0, time.FixedZone("EDT", -4*3600)), "2024-03-31 20:00:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id := f.add(t, "10", "CNY", tc.at, &food, core.Expense)
			got, err := f.ledger.Get(ctx, id)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if s := got.Date.Format("2006-01-02 15:04:05"); s != tc.day {
				t.Fatalf("stored date = %s, want %s", s, tc.day)
			}
		})
	}

	windows := []struct {
		month time.Month
		total int64
	}{
		{time.February, 0},
		{time.March, 20},
		{time.April, 0},
	}
	for _, w := range windows {
		win := core.Window{Mode: core.MonthlyMode, Monthly: core.MonthlyWindow{Year: 2024, Month: w.month}}
		report, err := f.reports.Statistics(ctx, StatsRequest{Window: win, Currency: "CNY"})
		if err != nil {
			t.Fatalf("stats %s: %v", w.month, err)
		}
		if !report.Breakdown.Total.Equal(decimal.NewFromInt(w.total)) {
			t.Fatalf("%s total = %s, want %d", w.month, report.Breakdown.Total, w.total)
		}
	}
}

func TestAmountsKeepTwoDecimalsInEveryCurrency(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		amount   string
		currency string
		want     string
	}{
		{"1.234", "KWD", "1.23"},
		{"0.125", "BHD", "0.13"},
		{"1500", "JPY", "1500"},
	}
	for _, tc := range cases {
		id := f.add(t, tc.amount, tc.currency, march(2), nil, core.Expense)
		got, err := f.ledger.Get(ctx, id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !got.Amount.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("%s %s stored as %s, want %s", tc.amount, tc.currency, got.Amount, tc.want)
		}
	}
}

func TestLedgerPublishesAndToleratesPublisherFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.add(t, "10", "CNY", march(1), nil, core.Expense)
	if err := f.ledger.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.ledger.Delete(ctx, id); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
	kinds := f.publisher.kinds()
	if len(kinds) != 2 || kinds[0] != amqp.TransactionCreated || kinds[1] != amqp.TransactionDeleted {
		t.Fatalf("unexpected events %v", kinds)
	}

	f.publisher.err = errors.New("broker down")
	if _, err := f.ledger.Insert(ctx, NewTransaction{
		Amount: decimal.NewFromInt(1), Currency: "CNY", Date: march(2), Type: core.Expense,
	}); err != nil {
		t.Fatalf("publish failure must not fail the insert: %v", err)
	}
}

func TestLedgerQueryFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	food := f.tagByName(t, "Food")
	transport := f.tagByName(t, "Transport")

	a := f.add(t, "10", "CNY", march(1), &food, core.Expense)
	b := f.add(t, "20", "CNY", march(2), &transport, core.Expense)
	f.add(t, "30", "CNY", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), &food, core.Expense)

	all, err := f.ledger.Query(ctx, core.TransactionFilter{Start: core.NewDate(2024, 3, 1), End: core.NewDate(2024, 3, 31)})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 2 || all[0].ID != b || all[1].ID != a {
		t.Fatalf("unexpected rows %+v", all)
	}

	onlyFood, err := f.ledger.Query(ctx, core.TransactionFilter{
		Start: core.NewDate(2024, 3, 1), End: core.NewDate(2024, 3, 31), TagIDs: []int64{food.ID},
	})
	if err != nil || len(onlyFood) != 1 || onlyFood[0].ID != a {
		t.Fatalf("tag filter = %+v, %v", onlyFood, err)
	}

	if _, err := f.ledger.Query(ctx, core.TransactionFilter{Type: "gift"}); !core.IsValidation(err) {
		t.Fatalf("expected validation error for bad type, got %v", err)
	}
}

func TestRecurringRegistry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.recurring.Create(ctx, NewRecurringExpense{Amount: decimal.NewFromInt(100), Currency: "CNY", DayOfMonth: 32})
	if !errors.Is(err, core.ErrInvalidDayOfMonth) {
		t.Fatalf("day 32: expected ErrInvalidDayOfMonth, got %v", err)
	}
	if _, err := f.recurring.Create(ctx, NewRecurringExpense{Amount: decimal.NewFromInt(100), Currency: "CNY", DayOfMonth: 5, TagID: tagID(9999)}); !errors.Is(err, core.ErrUnknownTag) {
		t.Fatalf("unknown tag: got %v", err)
	}
	if _, err := f.recurring.Create(ctx, NewRecurringExpense{Amount: decimal.NewFromInt(100), DayOfMonth: 5}); !errors.Is(err, core.ErrInvalidCurrency) {
		t.Fatalf("blank currency: got %v", err)
	}

	id, err := f.recurring.Create(ctx, NewRecurringExpense{Amount: decimal.NewFromInt(100), Currency: "CNY", DayOfMonth: 31, Note: "rent"})
	if err != nil {
		t.Fatalf("day 31: %v", err)
	}
	list, err := f.recurring.List(ctx)
	if err != nil || len(list) != 1 || list[0].ID != id || list[0].DayOfMonth != 31 {
		t.Fatalf("list = %+v, %v", list, err)
	}

	// Definitions never produce transactions.
	txs, err := f.ledger.Query(ctx, core.TransactionFilter{Start: core.NewDate(2000, 1, 1), End: core.NewDate(2100, 1, 1)})
	if err != nil || len(txs) != 0 {
		t.Fatalf("recurring entry was materialised: %+v, %v", txs, err)
	}

	if err := f.recurring.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.recurring.Delete(ctx, id); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
}

func TestSettingsStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cur, err := f.settings.DefaultCurrency(ctx)
	if err != nil || cur != "CNY" {
		t.Fatalf("fallback currency = %q, %v", cur, err)
	}
	if err := f.settings.EnsureDefaults(ctx); err != nil {
		t.Fatalf("ensure defaults: %v", err)
	}
	if err := f.settings.SetDefaultCurrency(ctx, "usd"); err != nil {
		t.Fatalf("set default currency: %v", err)
	}
	// A second EnsureDefaults must not overwrite the user's choice.
	if err := f.settings.EnsureDefaults(ctx); err != nil {
		t.Fatalf("ensure defaults: %v", err)
	}
	if cur, _ := f.settings.DefaultCurrency(ctx); cur != "USD" {
		t.Fatalf("default currency = %q", cur)
	}

	if err := f.settings.Set(ctx, core.SettingDefaultCurrency, "dollars"); !core.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := f.settings.Set(ctx, "theme", "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok, err := f.settings.Get(ctx, "theme"); err != nil || !ok || v != "dark" {
		t.Fatalf("get = %q %v %v", v, ok, err)
	}
	if err := f.settings.Set(ctx, " ", "x"); !core.IsValidation(err) {
		t.Fatalf("blank key: expected validation error, got %v", err)
	}
}

func TestStatisticsScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	food := f.tagByName(t, "Food")
	transport := f.tagByName(t, "Transport")
	salary := f.tagByName(t, "Salary")

	f.add(t, "100", "CNY", march(1), &food, core.Expense)
	f.add(t, "50", "CNY", march(5), &transport, core.Expense)
	f.add(t, "30", "CNY", march(31), &food, core.Expense)
	f.add(t, "70", "USD", march(10), &food, core.Expense)
	f.add(t, "5000", "CNY", march(15), &salary, core.Income)
	f.add(t, "999", "CNY", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), &food, core.Expense)

	report, err := f.reports.Statistics(ctx, StatsRequest{Window: marchWindow(), Currency: "CNY"})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if report.Start != core.NewDate(2024, 3, 1) || report.End != core.NewDate(2024, 3, 31) {
		t.Fatalf("window = %s..%s", report.Start, report.End)
	}
	if len(report.Currencies) != 2 || report.Currencies[0] != "CNY" || report.Currencies[1] != "USD" {
		t.Fatalf("currencies = %v", report.Currencies)
	}
	bd := report.Breakdown
	if bd.Currency != "CNY" || !bd.Total.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("breakdown %s total %s", bd.Currency, bd.Total)
	}
	if len(bd.Buckets) != 2 ||
		bd.Buckets[0].TagName != "Food" || bd.Buckets[0].Percentage != 72 ||
		bd.Buckets[1].TagName != "Transport" || bd.Buckets[1].Percentage != 28 {
		t.Fatalf("buckets = %+v", bd.Buckets)
	}

	income, err := f.reports.Statistics(ctx, StatsRequest{Window: marchWindow(), Type: core.Income})
	if err != nil {
		t.Fatalf("income stats: %v", err)
	}
	if !income.Breakdown.Total.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("income total = %s", income.Breakdown.Total)
	}
}

func TestStatisticsCurrencyFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Nothing in the window: the default currency is used.
	report, err := f.reports.Statistics(ctx, StatsRequest{Window: marchWindow(), Currency: "EUR"})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if report.Breakdown.Currency != "CNY" || !report.Breakdown.Total.IsZero() || len(report.Breakdown.Buckets) != 0 {
		t.Fatalf("empty window breakdown = %+v", report.Breakdown)
	}

	// Requested currency absent: the first available one wins.
	f.add(t, "5", "USD", march(2), nil, core.Expense)
	report, err = f.reports.Statistics(ctx, StatsRequest{Window: marchWindow(), Currency: "EUR"})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if report.Breakdown.Currency != "USD" {
		t.Fatalf("currency = %s, want USD", report.Breakdown.Currency)
	}

	if _, err := f.reports.Statistics(ctx, StatsRequest{Window: marchWindow(), Type: "gift"}); !core.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRefreshAndNavigate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	food := f.tagByName(t, "Food")

	f.add(t, "10", "CNY", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), &food, core.Expense)
	f.add(t, "20", "CNY", march(10), &food, core.Expense)

	w := f.reports.Navigate(marchWindow(), core.Previous)
	snap, err := f.reports.Refresh(ctx, ListRequest{Window: w})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if snap.Start != core.NewDate(2024, 2, 1) || snap.End != core.NewDate(2024, 2, 29) {
		t.Fatalf("window = %s..%s", snap.Start, snap.End)
	}
	if len(snap.Transactions) != 1 || !snap.Transactions[0].Amount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("transactions = %+v", snap.Transactions)
	}
	if len(snap.Tags) != 8 {
		t.Fatalf("tags = %d", len(snap.Tags))
	}
}
