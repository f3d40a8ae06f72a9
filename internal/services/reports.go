package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"ledger/internal/core"
	"ledger/internal/metrics"
)

type (
	// StatsRequest selects one breakdown. An empty Type means expense; an
	// empty Currency means the default currency.
	StatsRequest struct {
		Window   core.Window
		Type     core.TxType
		Currency string
		TagIDs   []int64
	}

	StatsReport struct {
		Start      core.Date      `json:"start"`
		End        core.Date      `json:"end"`
		Currencies []string       `json:"currencies"`
		Breakdown  core.Breakdown `json:"breakdown"`
	}

	// ListRequest selects the transactions shown for a window. An empty
	// TagIDs or Type matches everything.
	ListRequest struct {
		Window core.Window
		TagIDs []int64
		Type   core.TxType
	}

	// Snapshot is everything a list view needs after a refresh.
	Snapshot struct {
		Start        core.Date              `json:"start"`
		End          core.Date              `json:"end"`
		Tags         []core.Tag             `json:"tags"`
		Transactions []core.TransactionView `json:"transactions"`
	}
)

// ReportService resolves windows, fetches the matching rows and aggregates
// them. It holds no state between calls; Refresh re-reads everything.
type ReportService struct {
	ledger   *TransactionLedger
	tags     *TagCatalog
	settings *SettingsStore
}

func NewReportService(ledger *TransactionLedger, tags *TagCatalog, settings *SettingsStore) *ReportService {
	return &ReportService{ledger: ledger, tags: tags, settings: settings}
}

// Statistics returns the per-tag breakdown for the window. The currency is
// the requested one if any transaction in the window uses it, else the first
// currency in the window, else the default currency.
func (s *ReportService) Statistics(ctx context.Context, req StatsRequest) (StatsReport, error) {
	report, err := s.statistics(ctx, req)
	metrics.LedgerOperations.WithLabelValues("statistics", metrics.Result(err, core.IsValidation)).Inc()
	return report, err
}

func (s *ReportService) statistics(ctx context.Context, req StatsRequest) (StatsReport, error) {
	typ := req.Type
	if typ == "" {
		typ = core.Expense
	}
	if !typ.Valid() {
		return StatsReport{}, &core.ValidationError{Field: "type", Err: core.ErrInvalidType}
	}

	defaultCurrency, err := s.settings.DefaultCurrency(ctx)
	if err != nil {
		return StatsReport{}, fmt.Errorf("default currency: %w", err)
	}
	preferred := req.Currency
	if preferred == "" {
		preferred = defaultCurrency
	}

	start, end := req.Window.Resolve()

	var (
		currencies []string
		txs        []core.TransactionView
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		currencies, err = s.ledger.DistinctCurrencies(gctx, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.ledger.Query(gctx, core.TransactionFilter{
			Start:  start,
			End:    end,
			TagIDs: req.TagIDs,
			Type:   typ,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return StatsReport{}, err
	}

	currency := core.SelectCurrency(preferred, currencies, defaultCurrency)
	breakdown := core.Aggregate(txs, typ, currency)

	slog.DebugContext(ctx, "Statistics computed",
		"start", start.String(),
		"end", end.String(),
		"type", typ,
		"currency", currency,
		"buckets", len(breakdown.Buckets),
		"total", breakdown.Total.String())

	return StatsReport{
		Start:      start,
		End:        end,
		Currencies: currencies,
		Breakdown:  breakdown,
	}, nil
}

// Refresh re-reads the tag catalog and the window's transactions.
func (s *ReportService) Refresh(ctx context.Context, req ListRequest) (Snapshot, error) {
	start, end := req.Window.Resolve()
	snap := Snapshot{Start: start, End: end}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Tags, err = s.tags.ListAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Transactions, err = s.ledger.Query(gctx, core.TransactionFilter{
			Start:  start,
			End:    end,
			TagIDs: req.TagIDs,
			Type:   req.Type,
		})
		return err
	})
	err := g.Wait()
	metrics.LedgerOperations.WithLabelValues("refresh", metrics.Result(err, core.IsValidation)).Inc()
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Navigate moves the active mode of w one month in dir.
func (s *ReportService) Navigate(w core.Window, dir core.Direction) core.Window {
	return w.Navigate(dir)
}
