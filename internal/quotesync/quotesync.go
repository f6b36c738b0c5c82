package quotesync

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/juanicaii/investment-tracker/internal/models"
	"github.com/juanicaii/investment-tracker/internal/providers"
	"github.com/juanicaii/investment-tracker/internal/store"
	"go.uber.org/zap"
)

// Source names as they appear in the report.
const (
	SourceFX     = "dolarapi"
	SourceCrypto = "coingecko"
	SourceEquity = "yahoo"
)

// Per-source status values.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusPending = "pending"
)

// Report is the outcome of one sync run. The orchestrator always
// completes and returns one of these, even when every source failed.
type Report struct {
	RunID   string                  `json:"runId"`
	Day     string                  `json:"day"`
	Updated int                     `json:"updated"`
	Errors  []string                `json:"errors"`
	Sources map[string]string       `json:"sources"`
	Details []providers.FetchDetail `json:"details"`
}

// Syncer runs the three quote sources against the store. Sources are
// independent: one source failing completely still lets the others
// update their quotes.
type Syncer struct {
	logger *zap.Logger
	store  *store.Store
	equity providers.EquityClientInterface
	crypto providers.CryptoClientInterface
	fx     providers.FXClientInterface
}

// NewSyncer creates a new quote sync orchestrator.
func NewSyncer(
	logger *zap.Logger,
	st *store.Store,
	equity providers.EquityClientInterface,
	crypto providers.CryptoClientInterface,
	fx providers.FXClientInterface,
) *Syncer {
	return &Syncer{
		logger: logger,
		store:  st,
		equity: equity,
		crypto: crypto,
		fx:     fx,
	}
}

// sourcePass is one quote source's sync step. A hard error marks the
// whole source as failed; itemErrs are individual assets that were
// skipped while the pass itself still counts as ok.
type sourcePass struct {
	name string
	run  func() (updated int, itemErrs []string, hardErr error)
}

// Run executes all three source passes for the given calendar day and
// returns a combined report. It never returns an error: every failure
// is converted into report entries at the pass boundary.
func (s *Syncer) Run(ctx context.Context, day string) *Report {
	report := &Report{
		RunID:  uuid.NewString(),
		Day:    day,
		Errors: []string{},
		Sources: map[string]string{
			SourceFX:     StatusPending,
			SourceCrypto: StatusPending,
			SourceEquity: StatusPending,
		},
		Details: []providers.FetchDetail{},
	}

	l := s.logger.With(zap.String("run_id", report.RunID), zap.String("day", day))
	l.Info("Starting quote sync")

	passes := []sourcePass{
		{SourceFX, func() (int, []string, error) { return s.syncRates(ctx, day) }},
		{SourceCrypto, func() (int, []string, error) { return s.syncCrypto(ctx, day) }},
		{SourceEquity, func() (int, []string, error) { return s.syncEquities(ctx, day, report) }},
	}

	for _, p := range passes {
		updated, itemErrs, hardErr := p.run()
		report.Updated += updated
		report.Errors = append(report.Errors, itemErrs...)
		if hardErr != nil {
			report.Sources[p.name] = StatusError
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", p.name, hardErr))
			l.Warn("Quote source failed", zap.String("source", p.name), zap.Error(hardErr))
			continue
		}
		report.Sources[p.name] = StatusOK
	}

	l.Info("Quote sync finished",
		zap.Int("updated", report.Updated),
		zap.Int("errors", len(report.Errors)),
	)
	return report
}

// syncRates fetches the current USD/ARS rates and stores one row per
// rate type.
func (s *Syncer) syncRates(ctx context.Context, day string) (int, []string, error) {
	rates, err := s.fx.FetchRates(ctx)
	if err != nil {
		return 0, nil, err
	}

	updated := 0
	var itemErrs []string
	for _, r := range rates {
		if err := s.store.UpsertDollarRate(day, r.Type, r.Buy, r.Sell); err != nil {
			itemErrs = append(itemErrs, fmt.Sprintf("rate %s: %v", r.Type, err))
			continue
		}
		updated++
	}
	return updated, itemErrs, nil
}

// syncCrypto batches all configured crypto ids into one provider call
// and stores a quote per asset that came back with a price.
func (s *Syncer) syncCrypto(ctx context.Context, day string) (int, []string, error) {
	assets, err := s.store.AssetsByType(models.CryptoTypes()...)
	if err != nil {
		return 0, nil, err
	}

	var itemErrs []string
	var ids []string
	// Several assets may share one provider id; each still gets its
	// own quote row.
	byID := make(map[string][]models.Asset)
	for _, asset := range assets {
		if asset.CoingeckoID == "" {
			itemErrs = append(itemErrs, fmt.Sprintf("%s: no crypto provider id configured", asset.Ticker))
			continue
		}
		if _, seen := byID[asset.CoingeckoID]; !seen {
			ids = append(ids, asset.CoingeckoID)
		}
		byID[asset.CoingeckoID] = append(byID[asset.CoingeckoID], asset)
	}

	prices, err := s.crypto.FetchPrices(ctx, ids)
	if err != nil {
		return 0, itemErrs, err
	}

	updated := 0
	for _, id := range ids {
		price, ok := prices[id]
		for _, asset := range byID[id] {
			if !ok {
				itemErrs = append(itemErrs, fmt.Sprintf("%s: no price returned", asset.Ticker))
				continue
			}
			if err := s.store.UpsertQuote(asset.ID, day, price); err != nil {
				itemErrs = append(itemErrs, fmt.Sprintf("%s: %v", asset.Ticker, err))
				continue
			}
			updated++
		}
	}
	return updated, itemErrs, nil
}

// syncEquities queries the equity provider one symbol at a time and
// stores a quote per asset that produced a price. The per-symbol
// attempt detail goes into the report for observability.
func (s *Syncer) syncEquities(ctx context.Context, day string, report *Report) (int, []string, error) {
	assets, err := s.store.AssetsByType(models.EquityTypes()...)
	if err != nil {
		return 0, nil, err
	}

	var itemErrs []string
	var symbols []string
	// Assets sharing a symbol (e.g. a CEDEAR and its underlying) are
	// fetched once and each get their own quote row.
	bySymbol := make(map[string][]models.Asset)
	for _, asset := range assets {
		if asset.YahooSymbol == "" {
			itemErrs = append(itemErrs, fmt.Sprintf("%s: no equity quote symbol configured", asset.Ticker))
			continue
		}
		if _, seen := bySymbol[asset.YahooSymbol]; !seen {
			symbols = append(symbols, asset.YahooSymbol)
		}
		bySymbol[asset.YahooSymbol] = append(bySymbol[asset.YahooSymbol], asset)
	}

	prices, details := s.equity.FetchPrices(ctx, symbols)
	report.Details = append(report.Details, details...)

	updated := 0
	for _, symbol := range symbols {
		price, ok := prices[symbol]
		for _, asset := range bySymbol[symbol] {
			if !ok {
				itemErrs = append(itemErrs, fmt.Sprintf("%s: no price returned", asset.Ticker))
				continue
			}
			if err := s.store.UpsertQuote(asset.ID, day, price); err != nil {
				itemErrs = append(itemErrs, fmt.Sprintf("%s: %v", asset.Ticker, err))
				continue
			}
			updated++
		}
	}
	return updated, itemErrs, nil
}
