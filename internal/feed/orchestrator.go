// Package feed implements the event ingestion pipeline: concurrent
// fetching, normalization to canonical events, deduplication, and the
// cache-first read path.
package feed

import (
	"context"
	"sync"
	"time"

	"github.com/bobmcallan/stockfeed/internal/common"
	"github.com/bobmcallan/stockfeed/internal/providers"
)

// MacroNewsSource fetches macro news with per-ticker sentiment.
type MacroNewsSource interface {
	NewsSentiment(ctx context.Context, ticker, timeFrom string, limit int) ([]providers.NewsFeedItem, error)
}

// CompanySource fetches company-scoped records by date window.
type CompanySource interface {
	CompanyNews(ctx context.Context, symbol, from, to string) ([]providers.CompanyNewsItem, error)
	Filings(ctx context.Context, symbol, from, to string) ([]providers.Filing, error)
	InsiderTransactions(ctx context.Context, symbol, from, to string) ([]providers.InsiderTransaction, error)
}

// RawBundle holds the concatenated raw records from every provider fetch.
// Slices are empty, never nil checks required, when a provider fails.
type RawBundle struct {
	MacroNews           []providers.NewsFeedItem
	CompanyNews         []providers.CompanyNewsItem
	Filings             []providers.Filing
	InsiderTransactions []providers.InsiderTransaction
}

// macroNewsLimit caps a single NEWS_SENTIMENT fetch.
const macroNewsLimit = 1000

// Orchestrator fans out one fetch per provider, and within the company
// news provider one fetch per date sub-range, then flattens results.
// Failures degrade to empty slices: partial data is preferred over total
// failure, so no fetch error ever reaches the caller.
type Orchestrator struct {
	macro         MacroNewsSource
	company       CompanySource
	logger        *common.Logger
	batchSizeDays int
	maxConcurrent int
	now           func() time.Time
}

// NewOrchestrator creates an orchestrator over the given sources.
func NewOrchestrator(macro MacroNewsSource, company CompanySource, batchSizeDays, maxConcurrent int, logger *common.Logger) *Orchestrator {
	if batchSizeDays < 1 {
		batchSizeDays = 7
	}
	if maxConcurrent < 1 {
		maxConcurrent = 4
	}
	return &Orchestrator{
		macro:         macro,
		company:       company,
		logger:        logger,
		batchSizeDays: batchSizeDays,
		maxConcurrent: maxConcurrent,
		now:           time.Now,
	}
}

// FetchEvents fetches raw records from all providers over the trailing
// lookback window. All provider fetches, and all sub-range fetches within
// the company news provider, run concurrently; the call blocks until every
// sub-fetch completes.
func (o *Orchestrator) FetchEvents(ctx context.Context, ticker string, lookbackDays int) *RawBundle {
	end := o.now()
	start := end.AddDate(0, 0, -lookbackDays)

	bundle := &RawBundle{}
	var wg sync.WaitGroup

	wg.Add(4)
	go func() {
		defer wg.Done()
		bundle.MacroNews = o.fetchMacroNews(ctx, ticker, start)
	}()
	go func() {
		defer wg.Done()
		bundle.CompanyNews = o.fetchCompanyNews(ctx, ticker, start, end)
	}()
	go func() {
		defer wg.Done()
		bundle.Filings = o.fetchFilings(ctx, ticker, start, end)
	}()
	go func() {
		defer wg.Done()
		bundle.InsiderTransactions = o.fetchInsiderTransactions(ctx, ticker, start, end)
	}()
	wg.Wait()

	o.logger.Info().
		Str("ticker", ticker).
		Int("macro_news", len(bundle.MacroNews)).
		Int("company_news", len(bundle.CompanyNews)).
		Int("filings", len(bundle.Filings)).
		Int("insider_transactions", len(bundle.InsiderTransactions)).
		Msg("provider fetch complete")

	return bundle
}

func (o *Orchestrator) fetchMacroNews(ctx context.Context, ticker string, start time.Time) []providers.NewsFeedItem {
	items, err := o.macro.NewsSentiment(ctx, ticker, common.CompactDateTime(start), macroNewsLimit)
	if err != nil {
		o.logger.Warn().
			Str("ticker", ticker).
			Str("error", err.Error()).
			Msg("macro news fetch failed, continuing with empty result")
		return nil
	}
	return items
}

// fetchCompanyNews fans out one fetch per date sub-range through a bounded
// worker pool. Sub-ranges are issued most-recent-first so a rate-limited
// partial fetch biases toward the freshest data.
func (o *Orchestrator) fetchCompanyNews(ctx context.Context, ticker string, start, end time.Time) []providers.CompanyNewsItem {
	var (
		mu    sync.Mutex
		items []providers.CompanyNewsItem
		wg    sync.WaitGroup
	)
	sem := make(chan struct{}, o.maxConcurrent)

	for span := range common.SplitRange(start, end, o.batchSizeDays) {
		wg.Add(1)
		go func(span common.DateRange) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			batch, err := o.company.CompanyNews(ctx, ticker, span.From, span.To)
			if err != nil {
				o.logger.Warn().
					Str("ticker", ticker).
					Str("from", span.From).
					Str("to", span.To).
					Str("error", err.Error()).
					Msg("company news sub-range fetch failed, continuing with empty result")
				return
			}
			mu.Lock()
			items = append(items, batch...)
			mu.Unlock()
		}(span)
	}
	wg.Wait()

	return items
}

func (o *Orchestrator) fetchFilings(ctx context.Context, ticker string, start, end time.Time) []providers.Filing {
	filings, err := o.company.Filings(ctx, ticker, common.CalendarDate(start), common.CalendarDate(end))
	if err != nil {
		o.logger.Warn().
			Str("ticker", ticker).
			Str("error", err.Error()).
			Msg("filings fetch failed, continuing with empty result")
		return nil
	}
	return filings
}

func (o *Orchestrator) fetchInsiderTransactions(ctx context.Context, ticker string, start, end time.Time) []providers.InsiderTransaction {
	transactions, err := o.company.InsiderTransactions(ctx, ticker, common.CalendarDate(start), common.CalendarDate(end))
	if err != nil {
		o.logger.Warn().
			Str("ticker", ticker).
			Str("error", err.Error()).
			Msg("insider transactions fetch failed, continuing with empty result")
		return nil
	}
	return transactions
}
