package feed

import (
	"context"
	"sort"
	"time"

	"github.com/bobmcallan/stockfeed/internal/cache"
	"github.com/bobmcallan/stockfeed/internal/common"
	"github.com/bobmcallan/stockfeed/internal/models"
	"github.com/bobmcallan/stockfeed/internal/providers"
)

// PriceSource fetches OHLCV candles and company metadata.
type PriceSource interface {
	Candles(ctx context.Context, symbol string, from, to time.Time) (*providers.CandleResponse, error)
	CompanyProfile(ctx context.Context, symbol string) (*providers.Profile, error)
}

// Options configures the feed service for a single ticker.
type Options struct {
	Ticker        string
	LookbackDays  int
	CacheTTLHours int
	DayEventCap   int
}

// Service is the read-side entry point over the pipeline: cache-first
// event loading, price history, and day filtering.
type Service struct {
	opts         Options
	orchestrator *Orchestrator
	normalizer   *Normalizer
	store        *cache.Store
	prices       PriceSource
	logger       *common.Logger
	now          func() time.Time
}

// NewService creates the feed service.
func NewService(opts Options, orchestrator *Orchestrator, normalizer *Normalizer, store *cache.Store, prices PriceSource, logger *common.Logger) *Service {
	if opts.CacheTTLHours < 1 {
		opts.CacheTTLHours = 6
	}
	if opts.DayEventCap < 1 {
		opts.DayEventCap = 20
	}
	return &Service{
		opts:         opts,
		orchestrator: orchestrator,
		normalizer:   normalizer,
		store:        store,
		prices:       prices,
		logger:       logger,
		now:          time.Now,
	}
}

// LoadEventData returns the event feed for the configured ticker. A fresh
// cache entry short-circuits the fetch; otherwise the entry is invalidated
// and the full fetch -> normalize -> dedupe -> write cycle runs. The only
// failure mode is an empty or partially populated list — errors along the
// way are logged, never propagated.
func (s *Service) LoadEventData(ctx context.Context, forceRefresh bool) []models.Event {
	ticker := s.opts.Ticker

	if !forceRefresh {
		if entry := s.store.Read(ticker); entry != nil {
			stale, err := common.IsStale(entry.Timestamp, common.CompactDateTime(s.now()), s.opts.CacheTTLHours)
			if err != nil {
				s.logger.Warn().
					Str("ticker", ticker).
					Str("timestamp", entry.Timestamp).
					Msg("cache timestamp unparseable, refetching")
			} else if !stale {
				s.logger.Info().
					Str("ticker", ticker).
					Int("events", len(entry.Data)).
					Msg("serving events from cache")
				return entry.Data
			}
		}
	}

	s.store.Invalidate(ticker)

	bundle := s.orchestrator.FetchEvents(ctx, ticker, s.opts.LookbackDays)
	events := Deduplicate(s.normalizer.Normalize(bundle, ticker))

	if err := s.store.Write(ticker, events, common.CompactDateTime(s.now())); err != nil {
		s.logger.Warn().
			Str("ticker", ticker).
			Str("error", err.Error()).
			Msg("cache write failed, serving uncached events")
	}

	s.logger.Info().
		Str("ticker", ticker).
		Int("events", len(events)).
		Msg("event feed refreshed")

	return events
}

// EventsOnDay filters events to a single calendar day (today when date is
// empty). When the day's count exceeds the configured cap, only the
// top-ranked subset is returned, sorted by importance descending with ties
// keeping their original relative order.
func (s *Service) EventsOnDay(events []models.Event, date string) []models.Event {
	if date == "" {
		date = common.CalendarDate(s.now())
	}

	var onDay []models.Event
	for _, event := range events {
		if event.StdDate == date {
			onDay = append(onDay, event)
		}
	}

	if len(onDay) > s.opts.DayEventCap {
		sort.SliceStable(onDay, func(i, j int) bool {
			return onDay[i].ImportanceRank > onDay[j].ImportanceRank
		})
		onDay = onDay[:s.opts.DayEventCap]
	}

	return onDay
}

// LoadPriceData fetches daily OHLCV candles over the lookback window.
// Price data is served fresh on every call and is not cached.
func (s *Service) LoadPriceData(ctx context.Context) ([]models.Candle, error) {
	end := s.now()
	start := end.AddDate(0, 0, -s.opts.LookbackDays)

	resp, err := s.prices.Candles(ctx, s.opts.Ticker, start, end)
	if err != nil {
		return nil, err
	}

	candles := make([]models.Candle, 0, len(resp.Timestamp))
	for i := range resp.Timestamp {
		if i >= len(resp.Open) || i >= len(resp.High) || i >= len(resp.Low) || i >= len(resp.Close) || i >= len(resp.Volume) {
			break
		}
		candles = append(candles, models.Candle{
			Date:   common.CalendarDate(time.Unix(resp.Timestamp[i], 0)),
			Open:   resp.Open[i],
			High:   resp.High[i],
			Low:    resp.Low[i],
			Close:  resp.Close[i],
			Volume: resp.Volume[i],
		})
	}
	return candles, nil
}

// Profile fetches display metadata for the configured ticker.
func (s *Service) Profile(ctx context.Context) (*models.CompanyProfile, error) {
	profile, err := s.prices.CompanyProfile(ctx, s.opts.Ticker)
	if err != nil {
		return nil, err
	}
	return &models.CompanyProfile{
		Ticker:   profile.Ticker,
		Name:     profile.Name,
		Exchange: profile.Exchange,
		Logo:     profile.Logo,
		WebURL:   profile.WebURL,
	}, nil
}

// Ticker returns the configured ticker symbol.
func (s *Service) Ticker() string {
	return s.opts.Ticker
}
