package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockfeed/internal/cache"
	"github.com/bobmcallan/stockfeed/internal/common"
	"github.com/bobmcallan/stockfeed/internal/models"
	"github.com/bobmcallan/stockfeed/internal/providers"
)

type stubPriceSource struct {
	candles    *providers.CandleResponse
	candlesErr error
	profile    *providers.Profile
	profileErr error
}

func (s *stubPriceSource) Candles(_ context.Context, _ string, _, _ time.Time) (*providers.CandleResponse, error) {
	return s.candles, s.candlesErr
}

func (s *stubPriceSource) CompanyProfile(_ context.Context, _ string) (*providers.Profile, error) {
	return s.profile, s.profileErr
}

// newTestService wires a full pipeline over stub providers and a real
// file-backed store in a temp dir.
func newTestService(t *testing.T, macro *stubMacroSource, company *stubCompanySource, prices *stubPriceSource) (*Service, *cache.Store) {
	t.Helper()
	logger := common.NewSilentLogger()
	store := cache.NewStore(t.TempDir(), logger)
	orchestrator := NewOrchestrator(macro, company, 7, 2, logger)
	svc := NewService(Options{
		Ticker:        "AAPL",
		LookbackDays:  14,
		CacheTTLHours: 6,
		DayEventCap:   20,
	}, orchestrator, NewNormalizer(logger), store, prices, logger)
	return svc, store
}

func TestLoadEventDataColdCache(t *testing.T) {
	macro := &stubMacroSource{
		items: []providers.NewsFeedItem{
			{Title: "Macro headline", Summary: "Body", TimePublished: "20250614T090000", Source: "Reuters"},
		},
	}
	company := &stubCompanySource{
		filings: []providers.Filing{
			{Form: "10-Q", FiledDate: "2025-06-13 16:05:00", ReportURL: "https://sec.example.com/10q"},
		},
	}
	svc, store := newTestService(t, macro, company, &stubPriceSource{})

	events := svc.LoadEventData(context.Background(), false)
	require.Len(t, events, 2)

	entry := store.Read("AAPL")
	require.NotNil(t, entry, "refresh writes through to the cache")
	assert.Len(t, entry.Data, 2)
	assert.NotEmpty(t, entry.Timestamp)
}

func TestLoadEventDataFreshCacheShortCircuits(t *testing.T) {
	macro := &stubMacroSource{
		items: []providers.NewsFeedItem{
			{Title: "Fetched live", Summary: "Body", TimePublished: "20250614T090000"},
		},
	}
	company := &stubCompanySource{}
	svc, store := newTestService(t, macro, company, &stubPriceSource{})

	cached := []models.Event{
		{StdDate: "2025-06-14", Type: models.EventCompanyNews, Title: "From cache", ImportanceRank: 1.5},
	}
	require.NoError(t, store.Write("AAPL", cached, common.CompactDateTime(time.Now())))

	events := svc.LoadEventData(context.Background(), false)
	require.Len(t, events, 1)
	assert.Equal(t, "From cache", events[0].Title)

	company.mu.Lock()
	defer company.mu.Unlock()
	assert.Empty(t, company.ranges, "fresh cache must not trigger provider fetches")
}

func TestLoadEventDataStaleCacheRefetches(t *testing.T) {
	macro := &stubMacroSource{
		items: []providers.NewsFeedItem{
			{Title: "Fetched live", Summary: "Body", TimePublished: "20250614T090000"},
		},
	}
	svc, store := newTestService(t, macro, &stubCompanySource{}, &stubPriceSource{})

	stale := common.CompactDateTime(time.Now().Add(-7 * time.Hour))
	require.NoError(t, store.Write("AAPL", []models.Event{
		{StdDate: "2025-06-01", Type: models.EventCompanyNews, Title: "Old", ImportanceRank: 1.5},
	}, stale))

	events := svc.LoadEventData(context.Background(), false)
	require.Len(t, events, 1)
	assert.Equal(t, "Fetched live", events[0].Title)
}

func TestLoadEventDataForceRefresh(t *testing.T) {
	macro := &stubMacroSource{
		items: []providers.NewsFeedItem{
			{Title: "Fetched live", Summary: "Body", TimePublished: "20250614T090000"},
		},
	}
	svc, store := newTestService(t, macro, &stubCompanySource{}, &stubPriceSource{})

	require.NoError(t, store.Write("AAPL", []models.Event{
		{StdDate: "2025-06-14", Type: models.EventCompanyNews, Title: "From cache", ImportanceRank: 1.5},
	}, common.CompactDateTime(time.Now())))

	events := svc.LoadEventData(context.Background(), true)
	require.Len(t, events, 1)
	assert.Equal(t, "Fetched live", events[0].Title, "forceRefresh bypasses a fresh cache")
}

func TestLoadEventDataAllProvidersFail(t *testing.T) {
	macro := &stubMacroSource{err: errors.New("down")}
	company := &stubCompanySource{
		newsErr:     errors.New("down"),
		filingsErr:  errors.New("down"),
		insidersErr: errors.New("down"),
	}
	svc, store := newTestService(t, macro, company, &stubPriceSource{})

	events := svc.LoadEventData(context.Background(), false)
	assert.Empty(t, events, "total provider failure degrades to an empty feed")

	entry := store.Read("AAPL")
	require.NotNil(t, entry, "empty results are still cached")
	assert.Empty(t, entry.Data)
}

func TestEventsOnDay(t *testing.T) {
	svc, _ := newTestService(t, &stubMacroSource{}, &stubCompanySource{}, &stubPriceSource{})

	events := []models.Event{
		{StdDate: "2025-06-14", Title: "Yesterday", ImportanceRank: 1.0},
		{StdDate: "2025-06-15", Title: "Today A", ImportanceRank: 1.5},
		{StdDate: "2025-06-15", Title: "Today B", ImportanceRank: 2.0},
		{StdDate: "2025-06-16", Title: "Tomorrow", ImportanceRank: 1.0},
	}

	got := svc.EventsOnDay(events, "2025-06-15")
	require.Len(t, got, 2)
	assert.Equal(t, "Today A", got[0].Title, "under the cap original order is kept")
	assert.Equal(t, "Today B", got[1].Title)
}

func TestEventsOnDayDefaultsToToday(t *testing.T) {
	svc, _ := newTestService(t, &stubMacroSource{}, &stubCompanySource{}, &stubPriceSource{})
	svc.now = fixedNow(t, "2025-06-15")

	events := []models.Event{
		{StdDate: "2025-06-15", Title: "Today"},
		{StdDate: "2025-06-14", Title: "Yesterday"},
	}

	got := svc.EventsOnDay(events, "")
	require.Len(t, got, 1)
	assert.Equal(t, "Today", got[0].Title)
}

func TestEventsOnDayCapsTopRanked(t *testing.T) {
	logger := common.NewSilentLogger()
	store := cache.NewStore(t.TempDir(), logger)
	orchestrator := NewOrchestrator(&stubMacroSource{}, &stubCompanySource{}, 7, 2, logger)
	svc := NewService(Options{
		Ticker:      "AAPL",
		DayEventCap: 3,
	}, orchestrator, NewNormalizer(logger), store, &stubPriceSource{}, logger)

	events := []models.Event{
		{StdDate: "2025-06-15", Title: "low", ImportanceRank: 1.0},
		{StdDate: "2025-06-15", Title: "filing", ImportanceRank: 2.0},
		{StdDate: "2025-06-15", Title: "insider", ImportanceRank: 2.5},
		{StdDate: "2025-06-15", Title: "news A", ImportanceRank: 1.5},
		{StdDate: "2025-06-15", Title: "news B", ImportanceRank: 1.5},
	}

	got := svc.EventsOnDay(events, "2025-06-15")
	require.Len(t, got, 3)
	assert.Equal(t, "insider", got[0].Title)
	assert.Equal(t, "filing", got[1].Title)
	assert.Equal(t, "news A", got[2].Title, "equal ranks keep original relative order")
}

func TestLoadPriceData(t *testing.T) {
	ts := time.Date(2025, 6, 13, 0, 0, 0, 0, time.Local).Unix()
	prices := &stubPriceSource{
		candles: &providers.CandleResponse{
			Open:      []float64{100, 102},
			High:      []float64{105, 103},
			Low:       []float64{99, 101},
			Close:     []float64{102, 101.5},
			Volume:    []int64{1000, 900},
			Timestamp: []int64{ts, ts + 86400},
			Status:    "ok",
		},
	}
	svc, _ := newTestService(t, &stubMacroSource{}, &stubCompanySource{}, prices)

	candles, err := svc.LoadPriceData(context.Background())
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, "2025-06-13", candles[0].Date)
	assert.Equal(t, 102.0, candles[0].Close)
	assert.Equal(t, int64(900), candles[1].Volume)
}

func TestLoadPriceDataError(t *testing.T) {
	prices := &stubPriceSource{candlesErr: errors.New("no data")}
	svc, _ := newTestService(t, &stubMacroSource{}, &stubCompanySource{}, prices)

	_, err := svc.LoadPriceData(context.Background())
	assert.Error(t, err, "price errors surface to the caller, unlike event errors")
}

func TestProfile(t *testing.T) {
	prices := &stubPriceSource{
		profile: &providers.Profile{
			Name: "Apple Inc", Ticker: "AAPL", Exchange: "NASDAQ",
			Logo: "https://example.com/logo.png", WebURL: "https://apple.com",
		},
	}
	svc, _ := newTestService(t, &stubMacroSource{}, &stubCompanySource{}, prices)

	profile, err := svc.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc", profile.Name)
	assert.Equal(t, "NASDAQ", profile.Exchange)
}
