package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockfeed/internal/common"
	"github.com/bobmcallan/stockfeed/internal/models"
	"github.com/bobmcallan/stockfeed/internal/providers"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(common.NewSilentLogger())
}

func TestNormalizeMacroNews(t *testing.T) {
	n := newTestNormalizer()

	items := []providers.NewsFeedItem{
		{
			Title:         "Fed holds rates steady",
			Summary:       "The central bank left rates unchanged.",
			TimePublished: "20250615T143045",
			Source:        "Reuters",
			URL:           "https://example.com/fed",
			TickerSentiment: []providers.TickerSentiment{
				{Ticker: "aapl", RelevanceScore: "0.5"},
				{Ticker: "MSFT", RelevanceScore: "0.9"},
			},
		},
		{
			// ticker absent from sentiment table: relevance 0
			Title:         "Oil prices climb",
			Summary:       "Crude rose on supply concerns.",
			TimePublished: "20250614T090000",
			Source:        "Bloomberg",
		},
		{
			// missing summary: dropped
			Title:         "Incomplete item",
			TimePublished: "20250614T090000",
		},
		{
			// unparseable publish time: dropped
			Title:         "Bad timestamp",
			Summary:       "Body",
			TimePublished: "June 15th",
		},
	}

	events := n.normalizeMacroNews(items, "AAPL")
	require.Len(t, events, 2)

	fed := events[0]
	assert.Equal(t, "2025-06-15", fed.StdDate)
	assert.Equal(t, "Jun 15, 2025 - Sun", fed.Date)
	assert.Equal(t, "14:30", fed.Time)
	assert.Equal(t, models.EventMacroNews, fed.Type)
	assert.Equal(t, "Fed holds rates steady", fed.Title)
	assert.Equal(t, "Reuters", fed.Source)
	// base 1.0 scaled by (1 + 0.5); ticker match is case-insensitive
	assert.InDelta(t, 1.5, fed.ImportanceRank, 1e-9)

	oil := events[1]
	assert.InDelta(t, 1.0, oil.ImportanceRank, 1e-9)
	assert.Equal(t, "#", oil.URL, "missing URL becomes anchor placeholder")
}

func TestNormalizeCompanyNews(t *testing.T) {
	n := newTestNormalizer()

	published := time.Date(2025, 6, 15, 14, 30, 0, 0, time.Local)
	items := []providers.CompanyNewsItem{
		{
			Headline: "Company ships new product",
			Summary:  "Availability starts today.",
			Datetime: published.Unix(),
			Source:   "Newswire",
			URL:      "https://example.com/launch",
		},
		{Headline: "No summary", Datetime: published.Unix()},
		{Headline: "No timestamp", Summary: "Body", Datetime: 0},
	}

	events := n.normalizeCompanyNews(items)
	require.Len(t, events, 1)

	e := events[0]
	assert.Equal(t, "2025-06-15", e.StdDate)
	assert.Equal(t, "14:30", e.Time)
	assert.Equal(t, models.EventCompanyNews, e.Type)
	assert.Equal(t, "Company ships new product", e.Title)
	assert.InDelta(t, 1.5, e.ImportanceRank, 1e-9)
}

func TestNormalizeFilings(t *testing.T) {
	n := newTestNormalizer()

	filings := []providers.Filing{
		{
			Form:      "10-Q",
			FiledDate: "2025-06-13 16:05:00",
			ReportURL: "https://sec.example.com/10q",
		},
		{Form: "8-K", FiledDate: "2025-06-13 16:05:00"}, // missing report URL
		{Form: "4", FiledDate: "yesterday", ReportURL: "https://sec.example.com/4"},
	}

	events := n.normalizeFilings(filings)
	require.Len(t, events, 1)

	e := events[0]
	assert.Equal(t, "2025-06-13", e.StdDate)
	assert.Equal(t, "", e.Time, "filings carry no intraday time")
	assert.Equal(t, models.EventSecFiling, e.Type)
	assert.Equal(t, "Form 10-Q filed", e.Title)
	assert.Equal(t, "SEC EDGAR", e.Source)
	assert.InDelta(t, 2.0, e.ImportanceRank, 1e-9)
}

func TestAggregateInsiderTransactions(t *testing.T) {
	n := newTestNormalizer()

	t.Run("net change and weighted average", func(t *testing.T) {
		transactions := []providers.InsiderTransaction{
			{Name: "Jordan Smith", TransactionDate: "2025-06-10", TransactionCode: "P", Change: 100, TransactionPrice: 10.00},
			{Name: "Jordan Smith", TransactionDate: "2025-06-10", TransactionCode: "P", Change: 200, TransactionPrice: 13.00},
		}

		events := n.aggregateInsiderTransactions(transactions)
		require.Len(t, events, 1)

		e := events[0]
		assert.Equal(t, "2025-06-10", e.StdDate)
		assert.Equal(t, models.EventInsiderTransaction, e.Type)
		assert.Equal(t, "Jordan Smith net acquired 300 shares", e.Title)
		// (100*10 + 200*13) / 300 = 12.00
		assert.Equal(t, "Average price $12.00 across 2 transaction(s).", e.Content)
		assert.Equal(t, "#", e.URL)
		assert.InDelta(t, 2.5, e.ImportanceRank, 1e-9)
	})

	t.Run("net disposal", func(t *testing.T) {
		transactions := []providers.InsiderTransaction{
			{Name: "Casey Lee", TransactionDate: "2025-06-11", TransactionCode: "S", Change: -500, TransactionPrice: 20.00},
		}

		events := n.aggregateInsiderTransactions(transactions)
		require.Len(t, events, 1)
		assert.Equal(t, "Casey Lee net disposed of 500 shares", events[0].Title)
		assert.Equal(t, "Average price $20.00 across 1 transaction(s).", events[0].Content)
	})

	t.Run("mixed buys and sells net out", func(t *testing.T) {
		transactions := []providers.InsiderTransaction{
			{Name: "Jane Doe", TransactionDate: "2024-03-01", TransactionCode: "P", Change: 100, TransactionPrice: 10.00},
			{Name: "Jane Doe", TransactionDate: "2024-03-01", TransactionCode: "S", Change: -100, TransactionPrice: 10.00},
			{Name: "Jane Doe", TransactionDate: "2024-03-01", TransactionCode: "P", Change: 50, TransactionPrice: 10.00},
		}

		events := n.aggregateInsiderTransactions(transactions)
		require.Len(t, events, 1)
		assert.Equal(t, "Jane Doe net acquired 50 shares", events[0].Title)
		assert.Equal(t, "Average price $10.00 across 3 transaction(s).", events[0].Content)
	})

	t.Run("net zero group dropped", func(t *testing.T) {
		transactions := []providers.InsiderTransaction{
			{Name: "Casey Lee", TransactionDate: "2025-06-11", TransactionCode: "P", Change: 100, TransactionPrice: 20.00},
			{Name: "Casey Lee", TransactionDate: "2025-06-11", TransactionCode: "S", Change: -100, TransactionPrice: 21.00},
		}

		events := n.aggregateInsiderTransactions(transactions)
		assert.Empty(t, events)
	})

	t.Run("grouped by date and person", func(t *testing.T) {
		transactions := []providers.InsiderTransaction{
			{Name: "Casey Lee", TransactionDate: "2025-06-12", TransactionCode: "P", Change: 50, TransactionPrice: 20.00},
			{Name: "Jordan Smith", TransactionDate: "2025-06-11", TransactionCode: "P", Change: 10, TransactionPrice: 20.00},
			{Name: "Casey Lee", TransactionDate: "2025-06-11", TransactionCode: "P", Change: 25, TransactionPrice: 20.00},
		}

		events := n.aggregateInsiderTransactions(transactions)
		require.Len(t, events, 3)
		// sorted by (date, name)
		assert.Equal(t, "Casey Lee net acquired 25 shares", events[0].Title)
		assert.Equal(t, "Jordan Smith net acquired 10 shares", events[1].Title)
		assert.Equal(t, "Casey Lee net acquired 50 shares", events[2].Title)
	})

	t.Run("required fields", func(t *testing.T) {
		transactions := []providers.InsiderTransaction{
			{Name: "", TransactionDate: "2025-06-11", TransactionCode: "P", Change: 10, TransactionPrice: 20},
			{Name: "Casey Lee", TransactionDate: "", TransactionCode: "P", Change: 10, TransactionPrice: 20},
			{Name: "Casey Lee", TransactionDate: "2025-06-11", TransactionCode: "", Change: 10, TransactionPrice: 20},
			{Name: "Casey Lee", TransactionDate: "2025-06-11", TransactionCode: "P", Change: 10, TransactionPrice: 0},
		}

		events := n.aggregateInsiderTransactions(transactions)
		assert.Empty(t, events)
	})
}

func TestNormalizeBundle(t *testing.T) {
	n := newTestNormalizer()

	bundle := &RawBundle{
		MacroNews: []providers.NewsFeedItem{
			{Title: "Macro", Summary: "Body", TimePublished: "20250615T090000"},
		},
		CompanyNews: []providers.CompanyNewsItem{
			{Headline: "Company", Summary: "Body", Datetime: time.Date(2025, 6, 15, 9, 0, 0, 0, time.Local).Unix()},
		},
		Filings: []providers.Filing{
			{Form: "10-K", FiledDate: "2025-06-15", ReportURL: "https://sec.example.com/10k"},
		},
		InsiderTransactions: []providers.InsiderTransaction{
			{Name: "Casey Lee", TransactionDate: "2025-06-15", TransactionCode: "P", Change: 10, TransactionPrice: 5},
		},
	}

	events := n.Normalize(bundle, "AAPL")
	require.Len(t, events, 4)
	assert.Equal(t, models.EventMacroNews, events[0].Type)
	assert.Equal(t, models.EventCompanyNews, events[1].Type)
	assert.Equal(t, models.EventSecFiling, events[2].Type)
	assert.Equal(t, models.EventInsiderTransaction, events[3].Type)
}
