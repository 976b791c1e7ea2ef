package feed

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bobmcallan/stockfeed/internal/common"
	"github.com/bobmcallan/stockfeed/internal/models"
	"github.com/bobmcallan/stockfeed/internal/providers"
)

// Normalizer maps provider-native records into canonical events. Records
// missing required source fields are skipped, never defaulted; a bad date
// string on an otherwise complete record is treated the same way (it is a
// schema mismatch on that record, not a batch failure).
type Normalizer struct {
	logger *common.Logger
}

// NewNormalizer creates a normalizer.
func NewNormalizer(logger *common.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize converts a raw bundle into canonical events.
func (n *Normalizer) Normalize(bundle *RawBundle, ticker string) []models.Event {
	var events []models.Event
	events = append(events, n.normalizeMacroNews(bundle.MacroNews, ticker)...)
	events = append(events, n.normalizeCompanyNews(bundle.CompanyNews)...)
	events = append(events, n.normalizeFilings(bundle.Filings)...)
	events = append(events, n.aggregateInsiderTransactions(bundle.InsiderTransactions)...)
	return events
}

// normalizeMacroNews maps NEWS_SENTIMENT feed items. Importance is the
// base weight scaled by (1 + relevance), where relevance comes from the
// per-article ticker sentiment table and defaults to 0 when the ticker is
// absent.
func (n *Normalizer) normalizeMacroNews(items []providers.NewsFeedItem, ticker string) []models.Event {
	base := models.BaseWeights[models.EventMacroNews]

	var events []models.Event
	for _, item := range items {
		if item.Title == "" || item.Summary == "" || item.TimePublished == "" {
			continue
		}
		stdDate, displayDate, displayTime, err := common.StringToDisplay(item.TimePublished)
		if err != nil {
			n.logger.Debug().
				Str("time_published", item.TimePublished).
				Msg("skipping macro news item with unparseable publish time")
			continue
		}

		relevance := tickerRelevance(item.TickerSentiment, ticker)

		events = append(events, models.Event{
			StdDate:        stdDate,
			Date:           displayDate,
			Time:           displayTime,
			Type:           models.EventMacroNews,
			Title:          item.Title,
			Content:        item.Summary,
			Source:         item.Source,
			URL:            urlOrAnchor(item.URL),
			ImportanceRank: base * (1 + relevance),
		})
	}
	return events
}

// tickerRelevance extracts the relevance score for ticker from the
// sentiment side table. Scores arrive as strings; unparseable or missing
// entries count as 0.
func tickerRelevance(sentiments []providers.TickerSentiment, ticker string) float64 {
	for _, s := range sentiments {
		if !strings.EqualFold(s.Ticker, ticker) {
			continue
		}
		relevance, err := strconv.ParseFloat(s.RelevanceScore, 64)
		if err != nil {
			return 0
		}
		return relevance
	}
	return 0
}

func (n *Normalizer) normalizeCompanyNews(items []providers.CompanyNewsItem) []models.Event {
	base := models.BaseWeights[models.EventCompanyNews]

	var events []models.Event
	for _, item := range items {
		if item.Headline == "" || item.Summary == "" || item.Datetime <= 0 {
			continue
		}
		stdDate, displayDate, displayTime := common.UnixToDisplay(item.Datetime)

		events = append(events, models.Event{
			StdDate:        stdDate,
			Date:           displayDate,
			Time:           displayTime,
			Type:           models.EventCompanyNews,
			Title:          item.Headline,
			Content:        item.Summary,
			Source:         item.Source,
			URL:            urlOrAnchor(item.URL),
			ImportanceRank: base,
		})
	}
	return events
}

// normalizeFilings maps SEC filings. Filings carry no intraday time, so
// the time component is always empty.
func (n *Normalizer) normalizeFilings(filings []providers.Filing) []models.Event {
	base := models.BaseWeights[models.EventSecFiling]

	var events []models.Event
	for _, filing := range filings {
		if filing.Form == "" || filing.FiledDate == "" || filing.ReportURL == "" {
			continue
		}
		stdDate, displayDate, _, err := common.StringToDisplay(filing.FiledDate)
		if err != nil {
			n.logger.Debug().
				Str("filed_date", filing.FiledDate).
				Msg("skipping filing with unparseable filed date")
			continue
		}

		events = append(events, models.Event{
			StdDate:        stdDate,
			Date:           displayDate,
			Time:           "",
			Type:           models.EventSecFiling,
			Title:          fmt.Sprintf("Form %s filed", filing.Form),
			Content:        fmt.Sprintf("SEC filing Form %s filed on %s.", filing.Form, stdDate),
			Source:         "SEC EDGAR",
			URL:            urlOrAnchor(filing.ReportURL),
			ImportanceRank: base,
		})
	}
	return events
}

// insiderRecord is the phase-1 intermediate per-transaction record,
// carrying name and signed change alongside the normalized date.
type insiderRecord struct {
	stdDate     string
	displayDate string
	name        string
	change      int64
	price       float64
}

// aggregateInsiderTransactions runs the two-phase insider pipeline:
// normalize each raw transaction, then group by (date, person), sum the
// signed changes, and compute a volume-weighted average price. Groups with
// a net change of exactly zero carry no information and are dropped.
func (n *Normalizer) aggregateInsiderTransactions(transactions []providers.InsiderTransaction) []models.Event {
	base := models.BaseWeights[models.EventInsiderTransaction]

	// Phase 1: per-transaction normalization with required-field checks.
	var records []insiderRecord
	for _, tx := range transactions {
		if tx.Name == "" || tx.TransactionDate == "" || tx.TransactionCode == "" || tx.TransactionPrice <= 0 {
			continue
		}
		stdDate, displayDate, _, err := common.StringToDisplay(tx.TransactionDate)
		if err != nil {
			n.logger.Debug().
				Str("transaction_date", tx.TransactionDate).
				Msg("skipping insider transaction with unparseable date")
			continue
		}
		records = append(records, insiderRecord{
			stdDate:     stdDate,
			displayDate: displayDate,
			name:        tx.Name,
			change:      tx.Change,
			price:       tx.TransactionPrice,
		})
	}

	// Phase 2: aggregation sorts before grouping so output is stable
	// regardless of arrival order.
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].stdDate != records[j].stdDate {
			return records[i].stdDate < records[j].stdDate
		}
		return records[i].name < records[j].name
	})

	var events []models.Event
	for i := 0; i < len(records); {
		j := i
		var netChange int64
		var weightedSum float64
		var count int
		for ; j < len(records) && records[j].stdDate == records[i].stdDate && records[j].name == records[i].name; j++ {
			netChange += records[j].change
			weightedSum += float64(records[j].change) * records[j].price
			count++
		}

		if netChange != 0 {
			avgPrice := weightedSum / float64(netChange)

			verb := "acquired"
			if netChange < 0 {
				verb = "disposed of"
			}
			shares := netChange
			if shares < 0 {
				shares = -shares
			}

			events = append(events, models.Event{
				StdDate:        records[i].stdDate,
				Date:           records[i].displayDate,
				Time:           "",
				Type:           models.EventInsiderTransaction,
				Title:          fmt.Sprintf("%s net %s %s shares", records[i].name, verb, common.FormatShares(shares)),
				Content:        fmt.Sprintf("Average price %s across %d transaction(s).", common.FormatMoney(avgPrice), count),
				Source:         "Finnhub",
				URL:            "#",
				ImportanceRank: base,
			})
		}

		i = j
	}
	return events
}

// urlOrAnchor substitutes the anchor placeholder for records without a
// usable link so the UI always has an href target.
func urlOrAnchor(u string) string {
	if u == "" {
		return "#"
	}
	return u
}
