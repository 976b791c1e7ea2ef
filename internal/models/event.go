// Package models defines data structures for stockfeed.
package models

// EventType classifies a canonical event by its upstream source category.
type EventType string

const (
	EventMacroNews          EventType = "Macro News"
	EventCompanyNews        EventType = "News"
	EventSecFiling          EventType = "SEC Filing"
	EventInsiderTransaction EventType = "Insider Transaction"
)

// BaseWeights maps each event type to its base importance weight.
// Filings and insider trades are rarer and more load-bearing than
// headlines, so they rank above news when a day overflows the display cap.
var BaseWeights = map[EventType]float64{
	EventMacroNews:          1.0,
	EventCompanyNews:        1.5,
	EventSecFiling:          2.0,
	EventInsiderTransaction: 2.5,
}

// Deduplicable reports whether events of this type participate in
// (date, title) deduplication. Filings and insider transactions never do.
func (t EventType) Deduplicable() bool {
	return t == EventMacroNews || t == EventCompanyNews
}

// Event is the canonical, provider-agnostic record the pipeline produces.
// StdDate is the join key for day filtering and dedup; Date and Time are
// display-only and never parsed back.
type Event struct {
	StdDate        string    `json:"std_date"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Type           EventType `json:"type"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Source         string    `json:"source"`
	URL            string    `json:"url"`
	ImportanceRank float64   `json:"importance_rank"`
}

// CacheEntry is the on-disk representation of a ticker's event feed.
// Timestamp uses the compact form (YYYYMMDDTHHMM) and drives staleness.
type CacheEntry struct {
	Data      []Event `json:"data"`
	Timestamp string  `json:"timestamp"`
}
