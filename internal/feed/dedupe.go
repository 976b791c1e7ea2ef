package feed

import (
	"strings"

	"github.com/bobmcallan/stockfeed/internal/models"
)

// dedupeKey identifies a news event for deduplication: same day, same
// normalized title.
type dedupeKey struct {
	stdDate string
	title   string
}

// Deduplicate removes duplicate news items. Only macro and company news
// participate; filings and insider aggregates pass through unchanged. When
// two news events collide on (date, trimmed case-folded title), the one
// with the strictly higher importance rank survives. Output order is
// pass-through events followed by the deduplicated news; downstream
// day-filtering and top-N selection impose any further ordering.
func Deduplicate(events []models.Event) []models.Event {
	var passThrough []models.Event
	seen := make(map[dedupeKey]models.Event)
	var order []dedupeKey

	for _, event := range events {
		if !event.Type.Deduplicable() {
			passThrough = append(passThrough, event)
			continue
		}

		key := dedupeKey{
			stdDate: event.StdDate,
			title:   strings.ToLower(strings.TrimSpace(event.Title)),
		}
		existing, ok := seen[key]
		if !ok {
			seen[key] = event
			order = append(order, key)
			continue
		}
		if event.ImportanceRank > existing.ImportanceRank {
			seen[key] = event
		}
	}

	result := passThrough
	for _, key := range order {
		result = append(result, seen[key])
	}
	return result
}
