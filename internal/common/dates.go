package common

import (
	"fmt"
	"iter"
	"time"
)

// Date and time formats used across the pipeline. StandardDateFormat is the
// canonical join key for day filtering and dedup; the display formats are
// derived from it and never parsed back. The compact format is sortable and
// fixed-width, used for cache timestamps and upstream query parameters only.
const (
	StandardDateFormat           = "2006-01-02"
	DisplayDateFormat            = "Jan 02, 2006 - Mon"
	DisplayTimeFormat            = "15:04"
	CompactDateTimeFormat        = "20060102T1504"
	CompactDateTimeSecondsFormat = "20060102T150405"
)

// displayFormats is the ordered list of upstream date-time shapes tried by
// StringToDisplay. Order matters: the most specific format is tried first.
var displayFormats = []string{
	"2006-01-02 15:04:05",
	StandardDateFormat,
	CompactDateTimeFormat,
	CompactDateTimeSecondsFormat,
}

// ParseError indicates a date or time string that matches none of the known
// upstream formats. It signals a genuine schema mismatch and is returned to
// the caller rather than swallowed.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unsupported date format: %q", e.Input)
}

// DateInput is a tagged variant over the three accepted date inputs:
// nothing (current moment), an instant, or a previously formatted calendar
// date string.
type DateInput struct {
	kind dateInputKind
	at   time.Time
	str  string
}

type dateInputKind int

const (
	dateInputNone dateInputKind = iota
	dateInputInstant
	dateInputCalendar
)

// NoDate selects the current moment.
func NoDate() DateInput { return DateInput{kind: dateInputNone} }

// AtInstant selects a specific moment.
func AtInstant(t time.Time) DateInput { return DateInput{kind: dateInputInstant, at: t} }

// CalendarString selects a previously formatted YYYY-MM-DD string.
func CalendarString(s string) DateInput { return DateInput{kind: dateInputCalendar, str: s} }

// ToCalendarDate normalizes a DateInput to the canonical YYYY-MM-DD string.
// Calendar strings are re-parsed so the operation is idempotent; a string
// not matching the canonical format yields a *ParseError.
func ToCalendarDate(in DateInput) (string, error) {
	switch in.kind {
	case dateInputInstant:
		return in.at.Format(StandardDateFormat), nil
	case dateInputCalendar:
		t, err := time.Parse(StandardDateFormat, in.str)
		if err != nil {
			return "", &ParseError{Input: in.str}
		}
		return t.Format(StandardDateFormat), nil
	default:
		return time.Now().Format(StandardDateFormat), nil
	}
}

// CalendarDate formats an instant as the canonical YYYY-MM-DD string.
func CalendarDate(t time.Time) string {
	return t.Format(StandardDateFormat)
}

// CompactDateTime formats an instant in the compact YYYYMMDDTHHMM form.
func CompactDateTime(t time.Time) string {
	return t.Format(CompactDateTimeFormat)
}

// Backdate returns the instant the given number of days before now.
func Backdate(daysAgo int) time.Time {
	return time.Now().AddDate(0, 0, -daysAgo)
}

// UnixToDisplay converts a Unix epoch to (std_date, display_date, display_time).
func UnixToDisplay(epoch int64) (stdDate, displayDate, displayTime string) {
	t := time.Unix(epoch, 0)
	return t.Format(StandardDateFormat), t.Format(DisplayDateFormat), t.Format(DisplayTimeFormat)
}

// StringToDisplay converts a date-time string in any known upstream format
// to (std_date, display_date, display_time). Date-only inputs yield a
// midnight time component; callers for date-only sources discard it.
func StringToDisplay(s string) (stdDate, displayDate, displayTime string, err error) {
	var parsed time.Time
	ok := false
	for _, format := range displayFormats {
		if t, perr := time.Parse(format, s); perr == nil {
			parsed = t
			ok = true
			break
		}
	}
	if !ok {
		return "", "", "", &ParseError{Input: s}
	}
	return parsed.Format(StandardDateFormat), parsed.Format(DisplayDateFormat), parsed.Format(DisplayTimeFormat), nil
}

// IsStale reports whether reference is more than thresholdHours after
// cached, both in the compact YYYYMMDDTHHMM form. The comparison is a
// strict greater-than: an entry aged exactly the threshold is stale.
func IsStale(cachedCompact, referenceCompact string, thresholdHours int) (bool, error) {
	cached, err := time.Parse(CompactDateTimeFormat, cachedCompact)
	if err != nil {
		return false, &ParseError{Input: cachedCompact}
	}
	reference, err := time.Parse(CompactDateTimeFormat, referenceCompact)
	if err != nil {
		return false, &ParseError{Input: referenceCompact}
	}
	return reference.Sub(cached) > time.Duration(thresholdHours)*time.Hour, nil
}

// DateRange is a single inclusive from/to span in canonical date form.
type DateRange struct {
	From string
	To   string
}

// SplitRange yields inclusive spans covering [start, end] in
// reverse-chronological order, each at most batchDays days wide. Fetchers
// iterate most-recent-first so rate-limited partial fetches bias toward the
// freshest data. The sequence is restartable and empty when start > end.
func SplitRange(start, end time.Time, batchDays int) iter.Seq[DateRange] {
	if batchDays < 1 {
		batchDays = 1
	}
	startDay := truncateToDay(start)
	endDay := truncateToDay(end)

	return func(yield func(DateRange) bool) {
		currentEnd := endDay
		for !currentEnd.Before(startDay) {
			currentStart := currentEnd.AddDate(0, 0, -(batchDays - 1))
			if currentStart.Before(startDay) {
				currentStart = startDay
			}
			if !yield(DateRange{From: CalendarDate(currentStart), To: CalendarDate(currentEnd)}) {
				return
			}
			currentEnd = currentStart.AddDate(0, 0, -1)
		}
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
