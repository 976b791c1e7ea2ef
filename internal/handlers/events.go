package handlers

import (
	"errors"
	"net/http"

	"github.com/bobmcallan/stockfeed/internal/common"
	"github.com/bobmcallan/stockfeed/internal/feed"
)

// EventsHandler serves the canonical event feed and its day-filtered view.
type EventsHandler struct {
	logger *common.Logger
	svc    *feed.Service
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(logger *common.Logger, svc *feed.Service) *EventsHandler {
	return &EventsHandler{logger: logger, svc: svc}
}

// ServeFeed handles GET /api/events. The optional refresh=true query
// parameter bypasses the cache and forces a full refetch.
func (h *EventsHandler) ServeFeed(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	forceRefresh := r.URL.Query().Get("refresh") == "true"
	events := h.svc.LoadEventData(r.Context(), forceRefresh)

	WriteData(w, events)
}

// ServeDay handles GET /api/events/day?date=YYYY-MM-DD. Date defaults to
// today; a malformed date is a client error.
func (h *EventsHandler) ServeDay(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	date := r.URL.Query().Get("date")
	if date != "" {
		normalized, err := common.ToCalendarDate(common.CalendarString(date))
		var parseErr *common.ParseError
		if errors.As(err, &parseErr) {
			WriteError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = normalized
	}

	events := h.svc.LoadEventData(r.Context(), false)
	onDay := h.svc.EventsOnDay(events, date)

	WriteData(w, onDay)
}
