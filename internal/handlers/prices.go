package handlers

import (
	"net/http"

	"github.com/bobmcallan/stockfeed/internal/common"
	"github.com/bobmcallan/stockfeed/internal/feed"
)

// PricesHandler serves OHLCV price history and company profile data.
type PricesHandler struct {
	logger *common.Logger
	svc    *feed.Service
}

// NewPricesHandler creates a new prices handler.
func NewPricesHandler(logger *common.Logger, svc *feed.Service) *PricesHandler {
	return &PricesHandler{logger: logger, svc: svc}
}

// ServePrices handles GET /api/prices.
func (h *PricesHandler) ServePrices(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	candles, err := h.svc.LoadPriceData(r.Context())
	if err != nil {
		h.logger.Warn().
			Str("ticker", h.svc.Ticker()).
			Str("error", err.Error()).
			Msg("price fetch failed")
		WriteError(w, http.StatusBadGateway, "price data unavailable")
		return
	}

	WriteData(w, candles)
}

// ServeProfile handles GET /api/profile.
func (h *PricesHandler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	profile, err := h.svc.Profile(r.Context())
	if err != nil {
		h.logger.Warn().
			Str("ticker", h.svc.Ticker()).
			Str("error", err.Error()).
			Msg("profile fetch failed")
		WriteError(w, http.StatusBadGateway, "profile data unavailable")
		return
	}

	WriteData(w, profile)
}
