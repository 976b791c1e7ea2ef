// Package app wires application components together.
package app

import (
	"github.com/bobmcallan/stockfeed/internal/cache"
	"github.com/bobmcallan/stockfeed/internal/common"
	"github.com/bobmcallan/stockfeed/internal/config"
	"github.com/bobmcallan/stockfeed/internal/feed"
	"github.com/bobmcallan/stockfeed/internal/handlers"
	"github.com/bobmcallan/stockfeed/internal/mcp"
	"github.com/bobmcallan/stockfeed/internal/providers"
)

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Feed *feed.Service

	// HTTP handlers
	EventsHandler  *handlers.EventsHandler
	PricesHandler  *handlers.PricesHandler
	HealthHandler  *handlers.HealthHandler
	VersionHandler *handlers.VersionHandler
	MCPHandler     *mcp.Handler
}

// New initializes the application with all dependencies.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	finnhub := providers.NewFinnhubClient(cfg.Keys.Finnhub,
		providers.WithFinnhubLogger(logger.ILogger),
	)
	alphavantage := providers.NewAlphaVantageClient(cfg.Keys.AlphaVantage,
		providers.WithAlphaVantageLogger(logger.ILogger),
	)

	orchestrator := feed.NewOrchestrator(alphavantage, finnhub,
		cfg.Feed.BatchSizeDays, cfg.Feed.MaxConcurrent, logger)
	normalizer := feed.NewNormalizer(logger)
	store := cache.NewStore(cfg.Feed.CacheDir, logger)

	a.Feed = feed.NewService(feed.Options{
		Ticker:        cfg.Feed.Ticker,
		LookbackDays:  cfg.Feed.LookbackDays,
		CacheTTLHours: cfg.Feed.CacheTTLHours,
		DayEventCap:   cfg.Feed.DayEventCap,
	}, orchestrator, normalizer, store, finnhub, logger)

	a.initHandlers()

	logger.Info().
		Str("ticker", cfg.Feed.Ticker).
		Int("lookback_days", cfg.Feed.LookbackDays).
		Msg("application initialization complete")

	return a, nil
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	a.EventsHandler = handlers.NewEventsHandler(a.Logger, a.Feed)
	a.PricesHandler = handlers.NewPricesHandler(a.Logger, a.Feed)
	a.HealthHandler = handlers.NewHealthHandler(a.Logger)
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)
	a.MCPHandler = mcp.NewHandler(a.Feed, a.Logger)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Close closes all application resources.
func (a *App) Close() error {
	return nil
}
