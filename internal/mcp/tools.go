package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bobmcallan/stockfeed/internal/common"
	"github.com/bobmcallan/stockfeed/internal/config"
	"github.com/bobmcallan/stockfeed/internal/feed"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registerTools registers all MCP tools on the server, wiring each to the
// feed service. Returns the number of registered tools.
func registerTools(s *server.MCPServer, svc *feed.Service) int {
	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createGetEventFeedTool(), handleGetEventFeed(svc))
	s.AddTool(createGetEventsOnDayTool(), handleGetEventsOnDay(svc))
	s.AddTool(createGetPriceHistoryTool(), handleGetPriceHistory(svc))
	return 4
}

func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the stockfeed server version. Use this to verify connectivity."),
	)
}

func createGetEventFeedTool() mcp.Tool {
	return mcp.NewTool("get_event_feed",
		mcp.WithDescription("Get the full normalized event feed for the configured ticker: macro news, company news, SEC filings, and aggregated insider transactions, deduplicated and ranked by importance."),
		mcp.WithBoolean("refresh", mcp.Description("Bypass the cache and force a full refetch (default: false)")),
	)
}

func createGetEventsOnDayTool() mcp.Tool {
	return mcp.NewTool("get_events_on_day",
		mcp.WithDescription("Get events for a single calendar day, capped to the top-ranked subset when the day is busy."),
		mcp.WithString("date", mcp.Description("Calendar date in YYYY-MM-DD form (default: today)")),
	)
}

func createGetPriceHistoryTool() mcp.Tool {
	return mcp.NewTool("get_price_history",
		mcp.WithDescription("Get daily OHLCV price history for the configured ticker over the lookback window."),
	)
}

// errorResult creates an MCP error result.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// jsonResult marshals data into a text content result.
func jsonResult(data interface{}) (*mcp.CallToolResult, error) {
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(string(body)),
		},
	}, nil
}

func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(map[string]string{
			"name":    "stockfeed",
			"version": config.GetFullVersion(),
		})
	}
}

func handleGetEventFeed(svc *feed.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		forceRefresh := request.GetBool("refresh", false)
		events := svc.LoadEventData(ctx, forceRefresh)
		return jsonResult(events)
	}
}

func handleGetEventsOnDay(svc *feed.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date := request.GetString("date", "")
		if date != "" {
			normalized, err := common.ToCalendarDate(common.CalendarString(date))
			if err != nil {
				return errorResult("date must be YYYY-MM-DD"), nil
			}
			date = normalized
		}
		events := svc.LoadEventData(ctx, false)
		return jsonResult(svc.EventsOnDay(events, date))
	}
}

func handleGetPriceHistory(svc *feed.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		candles, err := svc.LoadPriceData(ctx)
		if err != nil {
			return errorResult(fmt.Sprintf("price data unavailable: %v", err)), nil
		}
		return jsonResult(candles)
	}
}
