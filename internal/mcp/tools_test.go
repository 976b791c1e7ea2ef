package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/stockfeed/internal/cache"
	"github.com/bobmcallan/stockfeed/internal/common"
	"github.com/bobmcallan/stockfeed/internal/feed"
	"github.com/bobmcallan/stockfeed/internal/providers"
)

type noopMacroSource struct{}

func (noopMacroSource) NewsSentiment(_ context.Context, _, _ string, _ int) ([]providers.NewsFeedItem, error) {
	return nil, nil
}

type noopCompanySource struct{}

func (noopCompanySource) CompanyNews(_ context.Context, _, _, _ string) ([]providers.CompanyNewsItem, error) {
	return nil, nil
}

func (noopCompanySource) Filings(_ context.Context, _, _, _ string) ([]providers.Filing, error) {
	return nil, nil
}

func (noopCompanySource) InsiderTransactions(_ context.Context, _, _, _ string) ([]providers.InsiderTransaction, error) {
	return nil, nil
}

func newNoopService(t *testing.T) *feed.Service {
	t.Helper()
	logger := common.NewSilentLogger()
	orchestrator := feed.NewOrchestrator(noopMacroSource{}, noopCompanySource{}, 7, 2, logger)
	store := cache.NewStore(t.TempDir(), logger)
	return feed.NewService(feed.Options{
		Ticker:       "AAPL",
		LookbackDays: 7,
	}, orchestrator, feed.NewNormalizer(logger), store, nil, logger)
}

func TestRegisterTools(t *testing.T) {
	srv := mcpserver.NewMCPServer("stockfeed-test", "0.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	count := registerTools(srv, newNoopService(t))
	if count != 4 {
		t.Errorf("registered %d tools, want 4", count)
	}
}

func TestToolDefinitions(t *testing.T) {
	tools := []struct {
		tool mcp.Tool
		name string
	}{
		{createGetVersionTool(), "get_version"},
		{createGetEventFeedTool(), "get_event_feed"},
		{createGetEventsOnDayTool(), "get_events_on_day"},
		{createGetPriceHistoryTool(), "get_price_history"},
	}

	for _, tt := range tools {
		if tt.tool.Name != tt.name {
			t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.name)
		}
		if tt.tool.Description == "" {
			t.Errorf("tool %q has no description", tt.name)
		}
	}
}

func TestHandleGetVersion(t *testing.T) {
	result, err := handleGetVersion()(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %+v", result)
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type %T", result.Content[0])
	}
	var body map[string]string
	if err := json.Unmarshal([]byte(text.Text), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["name"] != "stockfeed" {
		t.Errorf("body = %v", body)
	}
}

func TestHandleGetEventsOnDayBadDate(t *testing.T) {
	handler := handleGetEventsOnDay(newNoopService(t))

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{"date": "15-06-2025"}

	result, err := handler(context.Background(), request)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for malformed date")
	}
	text := result.Content[0].(mcp.TextContent)
	if !strings.Contains(text.Text, "YYYY-MM-DD") {
		t.Errorf("error text = %q", text.Text)
	}
}
