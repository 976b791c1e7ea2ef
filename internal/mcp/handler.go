// Package mcp exposes the event feed over the Model Context Protocol so
// agent clients can query the same pipeline the HTTP API serves.
package mcp

import (
	"net/http"

	"github.com/bobmcallan/stockfeed/internal/common"
	"github.com/bobmcallan/stockfeed/internal/feed"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	streamable *mcpserver.StreamableHTTPServer
	logger     *common.Logger
}

// NewHandler creates the MCP handler with the feed tools registered.
func NewHandler(svc *feed.Service, logger *common.Logger) *Handler {
	mcpSrv := mcpserver.NewMCPServer(
		"stockfeed",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	toolCount := registerTools(mcpSrv, svc)

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithStateLess(true),
	)

	logger.Info().
		Int("tools", toolCount).
		Str("ticker", svc.Ticker()).
		Msg("MCP handler initialized")

	return &Handler{
		streamable: streamable,
		logger:     logger,
	}
}

// ServeHTTP delegates to the mcp-go StreamableHTTPServer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.streamable.ServeHTTP(w, r)
}
