// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/chartaxis/core/horz"
	"github.com/huangsam/chartaxis/internal/contract"
	"github.com/huangsam/chartaxis/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// tools is implemented by the axis-specific tool handler.
type tools interface {
	handleRegisterSeries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	handleSetSeriesData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	handleUpdateSeriesData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	handleRemoveSeries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	handleGetTimePoints(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	handleDrainInvalidation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	handleLoadSeries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	handleGetMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

var seriesKinds = []string{
	string(schema.BarSeries), string(schema.CandlestickSeries), string(schema.AreaSeries),
	string(schema.BaselineSeries), string(schema.LineSeries), string(schema.HistogramSeries),
	string(schema.CustomSeries),
}

// NewMCPServer initializes and configures the chartaxis MCP server without starting it.
// The server owns one live session on the configured axis.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Chartaxis Data Layer Server",
		"1.0.0",
		server.WithLogging(),
	)

	var h tools
	switch baseCfg.Axis {
	case schema.IndexAxis:
		h = newToolHandler[float64](horz.NewIndexBehavior(), baseCfg, mgr)
	default:
		h = newToolHandler[schema.UTCTime](horz.NewTimeBehavior(), baseCfg, mgr)
	}

	// --- 1. Tool: register_series ---
	s.AddTool(mcp.NewTool("register_series",
		mcp.WithDescription("Register a named series on the live chart session."),
		mcp.WithString("name", mcp.Description("Unique series name used by the other tools."), mcp.Required()),
		mcp.WithString("kind", mcp.Description("Series kind. Defaults to the configured kind."), mcp.Enum(seriesKinds...)),
		mcp.WithNumber("pane", mcp.Description("Pane index the series is shown on.")),
	), h.handleRegisterSeries)

	// --- 2. Tool: set_series_data ---
	s.AddTool(mcp.NewTool("set_series_data",
		mcp.WithDescription("Replace all data of a series. Returns the data update response."),
		mcp.WithString("series", mcp.Description("Series name."), mcp.Required()),
		mcp.WithArray("data", mcp.Description("Data items, e.g. {\"time\": 1704153600, \"value\": 1.5} or OHLC fields."), mcp.Required()),
	), h.handleSetSeriesData)

	// --- 3. Tool: update_series_data ---
	s.AddTool(mcp.NewTool("update_series_data",
		mcp.WithDescription("Append or amend one bar of a series."),
		mcp.WithString("series", mcp.Description("Series name."), mcp.Required()),
		mcp.WithObject("item", mcp.Description("The data item to write."), mcp.Required()),
		mcp.WithBoolean("historical", mcp.Description("Allow writing into the past.")),
		mcp.WithBoolean("persist", mcp.Description("Also append the item to the stored series of the same name.")),
	), h.handleUpdateSeriesData)

	// --- 4. Tool: remove_series ---
	s.AddTool(mcp.NewTool("remove_series",
		mcp.WithDescription("Remove a series and its rows from the session."),
		mcp.WithString("series", mcp.Description("Series name."), mcp.Required()),
	), h.handleRemoveSeries)

	// --- 5. Tool: get_time_points ---
	s.AddTool(mcp.NewTool("get_time_points",
		mcp.WithDescription("Return the global time axis and, optionally, the rows of one series."),
		mcp.WithString("series", mcp.Description("Series name whose rows should be included.")),
	), h.handleGetTimePoints)

	// --- 6. Tool: drain_invalidation ---
	s.AddTool(mcp.NewTool("drain_invalidation",
		mcp.WithDescription("Hand over the invalidation accumulated since the last drain."),
	), h.handleDrainInvalidation)

	// --- 7. Tool: load_series ---
	s.AddTool(mcp.NewTool("load_series",
		mcp.WithDescription("Load a series from the bar store into the session, registering it when needed."),
		mcp.WithString("series", mcp.Description("Series name in the session."), mcp.Required()),
		mcp.WithString("source", mcp.Description("Stored series name. Defaults to the series name.")),
		mcp.WithNumber("pane", mcp.Description("Pane index used when the series gets registered.")),
	), h.handleLoadSeries)

	// --- 8. Tool: get_metrics ---
	s.AddTool(mcp.NewTool("get_metrics",
		mcp.WithDescription("Return the session metrics in the Prometheus text format."),
	), h.handleGetMetrics)

	return s
}

// StartMCPServer starts the chartaxis MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
