package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/huangsam/chartaxis/internal/barstore"
	"github.com/huangsam/chartaxis/internal/contract"
	mcp_internal "github.com/huangsam/chartaxis/internal/mcp"
	"github.com/huangsam/chartaxis/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func resultText(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func decodeResult(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.False(t, res.IsError, resultText(res))
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &out))
	return out
}

func indexConfig() *contract.Config {
	return &contract.Config{Axis: schema.IndexAxis, SeriesKind: schema.LineSeries}
}

func TestMCPServerSessionFlow(t *testing.T) {
	s := mcp_internal.NewMCPServer(indexConfig(), nil)

	reg := decodeResult(t, callTool(t, s, "register_series", map[string]any{"name": "price", "pane": 1.0}))
	assert.Equal(t, "price", reg["name"])
	assert.Equal(t, "line", reg["kind"])

	set := decodeResult(t, callTool(t, s, "set_series_data", map[string]any{
		"series": "price",
		"data": []any{
			map[string]any{"time": 1.0, "value": 10.0},
			map[string]any{"time": 2.0, "value": 11.0},
		},
	}))
	timeScale := set["timeScale"].(map[string]any)
	assert.Equal(t, 0.0, timeScale["firstChangedPointIndex"])
	assert.Equal(t, 1.0, timeScale["baseIndex"])

	upd := decodeResult(t, callTool(t, s, "update_series_data", map[string]any{
		"series": "price",
		"item":   map[string]any{"time": 2.0, "value": 12.0},
	}))
	assert.Equal(t, -1.0, upd["timeScale"].(map[string]any)["firstChangedPointIndex"])

	points := decodeResult(t, callTool(t, s, "get_time_points", map[string]any{"series": "price"}))
	assert.Len(t, points["points"], 2)
	assert.Len(t, points["rows"], 2)

	drained := decodeResult(t, callTool(t, s, "drain_invalidation", nil))
	assert.Equal(t, "full", drained["global"])
	panes := drained["panes"].(map[string]any)
	assert.Contains(t, panes, "1")

	again := decodeResult(t, callTool(t, s, "drain_invalidation", nil))
	assert.Equal(t, "none", again["global"])

	removed := decodeResult(t, callTool(t, s, "remove_series", map[string]any{"series": "price"}))
	assert.Len(t, removed["series"], 1)

	res := callTool(t, s, "get_time_points", map[string]any{"series": "price"})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "unknown series")
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	s := mcp_internal.NewMCPServer(indexConfig(), nil)
	decodeResult(t, callTool(t, s, "register_series", map[string]any{"name": "a"}))
	decodeResult(t, callTool(t, s, "set_series_data", map[string]any{
		"series": "a",
		"data":   []any{map[string]any{"time": 5.0, "value": 1.0}},
	}))

	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{"register without name", "register_series", map[string]any{}, "name is required"},
		{"register twice", "register_series", map[string]any{"name": "a"}, "already registered"},
		{"register unknown kind", "register_series", map[string]any{"name": "b", "kind": "pie"}, "unknown series kind"},
		{"register bad pane", "register_series", map[string]any{"name": "b", "pane": 99.0}, "pane must be between"},
		{"set unknown series", "set_series_data", map[string]any{"series": "zzz", "data": []any{}}, "unknown series"},
		{"set without data", "set_series_data", map[string]any{"series": "a"}, "data is required"},
		{"update out of order", "update_series_data", map[string]any{"series": "a", "item": map[string]any{"time": 1.0, "value": 2.0}}, "cannot update oldest data"},
		{"update bad time", "update_series_data", map[string]any{"series": "a", "item": map[string]any{"time": "soon", "value": 2.0}}, "invalid time"},
		{"load without store", "load_series", map[string]any{"series": "a"}, "bar store is not initialized"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, s, tt.tool, tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, resultText(res), tt.want)
		})
	}
}

func TestMCPServerLoadSeries(t *testing.T) {
	stored := schema.StoredSeries{
		Name:  "btc",
		Kind:  schema.CandlestickSeries,
		Items: []schema.DataItem{schema.OHLC("2024-01-02", 1, 2, 0.5, 1.5), schema.OHLC("2024-01-03", 1.5, 3, 1, 2)},
	}
	bars := &barstore.MockBarStore{}
	bars.On("LoadSeries", "btc").Return(stored, nil)
	mgr := &barstore.MockStoreManager{}
	mgr.On("GetBarStore").Return(bars)

	cfg := &contract.Config{Axis: schema.TimeAxis, SeriesKind: schema.LineSeries}
	s := mcp_internal.NewMCPServer(cfg, mgr)

	loaded := decodeResult(t, callTool(t, s, "load_series", map[string]any{"series": "chart", "source": "btc"}))
	series := loaded["series"].([]any)
	require.Len(t, series, 1)
	rows := series[0].(map[string]any)["rows"].([]any)
	assert.Len(t, rows, 2)

	points := decodeResult(t, callTool(t, s, "get_time_points", map[string]any{"series": "chart"}))
	assert.Len(t, points["points"], 2)
	bars.AssertExpectations(t)
}

func TestMCPServerGetMetrics(t *testing.T) {
	s := mcp_internal.NewMCPServer(indexConfig(), nil)
	decodeResult(t, callTool(t, s, "register_series", map[string]any{"name": "a"}))
	decodeResult(t, callTool(t, s, "set_series_data", map[string]any{
		"series": "a",
		"data":   []any{map[string]any{"time": 1.0, "value": 1.0}, map[string]any{"time": 2.0, "value": 2.0}},
	}))
	res := callTool(t, s, "update_series_data", map[string]any{"series": "a", "item": map[string]any{"time": 0.0, "value": 1.0}})
	require.True(t, res.IsError)

	metrics := callTool(t, s, "get_metrics", nil)
	require.False(t, metrics.IsError)
	text := resultText(metrics)
	assert.Contains(t, text, `chartaxis_data_operations_total{operation="set",outcome="ok"} 1`)
	assert.Contains(t, text, `chartaxis_data_operations_total{operation="update",outcome="error"} 1`)
	assert.Contains(t, text, "chartaxis_time_points 2")
}

func TestMCPServerPersistUpdate(t *testing.T) {
	item := schema.SingleValue(3.0, 7)
	bars := &barstore.MockBarStore{}
	bars.On("AppendBar", "a", schema.HistogramSeries, item).Return(nil).Once()
	mgr := &barstore.MockStoreManager{}
	mgr.On("GetBarStore").Return(bars)

	s := mcp_internal.NewMCPServer(indexConfig(), mgr)
	decodeResult(t, callTool(t, s, "register_series", map[string]any{"name": "a", "kind": "histogram"}))

	// Without persist the store is left alone
	decodeResult(t, callTool(t, s, "update_series_data", map[string]any{
		"series": "a",
		"item":   map[string]any{"time": 2.0, "value": 5.0},
	}))
	decodeResult(t, callTool(t, s, "update_series_data", map[string]any{
		"series":  "a",
		"item":    map[string]any{"time": 3.0, "value": 7.0},
		"persist": true,
	}))
	bars.AssertExpectations(t)

	noStore := mcp_internal.NewMCPServer(indexConfig(), nil)
	decodeResult(t, callTool(t, noStore, "register_series", map[string]any{"name": "a"}))
	res := callTool(t, noStore, "update_series_data", map[string]any{
		"series":  "a",
		"item":    map[string]any{"time": 1.0, "value": 1.0},
		"persist": true,
	})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "bar store is not initialized")
}
