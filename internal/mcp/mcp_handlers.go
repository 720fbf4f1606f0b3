package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/huangsam/chartaxis/core"
	"github.com/huangsam/chartaxis/internal/contract"
	"github.com/huangsam/chartaxis/internal/telemetry"
	"github.com/huangsam/chartaxis/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds the live session shared by all MCP tool handlers.
type toolHandler[T any] struct {
	mu      sync.Mutex // Tool calls may arrive concurrently
	baseCfg *contract.Config
	mgr     contract.StoreManager
	session *core.Session[T]
	metrics *telemetry.Metrics
	series  map[string]schema.SeriesHandle
}

func newToolHandler[T any](behavior contract.HorzScaleBehavior[T], baseCfg *contract.Config, mgr contract.StoreManager) *toolHandler[T] {
	metrics := telemetry.New()
	return &toolHandler[T]{
		baseCfg: baseCfg,
		mgr:     mgr,
		session: core.NewSession(behavior, metrics),
		metrics: metrics,
		series:  make(map[string]schema.SeriesHandle),
	}
}

func (h *toolHandler[T]) handleRegisterSeries(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")
	kind := schema.SeriesKind(request.GetString("kind", string(h.baseCfg.SeriesKind)))
	pane := request.GetInt("pane", h.baseCfg.Pane)
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	if kind == "" {
		kind = schema.LineSeries
	}
	if pane < contract.DefaultPane || pane > contract.MaxPane {
		return mcp.NewToolResultError(fmt.Sprintf("pane must be between %d and %d", contract.DefaultPane, contract.MaxPane)), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	handle, err := h.register(name, kind, pane)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"name": name, "handle": handle, "kind": kind, "pane": pane})
}

func (h *toolHandler[T]) handleSetSeriesData(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var items []schema.DataItem
	if err := decodeArgument(request, "data", &items); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	handle, err := h.lookup(request.GetString("series", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resp, err := h.session.SetData(handle, items)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("set data failed: %v", err)), nil
	}
	return jsonResult(resp)
}

func (h *toolHandler[T]) handleUpdateSeriesData(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var item schema.DataItem
	if err := decodeArgument(request, "item", &item); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name := request.GetString("series", "")
	persist := request.GetBool("persist", false)
	var store contract.BarStore
	if persist {
		if h.mgr == nil || h.mgr.GetBarStore() == nil {
			return mcp.NewToolResultError("bar store is not initialized"), nil
		}
		store = h.mgr.GetBarStore()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	handle, err := h.lookup(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resp, err := h.session.Update(handle, item, request.GetBool("historical", false))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("update failed: %v", err)), nil
	}
	if store != nil {
		kind, err := h.session.Layer().Kind(handle)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := store.AppendBar(name, kind, item); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("persist failed: %v", err)), nil
		}
	}
	return jsonResult(resp)
}

func (h *toolHandler[T]) handleRemoveSeries(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("series", "")

	h.mu.Lock()
	defer h.mu.Unlock()
	handle, err := h.lookup(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resp, err := h.session.RemoveSeries(handle)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("remove failed: %v", err)), nil
	}
	delete(h.series, name)
	return jsonResult(resp)
}

func (h *toolHandler[T]) handleGetTimePoints(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	layer := h.session.Layer()
	out := map[string]any{"points": layer.Points()}
	if base, ok := layer.BaseIndex(); ok {
		out["baseIndex"] = base
	}
	if name := request.GetString("series", ""); name != "" {
		handle, err := h.lookup(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out["rows"] = layer.SeriesRows(handle)
	}
	return jsonResult(out)
}

func (h *toolHandler[T]) handleDrainInvalidation(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m := h.session.Drain()
	if m == nil {
		return jsonResult(schema.InvalidationSnapshot{Global: schema.InvalidationNone})
	}
	return jsonResult(m.Snapshot())
}

func (h *toolHandler[T]) handleGetMetrics(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var sb strings.Builder
	if err := h.metrics.WriteText(&sb); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (h *toolHandler[T]) handleLoadSeries(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("series", "")
	source := request.GetString("source", name)
	if name == "" {
		return mcp.NewToolResultError("series is required"), nil
	}
	if h.mgr == nil || h.mgr.GetBarStore() == nil {
		return mcp.NewToolResultError("bar store is not initialized"), nil
	}
	stored, err := h.mgr.GetBarStore().LoadSeries(source)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	handle, ok := h.series[name]
	if !ok {
		if handle, err = h.register(name, stored.Kind, request.GetInt("pane", h.baseCfg.Pane)); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	resp, err := h.session.SetData(handle, stored.Items)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("set data failed: %v", err)), nil
	}
	return jsonResult(resp)
}

func (h *toolHandler[T]) register(name string, kind schema.SeriesKind, pane int) (schema.SeriesHandle, error) {
	if _, dup := h.series[name]; dup {
		return 0, fmt.Errorf("series %q is already registered", name)
	}
	handle, err := h.session.AddSeries(kind, pane, core.SeriesOptions{Owner: name})
	if err != nil {
		return 0, fmt.Errorf("register failed: %w", err)
	}
	h.series[name] = handle
	return handle, nil
}

func (h *toolHandler[T]) lookup(name string) (schema.SeriesHandle, error) {
	if name == "" {
		return 0, fmt.Errorf("series is required")
	}
	handle, ok := h.series[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", schema.ErrUnknownSeries, name)
	}
	return handle, nil
}

// decodeArgument re-decodes a structured tool argument into target.
func decodeArgument(request mcp.CallToolRequest, key string, target any) error {
	raw, ok := request.GetArguments()[key]
	if !ok || raw == nil {
		return fmt.Errorf("%s is required", key)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	return nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
