package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/chartaxis/core/horz"
	"github.com/huangsam/chartaxis/internal/barstore"
	"github.com/huangsam/chartaxis/internal/contract"
	"github.com/huangsam/chartaxis/internal/script"
	"github.com/huangsam/chartaxis/internal/telemetry"
	"github.com/huangsam/chartaxis/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const replayScript = `
axis: index
series:
  - name: price
  - name: volume
    kind: histogram
    pane: 1
steps:
  - op: set
    series: price
    data:
      - {time: 1, value: 10}
      - {time: 2, value: 11}
  - op: update
    series: price
    item: {time: 3, value: 12}
  - op: update
    series: price
    item: {time: 1, value: 9}
  - op: animate
    animation: kinetic
  - op: reset
  - op: set
    series: volume
    data:
      - {time: 2, value: 100}
  - op: load
    series: volume
    source: stored-volume
`

func parseScript(t *testing.T, src string) *script.Script {
	t.Helper()
	sc, err := script.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return sc
}

func TestRunReplay(t *testing.T) {
	bars := &barstore.MockBarStore{}
	bars.On("LoadSeries", "stored-volume").Return(schema.StoredSeries{
		Name:  "stored-volume",
		Kind:  schema.HistogramSeries,
		Items: []schema.DataItem{schema.SingleValue(4, 50)},
	}, nil)

	result, err := RunReplay[float64](context.Background(), parseScript(t, replayScript), horz.NewIndexBehavior(), bars, telemetry.New())
	require.NoError(t, err)

	require.Len(t, result.Steps, 7)
	assert.Equal(t, "price", result.SeriesNames[0])
	assert.Equal(t, "volume", result.SeriesNames[1])

	set := result.Steps[0]
	require.NotNil(t, set.Response)
	assert.Equal(t, 0, set.Response.TimeScale.FirstChangedPointIndex)

	appended := result.Steps[1]
	require.NotNil(t, appended.Response)
	u, ok := appended.Response.Find(0)
	require.True(t, ok)
	assert.Equal(t, schema.ChangeAppended, u.Info.Kind)
	assert.Equal(t, 2, appended.Response.TimeScale.FirstChangedPointIndex)

	outOfOrder := result.Steps[2]
	assert.Nil(t, outOfOrder.Response)
	assert.Contains(t, outOfOrder.Error, "cannot update oldest data")
	assert.Equal(t, 1, result.Failed())

	assert.Nil(t, result.Steps[3].Response, "mask steps carry no response")
	assert.Empty(t, result.Steps[3].Error)

	load := result.Steps[6]
	require.NotNil(t, load.Response)
	require.Len(t, result.Points, 4)
	assert.Equal(t, 4.0, result.Points[3].Time)

	require.NotNil(t, result.Invalidation)
	assert.Equal(t, schema.InvalidationFull, result.Invalidation.Global)
	require.Len(t, result.Invalidation.Ops, 1)
	assert.Equal(t, schema.OpReset, result.Invalidation.Ops[0].Type)
	bars.AssertExpectations(t)
}

func TestRunReplayWithoutStore(t *testing.T) {
	sc := parseScript(t, "series:\n  - name: a\nsteps:\n  - op: load\n    series: a\n")
	result, err := RunReplay[float64](context.Background(), sc, horz.NewIndexBehavior(), nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, "bar store is not initialized", result.Steps[0].Error)
	assert.Nil(t, result.Invalidation)
}

func TestRunReplayPersistsUpdates(t *testing.T) {
	src := `
axis: index
series:
  - name: btc
    kind: area
steps:
  - op: set
    series: btc
    data:
      - {time: 1, value: 10}
  - op: update
    series: btc
    item: {time: 2, value: 12}
    persist: true
  - op: update
    series: btc
    item: {time: 3, value: 13}
  - op: update
    series: btc
    item: {time: 0, value: 1}
    persist: true
`
	bars := &barstore.MockBarStore{}
	bars.On("AppendBar", "btc", schema.AreaSeries, mock.MatchedBy(func(it schema.DataItem) bool {
		return it.Value != nil && *it.Value == 12
	})).Return(nil).Once()

	result, err := RunReplay[float64](context.Background(), parseScript(t, src), horz.NewIndexBehavior(), bars, nil)
	require.NoError(t, err)
	require.Len(t, result.Steps, 4)
	assert.Empty(t, result.Steps[1].Error)
	assert.Empty(t, result.Steps[2].Error)
	assert.Contains(t, result.Steps[3].Error, "cannot update oldest data", "rejected updates are not stored")
	bars.AssertExpectations(t)

	result, err = RunReplay[float64](context.Background(), parseScript(t, src), horz.NewIndexBehavior(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "bar store is not initialized", result.Steps[1].Error)
	assert.Len(t, result.Points, 2, "the update is not applied without a store")
}

func TestRunReplayCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunReplay[float64](ctx, parseScript(t, replayScript), horz.NewIndexBehavior(), nil, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunReplayTimeAxis(t *testing.T) {
	src := `
series:
  - name: daily
steps:
  - op: set
    series: daily
    data:
      - {time: 2024-01-02, value: 1}
      - {time: 2024-01-03, value: 2}
  - op: crosshair
`
	result, err := RunReplay[schema.UTCTime](context.Background(), parseScript(t, src), horz.NewTimeBehavior(), nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Points, 2)
	assert.Equal(t, "2024-01-02", result.Points[0].OriginalTime)
	require.NotNil(t, result.Points[0].Time.BusinessDay)
	assert.Equal(t, 0, result.Failed())
}

func TestExecuteReplay(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "replay.yaml")
	require.NoError(t, os.WriteFile(scriptPath, []byte("series:\n  - name: a\nsteps:\n  - op: set\n    series: a\n    data:\n      - {time: 1, value: 1}\n"), 0o644))

	cfg := &contract.Config{
		ScriptPath: scriptPath,
		Axis:       schema.IndexAxis,
		Output:     schema.JSONOut,
		OutputFile: filepath.Join(dir, "out.json"),
		Precision:  2,
	}
	require.NoError(t, ExecuteReplay(context.Background(), cfg, nil))
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"axis": "index"`)

	// A failing step is reported after the output is written
	require.NoError(t, os.WriteFile(scriptPath, []byte("series:\n  - name: a\nsteps:\n  - op: load\n    series: a\n"), 0o644))
	err = ExecuteReplay(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 replay steps failed")

	// Metrics are written even when a step fails
	cfg.MetricsFile = filepath.Join(dir, "chartaxis.prom")
	require.Error(t, ExecuteReplay(context.Background(), cfg, nil))
	prom, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `chartaxis_data_operations_total{operation="register",outcome="ok"} 1`)

	cfg.ScriptPath = filepath.Join(dir, "missing.yaml")
	assert.Error(t, ExecuteReplay(context.Background(), cfg, nil))
}
