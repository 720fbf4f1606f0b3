package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/chartaxis/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScript = `
axis: time
series:
  - name: price
    kind: candlestick
  - name: volume
    kind: histogram
    pane: 1
steps:
  - op: set
    series: price
    data:
      - {time: 2024-01-02, open: 1, high: 3, low: 0.5, close: 2}
      - {time: 2024-01-03, open: 2, high: 4, low: 1.5, close: 3, color: "#00ff00"}
  - op: update
    series: volume
    item: {time: 1704240000, value: 42}
  - op: range
    range: {from: 0, to: 10}
  - op: bar_spacing
    value: 6
  - op: crosshair
`

func TestParse(t *testing.T) {
	sc, err := Parse(strings.NewReader(sampleScript))
	require.NoError(t, err)

	assert.Equal(t, schema.TimeAxis, sc.Axis)
	require.Len(t, sc.Series, 2)
	assert.Equal(t, schema.CandlestickSeries, sc.Series[0].Kind)
	assert.Equal(t, 1, sc.Series[1].Pane)

	require.Len(t, sc.Steps, 5)
	set := sc.Steps[0]
	assert.Equal(t, OpSet, set.Op)
	require.Len(t, set.Data, 2)
	assert.Equal(t, "2024-01-02", set.Data[0].Time, "dates stay raw strings")
	assert.Equal(t, 2.0, *set.Data[0].Close)
	assert.Equal(t, "#00ff00", set.Data[1].Color)

	update := sc.Steps[1]
	require.NotNil(t, update.Item)
	assert.Equal(t, 1704240000, update.Item.Time)
	assert.Equal(t, "update volume", update.Label())

	assert.Equal(t, schema.LogicalRange{From: 0, To: 10}, *sc.Steps[2].Range)
	assert.Equal(t, 6.0, sc.Steps[3].Value)
	assert.Equal(t, "crosshair", sc.Steps[4].Label())
}

func TestParseDefaults(t *testing.T) {
	sc, err := Parse(strings.NewReader("series:\n  - name: a\nsteps:\n  - op: remove\n    series: a\n"))
	require.NoError(t, err)
	assert.Equal(t, schema.LineSeries, sc.Series[0].Kind)
	assert.Empty(t, sc.Axis)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"empty", "", "script is empty"},
		{"unknown field", "series: []\nbogus: 1\n", "failed to decode"},
		{"bad axis", "axis: weekly\n", "invalid axis"},
		{"unnamed series", "series:\n  - kind: line\n", "has no name"},
		{"duplicate series", "series:\n  - name: a\n  - name: a\n", "declared twice"},
		{"bad kind", "series:\n  - name: a\n    kind: pie\n", "unknown series kind"},
		{"bad pane", "series:\n  - name: a\n    pane: 99\n", "pane must be between"},
		{"undeclared series", "steps:\n  - op: set\n    series: a\n", "not declared"},
		{"missing series", "steps:\n  - op: set\n", "series is required"},
		{"update without item", "series:\n  - name: a\nsteps:\n  - op: update\n    series: a\n", "item is required"},
		{"range without bounds", "steps:\n  - op: range\n", "range is required"},
		{"reversed range", "steps:\n  - op: range\n    range: {from: 5, to: 1}\n", "is after"},
		{"zero spacing", "steps:\n  - op: bar_spacing\n", "must be positive"},
		{"unknown op", "steps:\n  - op: zoom\n", "unknown op"},
		{"persist on set", "series:\n  - name: a\nsteps:\n  - op: set\n    series: a\n    persist: true\n", "only supported by update"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.script))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleScript), 0o644))

	sc, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, sc.Steps, 5)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestStepOpIsData(t *testing.T) {
	assert.True(t, OpSet.IsData())
	assert.True(t, OpLoad.IsData())
	assert.False(t, OpFitContent.IsData())
	assert.False(t, OpCrosshair.IsData())
}
