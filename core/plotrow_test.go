package core

import (
	"testing"

	"github.com/huangsam/chartaxis/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildRow(t *testing.T, kind schema.SeriesKind, item schema.DataItem, opts SeriesOptions) *schema.PlotRow[float64] {
	t.Helper()
	factory, ok := builtinFactories[float64]()[kind]
	require.True(t, ok, "no factory for %s", kind)
	return createPlotRow(factory, kind, 1.0, 7, item, opts)
}

func TestSingleValueKinds(t *testing.T) {
	item := schema.SingleValue(1, 42)
	item.Color = "red"
	item.LineColor = "blue"
	item.TopFillColor1 = "green"

	tests := []struct {
		kind  schema.SeriesKind
		style schema.RowStyle
	}{
		{schema.LineSeries, schema.RowStyle{Color: "red"}},
		{schema.HistogramSeries, schema.RowStyle{Color: "red"}},
		{schema.AreaSeries, schema.RowStyle{LineColor: "blue"}},
		{schema.BaselineSeries, schema.RowStyle{TopFillColor1: "green"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			row := buildRow(t, tt.kind, item, SeriesOptions{})
			assert.Equal(t, [4]float64{42, 42, 42, 42}, row.Value)
			assert.Equal(t, tt.style, row.Style)
			assert.Equal(t, 7, row.Index)
			assert.False(t, row.Whitespace)
		})
	}
}

func TestOHLCKinds(t *testing.T) {
	item := schema.OHLC(1, 10, 15, 8, 12)
	item.WickColor = "gray"

	bar := buildRow(t, schema.BarSeries, item, SeriesOptions{})
	assert.Equal(t, [4]float64{10, 15, 8, 12}, bar.Value)
	assert.Empty(t, bar.Style.WickColor)

	candle := buildRow(t, schema.CandlestickSeries, item, SeriesOptions{})
	assert.Equal(t, [4]float64{10, 15, 8, 12}, candle.Value)
	assert.Equal(t, "gray", candle.Style.WickColor)

	single := buildRow(t, schema.BarSeries, schema.SingleValue(1, 3), SeriesOptions{})
	assert.Equal(t, [4]float64{3, 3, 3, 3}, single.Value)

	partial := buildRow(t, schema.CandlestickSeries, schema.DataItem{Time: 1, Open: schema.F(5), Close: schema.F(9)}, SeriesOptions{})
	assert.Equal(t, [4]float64{5, 9, 5, 9}, partial.Value)

	line := buildRow(t, schema.LineSeries, item, SeriesOptions{})
	assert.Equal(t, [4]float64{12, 12, 12, 12}, line.Value, "line reads the close of OHLC items")
}

func TestWhitespaceRow(t *testing.T) {
	item := schema.Whitespace(1)
	item.CustomValues = map[string]any{"note": "halt"}

	row := buildRow(t, schema.CandlestickSeries, item, SeriesOptions{})
	assert.True(t, row.Whitespace)
	assert.Equal(t, "halt", row.CustomValues["note"])
}

func TestCustomKind(t *testing.T) {
	item := schema.DataItem{Time: 1, Fields: map[string]float64{"a": 3, "b": 9, "c": 5}}

	t.Run("default builder uses fields in key order", func(t *testing.T) {
		row := buildRow(t, schema.CustomSeries, item, SeriesOptions{})
		assert.Equal(t, [4]float64{5, 9, 3, 5}, row.Value)
		assert.Equal(t, item.Fields, row.Data)
	})

	t.Run("builder", func(t *testing.T) {
		opts := SeriesOptions{CustomValuesBuilder: func(it schema.DataItem) []float64 {
			return []float64{it.Fields["c"], it.Fields["a"]}
		}}
		row := buildRow(t, schema.CustomSeries, item, opts)
		assert.Equal(t, [4]float64{3, 5, 3, 3}, row.Value)
	})

	t.Run("whitespace check", func(t *testing.T) {
		opts := SeriesOptions{WhitespaceCheck: func(it schema.DataItem) bool { return it.Fields["b"] == 9 }}
		assert.True(t, buildRow(t, schema.CustomSeries, item, opts).Whitespace)
	})

	t.Run("no values is whitespace", func(t *testing.T) {
		assert.True(t, buildRow(t, schema.CustomSeries, schema.DataItem{Time: 1}, SeriesOptions{}).Whitespace)
	})
}

func TestUnknownKindError(t *testing.T) {
	err := unknownKindError("pie")
	assert.ErrorIs(t, err, schema.ErrUnknownSeriesKind)
	assert.Contains(t, err.Error(), `"pie"`)
}
