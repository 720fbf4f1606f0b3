package core

import (
	"fmt"
	"maps"
	"slices"

	"github.com/huangsam/chartaxis/schema"
)

// CustomValuesBuilder extracts the plotted values of a custom series item.
// The last value is treated as the current one; the extremes become high and low.
type CustomValuesBuilder func(item schema.DataItem) []float64

// WhitespaceCheck reports whether an item of a custom series carries no value.
type WhitespaceCheck func(item schema.DataItem) bool

// SeriesOptions carries the per-series settings given at registration.
type SeriesOptions struct {
	Owner               any // opaque object returned by Owner
	CustomValuesBuilder CustomValuesBuilder
	WhitespaceCheck     WhitespaceCheck
}

// PlotRowFactory builds the filled row of one series kind.
// It is never called for whitespace items.
type PlotRowFactory[T any] func(t T, index int, item schema.DataItem, opts SeriesOptions) *schema.PlotRow[T]

// builtinFactories returns the factories of the built-in series kinds.
func builtinFactories[T any]() map[schema.SeriesKind]PlotRowFactory[T] {
	return map[schema.SeriesKind]PlotRowFactory[T]{
		schema.BarSeries:         barRow[T],
		schema.CandlestickSeries: candlestickRow[T],
		schema.AreaSeries:        areaRow[T],
		schema.BaselineSeries:    baselineRow[T],
		schema.LineSeries:        lineRow[T],
		schema.HistogramSeries:   histogramRow[T],
		schema.CustomSeries:      customRow[T],
	}
}

// createPlotRow builds the row for item, producing a whitespace row when the item carries no value.
func createPlotRow[T any](
	factory PlotRowFactory[T], kind schema.SeriesKind, t T, index int, item schema.DataItem, opts SeriesOptions,
) *schema.PlotRow[T] {
	if isWhitespace(kind, item, opts) {
		return &schema.PlotRow[T]{
			Index:        index,
			Time:         t,
			Whitespace:   true,
			CustomValues: item.CustomValues,
		}
	}
	row := factory(t, index, item, opts)
	row.CustomValues = item.CustomValues
	return row
}

func isWhitespace(kind schema.SeriesKind, item schema.DataItem, opts SeriesOptions) bool {
	if kind != schema.CustomSeries {
		return item.IsWhitespace()
	}
	if opts.WhitespaceCheck != nil {
		return opts.WhitespaceCheck(item)
	}
	return len(customValues(item, opts)) == 0
}

func singleValueRow[T any](t T, index int, v float64) *schema.PlotRow[T] {
	return &schema.PlotRow[T]{Index: index, Time: t, Value: [4]float64{v, v, v, v}}
}

func lineRow[T any](t T, index int, item schema.DataItem, _ SeriesOptions) *schema.PlotRow[T] {
	row := singleValueRow(t, index, primaryValue(item))
	row.Style.Color = item.Color
	return row
}

func histogramRow[T any](t T, index int, item schema.DataItem, _ SeriesOptions) *schema.PlotRow[T] {
	row := singleValueRow(t, index, primaryValue(item))
	row.Style.Color = item.Color
	return row
}

func areaRow[T any](t T, index int, item schema.DataItem, _ SeriesOptions) *schema.PlotRow[T] {
	row := singleValueRow(t, index, primaryValue(item))
	row.Style.LineColor = item.LineColor
	row.Style.TopColor = item.TopColor
	row.Style.BottomColor = item.BottomColor
	return row
}

func baselineRow[T any](t T, index int, item schema.DataItem, _ SeriesOptions) *schema.PlotRow[T] {
	row := singleValueRow(t, index, primaryValue(item))
	row.Style.TopLineColor = item.TopLineColor
	row.Style.TopFillColor1 = item.TopFillColor1
	row.Style.TopFillColor2 = item.TopFillColor2
	row.Style.BottomLineColor = item.BottomLineColor
	row.Style.BottomFillColor1 = item.BottomFillColor1
	row.Style.BottomFillColor2 = item.BottomFillColor2
	return row
}

func ohlcRow[T any](t T, index int, item schema.DataItem) *schema.PlotRow[T] {
	open := *item.Open
	closeValue := valueOr(item.Close, open)
	high := valueOr(item.High, max(open, closeValue))
	low := valueOr(item.Low, min(open, closeValue))
	return &schema.PlotRow[T]{Index: index, Time: t, Value: [4]float64{open, high, low, closeValue}}
}

func barRow[T any](t T, index int, item schema.DataItem, _ SeriesOptions) *schema.PlotRow[T] {
	if item.Open == nil {
		return singleValueRow(t, index, primaryValue(item))
	}
	row := ohlcRow(t, index, item)
	row.Style.Color = item.Color
	return row
}

func candlestickRow[T any](t T, index int, item schema.DataItem, _ SeriesOptions) *schema.PlotRow[T] {
	if item.Open == nil {
		return singleValueRow(t, index, primaryValue(item))
	}
	row := ohlcRow(t, index, item)
	row.Style.Color = item.Color
	row.Style.BorderColor = item.BorderColor
	row.Style.WickColor = item.WickColor
	return row
}

func customRow[T any](t T, index int, item schema.DataItem, opts SeriesOptions) *schema.PlotRow[T] {
	values := customValues(item, opts)
	row := &schema.PlotRow[T]{Index: index, Time: t, Data: maps.Clone(item.Fields)}
	if len(values) == 0 {
		return row
	}
	last := values[len(values)-1]
	row.Value = [4]float64{last, slices.Max(values), slices.Min(values), last}
	return row
}

// customValues applies the series' builder, defaulting to Value or the fields in key order.
func customValues(item schema.DataItem, opts SeriesOptions) []float64 {
	if opts.CustomValuesBuilder != nil {
		return opts.CustomValuesBuilder(item)
	}
	if item.Value != nil {
		return []float64{*item.Value}
	}
	values := make([]float64, 0, len(item.Fields))
	for _, k := range slices.Sorted(maps.Keys(item.Fields)) {
		values = append(values, item.Fields[k])
	}
	return values
}

// primaryValue reads the single value of an item, falling back to its close or open.
func primaryValue(item schema.DataItem) float64 {
	if item.Value != nil {
		return *item.Value
	}
	return valueOr(item.Close, *item.Open)
}

func valueOr(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}

func unknownKindError(kind schema.SeriesKind) error {
	return fmt.Errorf("%w: %q", schema.ErrUnknownSeriesKind, kind)
}
