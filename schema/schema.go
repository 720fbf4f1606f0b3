// Package schema has models, enums and errors shared by all parts of chartaxis.
package schema

import "fmt"

// TimeKey is the totally ordered scalar a horizontal-scale behavior derives from a time value.
// Two time values with the same key occupy the same slot on the time axis.
type TimeKey float64

// SeriesHandle identifies a series registered with a data layer.
// Handles are issued in increasing order and never reused by the same data layer.
type SeriesHandle int

// String implements fmt.Stringer.
func (h SeriesHandle) String() string {
	return fmt.Sprintf("series#%d", int(h))
}

// BusinessDay is a calendar day without a time-of-day component.
type BusinessDay struct {
	Year  int `json:"year" yaml:"year" mapstructure:"year"`
	Month int `json:"month" yaml:"month" mapstructure:"month"`
	Day   int `json:"day" yaml:"day" mapstructure:"day"`
}

// String formats the day as YYYY-MM-DD.
func (d BusinessDay) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// UTCTime is the internal time representation of the calendar axis.
type UTCTime struct {
	Timestamp   int64        `json:"timestamp"`             // Seconds since the Unix epoch, UTC
	BusinessDay *BusinessDay `json:"businessDay,omitempty"` // Set when the original time was a calendar day
}

// DataItem is one raw bar or point supplied by the caller.
// Which fields are meaningful depends on the series kind: single-value kinds read Value,
// OHLC kinds read Open/High/Low/Close, custom series read Fields. An item carrying
// neither Value nor Open is whitespace: a slot on the axis without a value.
type DataItem struct {
	Time  any      `json:"time" yaml:"time"` // Raw time, interpreted by the horizontal-scale behavior
	Value *float64 `json:"value,omitempty" yaml:"value,omitempty"`
	Open  *float64 `json:"open,omitempty" yaml:"open,omitempty"`
	High  *float64 `json:"high,omitempty" yaml:"high,omitempty"`
	Low   *float64 `json:"low,omitempty" yaml:"low,omitempty"`
	Close *float64 `json:"close,omitempty" yaml:"close,omitempty"`

	RowStyle `yaml:",inline"`

	Fields       map[string]float64 `json:"fields,omitempty" yaml:"fields,omitempty"`             // Payload of custom series
	CustomValues map[string]any     `json:"customValues,omitempty" yaml:"customValues,omitempty"` // Carried through to the row untouched
}

// RowStyle holds the optional per-row style overrides of every series kind.
// Empty strings mean "use the series default".
type RowStyle struct {
	Color            string `json:"color,omitempty" yaml:"color,omitempty"`
	BorderColor      string `json:"borderColor,omitempty" yaml:"borderColor,omitempty"`
	WickColor        string `json:"wickColor,omitempty" yaml:"wickColor,omitempty"`
	LineColor        string `json:"lineColor,omitempty" yaml:"lineColor,omitempty"`
	TopColor         string `json:"topColor,omitempty" yaml:"topColor,omitempty"`
	BottomColor      string `json:"bottomColor,omitempty" yaml:"bottomColor,omitempty"`
	TopLineColor     string `json:"topLineColor,omitempty" yaml:"topLineColor,omitempty"`
	TopFillColor1    string `json:"topFillColor1,omitempty" yaml:"topFillColor1,omitempty"`
	TopFillColor2    string `json:"topFillColor2,omitempty" yaml:"topFillColor2,omitempty"`
	BottomLineColor  string `json:"bottomLineColor,omitempty" yaml:"bottomLineColor,omitempty"`
	BottomFillColor1 string `json:"bottomFillColor1,omitempty" yaml:"bottomFillColor1,omitempty"`
	BottomFillColor2 string `json:"bottomFillColor2,omitempty" yaml:"bottomFillColor2,omitempty"`
}

// IsWhitespace reports whether the item carries no value for a built-in series kind.
func (it DataItem) IsWhitespace() bool {
	return it.Value == nil && it.Open == nil
}

// PlotRow is the per-series value stored at one slot of the time axis.
// Value is laid out as open, high, low, close; single-value kinds repeat the value four times.
type PlotRow[T any] struct {
	Index        int                `json:"index"`
	Time         T                  `json:"time"`
	Value        [4]float64         `json:"value"`
	OriginalTime any                `json:"originalTime"`
	Whitespace   bool               `json:"whitespace,omitempty"`
	Style        RowStyle           `json:"style"`
	Data         map[string]float64 `json:"data,omitempty"`
	CustomValues map[string]any     `json:"customValues,omitempty"`
}

// Positions inside PlotRow.Value.
const (
	PlotOpen = iota
	PlotHigh
	PlotLow
	PlotClose
)

// TimePoint is one slot of the global time axis.
type TimePoint[T any] struct {
	Time         T              `json:"time"`
	TimeWeight   TickMarkWeight `json:"timeWeight"`
	Index        int            `json:"index"`
	OriginalTime any            `json:"originalTime"`
}
