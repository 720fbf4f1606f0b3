package schema

// Custom string types for type safety.
type (
	// SeriesKind selects the plot-row factory used for a series.
	SeriesKind string

	// AxisKind selects the horizontal-scale behavior of a session.
	AxisKind string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for the bar store.
	DatabaseBackend string

	// ChangeKind describes what a data call did to the rows of one series.
	ChangeKind string
)

// All series kinds supported.
const (
	BarSeries         SeriesKind = "bar"
	CandlestickSeries SeriesKind = "candlestick"
	AreaSeries        SeriesKind = "area"
	BaselineSeries    SeriesKind = "baseline"
	LineSeries        SeriesKind = "line" // default
	HistogramSeries   SeriesKind = "histogram"
	CustomSeries      SeriesKind = "custom"
)

// All axis kinds supported.
const (
	TimeAxis  AxisKind = "time" // default
	IndexAxis AxisKind = "index"
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
	CSVOut  OutputMode = "csv"
)

// All store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All change kinds reported per series.
const (
	ChangeReplaced ChangeKind = "replaced" // full data set replaced
	ChangeCleared  ChangeKind = "cleared"  // data set replaced by an empty one
	ChangeAppended ChangeKind = "appended" // new bar added at the right edge
	ChangeAmended  ChangeKind = "amended"  // last bar revised in place
	ChangeTrimmed  ChangeKind = "trimmed"  // last bar turned into whitespace
	ChangeGap      ChangeKind = "gap"      // whitespace added after the last bar
	ChangeHistory  ChangeKind = "history"  // bar written into the past
)

// TickMarkWeight ranks how significant a time point is for tick-mark labelling.
type TickMarkWeight int

// Tick mark weights used by the calendar axis.
const (
	WeightLessThanSecond TickMarkWeight = 0
	WeightSecond         TickMarkWeight = 10
	WeightMinute1        TickMarkWeight = 20
	WeightMinute5        TickMarkWeight = 21
	WeightMinute30       TickMarkWeight = 22
	WeightHour1          TickMarkWeight = 30
	WeightHour3          TickMarkWeight = 31
	WeightHour6          TickMarkWeight = 32
	WeightHour12         TickMarkWeight = 33
	WeightDay            TickMarkWeight = 50
	WeightMonth          TickMarkWeight = 60
	WeightYear           TickMarkWeight = 70
)

// ValidSeriesKinds lists all built-in series kinds.
var ValidSeriesKinds = map[SeriesKind]struct{}{
	BarSeries:         {},
	CandlestickSeries: {},
	AreaSeries:        {},
	BaselineSeries:    {},
	LineSeries:        {},
	HistogramSeries:   {},
	CustomSeries:      {},
}

// ValidAxisKinds lists all valid axis kinds.
var ValidAxisKinds = map[AxisKind]struct{}{
	TimeAxis:  {},
	IndexAxis: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	JSONOut: {},
	CSVOut:  {},
}

// ValidStoreBackends lists all valid store backends.
var ValidStoreBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
