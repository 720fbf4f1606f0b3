package schema

import "slices"

// NoTimeScaleChange is the FirstChangedPointIndex of updates that left the time axis untouched.
const NoTimeScaleChange = -1

// ChangeInfo describes what a data call did to one series.
type ChangeInfo struct {
	Kind ChangeKind `json:"kind"`

	// RightEdge is true when the write extended the series at its right edge or revised its last bar.
	RightEdge bool `json:"rightEdge"`

	// Historical is true when the update was allowed to write into the past.
	Historical bool `json:"historical"`
}

// NewBar reports whether a new bar arrived at the right edge.
func (ci ChangeInfo) NewBar() bool {
	return ci.Kind == ChangeAppended
}

// SeriesUpdate holds the current filled rows of one series after a data call.
// Rows share their values with the data layer: indices reflect the latest state.
type SeriesUpdate[T any] struct {
	Series SeriesHandle  `json:"series"`
	Rows   []*PlotRow[T] `json:"rows"`
	Info   *ChangeInfo   `json:"info,omitempty"` // nil for series listed only for resynchronisation
}

// TimeScaleUpdate describes the time axis after a data call.
type TimeScaleUpdate[T any] struct {
	// BaseIndex is the largest last-row index over all series; nil when no series has rows.
	BaseIndex *int `json:"baseIndex"`

	// Points is the full sorted sequence; only set when FirstChangedPointIndex != NoTimeScaleChange.
	Points []TimePoint[T] `json:"points,omitempty"`

	// FirstChangedPointIndex is the first axis position that changed, or NoTimeScaleChange.
	FirstChangedPointIndex int `json:"firstChangedPointIndex"`
}

// DataUpdateResponse is produced by every data layer mutation.
// Series is ordered by handle.
type DataUpdateResponse[T any] struct {
	Series    []SeriesUpdate[T]  `json:"series"`
	TimeScale TimeScaleUpdate[T] `json:"timeScale"`
}

// AffectsTimeScale reports whether the response carries a new time axis.
func (r DataUpdateResponse[T]) AffectsTimeScale() bool {
	return r.TimeScale.FirstChangedPointIndex != NoTimeScaleChange
}

// Find returns the update for one series.
func (r DataUpdateResponse[T]) Find(h SeriesHandle) (SeriesUpdate[T], bool) {
	i := slices.IndexFunc(r.Series, func(u SeriesUpdate[T]) bool { return u.Series == h })
	if i < 0 {
		return SeriesUpdate[T]{}, false
	}
	return r.Series[i], true
}
