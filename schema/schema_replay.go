package schema

// ReplayStep is the outcome of one replay step.
type ReplayStep[T any] struct {
	Index    int                    `json:"index"`
	Op       string                 `json:"op"`
	Series   string                 `json:"series,omitempty"`
	Response *DataUpdateResponse[T] `json:"response,omitempty"` // data steps only
	Error    string                 `json:"error,omitempty"`
}

// ReplayResult is everything a replay produced.
type ReplayResult[T any] struct {
	Script       string                  `json:"script"`
	Axis         AxisKind                `json:"axis"`
	SeriesNames  map[SeriesHandle]string `json:"seriesNames"`
	Steps        []ReplayStep[T]         `json:"steps"`
	Points       []TimePoint[T]          `json:"points"`
	Invalidation *InvalidationSnapshot   `json:"invalidation"` // nil when nothing was raised
}

// Failed returns the number of steps that returned an error.
func (r ReplayResult[T]) Failed() int {
	n := 0
	for _, s := range r.Steps {
		if s.Error != "" {
			n++
		}
	}
	return n
}
