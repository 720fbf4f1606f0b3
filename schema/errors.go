package schema

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the data layer.
var (
	// ErrOutOfOrderUpdate is returned when an incremental update is older than the series' last time.
	ErrOutOfOrderUpdate = errors.New("out of order update")

	// ErrUnknownSeriesKind is returned when no plot-row factory is registered for a series kind.
	ErrUnknownSeriesKind = errors.New("unknown series kind")

	// ErrUnknownSeries is returned for handles that were never issued or were already removed.
	ErrUnknownSeries = errors.New("unknown series")

	// ErrInvalidTime is returned when a raw time cannot be converted by the horizontal-scale behavior.
	ErrInvalidTime = errors.New("invalid time")
)

// OutOfOrderError carries the details of a rejected incremental update.
// It matches ErrOutOfOrderUpdate with errors.Is.
type OutOfOrderError struct {
	Series   SeriesHandle
	LastTime any // internal time of the series' last row
	NewTime  any // internal time of the rejected item
	LastKey  TimeKey
	NewKey   TimeKey

	// Display forms of LastTime and NewTime. Error falls back to %v when empty.
	LastLabel string
	NewLabel  string
}

// Error implements the error interface.
func (e *OutOfOrderError) Error() string {
	last, next := e.LastLabel, e.NewLabel
	if last == "" {
		last = fmt.Sprint(e.LastTime)
	}
	if next == "" {
		next = fmt.Sprint(e.NewTime)
	}
	return fmt.Sprintf("cannot update oldest data of %s, last time=%s, new time=%s", e.Series, last, next)
}

// Is reports whether target is ErrOutOfOrderUpdate.
func (e *OutOfOrderError) Is(target error) bool {
	return target == ErrOutOfOrderUpdate
}
