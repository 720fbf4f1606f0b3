// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"github.com/huangsam/chartaxis/schema"
)

// HorzScaleBehavior converts caller time values into axis keys and ranks axis points for tick marks.
// It lets the same data layer serve calendar axes and plain numeric axes without branching.
type HorzScaleBehavior[T any] interface {
	// Key returns the ordering key of an internal time value.
	Key(t T) schema.TimeKey

	// PreprocessData normalizes raw items in place before conversion.
	PreprocessData(items []schema.DataItem)

	// CreateConverter returns the raw-to-internal time converter suited to the given items.
	CreateConverter(items []schema.DataItem) func(raw any) (T, error)

	// FillWeightsForPoints assigns TimeWeight to points[startIndex:].
	// Points before startIndex may be read as context but are never modified.
	FillWeightsForPoints(points []schema.TimePoint[T], startIndex int)

	// FormatTime renders an internal time value for display.
	FormatTime(t T) string
}

// BarStore defines the interface for durable bar storage.
// This allows mocking the store for testing.
type BarStore interface {
	// SaveSeries replaces every bar of the named series.
	SaveSeries(series schema.StoredSeries) error

	// AppendBar inserts a bar, replacing any bar stored at the same raw time.
	AppendBar(name string, kind schema.SeriesKind, item schema.DataItem) error

	// LoadSeries returns the named series with its bars in stored order.
	LoadSeries(name string) (schema.StoredSeries, error)

	// ListSeries returns a summary of every stored series.
	ListSeries() ([]schema.SeriesInfo, error)

	// DeleteSeries removes the named series and its bars.
	DeleteSeries(name string) error

	// GetStatus returns status information about the store.
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// StoreManager defines the interface for managing the bar store.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetBarStore() BarStore
}
