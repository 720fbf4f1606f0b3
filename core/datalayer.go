// Package core has the data layer that merges series onto one time axis, plus replay and store logic.
package core

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/huangsam/chartaxis/internal/contract"
	"github.com/huangsam/chartaxis/schema"
)

// seriesEntry is a registered series.
type seriesEntry[T any] struct {
	kind    schema.SeriesKind
	opts    SeriesOptions
	factory PlotRowFactory[T]
}

// DataLayer aligns any number of series on one shared, sorted time axis and reports
// which part of the axis each mutation changed.
//
// A DataLayer is not safe for concurrent use; confine it to one goroutine.
type DataLayer[T any] struct {
	behavior  contract.HorzScaleBehavior[T]
	factories map[schema.SeriesKind]PlotRowFactory[T]
	series    map[schema.SeriesHandle]*seriesEntry[T]
	next      schema.SeriesHandle
	registry  *timeRegistry[T]
	store     *rowStore[T]
}

// Option configures a DataLayer.
type Option[T any] func(*DataLayer[T])

// WithPlotRowFactory registers or overrides the row factory of a series kind.
func WithPlotRowFactory[T any](kind schema.SeriesKind, factory PlotRowFactory[T]) Option[T] {
	return func(dl *DataLayer[T]) {
		dl.factories[kind] = factory
	}
}

// NewDataLayer creates an empty data layer over the given horizontal-scale behavior.
func NewDataLayer[T any](behavior contract.HorzScaleBehavior[T], opts ...Option[T]) *DataLayer[T] {
	dl := &DataLayer[T]{
		behavior:  behavior,
		factories: builtinFactories[T](),
		series:    make(map[schema.SeriesHandle]*seriesEntry[T]),
		registry:  newTimeRegistry(behavior),
		store:     newRowStore(behavior.Key),
	}
	for _, opt := range opts {
		opt(dl)
	}
	return dl
}

// RegisterSeries issues a handle for a new series of the given kind.
func (dl *DataLayer[T]) RegisterSeries(kind schema.SeriesKind, opts SeriesOptions) (schema.SeriesHandle, error) {
	factory, ok := dl.factories[kind]
	if !ok || factory == nil {
		return 0, unknownKindError(kind)
	}
	h := dl.next
	dl.next++
	dl.series[h] = &seriesEntry[T]{kind: kind, opts: opts, factory: factory}
	return h, nil
}

// SetSeriesData replaces every row of a series. Items must be ordered by time; when two
// items share a time the later one wins. An empty slice removes the series' data.
func (dl *DataLayer[T]) SetSeriesData(h schema.SeriesHandle, items []schema.DataItem) (schema.DataUpdateResponse[T], error) {
	entry, err := dl.lookup(h)
	if err != nil {
		return schema.DataUpdateResponse[T]{}, err
	}
	prepared, times, err := dl.convert(items)
	if err != nil {
		return schema.DataUpdateResponse[T]{}, fmt.Errorf("set data of %s: %w", h, err)
	}

	needCleanup := len(dl.registry.byKey) != 0
	affected := false
	if dl.store.tracked(h) {
		if dl.store.count() == 1 {
			// Only series on the axis: start over instead of scrubbing every slot.
			needCleanup = false
			affected = true
			dl.registry.reset()
		} else {
			affected = dl.registry.removeSeries(h)
		}
	}

	rows := make([]*schema.PlotRow[T], 0, len(prepared))
	for i, item := range prepared {
		pd, created := dl.registry.getOrCreate(dl.behavior.Key(times[i]), times[i], items[i].Time)
		affected = affected || created
		row := createPlotRow(entry.factory, entry.kind, times[i], pd.index, item, entry.opts)
		row.OriginalTime = items[i].Time
		pd.mapping[h] = row
		rows = append(rows, row)
	}
	rows = dl.dedupe(rows)

	if needCleanup {
		dl.registry.cleanup()
	}
	dl.store.set(h, rows)

	first := schema.NoTimeScaleChange
	if affected {
		first = dl.registry.rebuild()
	}
	info := schema.ChangeInfo{Kind: schema.ChangeReplaced}
	if len(rows) == 0 {
		info.Kind = schema.ChangeCleared
	}
	return dl.response(h, first, info), nil
}

// UpdateSeriesData writes a single item. Unless historical is set, the item must not be
// older than the series' last time. Updating an existing slot leaves the axis untouched;
// a new slot is inserted at its sorted position.
func (dl *DataLayer[T]) UpdateSeriesData(h schema.SeriesHandle, item schema.DataItem, historical bool) (schema.DataUpdateResponse[T], error) {
	entry, err := dl.lookup(h)
	if err != nil {
		return schema.DataUpdateResponse[T]{}, err
	}
	prepared, times, err := dl.convert([]schema.DataItem{item})
	if err != nil {
		return schema.DataUpdateResponse[T]{}, fmt.Errorf("update data of %s: %w", h, err)
	}
	t := times[0]
	key := dl.behavior.Key(t)

	if last, ok := dl.store.lastTime(h); ok && !historical {
		if lastKey := dl.behavior.Key(last); key < lastKey {
			return schema.DataUpdateResponse[T]{}, &schema.OutOfOrderError{
				Series: h, LastTime: last, NewTime: t, LastKey: lastKey, NewKey: key,
				LastLabel: dl.behavior.FormatTime(last), NewLabel: dl.behavior.FormatTime(t),
			}
		}
	}

	pd, created := dl.registry.getOrCreate(key, t, item.Time)
	row := createPlotRow(entry.factory, entry.kind, t, pd.index, prepared[0], entry.opts)
	row.OriginalTime = item.Time
	pd.mapping[h] = row

	var info schema.ChangeInfo
	if historical {
		info = dl.store.updateHistorical(h, row)
	} else {
		info = dl.store.updateLast(h, row)
	}

	first := schema.NoTimeScaleChange
	if created {
		first = dl.registry.insert(pd)
	}
	return dl.response(h, first, info), nil
}

// RemoveSeries clears the data of a series and forgets its handle. The response still
// lists the series once with no rows.
func (dl *DataLayer[T]) RemoveSeries(h schema.SeriesHandle) (schema.DataUpdateResponse[T], error) {
	resp, err := dl.SetSeriesData(h, nil)
	if err != nil {
		return resp, err
	}
	delete(dl.series, h)
	return resp, nil
}

// Kind returns the kind a series was registered with.
func (dl *DataLayer[T]) Kind(h schema.SeriesHandle) (schema.SeriesKind, error) {
	entry, err := dl.lookup(h)
	if err != nil {
		return "", err
	}
	return entry.kind, nil
}

// Owner returns the opaque owner given at registration.
func (dl *DataLayer[T]) Owner(h schema.SeriesHandle) (any, error) {
	entry, err := dl.lookup(h)
	if err != nil {
		return nil, err
	}
	return entry.opts.Owner, nil
}

// Handles returns the registered series in handle order.
func (dl *DataLayer[T]) Handles() []schema.SeriesHandle {
	out := make([]schema.SeriesHandle, 0, len(dl.series))
	for h := range dl.series {
		out = append(out, h)
	}
	slices.Sort(out)
	return out
}

// Points returns a copy of the sorted time axis.
func (dl *DataLayer[T]) Points() []schema.TimePoint[T] {
	return slices.Clone(dl.registry.points)
}

// SeriesRows returns the filled rows of a series in time order.
func (dl *DataLayer[T]) SeriesRows(h schema.SeriesHandle) []*schema.PlotRow[T] {
	return slices.Clone(dl.store.rows(h))
}

// LastTime returns the time of the last row written to a series, whitespace included.
func (dl *DataLayer[T]) LastTime(h schema.SeriesHandle) (T, bool) {
	return dl.store.lastTime(h)
}

// BaseIndex returns the largest last-row index over all series.
func (dl *DataLayer[T]) BaseIndex() (int, bool) {
	return dl.store.baseIndex()
}

// SeriesCount returns the number of series that currently have data.
func (dl *DataLayer[T]) SeriesCount() int {
	return dl.store.count()
}

// PointAt returns the axis point at key and the series occupying it.
func (dl *DataLayer[T]) PointAt(key schema.TimeKey) (schema.TimePoint[T], []schema.SeriesHandle, bool) {
	pd, ok := dl.registry.byKey[key]
	if !ok {
		return schema.TimePoint[T]{}, nil, false
	}
	handles := make([]schema.SeriesHandle, 0, len(pd.mapping))
	for h := range pd.mapping {
		handles = append(handles, h)
	}
	slices.Sort(handles)
	return dl.registry.points[pd.index], handles, true
}

// Behavior returns the horizontal-scale behavior of the axis.
func (dl *DataLayer[T]) Behavior() contract.HorzScaleBehavior[T] {
	return dl.behavior
}

func (dl *DataLayer[T]) lookup(h schema.SeriesHandle) (*seriesEntry[T], error) {
	entry, ok := dl.series[h]
	if !ok {
		return nil, fmt.Errorf("%w: %s", schema.ErrUnknownSeries, h)
	}
	return entry, nil
}

// convert preprocesses a copy of items and converts every time before anything is mutated.
func (dl *DataLayer[T]) convert(items []schema.DataItem) ([]schema.DataItem, []T, error) {
	prepared := slices.Clone(items)
	dl.behavior.PreprocessData(prepared)
	converter := dl.behavior.CreateConverter(prepared)
	times := make([]T, len(prepared))
	for i, item := range prepared {
		t, err := converter(item.Time)
		if err != nil {
			return nil, nil, fmt.Errorf("item %d: %w", i, err)
		}
		times[i] = t
	}
	return prepared, times, nil
}

// dedupe sorts rows by time and keeps the last row written at each time.
func (dl *DataLayer[T]) dedupe(rows []*schema.PlotRow[T]) []*schema.PlotRow[T] {
	byTime := func(a, b *schema.PlotRow[T]) int {
		return cmp.Compare(dl.behavior.Key(a.Time), dl.behavior.Key(b.Time))
	}
	if !slices.IsSortedFunc(rows, byTime) {
		slices.SortStableFunc(rows, byTime)
	}
	out := rows[:0]
	for _, row := range rows {
		if n := len(out); n > 0 && byTime(out[n-1], row) == 0 {
			out[n-1] = row
			continue
		}
		out = append(out, row)
	}
	return out
}
