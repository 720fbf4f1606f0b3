package core

import (
	"cmp"
	"slices"
	"sort"

	"github.com/huangsam/chartaxis/internal/contract"
	"github.com/huangsam/chartaxis/schema"
)

// timePointData is the registry entry of one occupied axis slot.
type timePointData[T any] struct {
	index        int
	time         T
	originalTime any
	mapping      map[schema.SeriesHandle]*schema.PlotRow[T]
}

// assignIndex moves a slot to position i, keeping the rows stored at it in sync.
func (pd *timePointData[T]) assignIndex(i int) {
	pd.index = i
	for _, row := range pd.mapping {
		row.Index = i
	}
}

// timeRegistry maps time keys to slots and keeps the sorted axis.
// data and points are parallel: data[i] is the slot of points[i] and points[i].Index == i.
type timeRegistry[T any] struct {
	behavior contract.HorzScaleBehavior[T]
	byKey    map[schema.TimeKey]*timePointData[T]
	data     []*timePointData[T]
	points   []schema.TimePoint[T]
}

func newTimeRegistry[T any](behavior contract.HorzScaleBehavior[T]) *timeRegistry[T] {
	return &timeRegistry[T]{
		behavior: behavior,
		byKey:    make(map[schema.TimeKey]*timePointData[T]),
	}
}

// getOrCreate returns the slot of key, creating a detached one when missing.
// A created slot is registered by key but not placed on the sorted axis.
func (r *timeRegistry[T]) getOrCreate(key schema.TimeKey, t T, originalTime any) (*timePointData[T], bool) {
	if pd, ok := r.byKey[key]; ok {
		return pd, false
	}
	pd := &timePointData[T]{
		time:         t,
		originalTime: originalTime,
		mapping:      make(map[schema.SeriesHandle]*schema.PlotRow[T]),
	}
	r.byKey[key] = pd
	return pd, true
}

// reset forgets every slot by key while the sorted axis stays available for diffing.
func (r *timeRegistry[T]) reset() {
	clear(r.byKey)
}

// removeSeries drops h from every slot on the axis and reports whether any slot held it.
func (r *timeRegistry[T]) removeSeries(h schema.SeriesHandle) bool {
	removed := false
	for _, pd := range r.data {
		if _, ok := pd.mapping[h]; ok {
			delete(pd.mapping, h)
			removed = true
		}
	}
	return removed
}

// cleanup unregisters the slots of the sorted axis that no series occupies anymore.
func (r *timeRegistry[T]) cleanup() {
	for _, pd := range r.data {
		if len(pd.mapping) == 0 {
			delete(r.byKey, r.behavior.Key(pd.time))
		}
	}
}

// rebuild sorts the registered slots and swaps them in as the new axis.
// It returns the first position that differs from the previous axis or NoTimeScaleChange.
// Tick weights of the unchanged prefix are kept.
func (r *timeRegistry[T]) rebuild() int {
	data := make([]*timePointData[T], 0, len(r.byKey))
	for _, pd := range r.byKey {
		data = append(data, pd)
	}
	slices.SortFunc(data, func(a, b *timePointData[T]) int {
		return cmp.Compare(r.behavior.Key(a.time), r.behavior.Key(b.time))
	})

	points := make([]schema.TimePoint[T], len(data))
	for i, pd := range data {
		points[i] = schema.TimePoint[T]{Time: pd.time, OriginalTime: pd.originalTime}
	}

	first := schema.NoTimeScaleChange
	shared := min(len(r.points), len(points))
	for i := range shared {
		if r.behavior.Key(r.points[i].Time) != r.behavior.Key(points[i].Time) {
			first = i
			break
		}
		points[i].TimeWeight = r.points[i].TimeWeight
	}
	if first == schema.NoTimeScaleChange && len(r.points) != len(points) {
		first = shared
	}

	for i, pd := range data {
		pd.assignIndex(i)
		points[i].Index = i
	}
	if first != schema.NoTimeScaleChange {
		r.behavior.FillWeightsForPoints(points, first)
	}
	r.data, r.points = data, points
	return first
}

// insert places a detached slot on the axis and returns its position.
func (r *timeRegistry[T]) insert(pd *timePointData[T]) int {
	key := r.behavior.Key(pd.time)
	at := sort.Search(len(r.data), func(i int) bool { return r.behavior.Key(r.data[i].time) >= key })
	r.data = slices.Insert(r.data, at, pd)
	r.points = slices.Insert(r.points, at, schema.TimePoint[T]{Time: pd.time, OriginalTime: pd.originalTime})
	for i := at; i < len(r.data); i++ {
		r.data[i].assignIndex(i)
		r.points[i].Index = i
	}
	r.behavior.FillWeightsForPoints(r.points, at)
	return at
}
