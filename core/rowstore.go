package core

import (
	"slices"
	"sort"

	"github.com/huangsam/chartaxis/schema"
)

// seriesRows is the cached state of one tracked series.
type seriesRows[T any] struct {
	rows     []*schema.PlotRow[T] // filled rows sorted by time
	lastTime T                    // time of the last row written, whitespace included
}

// rowStore keeps the filled rows and last-time cache of every series that has data.
// A series is tracked from its first write until its data is set to empty.
type rowStore[T any] struct {
	key     func(T) schema.TimeKey
	entries map[schema.SeriesHandle]*seriesRows[T]
}

func newRowStore[T any](key func(T) schema.TimeKey) *rowStore[T] {
	return &rowStore[T]{key: key, entries: make(map[schema.SeriesHandle]*seriesRows[T])}
}

func (s *rowStore[T]) tracked(h schema.SeriesHandle) bool {
	_, ok := s.entries[h]
	return ok
}

func (s *rowStore[T]) count() int {
	return len(s.entries)
}

// handles returns the tracked series in handle order.
func (s *rowStore[T]) handles() []schema.SeriesHandle {
	out := make([]schema.SeriesHandle, 0, len(s.entries))
	for h := range s.entries {
		out = append(out, h)
	}
	slices.Sort(out)
	return out
}

func (s *rowStore[T]) rows(h schema.SeriesHandle) []*schema.PlotRow[T] {
	if e, ok := s.entries[h]; ok {
		return e.rows
	}
	return nil
}

func (s *rowStore[T]) lastTime(h schema.SeriesHandle) (T, bool) {
	if e, ok := s.entries[h]; ok {
		return e.lastTime, true
	}
	var zero T
	return zero, false
}

// set replaces the rows of a series. Whitespace rows are dropped; the last-time cache
// follows the last row given. An empty slice untracks the series.
func (s *rowStore[T]) set(h schema.SeriesHandle, rows []*schema.PlotRow[T]) {
	if len(rows) == 0 {
		delete(s.entries, h)
		return
	}
	filled := make([]*schema.PlotRow[T], 0, len(rows))
	for _, row := range rows {
		if !row.Whitespace {
			filled = append(filled, row)
		}
	}
	s.entries[h] = &seriesRows[T]{rows: filled, lastTime: rows[len(rows)-1].Time}
}

// updateLast writes a row at or after the series' last time.
func (s *rowStore[T]) updateLast(h schema.SeriesHandle, row *schema.PlotRow[T]) schema.ChangeInfo {
	e := s.entry(h)
	info := schema.ChangeInfo{RightEdge: !row.Whitespace}
	n := len(e.rows)
	switch {
	case n == 0 || s.key(row.Time) > s.key(e.rows[n-1].Time):
		if row.Whitespace {
			info.Kind = schema.ChangeGap
		} else {
			e.rows = append(e.rows, row)
			info.Kind = schema.ChangeAppended
		}
	case row.Whitespace:
		e.rows = e.rows[:n-1]
		info.Kind = schema.ChangeTrimmed
	default:
		e.rows[n-1] = row
		info.Kind = schema.ChangeAmended
	}
	e.lastTime = row.Time
	return info
}

// updateHistorical writes a row anywhere in the series. Whitespace removes the row at
// the same time, if any. The last-time cache only moves forward.
func (s *rowStore[T]) updateHistorical(h schema.SeriesHandle, row *schema.PlotRow[T]) schema.ChangeInfo {
	_, wasTracked := s.entries[h]
	e := s.entry(h)
	k := s.key(row.Time)
	n := len(e.rows)
	i := sort.Search(n, func(i int) bool { return s.key(e.rows[i].Time) >= k })
	exists := i < n && s.key(e.rows[i].Time) == k

	info := schema.ChangeInfo{Kind: schema.ChangeHistory, Historical: true}
	switch {
	case !row.Whitespace && exists:
		e.rows[i] = row
		if i == n-1 {
			info.Kind, info.RightEdge = schema.ChangeAmended, true
		}
	case !row.Whitespace:
		e.rows = slices.Insert(e.rows, i, row)
		if i == n {
			info.Kind, info.RightEdge = schema.ChangeAppended, true
		}
	case exists:
		e.rows = slices.Delete(e.rows, i, i+1)
		if i == n-1 {
			info.Kind = schema.ChangeTrimmed
		}
	default:
		if i == n {
			info.Kind = schema.ChangeGap
		}
	}
	if !wasTracked || k >= s.key(e.lastTime) {
		e.lastTime = row.Time
	}
	return info
}

// baseIndex returns the largest last-row index over all series with rows.
func (s *rowStore[T]) baseIndex() (int, bool) {
	base, found := 0, false
	for _, e := range s.entries {
		if len(e.rows) == 0 {
			continue
		}
		idx := e.rows[len(e.rows)-1].Index
		if !found || idx > base {
			base, found = idx, true
		}
	}
	return base, found
}

func (s *rowStore[T]) entry(h schema.SeriesHandle) *seriesRows[T] {
	e, ok := s.entries[h]
	if !ok {
		e = &seriesRows[T]{}
		s.entries[h] = e
	}
	return e
}
