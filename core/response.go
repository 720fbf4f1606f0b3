package core

import (
	"slices"

	"github.com/huangsam/chartaxis/schema"
)

// response assembles the result of a mutation of series h.
// When the axis changed, every tracked series is listed so consumers can resynchronise
// from the response alone; otherwise only h is.
func (dl *DataLayer[T]) response(h schema.SeriesHandle, first int, info schema.ChangeInfo) schema.DataUpdateResponse[T] {
	resp := schema.DataUpdateResponse[T]{
		TimeScale: schema.TimeScaleUpdate[T]{FirstChangedPointIndex: first},
	}
	if base, ok := dl.store.baseIndex(); ok {
		resp.TimeScale.BaseIndex = &base
	}

	if first == schema.NoTimeScaleChange {
		resp.Series = []schema.SeriesUpdate[T]{dl.seriesUpdate(h, &info)}
		return resp
	}

	handles := dl.store.handles()
	if !dl.store.tracked(h) {
		// Purged series are reported once with no rows.
		handles = append(handles, h)
		slices.Sort(handles)
	}
	resp.Series = make([]schema.SeriesUpdate[T], 0, len(handles))
	for _, sh := range handles {
		var ci *schema.ChangeInfo
		if sh == h {
			ci = &info
		}
		resp.Series = append(resp.Series, dl.seriesUpdate(sh, ci))
	}
	resp.TimeScale.Points = slices.Clone(dl.registry.points)
	return resp
}

func (dl *DataLayer[T]) seriesUpdate(h schema.SeriesHandle, info *schema.ChangeInfo) schema.SeriesUpdate[T] {
	rows := dl.store.rows(h)
	if rows == nil {
		rows = []*schema.PlotRow[T]{}
	}
	return schema.SeriesUpdate[T]{Series: h, Rows: slices.Clone(rows), Info: info}
}
