package core

import (
	"math/rand/v2"
	"testing"

	"github.com/huangsam/chartaxis/core/horz"
	"github.com/huangsam/chartaxis/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	fuzzSeries = 3
	fuzzSteps  = 40
	fuzzDays   = 30
	fuzzEpoch  = 1704067200.0 // 2024-01-01
)

func fuzzTime(day int) float64 {
	return fuzzEpoch + float64(day)*86400
}

func fuzzItem(rng *rand.Rand, day int) schema.DataItem {
	if rng.IntN(7) == 0 {
		return schema.Whitespace(fuzzTime(day))
	}
	return schema.SingleValue(fuzzTime(day), float64(rng.IntN(1000)))
}

// positionalDiff returns the first position where the axis keys differ, or -1.
func positionalDiff(key func(schema.UTCTime) schema.TimeKey, before, after []schema.TimePoint[schema.UTCTime]) int {
	for i := range min(len(before), len(after)) {
		if key(before[i].Time) != key(after[i].Time) {
			return i
		}
	}
	if len(before) == len(after) {
		return schema.NoTimeScaleChange
	}
	return min(len(before), len(after))
}

func expectedBaseIndex[T any](dl *DataLayer[T]) (int, bool) {
	base, found := 0, false
	for _, h := range dl.Handles() {
		if rows := dl.SeriesRows(h); len(rows) > 0 {
			base, found = max(base, rows[len(rows)-1].Index), true
		}
	}
	return base, found
}

// FuzzDataLayerSequences applies random mixes of full sets, appends, amends,
// historical writes and whitespace across several series on the time axis.
func FuzzDataLayerSequences(f *testing.F) {
	for seed := range uint64(64) {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, seed uint64) {
		rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		dl := NewDataLayer[schema.UTCTime](horz.NewTimeBehavior())
		key := dl.behavior.Key

		handles := make([]schema.SeriesHandle, fuzzSeries)
		for i := range handles {
			h, err := dl.RegisterSeries(schema.LineSeries, SeriesOptions{})
			require.NoError(t, err)
			handles[i] = h
		}

		for step := range fuzzSteps {
			h := handles[rng.IntN(len(handles))]
			before := dl.Points()
			beforeRows := dl.SeriesRows(h)

			var resp schema.DataUpdateResponse[schema.UTCTime]
			var err error
			if rng.IntN(3) == 0 {
				var items []schema.DataItem
				for day := range fuzzDays {
					if rng.IntN(3) == 0 {
						items = append(items, fuzzItem(rng, day))
					}
				}
				resp, err = dl.SetSeriesData(h, items)
				require.NoError(t, err, "step %d", step)
			} else {
				last, tracked := dl.LastTime(h)
				day := rng.IntN(fuzzDays)
				if tracked {
					lastDay := int((float64(last.Timestamp) - fuzzEpoch) / 86400)
					day = max(0, lastDay+rng.IntN(6)-2)
				}
				historical := rng.IntN(3) == 0
				item := fuzzItem(rng, day)
				resp, err = dl.UpdateSeriesData(h, item, historical)

				if tracked && !historical && fuzzTime(day) < float64(last.Timestamp) {
					require.ErrorIs(t, err, schema.ErrOutOfOrderUpdate, "step %d", step)
					assert.Equal(t, before, dl.Points(), "rejected update changed the axis at step %d", step)
					assert.Equal(t, beforeRows, dl.SeriesRows(h), "rejected update changed rows at step %d", step)
					continue
				}
				require.NoError(t, err, "step %d", step)
			}

			assertConsistent(t, dl)
			after := dl.Points()
			first := resp.TimeScale.FirstChangedPointIndex
			assert.Equal(t, positionalDiff(key, before, after), first, "first changed index at step %d", step)

			// Weights before the first changed point are carried over
			stable := len(before)
			if first != schema.NoTimeScaleChange {
				stable = first
				assert.Len(t, resp.TimeScale.Points, len(after))
			} else {
				assert.Nil(t, resp.TimeScale.Points)
			}
			for i := range min(stable, len(after)) {
				assert.Equal(t, before[i].TimeWeight, after[i].TimeWeight, "weight of point %d at step %d", i, step)
			}

			base, ok := expectedBaseIndex(dl)
			if ok {
				require.NotNil(t, resp.TimeScale.BaseIndex, "step %d", step)
				assert.Equal(t, base, *resp.TimeScale.BaseIndex, "base index at step %d", step)
			} else {
				assert.Nil(t, resp.TimeScale.BaseIndex, "step %d", step)
			}
			_, listed := resp.Find(h)
			assert.True(t, listed, "updated series missing from response at step %d", step)
		}
	})
}
