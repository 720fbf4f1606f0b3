package horz

import (
	"testing"

	"github.com/huangsam/chartaxis/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexBehaviorConverter(t *testing.T) {
	conv := NewIndexBehavior().CreateConverter(nil)

	got, err := conv(3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)

	got, err = conv("2.5")
	require.NoError(t, err)
	assert.Equal(t, 2.5, got)

	for _, raw := range []any{nil, true, "x", map[string]any{"year": 2024}} {
		_, err := conv(raw)
		assert.ErrorIs(t, err, schema.ErrInvalidTime, "raw=%v", raw)
	}
}

func TestIndexBehaviorWeights(t *testing.T) {
	b := NewIndexBehavior()
	values := []float64{0.5, 1, 5, 10, 50, 100, 150, 200}
	points := make([]schema.TimePoint[float64], len(values))
	for i, v := range values {
		points[i] = schema.TimePoint[float64]{Time: v, TimeWeight: -1}
	}

	b.FillWeightsForPoints(points, 1)

	assert.Equal(t, schema.TickMarkWeight(-1), points[0].TimeWeight)
	want := []schema.TickMarkWeight{20, 25, 30, 35, 40, 35, 40}
	for i, w := range want {
		assert.Equal(t, w, points[i+1].TimeWeight, "value %v", values[i+1])
	}
}

func TestIndexBehaviorKeyAndFormat(t *testing.T) {
	b := NewIndexBehavior()
	assert.Equal(t, schema.TimeKey(-1.25), b.Key(-1.25))
	assert.Equal(t, "-1.25", b.FormatTime(-1.25))
	assert.Equal(t, "7", b.FormatTime(7))
}
