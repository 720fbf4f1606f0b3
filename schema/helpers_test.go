package schema

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatOriginalTime(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "2024-01-02", "2024-01-02"},
		{"float", float64(1700000000), "1700000000"},
		{"fractional", 1.5, "1.5"},
		{"business day", BusinessDay{Year: 2024, Month: 3, Day: 9}, "2024-03-09"},
		{"business day pointer", &BusinessDay{Year: 2024, Month: 12, Day: 31}, "2024-12-31"},
		{"nil business day pointer", (*BusinessDay)(nil), ""},
		{"map", map[string]any{"year": 2024, "month": 1, "day": 2}, "2024-1-2"},
		{"int", 42, "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatOriginalTime(tt.in))
		})
	}
}

func TestDataItemIsWhitespace(t *testing.T) {
	assert.True(t, Whitespace(1).IsWhitespace())
	assert.False(t, SingleValue(1, 10).IsWhitespace())
	assert.False(t, OHLC(1, 1, 2, 0, 1).IsWhitespace())
	// Fields alone do not make a built-in item non-whitespace.
	assert.True(t, DataItem{Time: 1, Fields: map[string]float64{"x": 1}}.IsWhitespace())
}

func TestOutOfOrderErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("update failed: %w", &OutOfOrderError{Series: 3, LastTime: 4.0, NewTime: 2.0, LastKey: 4, NewKey: 2})

	require.ErrorIs(t, err, ErrOutOfOrderUpdate)
	assert.NotErrorIs(t, err, ErrUnknownSeries)

	var ooe *OutOfOrderError
	require.True(t, errors.As(err, &ooe))
	assert.Equal(t, SeriesHandle(3), ooe.Series)
	assert.Equal(t, 4.0, ooe.LastTime)
	assert.Equal(t, 2.0, ooe.NewTime)
	assert.Contains(t, err.Error(), "last time=4, new time=2")
}

func TestDataUpdateResponseFind(t *testing.T) {
	resp := DataUpdateResponse[float64]{
		Series: []SeriesUpdate[float64]{
			{Series: 1},
			{Series: 2, Info: &ChangeInfo{Kind: ChangeAppended}},
		},
		TimeScale: TimeScaleUpdate[float64]{FirstChangedPointIndex: NoTimeScaleChange},
	}

	u, ok := resp.Find(2)
	require.True(t, ok)
	require.NotNil(t, u.Info)
	assert.True(t, u.Info.NewBar())

	_, ok = resp.Find(7)
	assert.False(t, ok)
	assert.False(t, resp.AffectsTimeScale())
}

func TestInvalidationLevelOrdering(t *testing.T) {
	assert.True(t, InvalidationNone < InvalidationCursor)
	assert.True(t, InvalidationCursor < InvalidationLight)
	assert.True(t, InvalidationLight < InvalidationFull)
	assert.Equal(t, "full", InvalidationFull.String())
	assert.Equal(t, "cursor", InvalidationCursor.String())
}
