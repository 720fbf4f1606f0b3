package horz

import (
	"fmt"
	"math"
	"strconv"

	"github.com/huangsam/chartaxis/internal/contract"
	"github.com/huangsam/chartaxis/schema"
	"github.com/spf13/cast"
)

// IndexBehavior is a plain numeric axis: the raw time is the key itself.
type IndexBehavior struct{}

var _ contract.HorzScaleBehavior[float64] = IndexBehavior{} // Compile-time check

// NewIndexBehavior returns the numeric axis behavior.
func NewIndexBehavior() IndexBehavior {
	return IndexBehavior{}
}

// Key returns t unchanged.
func (IndexBehavior) Key(t float64) schema.TimeKey {
	return schema.TimeKey(t)
}

// PreprocessData is a no-op for numeric axes.
func (IndexBehavior) PreprocessData([]schema.DataItem) {}

// CreateConverter returns a converter accepting any number or numeric string.
func (IndexBehavior) CreateConverter([]schema.DataItem) func(raw any) (float64, error) {
	return func(raw any) (float64, error) {
		if raw == nil {
			return 0, fmt.Errorf("%w: missing value", schema.ErrInvalidTime)
		}
		if _, ok := raw.(bool); ok {
			return 0, fmt.Errorf("%w: expected a number, got bool", schema.ErrInvalidTime)
		}
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", schema.ErrInvalidTime, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: %v is not finite", schema.ErrInvalidTime, f)
		}
		return f, nil
	}
}

// FillWeightsForPoints weights each point by how round its value is.
// Weights depend on the point alone, so the prefix is never consulted.
func (IndexBehavior) FillWeightsForPoints(points []schema.TimePoint[float64], startIndex int) {
	for i := max(startIndex, 0); i < len(points); i++ {
		points[i].TimeWeight = indexWeight(points[i].Time)
	}
}

// FormatTime renders t in its shortest form.
func (IndexBehavior) FormatTime(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}

func indexWeight(v float64) schema.TickMarkWeight {
	if v != math.Trunc(v) {
		return 10
	}
	switch n := int64(v); {
	case n%100 == 0:
		return 40
	case n%50 == 0:
		return 35
	case n%10 == 0:
		return 30
	case n%5 == 0:
		return 25
	default:
		return 20
	}
}
