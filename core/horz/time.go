// Package horz has the horizontal-scale behaviors that map caller times onto the time axis.
package horz

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/huangsam/chartaxis/internal/contract"
	"github.com/huangsam/chartaxis/schema"
	"github.com/spf13/cast"
)

var businessDayPattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

// TimeBehavior is the calendar axis: raw times are UTC timestamps in seconds,
// business days, or "YYYY-MM-DD" strings.
type TimeBehavior struct{}

var _ contract.HorzScaleBehavior[schema.UTCTime] = TimeBehavior{} // Compile-time check

// NewTimeBehavior returns the calendar axis behavior.
func NewTimeBehavior() TimeBehavior {
	return TimeBehavior{}
}

// Key returns the timestamp of t.
func (TimeBehavior) Key(t schema.UTCTime) schema.TimeKey {
	return schema.TimeKey(t.Timestamp)
}

// PreprocessData turns "YYYY-MM-DD" strings into business days and RFC 3339 strings into timestamps.
func (TimeBehavior) PreprocessData(items []schema.DataItem) {
	for i := range items {
		s, ok := items[i].Time.(string)
		if !ok {
			continue
		}
		if bd, ok := parseBusinessDay(s); ok {
			items[i].Time = bd
			continue
		}
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			items[i].Time = float64(ts.Unix())
		}
	}
}

// CreateConverter picks the converter from the first item: business days when it is
// calendar-like, timestamps otherwise. Items of the other form are rejected.
func (TimeBehavior) CreateConverter(items []schema.DataItem) func(raw any) (schema.UTCTime, error) {
	if len(items) > 0 && isBusinessDayLike(items[0].Time) {
		return convertBusinessDay
	}
	return convertTimestamp
}

// FillWeightsForPoints assigns calendar weights by comparing each point with its predecessor.
// When filling from the start, the first point is compared with a predecessor one average
// step earlier.
func (TimeBehavior) FillWeightsForPoints(points []schema.TimePoint[schema.UTCTime], startIndex int) {
	if len(points) == 0 || startIndex >= len(points) {
		return
	}

	var prev *int64
	if startIndex > 0 {
		ts := points[startIndex-1].Time.Timestamp
		prev = &ts
	}

	var totalTimeDiff int64
	for i := startIndex; i < len(points); i++ {
		cur := points[i].Time.Timestamp
		if prev != nil {
			points[i].TimeWeight = weightByTime(cur, *prev)
			totalTimeDiff += cur - *prev
		}
		prev = &cur
	}

	if startIndex == 0 && len(points) > 1 {
		avg := int64(math.Ceil(float64(totalTimeDiff) / float64(len(points)-1)))
		first := points[0].Time.Timestamp
		points[0].TimeWeight = weightByTime(first, first-avg)
	}
}

// FormatTime renders business days as dates and timestamps as RFC 3339.
func (TimeBehavior) FormatTime(t schema.UTCTime) string {
	if t.BusinessDay != nil {
		return t.BusinessDay.String()
	}
	return time.Unix(t.Timestamp, 0).UTC().Format(time.RFC3339)
}

// intradayWeights are checked from the coarsest divisor down.
var intradayWeights = []struct {
	divisor int64 // seconds
	weight  schema.TickMarkWeight
}{
	{1, schema.WeightSecond},
	{60, schema.WeightMinute1},
	{5 * 60, schema.WeightMinute5},
	{30 * 60, schema.WeightMinute30},
	{60 * 60, schema.WeightHour1},
	{3 * 60 * 60, schema.WeightHour3},
	{6 * 60 * 60, schema.WeightHour6},
	{12 * 60 * 60, schema.WeightHour12},
}

func weightByTime(cur, prev int64) schema.TickMarkWeight {
	c := time.Unix(cur, 0).UTC()
	p := time.Unix(prev, 0).UTC()
	switch {
	case c.Year() != p.Year():
		return schema.WeightYear
	case c.Month() != p.Month():
		return schema.WeightMonth
	case c.Day() != p.Day():
		return schema.WeightDay
	}
	for i := len(intradayWeights) - 1; i >= 0; i-- {
		d := intradayWeights[i].divisor
		if floorDiv(cur, d) != floorDiv(prev, d) {
			return intradayWeights[i].weight
		}
	}
	return schema.WeightLessThanSecond
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func parseBusinessDay(s string) (schema.BusinessDay, bool) {
	m := businessDayPattern.FindStringSubmatch(s)
	if m == nil {
		return schema.BusinessDay{}, false
	}
	// Submatches are digits only; leading zeros must not be read as octal.
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	bd := schema.BusinessDay{Year: year, Month: month, Day: day}
	if bd.Month < 1 || bd.Month > 12 || bd.Day < 1 || bd.Day > 31 {
		return schema.BusinessDay{}, false
	}
	return bd, true
}

func isBusinessDayLike(raw any) bool {
	switch v := raw.(type) {
	case schema.BusinessDay, *schema.BusinessDay:
		return true
	case string:
		_, ok := parseBusinessDay(v)
		return ok
	case map[string]any:
		_, ok := v["year"]
		return ok
	default:
		return false
	}
}

func convertBusinessDay(raw any) (schema.UTCTime, error) {
	var bd schema.BusinessDay
	switch v := raw.(type) {
	case schema.BusinessDay:
		bd = v
	case *schema.BusinessDay:
		if v == nil {
			return schema.UTCTime{}, fmt.Errorf("%w: nil business day", schema.ErrInvalidTime)
		}
		bd = *v
	case string:
		parsed, ok := parseBusinessDay(v)
		if !ok {
			return schema.UTCTime{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", schema.ErrInvalidTime, v)
		}
		bd = parsed
	case map[string]any:
		var err error
		if bd.Year, err = cast.ToIntE(v["year"]); err != nil {
			return schema.UTCTime{}, fmt.Errorf("%w: year: %v", schema.ErrInvalidTime, err)
		}
		if bd.Month, err = cast.ToIntE(v["month"]); err != nil {
			return schema.UTCTime{}, fmt.Errorf("%w: month: %v", schema.ErrInvalidTime, err)
		}
		if bd.Day, err = cast.ToIntE(v["day"]); err != nil {
			return schema.UTCTime{}, fmt.Errorf("%w: day: %v", schema.ErrInvalidTime, err)
		}
	default:
		return schema.UTCTime{}, fmt.Errorf("%w: expected a business day, got %T", schema.ErrInvalidTime, raw)
	}
	ts := time.Date(bd.Year, time.Month(bd.Month), bd.Day, 0, 0, 0, 0, time.UTC).Unix()
	return schema.UTCTime{Timestamp: ts, BusinessDay: &bd}, nil
}

func convertTimestamp(raw any) (schema.UTCTime, error) {
	switch v := raw.(type) {
	case time.Time:
		return schema.UTCTime{Timestamp: v.Unix()}, nil
	case nil, bool:
		return schema.UTCTime{}, fmt.Errorf("%w: expected a timestamp, got %T", schema.ErrInvalidTime, raw)
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return schema.UTCTime{}, fmt.Errorf("%w: %v", schema.ErrInvalidTime, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return schema.UTCTime{}, fmt.Errorf("%w: %v is not finite", schema.ErrInvalidTime, f)
	}
	return schema.UTCTime{Timestamp: int64(math.Floor(f))}, nil
}
