package schema

import (
	"fmt"
	"strconv"
)

// F returns a pointer to v. It keeps literal data items short.
func F(v float64) *float64 {
	return &v
}

// FormatOriginalTime renders a raw caller time for display.
func FormatOriginalTime(t any) string {
	switch v := t.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case BusinessDay:
		return v.String()
	case *BusinessDay:
		if v == nil {
			return ""
		}
		return v.String()
	case map[string]any:
		return fmt.Sprintf("%v-%v-%v", v["year"], v["month"], v["day"])
	default:
		return fmt.Sprint(v)
	}
}

// SingleValue returns the data item for a line-like series point.
func SingleValue(t any, v float64) DataItem {
	return DataItem{Time: t, Value: F(v)}
}

// OHLC returns the data item for a bar-like series point.
func OHLC(t any, o, h, l, c float64) DataItem {
	return DataItem{Time: t, Open: F(o), High: F(h), Low: F(l), Close: F(c)}
}

// Whitespace returns a data item that occupies a time slot without a value.
func Whitespace(t any) DataItem {
	return DataItem{Time: t}
}
