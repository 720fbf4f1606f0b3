// Package parquet provides data structures and functions for exporting and importing
// chartaxis bars as Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/huangsam/chartaxis/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/spf13/cast"
)

// Bar represents one stored bar of a named series.
// Raw times are split into a numeric column and a text column; exactly one of them is set.
type Bar struct {
	// SeriesName is the name of the series the bar belongs to
	SeriesName string `parquet:"series_name,snappy"`

	// SeriesKind is the plot-row kind of the series
	SeriesKind string `parquet:"series_kind,snappy"`

	// Seq is the position of the bar inside its series
	Seq int64 `parquet:"seq,snappy"`

	// TimeNumber holds numeric raw times such as UTC timestamps (nullable)
	TimeNumber *float64 `parquet:"time_number,optional,snappy"`

	// TimeText holds date strings and business days as YYYY-MM-DD (nullable)
	TimeText *string `parquet:"time_text,optional,snappy"`

	Value *float64 `parquet:"value,optional,snappy"`
	Open  *float64 `parquet:"open,optional,snappy"`
	High  *float64 `parquet:"high,optional,snappy"`
	Low   *float64 `parquet:"low,optional,snappy"`
	Close *float64 `parquet:"close,optional,snappy"`

	// Style is the JSON-encoded per-row style override (nullable)
	Style *string `parquet:"style,optional,snappy"`

	// Fields is the JSON-encoded payload of custom series (nullable)
	Fields *string `parquet:"fields,optional,snappy"`

	// CustomValues is the JSON-encoded opaque caller payload (nullable)
	CustomValues *string `parquet:"custom_values,optional,snappy"`
}

// WriteBarsParquet writes a slice of Bar structs to a Parquet file.
func WriteBarsParquet(data []Bar, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is automatically derived from the Bar struct tags
	writer := parquet.NewGenericWriter[Bar](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}

// ReadBarsParquet reads every Bar stored in a Parquet file.
func ReadBarsParquet(inputPath string) ([]Bar, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[Bar](file)
	defer func() { _ = reader.Close() }()

	data := make([]Bar, reader.NumRows())
	n, err := reader.Read(data)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read parquet file: %w", err)
	}
	return data[:n], nil
}

// ConvertStoredSeries flattens stored series into Parquet bars.
func ConvertStoredSeries(series []schema.StoredSeries) ([]Bar, error) {
	var result []Bar
	for _, s := range series {
		for i, item := range s.Items {
			bar := Bar{
				SeriesName: s.Name,
				SeriesKind: string(s.Kind),
				Seq:        int64(i),
				Value:      item.Value,
				Open:       item.Open,
				High:       item.High,
				Low:        item.Low,
				Close:      item.Close,
			}
			if err := setTime(&bar, item.Time); err != nil {
				return nil, fmt.Errorf("bar %d of %s: %w", i, s.Name, err)
			}
			var err error
			if item.RowStyle != (schema.RowStyle{}) {
				if bar.Style, err = encode(item.RowStyle); err != nil {
					return nil, err
				}
			}
			if len(item.Fields) > 0 {
				if bar.Fields, err = encode(item.Fields); err != nil {
					return nil, err
				}
			}
			if len(item.CustomValues) > 0 {
				if bar.CustomValues, err = encode(item.CustomValues); err != nil {
					return nil, err
				}
			}
			result = append(result, bar)
		}
	}
	return result, nil
}

// GroupBars rebuilds stored series from Parquet bars, keeping the first-seen series order
// and ordering bars by Seq inside each series.
func GroupBars(bars []Bar) ([]schema.StoredSeries, error) {
	type seqItem struct {
		seq  int64
		item schema.DataItem
	}
	var order []string
	kinds := make(map[string]schema.SeriesKind)
	items := make(map[string][]seqItem)

	for _, bar := range bars {
		if _, ok := kinds[bar.SeriesName]; !ok {
			kinds[bar.SeriesName] = schema.SeriesKind(bar.SeriesKind)
			order = append(order, bar.SeriesName)
		}
		item := schema.DataItem{
			Value: bar.Value,
			Open:  bar.Open,
			High:  bar.High,
			Low:   bar.Low,
			Close: bar.Close,
		}
		switch {
		case bar.TimeNumber != nil:
			item.Time = *bar.TimeNumber
		case bar.TimeText != nil:
			item.Time = *bar.TimeText
		default:
			return nil, fmt.Errorf("bar %d of %s has no time", bar.Seq, bar.SeriesName)
		}
		if err := decode(bar.Style, &item.RowStyle); err != nil {
			return nil, err
		}
		if err := decode(bar.Fields, &item.Fields); err != nil {
			return nil, err
		}
		if err := decode(bar.CustomValues, &item.CustomValues); err != nil {
			return nil, err
		}
		items[bar.SeriesName] = append(items[bar.SeriesName], seqItem{seq: bar.Seq, item: item})
	}

	result := make([]schema.StoredSeries, 0, len(order))
	for _, name := range order {
		entries := items[name]
		slices.SortStableFunc(entries, func(a, b seqItem) int { return cmp.Compare(a.seq, b.seq) })
		s := schema.StoredSeries{Name: name, Kind: kinds[name], Items: make([]schema.DataItem, len(entries))}
		for i, e := range entries {
			s.Items[i] = e.item
		}
		result = append(result, s)
	}
	return result, nil
}

func setTime(bar *Bar, t any) error {
	switch v := t.(type) {
	case nil:
		return fmt.Errorf("missing time")
	case string:
		bar.TimeText = &v
		return nil
	case schema.BusinessDay, *schema.BusinessDay, map[string]any:
		text := schema.FormatOriginalTime(v)
		if m, ok := v.(map[string]any); ok {
			text = schema.BusinessDay{Year: cast.ToInt(m["year"]), Month: cast.ToInt(m["month"]), Day: cast.ToInt(m["day"])}.String()
		}
		bar.TimeText = &text
		return nil
	}
	f, err := cast.ToFloat64E(t)
	if err != nil {
		return fmt.Errorf("unsupported time %v: %w", t, err)
	}
	bar.TimeNumber = &f
	return nil
}

func encode(v any) (*string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode column: %w", err)
	}
	s := string(b)
	return &s, nil
}

func decode(s *string, v any) error {
	if s == nil || *s == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(*s), v); err != nil {
		return fmt.Errorf("failed to decode column: %w", err)
	}
	return nil
}
