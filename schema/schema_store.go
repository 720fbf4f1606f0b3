package schema

import "time"

// SeriesInfo summarises one series held by the bar store.
type SeriesInfo struct {
	Name      string     `json:"name"`
	Kind      SeriesKind `json:"kind"`
	BarCount  int        `json:"bar_count"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// StoredSeries is a named series with its raw items, as persisted by the bar store.
type StoredSeries struct {
	Name  string     `json:"name" yaml:"name"`
	Kind  SeriesKind `json:"kind" yaml:"kind"`
	Items []DataItem `json:"items" yaml:"items"`
}
