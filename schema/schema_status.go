package schema

import "time"

// StoreStatus represents the status of the bar store.
type StoreStatus struct {
	Backend        string    `json:"backend"`
	Connected      bool      `json:"connected"`
	SchemaVersion  uint      `json:"schema_version"`
	TotalSeries    int       `json:"total_series"`
	TotalBars      int       `json:"total_bars"`
	LastUpdateTime time.Time `json:"last_update_time"`
	TableSizeBytes int64     `json:"table_size_bytes"`
}
