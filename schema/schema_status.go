package schema

import "time"

// CacheStatus represents the status of the result cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// StoreStatus represents the status of the point store.
type StoreStatus struct {
	Backend         string           `json:"backend"`
	Connected       bool             `json:"connected"`
	TotalFeatures   int              `json:"total_features"`
	TotalPoints     int              `json:"total_points"`
	Revision        int64            `json:"revision"`
	LastPointTime   time.Time        `json:"last_point_time"`
	OldestPointTime time.Time        `json:"oldest_point_time"`
	TableSizes      map[string]int64 `json:"table_sizes"`
}
