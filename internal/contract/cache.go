package contract

import "github.com/huangsam/trackstat/schema"

// CacheManager defines the interface for managing storage backends.
// This allows the storage layer to be mocked for testing.
type CacheManager interface {
	GetResultStore() CacheStore
	GetPointStore() PointStore
}

// CacheStore defines the interface for cached result storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Clear() error
	Close() error
}
