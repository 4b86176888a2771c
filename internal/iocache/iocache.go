// Package iocache owns the storage layer: the point store, the result cache and their lifecycle.
package iocache

import (
	"sync"

	"github.com/huangsam/trackstat/internal/contract"
)

// CacheStoreManager holds the point store and the result cache of a run.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	results      contract.CacheStore
	points       contract.PointStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// NewCacheStoreManager returns a manager over already opened stores.
func NewCacheStoreManager(points contract.PointStore, results contract.CacheStore) *CacheStoreManager {
	return &CacheStoreManager{points: points, results: results}
}

// GetResultStore returns the result CacheStore.
func (mgr *CacheStoreManager) GetResultStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.results
}

// GetPointStore returns the PointStore.
func (mgr *CacheStoreManager) GetPointStore() contract.PointStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.points
}
