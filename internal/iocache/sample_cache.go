package iocache

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/hashicorp/golang-lru/simplelru"
	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/schema"
)

// SampleCache keeps the most recently read point ranges in memory in front of a PointStore.
// Entries are keyed by the store revision, so any write makes older entries unreachable.
type SampleCache struct {
	contract.PointStore

	mu     sync.Mutex
	lru    *simplelru.LRU
	hits   int
	misses int
}

type sampleKey struct {
	featureID int64
	revision  int64
	from, to  int64
	order     contract.PointOrder
	limit     int
}

// NewSampleCache wraps store with an LRU holding up to size point ranges.
func NewSampleCache(store contract.PointStore, size int) (*SampleCache, error) {
	lru, err := simplelru.NewLRU(size, nil /* no onEvict policy */)
	if err != nil {
		return nil, fmt.Errorf("failed to create sample cache: %w", err)
	}
	return &SampleCache{PointStore: store, lru: lru}, nil
}

// GetPoints serves the query from memory when the same range was read at the current revision.
func (sc *SampleCache) GetPoints(ctx context.Context, featureID int64, q contract.PointQuery) ([]schema.DataPoint, error) {
	revision, err := sc.Revision(ctx)
	if err != nil {
		return nil, err
	}
	key := sampleKey{
		featureID: featureID,
		revision:  revision,
		from:      q.From.UnixMilli(),
		to:        q.To.UnixMilli(),
		order:     q.Order,
		limit:     q.Limit,
	}

	sc.mu.Lock()
	if v, ok := sc.lru.Get(key); ok {
		sc.hits++
		sc.mu.Unlock()
		points, _ := v.([]schema.DataPoint)
		return slices.Clone(points), nil
	}
	sc.misses++
	sc.mu.Unlock()

	points, err := sc.PointStore.GetPoints(ctx, featureID, q)
	if err != nil {
		return nil, err
	}

	sc.mu.Lock()
	sc.lru.Add(key, slices.Clone(points))
	sc.mu.Unlock()
	return points, nil
}

// Stats reports hit and miss counts along with the number of held ranges.
func (sc *SampleCache) Stats() (hits, misses, size int) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.hits, sc.misses, sc.lru.Len()
}

// Purge drops every cached range.
func (sc *SampleCache) Purge() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.lru.Purge()
}
