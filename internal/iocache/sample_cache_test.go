package iocache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSampleCache(t *testing.T) {
	ctx := context.Background()
	q := contract.PointQuery{From: storeBase, To: storeBase.Add(time.Hour)}
	points := []schema.DataPoint{pointAt(1, storeBase, 5), pointAt(1, storeBase.Add(time.Minute), 6)}

	inner := &MockPointStore{}
	inner.On("Revision", mock.Anything).Return(int64(4), nil).Times(3)
	inner.On("Revision", mock.Anything).Return(int64(5), nil)
	inner.On("GetPoints", mock.Anything, int64(1), q).Return(points, nil).Twice()

	cache, err := NewSampleCache(inner, 8)
	require.NoError(t, err)

	first, err := cache.GetPoints(ctx, 1, q)
	require.NoError(t, err)
	assert.Equal(t, points, first)

	second, err := cache.GetPoints(ctx, 1, q)
	require.NoError(t, err)
	assert.Equal(t, points, second)

	second[0].Value = 100 // callers own their slices
	third, err := cache.GetPoints(ctx, 1, q)
	require.NoError(t, err)
	assert.Equal(t, 5.0, third[0].Value)

	hits, misses, size := cache.Stats()
	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, misses)
	assert.Equal(t, 1, size)

	// A write moves the revision and the range is read again
	_, err = cache.GetPoints(ctx, 1, q)
	require.NoError(t, err)
	hits, misses, size = cache.Stats()
	assert.Equal(t, 2, hits)
	assert.Equal(t, 2, misses)
	assert.Equal(t, 2, size)

	cache.Purge()
	_, _, size = cache.Stats()
	assert.Zero(t, size)
	inner.AssertExpectations(t)
}

func TestSampleCacheEvicts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	f, _, err := store.UpsertFeature(ctx, "x", schema.Numerical)
	require.NoError(t, err)
	_, err = store.InsertPoints(ctx, []schema.DataPoint{pointAt(f.ID, storeBase, 1)})
	require.NoError(t, err)

	cache, err := NewSampleCache(store, 2)
	require.NoError(t, err)
	for i := range 5 {
		_, err := cache.GetPoints(ctx, f.ID, contract.PointQuery{Limit: i + 1})
		require.NoError(t, err)
	}
	_, misses, size := cache.Stats()
	assert.Equal(t, 5, misses)
	assert.Equal(t, 2, size)
}

func TestSampleCachePassesThrough(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	cache, err := NewSampleCache(store, 4)
	require.NoError(t, err)

	f, created, err := cache.UpsertFeature(ctx, "steps", schema.Numerical)
	require.NoError(t, err)
	assert.True(t, created)

	_, err = cache.InsertPoints(ctx, []schema.DataPoint{pointAt(f.ID, storeBase, 10)})
	require.NoError(t, err)
	got, err := cache.GetPoints(ctx, f.ID, contract.PointQuery{})
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = cache.InsertPoints(ctx, []schema.DataPoint{pointAt(f.ID, storeBase.Add(time.Hour), 20)})
	require.NoError(t, err)
	got, err = cache.GetPoints(ctx, f.ID, contract.PointQuery{})
	require.NoError(t, err)
	assert.Len(t, got, 2, "writes invalidate cached ranges")
}

func TestSampleCacheErrors(t *testing.T) {
	_, err := NewSampleCache(NewMemoryStore(), 0)
	assert.Error(t, err)

	boom := errors.New("boom")
	inner := &MockPointStore{}
	inner.On("Revision", mock.Anything).Return(int64(0), boom).Once()
	inner.On("Revision", mock.Anything).Return(int64(1), nil)
	inner.On("GetPoints", mock.Anything, int64(2), contract.PointQuery{}).Return(nil, boom)

	cache, err := NewSampleCache(inner, 4)
	require.NoError(t, err)

	_, err = cache.GetPoints(context.Background(), 2, contract.PointQuery{})
	assert.ErrorIs(t, err, boom)
	_, err = cache.GetPoints(context.Background(), 2, contract.PointQuery{})
	assert.ErrorIs(t, err, boom)
	_, _, size := cache.Stats()
	assert.Zero(t, size, "failed reads are not cached")
}
