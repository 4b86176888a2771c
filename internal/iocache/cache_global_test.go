package iocache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/huangsam/trackstat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetManager(t *testing.T) {
	t.Helper()
	Manager = &CacheStoreManager{}
	initOnce = sync.Once{}  // Reset for test
	closeOnce = sync.Once{} // Reset for test
	t.Cleanup(CloseCaching)
}

func TestInitCaching(t *testing.T) {
	t.Run("none backends", func(t *testing.T) {
		resetManager(t)
		require.NoError(t, InitCaching(schema.NoneBackend, "", schema.NoneBackend, "", 0))
		assert.IsType(t, &MemoryStore{}, Manager.GetPointStore())
		assert.NotNil(t, Manager.GetResultStore())
	})

	t.Run("sample cache in front", func(t *testing.T) {
		resetManager(t)
		require.NoError(t, InitCaching(schema.NoneBackend, "", "", "", 16))
		assert.IsType(t, &SampleCache{}, Manager.GetPointStore())
	})

	t.Run("sqlite files", func(t *testing.T) {
		resetManager(t)
		dir := t.TempDir()
		storePath := filepath.Join(dir, "store.db")
		cachePath := filepath.Join(dir, "cache.db")
		require.NoError(t, InitCaching(schema.SQLiteBackend, storePath, schema.SQLiteBackend, cachePath, 0))
		assert.IsType(t, &PointStoreImpl{}, Manager.GetPointStore())
		assert.IsType(t, &CacheStoreImpl{}, Manager.GetResultStore())

		CloseCaching()
		CloseCaching() // idempotent
		assert.FileExists(t, storePath)
		assert.FileExists(t, cachePath)
	})

	t.Run("redis results", func(t *testing.T) {
		resetManager(t)
		mr := miniredis.RunT(t)
		require.NoError(t, InitCaching(schema.NoneBackend, "", schema.RedisBackend, "redis://"+mr.Addr(), 0))
		assert.IsType(t, &RedisCacheStore{}, Manager.GetResultStore())
	})

	t.Run("idempotent", func(t *testing.T) {
		resetManager(t)
		require.NoError(t, InitCaching(schema.NoneBackend, "", schema.NoneBackend, "", 0))
		first := Manager.GetPointStore()
		require.NoError(t, InitCaching(schema.NoneBackend, "", schema.NoneBackend, "", 0))
		assert.Same(t, first, Manager.GetPointStore())
	})

	t.Run("bad cache backend", func(t *testing.T) {
		resetManager(t)
		err := InitCaching(schema.NoneBackend, "", schema.DatabaseBackend("oracle"), "", 0)
		assert.ErrorContains(t, err, "failed to initialize result caching")
		assert.Nil(t, Manager.GetPointStore())
	})

	t.Run("bad store backend", func(t *testing.T) {
		resetManager(t)
		err := InitCaching(schema.RedisBackend, "", schema.NoneBackend, "", 0)
		assert.ErrorContains(t, err, "failed to initialize point store")
	})
}

func TestClearCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	require.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
	assert.NoFileExists(t, path)
	assert.NoError(t, ClearCache(schema.SQLiteBackend, path, ""), "missing file is fine")
	assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	assert.ErrorContains(t, ClearCache(schema.DatabaseBackend("oracle"), "", ""), "unsupported")

	mr := miniredis.RunT(t)
	store, err := NewRedisCacheStore(resultTable, "redis://"+mr.Addr())
	require.NoError(t, err)
	require.NoError(t, store.Set("k", []byte("v"), 1, 1))
	require.NoError(t, store.Close())
	require.NoError(t, ClearCache(schema.RedisBackend, "", "redis://"+mr.Addr()))
	assert.Empty(t, mr.Keys())
}

func TestClearStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	store, err := NewPointStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearStore(schema.SQLiteBackend, path, ""))
	assert.NoFileExists(t, path)
	assert.NoError(t, ClearStore(schema.NoneBackend, "", ""))
	assert.ErrorContains(t, ClearStore(schema.RedisBackend, "", ""), "unsupported")
}
