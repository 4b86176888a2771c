package iocache

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/huangsam/trackstat/schema"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisStore(t *testing.T) (*miniredis.Miniredis, *RedisCacheStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisCacheStore("results", "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return mr, store
}

func TestRedisCacheStore(t *testing.T) {
	mr, store := newMiniredisStore(t)

	_, _, _, err := store.Get("missing")
	assert.ErrorIs(t, err, redis.Nil)

	require.NoError(t, store.Set("k1", []byte(`{"a":1}`), 1, 1000))
	require.NoError(t, store.Set("k2", []byte(`{"bb":2}`), 1, 4000))

	value, version, ts, err := store.Get("k1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), value)
	assert.Equal(t, 1, version)
	assert.Equal(t, int64(1000), ts)

	assert.True(t, mr.Exists("trackstat:results:k1"), "keys are namespaced")
	assert.Equal(t, RedisEntryTTL, mr.TTL("trackstat:results:k1"))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, string(schema.RedisBackend), status.Backend)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, int64(1000), status.OldestEntryTime.Unix())
	assert.Equal(t, int64(4000), status.LastEntryTime.Unix())
	assert.Equal(t, int64(len(`{"a":1}`)+len(`{"bb":2}`)), status.TableSizeBytes)

	require.NoError(t, mr.Set("other:key", "kept"))
	require.NoError(t, store.Clear())
	assert.False(t, mr.Exists("trackstat:results:k1"))
	assert.True(t, mr.Exists("other:key"), "clear only touches the cache namespace")

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Zero(t, status.TotalEntries)
}

func TestRedisCacheStoreExpiry(t *testing.T) {
	mr, store := newMiniredisStore(t)
	require.NoError(t, store.Set("k", []byte("v"), 1, 1))

	mr.FastForward(RedisEntryTTL + 1)
	_, _, _, err := store.Get("k")
	assert.ErrorIs(t, err, redis.Nil)
}

func TestRedisCacheStoreCorruptEntry(t *testing.T) {
	mr, store := newMiniredisStore(t)
	mr.HSet("trackstat:results:bad", "value", "x", "version", "one", "timestamp", "1")

	_, _, _, err := store.Get("bad")
	assert.ErrorContains(t, err, "corrupt cache entry")
}

func TestNewRedisCacheStoreErrors(t *testing.T) {
	_, err := NewRedisCacheStore("results", "http://localhost")
	assert.ErrorContains(t, err, "invalid Redis URL")

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = NewRedisCacheStore("results", "redis://"+addr)
	assert.ErrorContains(t, err, "failed to connect to Redis")
}

func TestNewCacheStoreRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := NewCacheStore("results", schema.RedisBackend, "redis://"+mr.Addr())
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	assert.IsType(t, &RedisCacheStore{}, store)
}
