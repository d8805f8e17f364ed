package vector

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestRedisStore(t)
	require.NoError(t, store.Upsert(ctx, "ns", sampleVectors()))

	matches, err := store.Query(ctx, "ns", []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "v0", matches[0].ID)
	assert.Equal(t, "v2", matches[1].ID)
	assert.Equal(t, "first", matches[0].Metadata.Text)
	assert.Equal(t, "a.pdf", matches[0].Metadata.Filename)
}

func TestRedisStoreQueryUnknownNamespace(t *testing.T) {
	store := newTestRedisStore(t)

	_, err := store.Query(context.Background(), "missing", []float32{1, 0}, 3)
	assert.ErrorIs(t, err, ErrNamespaceNotFound)
}

func TestRedisStoreFetchOnePicksLowestChunkIndex(t *testing.T) {
	ctx := context.Background()
	store := newTestRedisStore(t)
	require.NoError(t, store.Upsert(ctx, "ns", sampleVectors()))

	v, err := store.FetchOne(ctx, "ns")
	require.NoError(t, err)
	assert.Equal(t, "v0", v.ID)
	assert.Equal(t, 0, v.Metadata.ChunkIndex)
}

func TestRedisStoreStats(t *testing.T) {
	ctx := context.Background()
	store := newTestRedisStore(t)
	require.NoError(t, store.Upsert(ctx, "zulu", sampleVectors()[:1]))
	require.NoError(t, store.Upsert(ctx, "alpha", sampleVectors()))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, NamespaceStat{Namespace: "alpha", VectorCount: 3}, stats[0])
	assert.Equal(t, NamespaceStat{Namespace: "zulu", VectorCount: 1}, stats[1])
}

func TestRedisStoreDeleteNamespace(t *testing.T) {
	ctx := context.Background()
	store := newTestRedisStore(t)
	require.NoError(t, store.Upsert(ctx, "ns", sampleVectors()))

	require.NoError(t, store.DeleteNamespace(ctx, "ns"))

	_, err := store.Query(ctx, "ns", []float32{1, 0}, 3)
	assert.ErrorIs(t, err, ErrNamespaceNotFound)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Empty(t, stats)

	// Deleting twice is fine.
	assert.NoError(t, store.DeleteNamespace(ctx, "ns"))
}

func TestRedisStoreUpsertEmptyIsNoop(t *testing.T) {
	ctx := context.Background()
	store := newTestRedisStore(t)
	require.NoError(t, store.Upsert(ctx, "ns", nil))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Empty(t, stats)
}
