package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore records every call that reaches the backend
type countingStore struct {
	*MemoryStore
	gets, sets, deletes int
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: NewMemoryStore()}
}

func (s *countingStore) Get(ctx context.Context, key string) (int64, bool, error) {
	s.gets++
	return s.MemoryStore.Get(ctx, key)
}

func (s *countingStore) Set(ctx context.Context, key string, value int64, ttl time.Duration) error {
	s.sets++
	return s.MemoryStore.Set(ctx, key, value, ttl)
}

func (s *countingStore) Delete(ctx context.Context, key string) error {
	s.deletes++
	return s.MemoryStore.Delete(ctx, key)
}

// brokenStore simulates an unreachable backend
type brokenStore struct{}

var errUnreachable = errors.New("backend unreachable")

func (brokenStore) Get(context.Context, string) (int64, bool, error) { return 0, false, errUnreachable }
func (brokenStore) Set(context.Context, string, int64, time.Duration) error {
	return errUnreachable
}
func (brokenStore) Delete(context.Context, string) error { return errUnreachable }
func (brokenStore) Close() error                         { return nil }

func TestSizeCacheHitAndMiss(t *testing.T) {
	ctx := context.Background()
	c := NewSizeCache(NewMemoryStore(), 60, zerolog.Nop())

	_, found := c.Get(ctx, "/srv/uploads")
	assert.False(t, found)

	c.Put(ctx, "/srv/uploads", 1234, 60)
	size, found := c.Get(ctx, "/srv/uploads")
	require.True(t, found)
	assert.Equal(t, int64(1234), size)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Writes)
	assert.InDelta(t, 0.5, stats.HitRatio(), 0.0001)
}

func TestSizeCacheCachesMissingSentinel(t *testing.T) {
	ctx := context.Background()
	c := NewSizeCache(NewMemoryStore(), 60, zerolog.Nop())

	c.Put(ctx, "/nope", -1, 60)
	size, found := c.Get(ctx, "/nope")
	assert.True(t, found)
	assert.Equal(t, int64(-1), size)
}

func TestSizeCacheDisabledNeverTouchesStore(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()
	c := NewSizeCache(store, 0, zerolog.Nop())

	assert.False(t, c.Enabled())
	c.Put(ctx, "/srv/uploads", 10, 0)
	_, found := c.Get(ctx, "/srv/uploads")

	assert.False(t, found)
	assert.Zero(t, store.gets)
	assert.Zero(t, store.sets)
}

func TestSizeCachePutWithNonPositiveTTLIsNoop(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()
	c := NewSizeCache(store, 60, zerolog.Nop())

	c.Put(ctx, "/srv/uploads", 10, -5)
	assert.Zero(t, store.sets)
	_, found := c.Get(ctx, "/srv/uploads")
	assert.False(t, found)
}

func TestSizeCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewSizeCache(NewMemoryStore(), 60, zerolog.Nop())

	c.Put(ctx, "/a", 1, 60)
	c.Put(ctx, "/b", 2, 60)
	c.Put(ctx, "/c", 3, 60)

	c.Invalidate(ctx, "/missing")
	c.InvalidateAll(ctx, []string{"/a", "/b"})

	_, found := c.Get(ctx, "/a")
	assert.False(t, found)
	_, found = c.Get(ctx, "/b")
	assert.False(t, found)
	size, found := c.Get(ctx, "/c")
	assert.True(t, found)
	assert.Equal(t, int64(3), size)
	assert.Equal(t, int64(3), c.Stats().Invalidations)
}

func TestSizeCacheInvalidateDoesNotNormalize(t *testing.T) {
	ctx := context.Background()
	c := NewSizeCache(NewMemoryStore(), 60, zerolog.Nop())

	c.Put(ctx, "/srv/uploads", 1, 60)
	c.Invalidate(ctx, "/srv/uploads/")

	_, found := c.Get(ctx, "/srv/uploads")
	assert.True(t, found, "a differently spelled path is a different key")
}

func TestSizeCacheUnavailableStoreFallsBackToMiss(t *testing.T) {
	ctx := context.Background()
	c := NewSizeCache(brokenStore{}, 60, zerolog.Nop())

	c.Put(ctx, "/srv/uploads", 10, 60)
	_, found := c.Get(ctx, "/srv/uploads")
	c.Invalidate(ctx, "/srv/uploads")

	assert.False(t, found)
	stats := c.Stats()
	assert.Equal(t, int64(3), stats.StoreErrors)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Zero(t, stats.Writes)
}

func TestStatsGetMetrics(t *testing.T) {
	m := Stats{Hits: 3, Misses: 1}.GetMetrics()
	assert.Equal(t, int64(3), m["hits"])
	assert.InDelta(t, 0.75, m["hit_ratio"], 0.0001)
}
