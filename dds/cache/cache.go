package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SizeCache memoizes directory sizes by path behind a minute-based TTL.
// A TTL <= 0 disables it: Get always misses and Put never writes.
// Store failures are logged and treated as misses so a report never fails on them.
type SizeCache struct {
	store      Store
	ttlMinutes int
	log        zerolog.Logger
	metrics    metrics
}

// NewSizeCache wraps store with the configured TTL in minutes.
func NewSizeCache(store Store, ttlMinutes int, log zerolog.Logger) *SizeCache {
	return &SizeCache{
		store:      store,
		ttlMinutes: ttlMinutes,
		log:        log.With().Str("component", "size-cache").Logger(),
	}
}

// Enabled reports whether the TTL allows caching.
func (c *SizeCache) Enabled() bool {
	return c.ttlMinutes > 0
}

// TTLMinutes returns the configured TTL.
func (c *SizeCache) TTLMinutes() int {
	return c.ttlMinutes
}

// Get returns the cached size for path.
func (c *SizeCache) Get(ctx context.Context, path string) (int64, bool) {
	if !c.Enabled() {
		return 0, false
	}

	key := Key(path)
	size, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.metrics.record(opStoreError)
		c.log.Warn().Err(err).Str("path", path).Str("key", key).Msg("cache read failed, recomputing")
		found = false
	}
	if !found {
		c.metrics.record(opMiss)
		return 0, false
	}

	c.metrics.record(opHit)
	return size, true
}

// Put stores size for path for ttlMinutes. A ttlMinutes <= 0 is a no-op.
func (c *SizeCache) Put(ctx context.Context, path string, size int64, ttlMinutes int) {
	if ttlMinutes <= 0 {
		return
	}

	key := Key(path)
	if err := c.store.Set(ctx, key, size, time.Duration(ttlMinutes)*time.Minute); err != nil {
		c.metrics.record(opStoreError)
		c.log.Warn().Err(err).Str("path", path).Str("key", key).Msg("cache write failed")
		return
	}
	c.metrics.record(opWrite)
}

// Invalidate removes the entry for path, if any.
func (c *SizeCache) Invalidate(ctx context.Context, path string) {
	key := Key(path)
	if err := c.store.Delete(ctx, key); err != nil {
		c.metrics.record(opStoreError)
		c.log.Warn().Err(err).Str("path", path).Str("key", key).Msg("cache invalidation failed")
		return
	}
	c.metrics.record(opInvalidate)
}

// InvalidateAll invalidates every path in paths.
func (c *SizeCache) InvalidateAll(ctx context.Context, paths []string) {
	for _, path := range paths {
		c.Invalidate(ctx, path)
	}
	c.log.Debug().Int("paths", len(paths)).Msg("invalidated cached sizes")
}

// Stats returns a copy of the hit/miss counters.
func (c *SizeCache) Stats() Stats {
	return c.metrics.snapshot()
}

// Close closes the underlying store.
func (c *SizeCache) Close() error {
	return c.store.Close()
}
