package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// ErrStoreClosed is returned by a store used after Close.
var ErrStoreClosed = errors.New("cache store is closed")

// Store is a keyed, expiring integer store. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the value for key and whether it was present and unexpired.
	Get(ctx context.Context, key string) (int64, bool, error)
	// Set stores value under key until ttl elapses.
	Set(ctx context.Context, key string, value int64, ttl time.Duration) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// MemoryStore keeps entries in process memory on a ttlcache instance. Reads never
// extend an entry's lifetime. Expired entries read as absent and are evicted on the next Set.
type MemoryStore struct {
	items  *ttlcache.Cache[string, int64]
	closed atomic.Bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: ttlcache.New[string, int64](
			ttlcache.WithDisableTouchOnHit[string, int64](),
		),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (int64, bool, error) {
	if m.closed.Load() {
		return 0, false, ErrStoreClosed
	}
	item := m.items.Get(key)
	if item == nil {
		return 0, false, nil
	}
	return item.Value(), true, nil
}

// Set stores value under key. A ttl <= 0 stores nothing and drops any previous value.
func (m *MemoryStore) Set(_ context.Context, key string, value int64, ttl time.Duration) error {
	if m.closed.Load() {
		return ErrStoreClosed
	}
	m.items.DeleteExpired()
	if ttl <= 0 {
		m.items.Delete(key)
		return nil
	}
	m.items.Set(key, value, ttl)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	if m.closed.Load() {
		return ErrStoreClosed
	}
	m.items.Delete(key)
	return nil
}

// Len returns the number of unexpired entries.
func (m *MemoryStore) Len() int {
	return m.items.Len()
}

func (m *MemoryStore) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	m.items.DeleteAll()
	return nil
}
