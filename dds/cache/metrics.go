package cache

import (
	"sync"
	"time"
)

// Stats is a point-in-time copy of the cache counters
type Stats struct {
	Hits          int64
	Misses        int64
	Writes        int64
	Invalidations int64
	StoreErrors   int64
	LastOperation time.Time
}

// HitRatio returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// metrics tracks cache operations
type metrics struct {
	mu    sync.RWMutex
	stats Stats
}

type operation int

const (
	opHit operation = iota
	opMiss
	opWrite
	opInvalidate
	opStoreError
)

func (m *metrics) record(op operation) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch op {
	case opHit:
		m.stats.Hits++
	case opMiss:
		m.stats.Misses++
	case opWrite:
		m.stats.Writes++
	case opInvalidate:
		m.stats.Invalidations++
	case opStoreError:
		m.stats.StoreErrors++
	}
	m.stats.LastOperation = time.Now()
}

func (m *metrics) snapshot() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// GetMetrics returns the counters as a map, matching the shape other
// components log.
func (s Stats) GetMetrics() map[string]interface{} {
	return map[string]interface{}{
		"hits":           s.Hits,
		"misses":         s.Misses,
		"writes":         s.Writes,
		"invalidations":  s.Invalidations,
		"store_errors":   s.StoreErrors,
		"hit_ratio":      s.HitRatio(),
		"last_operation": s.LastOperation,
	}
}
