// Package memory implements an in-memory cache backend.
package memory

import (
	"sync/atomic"

	"github.com/discochess/coach/internal/cachestrategy"
	"github.com/discochess/coach/internal/stats"
	"github.com/discochess/coach/internal/store/cachedstore"
)

// Compile-time check that Backend implements cachedstore.Backend.
var _ cachedstore.Backend = (*Backend)(nil)

// Backend is a thread-safe in-memory cache backend.
type Backend struct {
	strategy  cachestrategy.Strategy[string, []byte]
	collector stats.Collector

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a new memory backend with the given eviction strategy.
// The collector is optional; if nil, a no-op collector is used.
func New(strategy cachestrategy.Strategy[string, []byte], collector stats.Collector) *Backend {
	if collector == nil {
		collector = stats.NewNoop()
	}
	return &Backend{
		strategy:  strategy,
		collector: collector,
	}
}

// Get retrieves a profile from the cache.
func (b *Backend) Get(username string) ([]byte, bool) {
	val, ok := b.strategy.Get(username)
	if ok {
		b.hits.Add(1)
		b.collector.IncCounter(stats.MetricStoreHits, 1)
		return val, true
	}
	b.misses.Add(1)
	b.collector.IncCounter(stats.MetricStoreMisses, 1)
	return nil, false
}

// Set stores a profile in the cache.
func (b *Backend) Set(username string, data []byte) {
	b.strategy.Add(username, data)
}

// Stats returns current cache statistics.
func (b *Backend) Stats() cachedstore.Stats {
	return cachedstore.Stats{
		Hits:   b.hits.Load(),
		Misses: b.misses.Load(),
		Size:   b.strategy.Len(),
	}
}
