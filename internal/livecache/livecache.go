// Package livecache memoises expensive live analyses under a request
// fingerprint.
package livecache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/discochess/coach/internal/cachestrategy"
	"github.com/discochess/coach/internal/cachestrategy/lru"
	"github.com/discochess/coach/internal/stats"
)

// DefaultCapacity is the number of entries kept by NewLRU callers that do
// not choose a capacity.
const DefaultCapacity = 1024

// Fingerprint identifies a live analysis request. It covers every input that
// changes the result.
func Fingerprint(username, move, fen string, depth, pvLen int) string {
	sum := sha1.Sum(fmt.Appendf(nil, "%s|%s|%s|%d|%d", username, move, fen, depth, pvLen))
	return hex.EncodeToString(sum[:])
}

// Cache maps fingerprints to computed results.
//
// The cache lock is held only for lookups and inserts, never while a value is
// computed. Concurrent misses on the same key share one computation; a
// waiter whose own context is still live recomputes when the shared call was
// cancelled. Failed computations are not stored.
type Cache[V any] struct {
	mu       sync.Mutex
	strategy cachestrategy.Strategy[string, V]
	flight   singleflight.Group
	stats    stats.Collector
}

// New creates a cache over the given eviction strategy.
// The collector is optional; if nil, a no-op collector is used.
func New[V any](strategy cachestrategy.Strategy[string, V], collector stats.Collector) *Cache[V] {
	if collector == nil {
		collector = stats.NewNoop()
	}
	return &Cache[V]{strategy: strategy, stats: collector}
}

// NewLRU creates a cache bounded to capacity entries.
func NewLRU[V any](capacity int, collector stats.Collector) (*Cache[V], error) {
	s, err := lru.New[string, V](capacity)
	if err != nil {
		return nil, fmt.Errorf("creating LRU strategy: %w", err)
	}
	return New[V](s, collector), nil
}

// Get returns the cached value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.strategy.Get(key)
}

// GetOrCompute returns the cached value for key, or computes and stores it.
// The boolean reports whether the value came from the cache.
func (c *Cache[V]) GetOrCompute(ctx context.Context, key string, compute func(context.Context) (V, error)) (V, bool, error) {
	if v, ok := c.Get(key); ok {
		c.stats.IncCounter(stats.MetricCacheHits, 1)
		return v, true, nil
	}
	c.stats.IncCounter(stats.MetricCacheMisses, 1)

	for {
		led := false
		res, err, _ := c.flight.Do(key, func() (any, error) {
			led = true
			if v, ok := c.Get(key); ok {
				return v, nil
			}
			v, err := compute(ctx)
			if err != nil {
				return nil, err
			}
			c.add(key, v)
			return v, nil
		})
		if err != nil {
			// The shared computation ran under another caller's context.
			if !led && isContextErr(err) && ctx.Err() == nil {
				continue
			}
			var zero V
			return zero, false, err
		}
		return res.(V), false, nil
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.strategy.Len()
}

func (c *Cache[V]) add(key string, v V) {
	c.mu.Lock()
	c.strategy.Add(key, v)
	n := c.strategy.Len()
	c.mu.Unlock()
	c.stats.SetGauge(stats.MetricCacheSize, int64(n))
}
