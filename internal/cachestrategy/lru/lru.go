// Package lru implements an LRU cache eviction strategy.
package lru

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/discochess/coach/internal/cachestrategy"
)

// Strategy implements bounded LRU eviction.
type Strategy[K comparable, V any] struct {
	cache *lru.Cache[K, V]
}

// Compile-time check that Strategy implements cachestrategy.Strategy.
var _ cachestrategy.Strategy[string, []byte] = (*Strategy[string, []byte])(nil)

// New creates a new LRU strategy with the given capacity.
// The capacity must be positive.
func New[K comparable, V any](capacity int) (*Strategy[K, V], error) {
	c, err := lru.New[K, V](capacity)
	if err != nil {
		return nil, err
	}
	return &Strategy[K, V]{cache: c}, nil
}

// Get retrieves a value by key and marks it recently used.
func (s *Strategy[K, V]) Get(key K) (V, bool) {
	return s.cache.Get(key)
}

// Add adds a value to the cache, evicting the least recently used entry
// when full.
func (s *Strategy[K, V]) Add(key K, value V) bool {
	return s.cache.Add(key, value)
}

// Remove drops a key from the cache.
func (s *Strategy[K, V]) Remove(key K) bool {
	return s.cache.Remove(key)
}

// Len returns the number of items in the cache.
func (s *Strategy[K, V]) Len() int {
	return s.cache.Len()
}
