// Package cachestrategy defines cache eviction strategy interfaces.
package cachestrategy

// Strategy defines the interface for cache eviction strategies.
// Implementations must be safe for concurrent use.
type Strategy[K comparable, V any] interface {
	Get(key K) (V, bool)

	// Add stores value under key and reports whether an entry was evicted.
	Add(key K, value V) bool

	Remove(key K) bool
	Len() int
}
