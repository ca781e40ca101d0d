package cache

import "context"

// Cache is a sharded, in-memory key/value cache with bounded per-shard
// capacity. All methods are safe for concurrent use by multiple goroutines.
//
// Typical complexity for operations is O(1) expected: a map access plus
// constant-time list adjustments under one shard lock.
type Cache[K comparable, V any] interface {
	// Get returns a copy of the value for k and whether it was present.
	// Under LRU a hit refreshes the entry's recency.
	Get(k K) (V, bool)

	// Peek is Get without touching recency or hit/miss counters.
	Peek(k K) (V, bool)

	// Put inserts or overwrites k→v. Inserting a new key into a full shard
	// first evicts that shard's oldest entry; overwrites never evict.
	Put(k K, v V)

	// Add inserts k→v only if k is absent and reports whether it did.
	Add(k K, v V) bool

	// Remove deletes k and reports whether it was present.
	Remove(k K) bool

	// Len returns the number of resident entries. Shards are counted one at
	// a time, so under concurrent writes the total is approximate.
	Len() int

	// Clear empties every shard. Shard locks are taken in ascending index
	// order, so concurrent Clear calls cannot deadlock.
	Clear()

	// Route returns the index of the shard that owns k.
	Route(k K) int

	// GetOrLoad returns the value for k, loading it via Options.Loader on a
	// miss. Concurrent loads for the same key are coalesced.
	GetOrLoad(ctx context.Context, k K) (V, error)

	// Stats returns hit/miss/eviction totals and the current length.
	Stats() Stats

	// Close marks the cache closed: reads miss, writes are dropped.
	Close() error
}

// Stats is a point-in-time summary of cache activity.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Len       int
	Shards    int
}
