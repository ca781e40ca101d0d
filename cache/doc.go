// Package cache provides a generic, sharded, in-memory key/value cache with
// bounded per-shard capacity and LRU or FIFO eviction.
//
// Design
//
//   - Concurrency: the key space is split into a fixed number of shards,
//     each guarded by its own sync.Mutex. A key is routed to
//     hash(key) mod shards for the cache's lifetime, so operations on
//     different shards never block each other. Only Clear holds more than one
//     shard lock, and it always acquires them in ascending index order.
//
//   - Storage: each shard keeps a map[K]*node for lookups and an intrusive
//     list ordered by a per-shard marker (newest at the head). All operations
//     are O(1) expected.
//
//   - Eviction: Options.ShardCapacity bounds every shard. Inserting a new key
//     into a full shard first evicts the entry with the oldest marker.
//     Under policy.LRU markers are refreshed by Get hits and Put; under
//     policy.FIFO they are set once at insertion. Markers are unique within
//     a shard, so the victim is always well defined. Capacity is per shard,
//     not global: a hot shard may evict while others are empty.
//
//   - GetOrLoad coalesces concurrent loads for the same key. If Loader is
//     nil, GetOrLoad returns ErrNoLoader.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Resize signals; see
//     packages metrics/prom and metrics/otelmetric for exporters.
//
// Basic usage
//
//	c, err := cache.New[string, []byte](cache.Options[string, []byte]{
//	    Shards:        cache.AutoShards(),
//	    ShardCapacity: 1024,
//	})
//	if err != nil {
//	    return err
//	}
//	c.Put("a", []byte("1"))
//	if v, ok := c.Get("a"); ok {
//	    _ = v
//	}
//	c.Remove("a")
//
// FIFO eviction
//
//	c, _ := cache.New[string, int](cache.Options[string, int]{
//	    Shards:        1,
//	    ShardCapacity: 2,
//	    Policy:        policy.FIFO,
//	})
//	c.Put("a", 1)
//	c.Put("b", 2)
//	c.Get("a")    // does not save "a" under FIFO
//	c.Put("c", 3) // evicts "a"
//
// # Configuration errors
//
// New rejects a shard count or shard capacity below 1 and unknown policies
// with an error wrapping ErrConfig. Missing keys are not errors: Get reports
// them with ok == false and Remove with false.
package cache
