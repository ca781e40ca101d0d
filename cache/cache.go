package cache

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/IvanBrykalov/shardmap/internal/singleflight"
	"github.com/IvanBrykalov/shardmap/internal/util"
	"github.com/IvanBrykalov/shardmap/policy"
	"github.com/IvanBrykalov/shardmap/policy/fifo"
	"github.com/IvanBrykalov/shardmap/policy/lru"
)

// cache is a sharded in-memory KV store with a per-shard eviction policy.
// All methods are safe for concurrent use by multiple goroutines.
type cache[K comparable, V any] struct {
	shards []*shard[K, V]
	hash   func(K) uint64
	closed atomic.Bool

	opt Options[K, V]
	log *slog.Logger

	// coalesces concurrent loads in GetOrLoad
	sf singleflight.Group[K, V]
}

// New validates opt and constructs a cache. Invalid shard count, shard
// capacity or policy yields an error wrapping ErrConfig.
func New[K comparable, V any](opt Options[K, V]) (Cache[K, V], error) {
	if err := opt.validate(); err != nil {
		return nil, err
	}
	opt.applyDefaults()

	pol := newPolicy[K, V](opt.Policy)
	shards := make([]*shard[K, V], opt.Shards)
	for i := range shards {
		shards[i] = newShard(i, pol, &opt)
	}

	c := &cache[K, V]{
		shards: shards,
		hash:   opt.Hash,
		opt:    opt,
		log:    opt.Logger,
	}
	c.log.Info("cache created",
		slog.Int("shards", opt.Shards),
		slog.Int("shard_capacity", opt.ShardCapacity),
		slog.Int("capacity", opt.Shards*opt.ShardCapacity),
		slog.String("policy", opt.Policy.String()),
	)
	return c, nil
}

func newPolicy[K comparable, V any](k policy.Kind) policy.Policy[K, V] {
	if k == policy.FIFO {
		return fifo.New[K, V]()
	}
	return lru.New[K, V]()
}

// ---- Cache[K,V] implementation ----

func (c *cache[K, V]) Get(k K) (V, bool) {
	if c.closed.Load() {
		var zero V
		return zero, false
	}
	return c.shardFor(k).Get(k)
}

func (c *cache[K, V]) Peek(k K) (V, bool) {
	if c.closed.Load() {
		var zero V
		return zero, false
	}
	return c.shardFor(k).Peek(k)
}

func (c *cache[K, V]) Put(k K, v V) {
	if c.closed.Load() {
		return
	}
	c.shardFor(k).Put(k, v)
}

func (c *cache[K, V]) Add(k K, v V) bool {
	if c.closed.Load() {
		return false
	}
	return c.shardFor(k).Add(k, v)
}

func (c *cache[K, V]) Remove(k K) bool {
	if c.closed.Load() {
		return false
	}
	return c.shardFor(k).Remove(k)
}

// Len sums shard lengths, locking one shard at a time.
func (c *cache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		total += s.Len()
	}
	return total
}

// Clear holds every shard lock at once, acquired in index order and
// released in reverse.
func (c *cache[K, V]) Clear() {
	removed := c.clearAll()
	c.log.Debug("cache cleared", slog.Int("removed", removed))
}

func (c *cache[K, V]) clearAll() (removed int) {
	for _, s := range c.shards {
		s.mu.Lock()
	}
	// hooks run under the locks; a panic there must not leave them held
	defer func() {
		for i := len(c.shards) - 1; i >= 0; i-- {
			c.shards[i].mu.Unlock()
		}
	}()
	for _, s := range c.shards {
		removed += s.clearLocked()
	}
	return removed
}

func (c *cache[K, V]) Route(k K) int {
	return util.ShardIndex(c.hash(k), len(c.shards))
}

// GetOrLoad returns the value for k; on miss it loads via Options.Loader.
// Loader errors are returned as-is and nothing is cached.
func (c *cache[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	var zero V
	if c.closed.Load() {
		return zero, ErrClosed
	}
	if v, ok := c.Get(k); ok {
		return v, nil
	}
	if c.opt.Loader == nil {
		return zero, ErrNoLoader
	}

	v, err, _ := c.sf.Do(ctx, k, func() (V, error) {
		// another flight may have filled k between our miss and now
		if v, ok := c.shardFor(k).Peek(k); ok {
			return v, nil
		}
		v, err := c.opt.Loader(ctx, k)
		if err != nil {
			return zero, err
		}
		c.Put(k, v)
		return v, nil
	})
	return v, err
}

func (c *cache[K, V]) Stats() Stats {
	st := Stats{Shards: len(c.shards)}
	for _, s := range c.shards {
		st.Hits += s.hits.Load()
		st.Misses += s.misses.Load()
		st.Evictions += s.evicts.Load()
		st.Len += s.Len()
	}
	return st
}

// Close is a soft close; entries stay resident until Clear or GC.
func (c *cache[K, V]) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		c.log.Debug("cache closed", slog.Int("len", c.Len()))
	}
	return nil
}

// ---- helpers ----

func (c *cache[K, V]) shardFor(k K) *shard[K, V] {
	return c.shards[c.Route(k)]
}
