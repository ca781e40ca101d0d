package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IvanBrykalov/shardmap/internal/util"
	"github.com/IvanBrykalov/shardmap/policy"
)

// Options configures a cache. Shards and ShardCapacity are required; the
// remaining fields have defaults applied in New():
//   - empty Policy => policy.LRU
//   - nil Hash     => xxhash for strings/ints, maphash for other keys
//   - nil Metrics  => NoopMetrics
//   - nil Logger   => discard
type Options[K comparable, V any] struct {
	// Shards is the fixed number of independently locked partitions (>= 1).
	// Powers of two route with a mask; other counts use modulo.
	Shards int

	// ShardCapacity is the per-shard entry limit (>= 1). Total capacity is
	// Shards*ShardCapacity, but it is enforced per shard: a hot shard may
	// evict while others still have room.
	ShardCapacity int

	// Policy selects the eviction policy (lru or fifo).
	Policy policy.Kind

	// Hash maps a key to a 64-bit value for shard routing.
	Hash func(K) uint64

	// Loader fetches a value on cache miss. Used by GetOrLoad.
	Loader func(ctx context.Context, k K) (V, error)

	// OnEvict is called for every capacity eviction, under the shard lock.
	// It must not call back into the cache.
	OnEvict func(k K, v V)

	Metrics Metrics
	Logger  *slog.Logger
}

// AutoShards returns a shard count suited to the current GOMAXPROCS
// (2×CPU rounded up to a power of two, at most 256).
func AutoShards() int { return util.ReasonableShardCount() }

func (o *Options[K, V]) validate() error {
	if o.Shards <= 0 {
		return fmt.Errorf("%w: shard count must be >= 1, got %d", ErrConfig, o.Shards)
	}
	if o.ShardCapacity <= 0 {
		return fmt.Errorf("%w: shard capacity must be >= 1, got %d", ErrConfig, o.ShardCapacity)
	}
	if o.Policy != "" && !o.Policy.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrConfig, policy.ErrUnknownKind, string(o.Policy))
	}
	return nil
}

func (o *Options[K, V]) applyDefaults() {
	if o.Policy == "" {
		o.Policy = policy.LRU
	}
	if o.Hash == nil {
		o.Hash = util.NewHasher[K]()
	}
	if o.Metrics == nil {
		o.Metrics = NoopMetrics{}
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
}
