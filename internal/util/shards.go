package util

import "runtime"

// maxAutoShards bounds the heuristic in ReasonableShardCount.
const maxAutoShards = 256

// ReasonableShardCount picks a practical default shard count based on CPU
// parallelism: nextPow2(2*GOMAXPROCS), clamped to [1..256].
func ReasonableShardCount() int {
	p := runtime.GOMAXPROCS(0)
	if p < 1 {
		p = 1
	}
	n := int(NextPow2(uint64(p * 2)))
	if n > maxAutoShards {
		n = maxAutoShards
	}
	return n
}

// ShardIndex maps a 64-bit hash to a shard index in [0, shards).
// Power-of-two shard counts take the mask path; any other count uses modulo,
// so callers are free to pick arbitrary counts.
func ShardIndex(hash uint64, shards int) int {
	if shards <= 1 {
		return 0
	}
	if IsPowerOfTwo(uint64(shards)) {
		return int(hash & uint64(shards-1))
	}
	return int(hash % uint64(shards))
}
