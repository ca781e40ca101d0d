package cache

import (
	"strings"
	"testing"

	"github.com/IvanBrykalov/shardmap/policy"
)

// Fuzz basic Put/Get/Remove semantics under arbitrary string inputs.
func FuzzCache_PutGetRemove(f *testing.F) {
	f.Add("", "", uint8(1))
	f.Add("a", "1", uint8(4))
	f.Add("αβγ", "δ", uint8(3))
	f.Add("emoji🙂", "🙂🙂", uint8(16))
	f.Add("long", strings.Repeat("x", 1024), uint8(255))

	f.Fuzz(func(t *testing.T, k, v string, shards uint8) {
		const limit = 1 << 12
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}

		for _, kind := range []policy.Kind{policy.LRU, policy.FIFO} {
			c := mustNew(t, Options[string, string]{
				Shards:        int(shards%16) + 1,
				ShardCapacity: 2,
				Policy:        kind,
			})

			c.Put(k, v)
			if got, ok := c.Get(k); !ok || got != v {
				t.Fatalf("after Put/Get: want %q, got %q ok=%v", v, got, ok)
			}
			if c.Add(k, "other") {
				t.Fatalf("Add duplicate returned true")
			}
			if !c.Remove(k) {
				t.Fatalf("Remove must return true")
			}
			if _, ok := c.Get(k); ok {
				t.Fatalf("key must be absent after Remove")
			}
			if c.Remove(k) {
				t.Fatalf("second Remove must return false")
			}
			if !c.Add(k, v) {
				t.Fatalf("Add after Remove must return true")
			}
		}
	})
}
