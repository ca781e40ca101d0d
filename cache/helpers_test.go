package cache

import "testing"

func mustNew[K comparable, V any](t testing.TB, opt Options[K, V]) *cache[K, V] {
	t.Helper()
	c, err := New(opt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c.(*cache[K, V])
}

// checkShard verifies that the list and the map agree and that markers
// strictly decrease from head to tail.
func checkShard[K comparable, V any](t testing.TB, s *shard[K, V]) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.m) > s.cap {
		t.Fatalf("shard %d over capacity: %d > %d", s.idx, len(s.m), s.cap)
	}
	count := 0
	var prev *node[K, V]
	for n := s.head; n != nil; n = n.next {
		if n.prev != prev {
			t.Fatalf("shard %d: broken back link at %v", s.idx, n.key)
		}
		if prev != nil && prev.seq <= n.seq {
			t.Fatalf("shard %d: markers not decreasing: %d then %d", s.idx, prev.seq, n.seq)
		}
		if s.m[n.key] != n {
			t.Fatalf("shard %d: listed key %v missing from map", s.idx, n.key)
		}
		prev = n
		count++
	}
	if prev != s.tail {
		t.Fatalf("shard %d: tail mismatch", s.idx)
	}
	if count != len(s.m) {
		t.Fatalf("shard %d: list has %d nodes, map has %d", s.idx, count, len(s.m))
	}
}

// keysOldestFirst lists a shard's keys from the oldest marker to the newest.
func keysOldestFirst[K comparable, V any](s *shard[K, V]) []K {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []K
	for n := s.tail; n != nil; n = n.prev {
		out = append(out, n.key)
	}
	return out
}
