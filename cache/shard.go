package cache

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/IvanBrykalov/shardmap/internal/util"
	"github.com/IvanBrykalov/shardmap/policy"
)

// shard is an independent partition of the cache with its own lock, map,
// and an intrusive doubly linked list ordered by marker (head=newest,
// tail=oldest).
type shard[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu    sync.Mutex
	m     map[K]*node[K, V]
	head  *node[K, V] // newest marker
	tail  *node[K, V] // oldest marker
	cap   int         // per-shard entry capacity
	clock uint64      // last marker handed out

	pol policy.ShardPolicy[K, V]

	// immutable after construction
	idx     int
	onEvict func(K, V)
	metrics Metrics
	log     *slog.Logger

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_      util.CacheLinePad
	hits   util.PaddedCounter
	misses util.PaddedCounter
	evicts util.PaddedCounter
}

func newShard[K comparable, V any](idx int, pol policy.Policy[K, V], opt *Options[K, V]) *shard[K, V] {
	s := &shard[K, V]{
		m:       make(map[K]*node[K, V], opt.ShardCapacity),
		cap:     opt.ShardCapacity,
		idx:     idx,
		onEvict: opt.OnEvict,
		metrics: opt.Metrics,
		log:     opt.Logger,
	}
	s.pol = pol.New(shardHooks[K, V]{s: s})
	return s
}

// Get returns a copy of the value and lets the policy refresh the entry.
func (s *shard[K, V]) Get(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.m[k]
	if !ok {
		s.misses.Add(1)
		s.metrics.Miss()
		var zero V
		return zero, false
	}
	s.pol.OnGet(n)
	s.hits.Add(1)
	s.metrics.Hit()
	return n.val, true
}

// Peek returns a copy of the value without policy or counter side effects.
func (s *shard[K, V]) Peek(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.m[k]; ok {
		return n.val, true
	}
	var zero V
	return zero, false
}

// Put overwrites an existing entry in place or inserts a new one.
func (s *shard[K, V]) Put(k K, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.m[k]; ok {
		n.val = v
		s.pol.OnUpdate(n)
		return
	}
	s.insertLocked(k, v)
}

// Add inserts only if k is absent. Returns false if the key already exists.
func (s *shard[K, V]) Add(k K, v V) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.m[k]; exists {
		return false
	}
	s.insertLocked(k, v)
	return true
}

// Remove deletes an entry by key. Returns true if the entry existed.
func (s *shard[K, V]) Remove(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.m[k]
	if !ok {
		return false
	}
	s.dropLocked(n)
	// explicit removal is not an eviction
	return true
}

// Len returns the number of resident entries in this shard.
func (s *shard[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// -------------------- internals (mu held) --------------------

// insertLocked makes room if the shard is full, then admits a new node.
func (s *shard[K, V]) insertLocked(k K, v V) {
	if len(s.m) >= s.cap {
		s.evictOneLocked()
	}
	n := &node[K, V]{key: k, val: v}
	s.m[k] = n
	s.pol.OnAdd(n)
	s.metrics.Resize(1)
}

// evictOneLocked removes the policy's victim. A full shard without a victim
// means the list and the map disagree; that is a bug, not a user error.
func (s *shard[K, V]) evictOneLocked() {
	victim := s.pol.Victim()
	if victim == nil {
		err := fmt.Errorf("%w: shard %d holds %d entries but its policy offered no victim",
			ErrInvariant, s.idx, len(s.m))
		s.log.Error("eviction failed", slog.Int("shard", s.idx), slog.Any("error", err))
		panic(err)
	}
	n := victim.(*node[K, V])
	s.dropLocked(n)
	s.evicts.Add(1)
	s.metrics.Evict()
	if cb := s.onEvict; cb != nil {
		cb(n.key, n.val)
	}
}

// dropLocked removes n from the policy, the list and the map.
func (s *shard[K, V]) dropLocked(n *node[K, V]) {
	s.pol.OnRemove(n)
	s.unlink(n)
	delete(s.m, n.key)
	s.metrics.Resize(-1)
}

// clearLocked empties the shard and returns the number of removed entries.
func (s *shard[K, V]) clearLocked() int {
	removed := len(s.m)
	n := s.head
	clear(s.m)
	s.head, s.tail = nil, nil
	// the shard is already empty if a hook below panics
	for n != nil {
		next := n.next
		n.prev, n.next = nil, nil
		s.pol.OnRemove(n)
		n = next
	}
	if removed > 0 {
		s.metrics.Resize(-removed)
	}
	return removed
}

// stamp hands out the next marker. Markers never repeat within a shard.
func (s *shard[K, V]) stamp(n *node[K, V]) {
	s.clock++
	n.seq = s.clock
}

// pushFront links n at the head with a fresh marker in O(1).
func (s *shard[K, V]) pushFront(n *node[K, V]) {
	s.stamp(n)
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
}

// moveToFront restamps n and relinks it at the head in O(1).
func (s *shard[K, V]) moveToFront(n *node[K, V]) {
	s.stamp(n)
	if n == s.head {
		return
	}
	s.unlink(n)
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
}

// unlink detaches n from the list in O(1).
func (s *shard[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if s.head == n {
		s.head = n.next
	}
	if s.tail == n {
		s.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

// -------------------- policy hooks --------------------

// shardHooks adapts the shard's list operations to policy.Hooks.
type shardHooks[K comparable, V any] struct{ s *shard[K, V] }

func (h shardHooks[K, V]) PushFront(x policy.Node[K, V])   { h.s.pushFront(x.(*node[K, V])) }
func (h shardHooks[K, V]) MoveToFront(x policy.Node[K, V]) { h.s.moveToFront(x.(*node[K, V])) }
func (h shardHooks[K, V]) Len() int                        { return len(h.s.m) }

// Back returns the oldest node. The nil check keeps a nil *node from
// turning into a non-nil interface value.
func (h shardHooks[K, V]) Back() policy.Node[K, V] {
	if h.s.tail == nil {
		return nil
	}
	return h.s.tail
}
