package cache

// node is an intrusive doubly linked list element owned by a shard.
// The list is ordered by seq: head holds the newest marker, tail the oldest.
type node[K comparable, V any] struct {
	key K
	val V

	prev *node[K, V]
	next *node[K, V]

	// Recency (LRU) or insertion (FIFO) marker, drawn from the shard clock.
	seq uint64
}

// Key returns the node key (part of policy.Node interface).
func (n *node[K, V]) Key() K { return n.key }

// Seq returns the node's marker (part of policy.Node interface).
func (n *node[K, V]) Seq() uint64 { return n.seq }
