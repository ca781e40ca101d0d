// Package policy defines the contract between a shard and its eviction policy.
//
// A shard keeps its entries on an intrusive list ordered by a per-shard
// marker: the head carries the newest marker, the tail the oldest. Policies
// never touch the shard's map; they decide when an entry's marker is
// refreshed and which entry leaves when the shard is full.
package policy

import (
	"errors"
	"fmt"
	"strings"
)

// Kind names a built-in eviction policy.
type Kind string

const (
	// LRU evicts the least recently used entry. Get hits and Put both
	// refresh an entry's marker.
	LRU Kind = "lru"
	// FIFO evicts the oldest inserted entry. The marker is set once at
	// insertion and never refreshed.
	FIFO Kind = "fifo"
)

// ErrUnknownKind is returned by ParseKind for names other than lru/fifo.
var ErrUnknownKind = errors.New("policy: unknown kind")

// ParseKind parses a policy name (case-insensitive). Empty selects LRU.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return LRU, nil
	case LRU, FIFO:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Valid reports whether k is a built-in kind.
func (k Kind) Valid() bool { return k == LRU || k == FIFO }

func (k Kind) String() string { return string(k) }

// Node is the view of a cache entry a policy works with.
type Node[K comparable, V any] interface {
	Key() K
	// Seq returns the entry's recency/insertion marker. Markers are unique
	// within a shard and grow monotonically.
	Seq() uint64
}

// Hooks expose the shard's O(1) list operations.
//
// Concurrency: all hook calls happen under the shard lock.
// Hooks manage only the list; the shard owns the key->node map.
type Hooks[K comparable, V any] interface {
	// PushFront links a new node as the newest entry and stamps a fresh marker.
	PushFront(Node[K, V])
	// MoveToFront restamps an existing node with a fresh marker.
	MoveToFront(Node[K, V])
	// Back returns the node with the oldest marker (nil if empty).
	Back() Node[K, V]
	// Len returns the number of resident nodes in the shard.
	Len() int
}

// ShardPolicy is a per-shard policy instance bound to shard hooks.
// All methods are invoked under the shard lock.
//
// Semantics:
//   - OnAdd admits a node that was just inserted into the shard's map.
//   - OnGet/OnUpdate run on a read hit and on an overwrite respectively.
//   - OnRemove is a notification; the shard unlinks the node itself.
//   - Victim names the entry to evict, or nil only when the shard is empty.
type ShardPolicy[K comparable, V any] interface {
	OnAdd(Node[K, V])
	OnGet(Node[K, V])
	OnUpdate(Node[K, V])
	OnRemove(Node[K, V])
	Victim() Node[K, V]
}

// Policy is a factory that creates shard-local policy instances.
type Policy[K comparable, V any] interface {
	New(Hooks[K, V]) ShardPolicy[K, V]
}
