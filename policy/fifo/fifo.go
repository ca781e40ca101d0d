// Package fifo implements first-in-first-out eviction: entries leave in
// insertion order regardless of how often they are read or overwritten.
package fifo

import "github.com/IvanBrykalov/shardmap/policy"

type fifo[K comparable, V any] struct {
	h policy.Hooks[K, V]
}

type fifoPolicy[K comparable, V any] struct{}

// New returns a Policy factory that constructs per-shard FIFO instances.
func New[K comparable, V any]() policy.Policy[K, V] { return fifoPolicy[K, V]{} }

func (fifoPolicy[K, V]) New(h policy.Hooks[K, V]) policy.ShardPolicy[K, V] {
	return &fifo[K, V]{h: h}
}

// OnAdd stamps the insertion marker; it is never refreshed afterwards.
func (p *fifo[K, V]) OnAdd(n policy.Node[K, V]) { p.h.PushFront(n) }

func (p *fifo[K, V]) OnGet(policy.Node[K, V])    {}
func (p *fifo[K, V]) OnUpdate(policy.Node[K, V]) {}
func (p *fifo[K, V]) OnRemove(policy.Node[K, V]) {}

// Victim is the entry inserted first.
func (p *fifo[K, V]) Victim() policy.Node[K, V] { return p.h.Back() }
