// Package singleflight coalesces concurrent loads of the same key.
package singleflight

import (
	"context"
	"fmt"
	"sync"
)

// Group runs at most one fn per key at a time. Callers arriving while a call
// is in flight wait for its result instead of starting their own.
//
// Concurrency notes:
//   - The first caller for a key becomes the leader and runs fn.
//   - Publishing (val, err) happens-before close(done), so followers reading
//     after <-done observe the final values.
//   - Cancelling ctx unblocks only that follower; the leader's fn keeps running.
//   - A panic in fn is re-raised in the leader and in every follower.
type Group[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*call[V]
}

type call[V any] struct {
	done   chan struct{}
	val    V
	err    error
	panicv any
	dups   int
}

// PanicError wraps a value recovered from a panicking fn.
type PanicError struct{ Value any }

func (p *PanicError) Error() string { return fmt.Sprintf("singleflight: fn panicked: %v", p.Value) }

// Do runs fn once for key and returns its result to all concurrent callers.
// shared reports whether the result was handed to more than one caller.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (v V, err error, shared bool) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*call[V])
	}
	if c, ok := g.m[key]; ok {
		c.dups++
		g.mu.Unlock()

		select {
		case <-c.done:
			if c.panicv != nil {
				panic(&PanicError{Value: c.panicv})
			}
			return c.val, c.err, true
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err(), false
		}
	}

	c := &call[V]{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()

	g.run(c, fn)

	g.mu.Lock()
	delete(g.m, key)
	shared = c.dups > 0
	g.mu.Unlock()

	if c.panicv != nil {
		panic(&PanicError{Value: c.panicv})
	}
	return c.val, c.err, shared
}

// InFlight reports the number of keys with a running call.
func (g *Group[K, V]) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.m)
}

func (g *Group[K, V]) run(c *call[V], fn func() (V, error)) {
	defer func() {
		if r := recover(); r != nil {
			c.panicv = r
		}
		close(c.done)
	}()
	c.val, c.err = fn()
}
