package fifo

import (
	"testing"

	"github.com/IvanBrykalov/shardmap/policy"
)

type testNode struct {
	k   string
	v   int
	seq uint64
}

func (n *testNode) Key() string { return n.k }
func (n *testNode) Seq() uint64 { return n.seq }

type mockHooks struct {
	pushed, moved int
	back          policy.Node[string, int]
	clock         uint64
}

func (h *mockHooks) stamp(n policy.Node[string, int]) {
	if tn, ok := n.(*testNode); ok {
		h.clock++
		tn.seq = h.clock
	}
}

func (h *mockHooks) PushFront(n policy.Node[string, int])   { h.pushed++; h.stamp(n) }
func (h *mockHooks) MoveToFront(n policy.Node[string, int]) { h.moved++; h.stamp(n) }
func (h *mockHooks) Back() policy.Node[string, int]         { return h.back }
func (h *mockHooks) Len() int                               { return 0 }

// Insertion stamps the marker once; reads and overwrites never refresh it.
func TestFIFO_MarkerSetOnlyOnInsert(t *testing.T) {
	t.Parallel()

	h := &mockHooks{}
	p := New[string, int]().New(h)
	n := &testNode{k: "a", v: 1}

	p.OnAdd(n)
	inserted := n.Seq()
	p.OnGet(n)
	p.OnGet(n)
	p.OnUpdate(n)
	p.OnRemove(n)

	if h.pushed != 1 {
		t.Fatalf("PushFront calls = %d, want 1", h.pushed)
	}
	if h.moved != 0 {
		t.Fatalf("FIFO must never move entries, got %d moves", h.moved)
	}
	if inserted == 0 || n.Seq() != inserted {
		t.Fatalf("marker changed after insert: %d -> %d", inserted, n.Seq())
	}
}

func TestFIFO_Victim_IsBack(t *testing.T) {
	t.Parallel()

	first := &testNode{k: "first", seq: 1}
	p := New[string, int]().New(&mockHooks{back: first})
	if v := p.Victim(); v != first || v.Key() != "first" {
		t.Fatal("Victim must be the oldest inserted entry")
	}
}
