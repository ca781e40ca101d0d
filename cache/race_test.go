package cache

import (
	"math/rand"
	"runtime"
	"strconv"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/shardmap/policy"
)

// N workers each run M put/get cycles on a disjoint key set. With capacity
// to spare nothing is lost, and the final length is exact.
func TestRace_DisjointWriters(t *testing.T) {
	const workers, perWorker = 16, 500

	c := mustNew(t, Options[string, int]{Shards: 16, ShardCapacity: workers * perWorker})

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := 0; i < perWorker; i++ {
				k := "w" + strconv.Itoa(w) + ":" + strconv.Itoa(i)
				c.Put(k, i)
				if v, ok := c.Get(k); !ok || v != i {
					t.Errorf("lost update for %s: %v %v", k, v, ok)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if got := c.Len(); got != workers*perWorker {
		t.Fatalf("Len = %d, want %d", got, workers*perWorker)
	}
	for _, s := range c.shards {
		checkShard(t, s)
	}
}

// Under pressure the length is bounded by capacity and evictions account
// for every missing key.
func TestRace_DisjointWritersWithEviction(t *testing.T) {
	const workers, perWorker = 8, 2_000

	c := mustNew(t, Options[int, int]{Shards: 8, ShardCapacity: 100, Policy: policy.FIFO})

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				c.Put(base+i, i)
				c.Get(base + i)
			}
		}(w * perWorker)
	}
	wg.Wait()

	st := c.Stats()
	if st.Len > 800 {
		t.Fatalf("Len %d exceeds capacity", st.Len)
	}
	if uint64(st.Len)+st.Evictions != workers*perWorker {
		t.Fatalf("len %d + evictions %d != inserts %d", st.Len, st.Evictions, workers*perWorker)
	}
	for _, s := range c.shards {
		checkShard(t, s)
	}
}

// A mixed workload of concurrent Put/Get/Remove/Clear on random keys.
// Should pass under `-race` without detector reports.
func TestRace_Mixed(t *testing.T) {
	c := mustNew(t, Options[string, []byte]{Shards: 32, ShardCapacity: 256})

	workers := 4 * runtime.GOMAXPROCS(0)
	keyspace := 50_000
	deadline := time.Now().Add(500 * time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)*9973))
			for time.Now().Before(deadline) {
				k := "k:" + strconv.Itoa(r.Intn(keyspace))
				switch n := r.Intn(1000); {
				case n == 0: // ~0.1% Clear
					c.Clear()
				case n < 50: // ~5% Remove
					c.Remove(k)
				case n < 150: // ~10% Put
					c.Put(k, []byte("x"))
				case n < 160:
					c.Len()
				default: // Get
					c.Get(k)
				}
			}
		}(w)
	}
	wg.Wait()

	for _, s := range c.shards {
		checkShard(t, s)
	}
}

// Concurrent Clear calls interleaved with writers must not deadlock.
func TestRace_ClearVsClear(t *testing.T) {
	c := mustNew(t, Options[int, int]{Shards: 8, ShardCapacity: 32})

	done := make(chan struct{})
	go func() {
		defer close(done)
		var wg sync.WaitGroup
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < 200; i++ {
					if w%2 == 0 {
						c.Clear()
					} else {
						c.Put(w*1000+i, i)
					}
				}
			}(w)
		}
		wg.Wait()
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("concurrent Clear deadlocked")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("Len after final Clear = %d", c.Len())
	}
}
