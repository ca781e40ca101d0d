// Command bench runs a synthetic workload against the cache and exposes
// optional pprof and Prometheus endpoints.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/shardmap/cache"
	"github.com/IvanBrykalov/shardmap/internal/config"
	"github.com/IvanBrykalov/shardmap/internal/logging"
	pmet "github.com/IvanBrykalov/shardmap/metrics/prom"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "bench:", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "drive a read/write workload against a sharded cache",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "settings file (.yaml/.yml/.json)"},
			&cli.IntFlag{Name: "shards", Usage: "number of shards (overrides config)"},
			&cli.IntFlag{Name: "shard-cap", Usage: "entries per shard (overrides config)"},
			&cli.StringFlag{Name: "policy", Usage: "eviction policy: lru | fifo (overrides config)"},

			&cli.IntFlag{Name: "workers", Value: 2 * runtime.GOMAXPROCS(0), Usage: "number of worker goroutines"},
			&cli.DurationFlag{Name: "duration", Value: 10 * time.Second, Usage: "benchmark duration"},
			&cli.IntFlag{Name: "reads", Value: 80, Usage: "read percentage [0..100]"},

			&cli.IntFlag{Name: "keys", Value: 1_000_000, Usage: "keyspace size"},
			&cli.Float64Flag{Name: "zipf-s", Value: 1.1, Usage: "Zipf s > 1 (skew)"},
			&cli.Float64Flag{Name: "zipf-v", Value: 1.0, Usage: "Zipf v >= 1"},
			&cli.Int64Flag{Name: "seed", Value: time.Now().UnixNano(), Usage: "random seed"},
			&cli.IntFlag{Name: "preload", Usage: "preload entries (0 = half of total capacity)"},

			&cli.StringFlag{Name: "pprof", Usage: "serve pprof at addr (e.g. :6060); empty = disabled"},
			&cli.StringFlag{Name: "http", Usage: "serve Prometheus metrics at addr (overrides config)"},
		},
		Action: run,
		// main owns the exit code; keep cli from calling os.Exit.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

// workload is the flag snapshot shared by all workers.
type workload struct {
	workers  int
	duration time.Duration
	readPct  int
	keys     uint64
	zipfS    float64
	zipfV    float64
	seed     int64
}

func run(ctx context.Context, cmd *cli.Command) error {
	settings, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	overrideSettings(&settings, cmd)
	if err := settings.Validate(); err != nil {
		return err
	}

	log, closeLog, err := logging.New(settings.Log)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	if addr := cmd.String("pprof"); addr != "" {
		go serve(log, "pprof", addr)
	}

	opt, err := config.CacheOptions[string, string](settings.Cache)
	if err != nil {
		return err
	}
	opt.Logger = log
	if settings.Metrics.Addr != "" {
		opt.Metrics = pmet.New(nil, settings.Metrics.Namespace, "bench", nil)
		http.Handle("/metrics", promhttp.Handler())
		go serve(log, "metrics", settings.Metrics.Addr)
	}

	c, err := cache.New(opt)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	capacity := settings.Cache.Shards * settings.Cache.ShardCapacity
	pl := cmd.Int("preload")
	if pl == 0 {
		pl = capacity / 2
	}
	for i := 0; i < pl; i++ {
		c.Put("k:"+strconv.Itoa(i), "v"+strconv.Itoa(i))
	}

	w := workload{
		workers:  max(cmd.Int("workers"), 1),
		duration: cmd.Duration("duration"),
		readPct:  cmd.Int("reads"),
		keys:     uint64(max(cmd.Int("keys"), 1)),
		zipfS:    cmd.Float64("zipf-s"),
		zipfV:    cmd.Float64("zipf-v"),
		seed:     cmd.Int64("seed"),
	}
	if w.zipfS <= 1 || w.zipfV < 1 {
		return errors.New("zipf-s must be > 1 and zipf-v >= 1")
	}

	log.Info("bench started",
		slog.String("policy", settings.Cache.Policy),
		slog.Int("shards", settings.Cache.Shards),
		slog.Int("capacity", capacity),
		slog.Int("workers", w.workers),
		slog.Duration("duration", w.duration),
	)

	r, err := drive(ctx, c, w)
	if err != nil {
		return err
	}

	hitRate := 0.0
	if r.reads > 0 {
		hitRate = float64(r.hits) / float64(r.reads) * 100
	}
	st := c.Stats()
	fmt.Printf("policy=%s shards=%d shard-cap=%d workers=%d keys=%d dur=%v seed=%d\n",
		settings.Cache.Policy, settings.Cache.Shards, settings.Cache.ShardCapacity,
		w.workers, w.keys, r.elapsed, w.seed)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		r.ops, float64(r.ops)/r.elapsed.Seconds(), r.reads, r.writes)
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%  evictions=%d\n",
		r.hits, r.reads-r.hits, hitRate, st.Evictions)
	fmt.Printf("Len()=%d\n", c.Len())
	return nil
}

func overrideSettings(s *config.Settings, cmd *cli.Command) {
	if cmd.IsSet("shards") {
		s.Cache.Shards = cmd.Int("shards")
	}
	if cmd.IsSet("shard-cap") {
		s.Cache.ShardCapacity = cmd.Int("shard-cap")
	}
	if cmd.IsSet("policy") {
		s.Cache.Policy = cmd.String("policy")
	}
	if cmd.IsSet("http") {
		s.Metrics.Addr = cmd.String("http")
	}
}

type result struct {
	ops, reads, writes, hits uint64
	elapsed                  time.Duration
}

// drive runs w.workers goroutines until w.duration elapses or ctx ends.
func drive(ctx context.Context, c cache.Cache[string, string], w workload) (result, error) {
	var reads, writes, hits atomic.Uint64

	ctx, cancel := context.WithTimeout(ctx, w.duration)
	defer cancel()

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for id := 0; id < w.workers; id++ {
		g.Go(func() error {
			// rand.Rand is not goroutine-safe: one RNG + Zipf per worker.
			rng := rand.New(rand.NewSource(w.seed + int64(id)*9973))
			zipf := rand.NewZipf(rng, w.zipfS, w.zipfV, w.keys-1)
			key := func() string { return "k:" + strconv.FormatUint(zipf.Uint64(), 10) }

			for ctx.Err() == nil {
				if int(rng.Int31n(100)) < w.readPct {
					reads.Add(1)
					if _, ok := c.Get(key()); ok {
						hits.Add(1)
					}
				} else {
					writes.Add(1)
					c.Put(key(), "v"+strconv.Itoa(rng.Int()))
				}
			}
			return nil
		})
	}
	err := g.Wait()

	r := result{
		reads:   reads.Load(),
		writes:  writes.Load(),
		hits:    hits.Load(),
		elapsed: time.Since(start),
	}
	r.ops = r.reads + r.writes
	return r, err
}

func serve(log *slog.Logger, name, addr string) {
	log.Info("serving", slog.String("endpoint", name), slog.String("addr", addr))
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error("server stopped", slog.String("endpoint", name), slog.Any("error", err))
	}
}
