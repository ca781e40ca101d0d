// Package prom exports cache metrics to Prometheus.
package prom

import (
	"github.com/IvanBrykalov/shardmap/cache"
	"github.com/prometheus/client_golang/prometheus"
)

// Adapter implements cache.Metrics with Prometheus counters and a gauge.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits    prometheus.Counter
	misses  prometheus.Counter
	evicts  prometheus.Counter
	entries prometheus.Gauge
}

// New constructs and registers a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	opts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		}
	}
	a := &Adapter{
		hits:   prometheus.NewCounter(opts("hits_total", "Cache hits")),
		misses: prometheus.NewCounter(opts("misses_total", "Cache misses")),
		evicts: prometheus.NewCounter(opts("evictions_total", "Entries evicted to respect shard capacity")),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "entries",
			Help:        "Number of resident entries",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.entries)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter.
func (a *Adapter) Evict() { a.evicts.Inc() }

// Resize moves the entries gauge by delta.
func (a *Adapter) Resize(delta int) { a.entries.Add(float64(delta)) }

var _ cache.Metrics = (*Adapter)(nil)
