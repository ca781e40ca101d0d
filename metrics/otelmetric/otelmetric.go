// Package otelmetric exports cache metrics through an OpenTelemetry Meter.
package otelmetric

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	"github.com/IvanBrykalov/shardmap/cache"
)

const instrumentationName = "github.com/IvanBrykalov/shardmap"

// Adapter implements cache.Metrics on top of OpenTelemetry instruments.
// Hooks run under shard locks without a request context, so measurements
// use context.Background and a pre-built attribute option.
type Adapter struct {
	hits    metric.Int64Counter
	misses  metric.Int64Counter
	evicts  metric.Int64Counter
	entries metric.Int64UpDownCounter
	add     []metric.AddOption
}

// Option configures an Adapter.
type Option func(*config)

type config struct {
	prefix string
}

// WithPrefix sets the instrument name prefix (default "cache").
func WithPrefix(p string) Option {
	return func(c *config) {
		if p != "" {
			c.prefix = p
		}
	}
}

// New creates the adapter's instruments on a Meter from mp. attrs, if
// non-nil (e.g. metric.WithAttributes(...)), is attached to every measurement.
func New(mp metric.MeterProvider, attrs metric.MeasurementOption, opts ...Option) (*Adapter, error) {
	cfg := &config{prefix: "cache"}
	for _, o := range opts {
		o(cfg)
	}
	m := mp.Meter(instrumentationName)

	a := &Adapter{}
	if attrs != nil {
		a.add = []metric.AddOption{attrs}
	}
	var err error
	if a.hits, err = m.Int64Counter(cfg.prefix+".hits", metric.WithDescription("Cache hits")); err != nil {
		return nil, fmt.Errorf("otelmetric: hits counter: %w", err)
	}
	if a.misses, err = m.Int64Counter(cfg.prefix+".misses", metric.WithDescription("Cache misses")); err != nil {
		return nil, fmt.Errorf("otelmetric: misses counter: %w", err)
	}
	if a.evicts, err = m.Int64Counter(cfg.prefix+".evictions",
		metric.WithDescription("Entries evicted to respect shard capacity")); err != nil {
		return nil, fmt.Errorf("otelmetric: evictions counter: %w", err)
	}
	if a.entries, err = m.Int64UpDownCounter(cfg.prefix+".entries",
		metric.WithDescription("Number of resident entries")); err != nil {
		return nil, fmt.Errorf("otelmetric: entries counter: %w", err)
	}
	return a, nil
}

func (a *Adapter) Hit()   { a.hits.Add(context.Background(), 1, a.add...) }
func (a *Adapter) Miss()  { a.misses.Add(context.Background(), 1, a.add...) }
func (a *Adapter) Evict() { a.evicts.Add(context.Background(), 1, a.add...) }

func (a *Adapter) Resize(delta int) {
	a.entries.Add(context.Background(), int64(delta), a.add...)
}

var _ cache.Metrics = (*Adapter)(nil)
