package cache

// Metrics exposes cache-level observability hooks.
// Implementations must be safe for concurrent use; hooks are called under
// shard locks and should stay cheap.
type Metrics interface {
	Hit()
	Miss()
	// Evict is called once per entry removed to make room for an insert.
	Evict()
	// Resize reports a change in the number of resident entries.
	Resize(delta int)
}

// NoopMetrics is the default Metrics implementation; it does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Hit()       {}
func (NoopMetrics) Miss()      {}
func (NoopMetrics) Evict()     {}
func (NoopMetrics) Resize(int) {}

var _ Metrics = NoopMetrics{}
