package pool

import (
	"log/slog"
	"runtime"
)

// DefaultRetention is the default number of idle items a shard keeps.
const DefaultRetention = 64

type options struct {
	name      string
	shards    int
	retention int
	selector  Selector
	reset     any // func(T) T
	discard   any // func(T)
	logger    *slog.Logger
	metrics   MetricsCollector
}

func defaultOptions() options {
	return options{
		name:      "pool",
		shards:    runtime.GOMAXPROCS(0),
		retention: DefaultRetention,
		logger:    slog.New(slog.DiscardHandler),
		metrics:   NoopMetricsCollector{},
	}
}

// Option configures a Pool.
type Option func(*options)

// WithName sets the name used in logs, errors and metrics.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithShards sets the number of shards. Match it to the number of goroutines
// expected to borrow concurrently. Defaults to runtime.GOMAXPROCS(0); values
// below 1 keep the default.
func WithShards(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.shards = n
		}
	}
}

// WithRetention sets the per-shard ceiling of idle items. Returns to a shard at
// the ceiling are dropped. n <= 0 removes the ceiling.
func WithRetention(n int) Option {
	return func(o *options) {
		o.retention = n
	}
}

// WithSelector sets the shard selection policy. Defaults to Affinity.
func WithSelector(s Selector) Option {
	return func(o *options) {
		o.selector = s
	}
}

// WithReset installs a hook applied to every item on its way back to a shard.
// The hook returns the item to retain, which lets it substitute a fresh item
// for one that grew too large.
//
// The hook's type must match the pool's item type; New panics otherwise.
func WithReset[T any](fn func(T) T) Option {
	return func(o *options) {
		o.reset = fn
	}
}

// WithDiscard installs a hook called for every item the pool drops: retention
// overflow, Handle.Discard and Close. Use it to release resources the item
// holds.
//
// The hook's type must match the pool's item type; New panics otherwise.
func WithDiscard[T any](fn func(T)) Option {
	return func(o *options) {
		o.discard = fn
	}
}

// WithLogger sets the structured logger. Defaults to discarding output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m MetricsCollector) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}
