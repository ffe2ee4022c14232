package arenapool

import (
	"runtime"

	"github.com/hupe1980/arenapool/pool"
	"github.com/hupe1980/arenapool/resource"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultBufferSize is the capacity of a pooled byte buffer.
	DefaultBufferSize = 64 << 10
	// DefaultRowCapacity is the capacity of a pooled row-index buffer.
	DefaultRowCapacity = 4096
	// DefaultVisitedSize is the initial length of a pooled visited bitset.
	DefaultVisitedSize = 1 << 16
)

type options struct {
	name        string
	shards      int
	retention   int
	selector    pool.Selector
	logger      *Logger
	resource    resource.Config
	controller  *resource.Controller
	poolMetrics pool.MetricsCollector
	registerer  prometheus.Registerer
	bufferSize  int
	rowCapacity int
	visitedSize uint
}

func defaultOptions() options {
	return options{
		name:        "session",
		shards:      runtime.GOMAXPROCS(0),
		retention:   pool.DefaultRetention,
		logger:      NoopLogger(),
		bufferSize:  DefaultBufferSize,
		rowCapacity: DefaultRowCapacity,
		visitedSize: DefaultVisitedSize,
	}
}

// Option configures a Session.
type Option func(*options)

// WithName names the session in logs and metric labels.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithShards sets the shard count of every session pool. Match it to the
// number of workers of the operation. Defaults to runtime.GOMAXPROCS(0).
func WithShards(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.shards = n
		}
	}
}

// WithRetention sets the per-shard idle ceiling of every session pool.
// Defaults to pool.DefaultRetention; n <= 0 removes the ceiling.
func WithRetention(n int) Option {
	return func(o *options) {
		o.retention = n
	}
}

// WithSelector sets the shard selection policy. Defaults to pool.Affinity.
func WithSelector(s pool.Selector) Option {
	return func(o *options) {
		o.selector = s
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithResourceConfig creates the session's own resource controller.
func WithResourceConfig(cfg resource.Config) Option {
	return func(o *options) {
		o.resource = cfg
		o.controller = nil
	}
}

// WithController shares an existing controller, for example across the
// sessions of one process.
func WithController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

// WithPoolMetrics installs a collector on every session pool.
func WithPoolMetrics(m pool.MetricsCollector) Option {
	return func(o *options) {
		o.poolMetrics = m
	}
}

// WithRegisterer registers the session's Prometheus collector with r.
// It is unregistered on Close.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = r
	}
}

// WithBufferSize sets the capacity of pooled byte buffers.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// WithRowCapacity sets the capacity of pooled row-index buffers.
func WithRowCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.rowCapacity = n
		}
	}
}

// WithVisitedSize sets the initial length of pooled visited bitsets.
func WithVisitedSize(n uint) Option {
	return func(o *options) {
		if n > 0 {
			o.visitedSize = n
		}
	}
}
