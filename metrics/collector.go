package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/hupe1980/arenapool/pool"
	"github.com/hupe1980/arenapool/resource"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrDuplicatePool is returned by AddPool for a name already registered.
var ErrDuplicatePool = errors.New("metrics: duplicate pool name")

// PoolSource is anything that reports pool statistics. *pool.Pool[T]
// implements it for every T.
type PoolSource interface {
	Stats() pool.Stats
}

// ControllerSource reports resource controller statistics.
type ControllerSource interface {
	Stats() resource.Stats
}

// Option configures a Collector.
type Option func(*Collector)

// WithNamespace sets the metric name prefix. Defaults to "arenapool".
func WithNamespace(ns string) Option {
	return func(c *Collector) {
		c.namespace = ns
	}
}

// WithConstLabels attaches fixed labels to every metric.
func WithConstLabels(l prometheus.Labels) Option {
	return func(c *Collector) {
		c.constLabels = l
	}
}

// Collector is a prometheus.Collector over a set of pools and an optional
// resource controller.
type Collector struct {
	namespace   string
	constLabels prometheus.Labels

	mu         sync.RWMutex
	pools      []PoolSource
	names      map[string]struct{}
	controller ControllerSource

	idle         *prometheus.Desc
	inFlight     *prometheus.Desc
	manufactured *prometheus.Desc
	failures     *prometheus.Desc
	discarded    *prometheus.Desc
	acquires     *prometheus.Desc
	releases     *prometheus.Desc

	memUsed     *prometheus.Desc
	memPeak     *prometheus.Desc
	memLimit    *prometheus.Desc
	memDenied   *prometheus.Desc
	rateLimited *prometheus.Desc
}

// NewCollector creates an empty Collector.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		namespace: "arenapool",
		names:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	desc := func(subsystem, name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(c.namespace, subsystem, name),
			help, labels, c.constLabels,
		)
	}

	c.idle = desc("pool", "idle_items", "Idle items per shard.", "pool", "shard")
	c.inFlight = desc("pool", "in_flight_items", "Items currently borrowed.", "pool")
	c.manufactured = desc("pool", "manufactured_total", "Items created by the factory.", "pool")
	c.failures = desc("pool", "manufacture_failures_total", "Factory calls that failed.", "pool")
	c.discarded = desc("pool", "discarded_total", "Items that left the pool for good.", "pool")
	c.acquires = desc("pool", "acquires_total", "Acquires by result.", "pool", "result")
	c.releases = desc("pool", "releases_total", "Returns by result.", "pool", "result")

	c.memUsed = desc("memory", "used_bytes", "Bytes reserved by pooled items.")
	c.memPeak = desc("memory", "peak_bytes", "Highest reservation seen.")
	c.memLimit = desc("memory", "limit_bytes", "Reservation limit, 0 if unlimited.")
	c.memDenied = desc("memory", "denied_total", "Reservations refused at the limit.")
	c.rateLimited = desc("manufacture", "rate_limited_total", "Manufactures refused by the rate limit.")

	return c
}

// AddPool registers a pool. Pool names must be unique within a Collector.
func (c *Collector) AddPool(p PoolSource) error {
	name := p.Stats().Name

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.names[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePool, name)
	}
	c.names[name] = struct{}{}
	c.pools = append(c.pools, p)
	return nil
}

// SetController sets the controller whose budget is exported.
func (c *Collector) SetController(ctrl ControllerSource) {
	c.mu.Lock()
	c.controller = ctrl
	c.mu.Unlock()
}

// Describe implements the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.idle
	ch <- c.inFlight
	ch <- c.manufactured
	ch <- c.failures
	ch <- c.discarded
	ch <- c.acquires
	ch <- c.releases
	ch <- c.memUsed
	ch <- c.memPeak
	ch <- c.memLimit
	ch <- c.memDenied
	ch <- c.rateLimited
}

// Collect implements the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	pools := c.pools
	ctrl := c.controller
	c.mu.RUnlock()

	for _, p := range pools {
		c.collectPool(ch, p.Stats())
	}
	if ctrl != nil {
		c.collectController(ch, ctrl.Stats())
	}
}

func (c *Collector) collectPool(ch chan<- prometheus.Metric, st pool.Stats) {
	for i, ss := range st.PerShard {
		ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue,
			float64(ss.Idle), st.Name, strconv.Itoa(i))
	}

	ch <- prometheus.MustNewConstMetric(c.inFlight, prometheus.GaugeValue, float64(st.InFlight), st.Name)
	ch <- prometheus.MustNewConstMetric(c.manufactured, prometheus.CounterValue, float64(st.Manufactured), st.Name)
	ch <- prometheus.MustNewConstMetric(c.failures, prometheus.CounterValue, float64(st.ManufactureFailures), st.Name)
	ch <- prometheus.MustNewConstMetric(c.discarded, prometheus.CounterValue, float64(st.Discarded), st.Name)

	ch <- prometheus.MustNewConstMetric(c.acquires, prometheus.CounterValue, float64(st.Hits), st.Name, "hit")
	ch <- prometheus.MustNewConstMetric(c.acquires, prometheus.CounterValue, float64(st.Misses), st.Name, "miss")
	ch <- prometheus.MustNewConstMetric(c.releases, prometheus.CounterValue, float64(st.Retained), st.Name, "retained")
	ch <- prometheus.MustNewConstMetric(c.releases, prometheus.CounterValue, float64(st.Dropped), st.Name, "dropped")
}

func (c *Collector) collectController(ch chan<- prometheus.Metric, st resource.Stats) {
	ch <- prometheus.MustNewConstMetric(c.memUsed, prometheus.GaugeValue, float64(st.MemoryUsed))
	ch <- prometheus.MustNewConstMetric(c.memPeak, prometheus.GaugeValue, float64(st.MemoryPeak))
	ch <- prometheus.MustNewConstMetric(c.memLimit, prometheus.GaugeValue, float64(st.MemoryLimit))
	ch <- prometheus.MustNewConstMetric(c.memDenied, prometheus.CounterValue, float64(st.MemoryDenied))
	ch <- prometheus.MustNewConstMetric(c.rateLimited, prometheus.CounterValue, float64(st.RateLimited))
}
