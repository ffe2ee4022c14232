package pool

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives pool events. Implementations must be safe for
// concurrent use; the calls sit on the acquire and release paths.
type MetricsCollector interface {
	// RecordAcquire is called for every acquire that reached a shard.
	// hit is false when the shard was empty and the factory was invoked.
	RecordAcquire(shard int, hit bool)

	// RecordManufacture is called after every factory call.
	RecordManufacture(duration time.Duration, err error)

	// RecordRelease is called when a borrow ends. retained is false when the
	// item was dropped instead of returned to its shard.
	RecordRelease(shard int, retained bool)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAcquire(int, bool)                {}
func (NoopMetricsCollector) RecordManufacture(time.Duration, error) {}
func (NoopMetricsCollector) RecordRelease(int, bool)                {}

// BasicMetricsCollector keeps in-memory counters.
type BasicMetricsCollector struct {
	AcquireHits       atomic.Int64
	AcquireMisses     atomic.Int64
	ManufactureCount  atomic.Int64
	ManufactureErrors atomic.Int64
	ManufactureNanos  atomic.Int64
	ReleasesRetained  atomic.Int64
	ReleasesDropped   atomic.Int64
}

// RecordAcquire implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAcquire(_ int, hit bool) {
	if hit {
		b.AcquireHits.Add(1)
	} else {
		b.AcquireMisses.Add(1)
	}
}

// RecordManufacture implements MetricsCollector.
func (b *BasicMetricsCollector) RecordManufacture(d time.Duration, err error) {
	b.ManufactureCount.Add(1)
	b.ManufactureNanos.Add(d.Nanoseconds())
	if err != nil {
		b.ManufactureErrors.Add(1)
	}
}

// RecordRelease implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRelease(_ int, retained bool) {
	if retained {
		b.ReleasesRetained.Add(1)
	} else {
		b.ReleasesDropped.Add(1)
	}
}

// AvgManufactureLatency returns the mean factory latency.
func (b *BasicMetricsCollector) AvgManufactureLatency() time.Duration {
	n := b.ManufactureCount.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(b.ManufactureNanos.Load() / n)
}
