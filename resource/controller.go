package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

var (
	// ErrMemoryLimitExceeded is returned when a reservation would exceed the
	// memory limit.
	ErrMemoryLimitExceeded = errors.New("resource: memory limit exceeded")
	// ErrRateLimited is returned when the manufacture rate is exhausted.
	ErrRateLimited = errors.New("resource: manufacture rate limited")
)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for reserved memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxBackgroundWorkers is the maximum number of concurrent prewarm jobs.
	// If 0, defaults to 1.
	MaxBackgroundWorkers int64

	// ManufacturePerSec bounds how many items may be manufactured per second.
	// If 0, unlimited.
	ManufacturePerSec float64

	// ManufactureBurst is the token bucket size. If 0, it defaults to
	// ManufacturePerSec rounded up.
	ManufactureBurst int
}

// Controller manages memory, background slots and manufacture rate.
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64
	memPeak atomic.Int64
	denied  atomic.Int64

	// Concurrency
	bgSem *semaphore.Weighted

	// Manufacture
	limiter *rate.Limiter // nil if unlimited
	limited atomic.Int64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxBackgroundWorkers <= 0 {
		cfg.MaxBackgroundWorkers = 1
	}

	c := &Controller{
		cfg:   cfg,
		bgSem: semaphore.NewWeighted(cfg.MaxBackgroundWorkers),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.ManufacturePerSec > 0 {
		burst := cfg.ManufactureBurst
		if burst <= 0 {
			burst = max(1, int(cfg.ManufacturePerSec+0.999))
		}
		c.cfg.ManufactureBurst = burst
		c.limiter = rate.NewLimiter(rate.Limit(cfg.ManufacturePerSec), burst)
	}

	return c
}

// AcquireMemory reserves bytes without blocking.
// Returns ErrMemoryLimitExceeded if the limit would be exceeded.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		c.denied.Add(1)
		return fmt.Errorf("%w: need %d bytes, %d of %d in use",
			ErrMemoryLimitExceeded, bytes, c.memUsed.Load(), c.cfg.MemoryLimitBytes)
	}

	used := c.memUsed.Add(bytes)
	for {
		peak := c.memPeak.Load()
		if used <= peak || c.memPeak.CompareAndSwap(peak, used) {
			break
		}
	}
	return nil
}

// ReleaseMemory returns bytes reserved by AcquireMemory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AcquireBackground reserves a background slot.
// Blocks if all slots are busy.
func (c *Controller) AcquireBackground(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.bgSem.Acquire(ctx, 1)
}

// TryAcquireBackground reserves a background slot without blocking.
func (c *Controller) TryAcquireBackground() bool {
	if c == nil {
		return true
	}
	return c.bgSem.TryAcquire(1)
}

// ReleaseBackground releases a background slot.
func (c *Controller) ReleaseBackground() {
	if c == nil {
		return
	}
	c.bgSem.Release(1)
}

// AllowManufacture takes one token from the manufacture rate without
// blocking. Returns ErrRateLimited if none is available.
func (c *Controller) AllowManufacture() error {
	if c == nil || c.limiter == nil {
		return nil
	}
	if !c.limiter.AllowN(time.Now(), 1) {
		c.limited.Add(1)
		return ErrRateLimited
	}
	return nil
}

// WaitManufacture waits for one manufacture token. Prewarm uses it; the
// acquire path uses AllowManufacture.
func (c *Controller) WaitManufacture(ctx context.Context) error {
	if c == nil || c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

type waitKey struct{}

// WithWait marks ctx so Manufacture waits for a token instead of failing.
// Prewarm paths use it; the acquire path must never block on the rate.
func WithWait(ctx context.Context) context.Context {
	return context.WithValue(ctx, waitKey{}, true)
}

// Manufacture takes one manufacture token. It waits when ctx carries WithWait
// and fails fast with ErrRateLimited otherwise.
func (c *Controller) Manufacture(ctx context.Context) error {
	if wait, _ := ctx.Value(waitKey{}).(bool); wait {
		return c.WaitManufacture(ctx)
	}
	return c.AllowManufacture()
}

// Stats is a snapshot of controller counters.
type Stats struct {
	MemoryUsed   int64
	MemoryPeak   int64
	MemoryLimit  int64
	MemoryDenied int64
	RateLimited  int64
}

// Stats returns the current controller statistics.
func (c *Controller) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{
		MemoryUsed:   c.memUsed.Load(),
		MemoryPeak:   c.memPeak.Load(),
		MemoryLimit:  c.cfg.MemoryLimitBytes,
		MemoryDenied: c.denied.Load(),
		RateLimited:  c.limited.Load(),
	}
}
