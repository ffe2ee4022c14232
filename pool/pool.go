package pool

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/cpu"
)

// Factory manufactures a new item when the selected shard has none idle.
// An error is returned to the caller of Acquire unchanged in meaning; the pool
// does not retry.
type Factory[T any] func(ctx context.Context) (T, error)

// shard is one independently locked stack of idle items.
type shard[T any] struct {
	mu       sync.Mutex
	idle     []T
	hits     int64
	misses   int64
	retained int64
	dropped  int64
	_        cpu.CacheLinePad
}

// Pool is a contention-sharded pool of reusable items.
type Pool[T any] struct {
	name      string
	factory   Factory[T]
	shards    []shard[T]
	retention int
	selector  Selector
	reset     func(T) T
	discard   func(T)
	logger    *slog.Logger
	metrics   MetricsCollector

	closed       atomic.Bool
	manufactured atomic.Int64
	failures     atomic.Int64
	inFlight     atomic.Int64
	discarded    atomic.Int64
}

// New creates a pool that manufactures items with factory.
func New[T any](factory Factory[T], opts ...Option) *Pool[T] {
	if factory == nil {
		panic("pool: nil factory")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	p := &Pool[T]{
		name:      o.name,
		factory:   factory,
		shards:    make([]shard[T], o.shards),
		retention: o.retention,
		selector:  o.selector,
		logger:    o.logger,
		metrics:   o.metrics,
	}
	if p.retention <= 0 {
		p.retention = math.MaxInt
	}
	if p.selector == nil {
		p.selector = Affinity()
	}

	if o.reset != nil {
		fn, ok := o.reset.(func(T) T)
		if !ok {
			panic(fmt.Sprintf("pool %s: reset hook %T does not match item type", o.name, o.reset))
		}
		p.reset = fn
	}
	if o.discard != nil {
		fn, ok := o.discard.(func(T))
		if !ok {
			panic(fmt.Sprintf("pool %s: discard hook %T does not match item type", o.name, o.discard))
		}
		p.discard = fn
	}

	return p
}

// NewFunc creates a pool whose factory cannot fail.
func NewFunc[T any](fn func() T, opts ...Option) *Pool[T] {
	return New(func(context.Context) (T, error) { return fn(), nil }, opts...)
}

// Name returns the pool name.
func (p *Pool[T]) Name() string { return p.name }

// NumShards returns the fixed number of shards.
func (p *Pool[T]) NumShards() int { return len(p.shards) }

// Acquire borrows an item from a shard chosen by the pool's selector.
//
// It returns an idle item when the shard has one and otherwise manufactures a
// new item bound to that shard. It never blocks on other borrowers. A factory
// failure is returned as a *ManufactureError.
func (p *Pool[T]) Acquire(ctx context.Context) (*Handle[T], error) {
	return p.acquire(ctx, p.selector.Select(len(p.shards)))
}

// AcquireOn borrows an item from shard i modulo the shard count. Workers with
// a stable index use it to keep their own shard.
func (p *Pool[T]) AcquireOn(ctx context.Context, i int) (*Handle[T], error) {
	if i < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidShard, i)
	}
	return p.acquire(ctx, i%len(p.shards))
}

func (p *Pool[T]) acquire(ctx context.Context, idx int) (*Handle[T], error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}

	s := &p.shards[idx]
	s.mu.Lock()
	if n := len(s.idle); n > 0 {
		item := s.idle[n-1]
		var zero T
		s.idle[n-1] = zero
		s.idle = s.idle[:n-1]
		s.hits++
		s.mu.Unlock()

		p.inFlight.Add(1)
		p.metrics.RecordAcquire(idx, true)
		return &Handle[T]{item: item, pool: p, shard: idx}, nil
	}
	s.misses++
	s.mu.Unlock()
	p.metrics.RecordAcquire(idx, false)

	item, err := p.manufacture(ctx, idx)
	if err != nil {
		return nil, err
	}
	p.inFlight.Add(1)
	return &Handle[T]{item: item, pool: p, shard: idx}, nil
}

func (p *Pool[T]) manufacture(ctx context.Context, idx int) (T, error) {
	start := time.Now()
	item, err := p.factory(ctx)
	p.metrics.RecordManufacture(time.Since(start), err)

	if err != nil {
		p.failures.Add(1)
		p.logger.ErrorContext(ctx, "manufacture failed",
			"pool", p.name,
			"shard", idx,
			"error", err,
		)
		var zero T
		return zero, &ManufactureError{Pool: p.name, Shard: idx, Err: err}
	}

	p.manufactured.Add(1)
	return item, nil
}

// put returns an in-flight item to shard idx, or drops it when the shard is at
// its retention ceiling or the pool is closed.
func (p *Pool[T]) put(idx int, item T) {
	if p.reset != nil {
		item = p.reset(item)
	}

	s := &p.shards[idx]
	s.mu.Lock()
	if p.closed.Load() {
		s.mu.Unlock()
		p.inFlight.Add(-1)
		p.metrics.RecordRelease(idx, false)
		p.drop(item)
		return
	}
	if len(s.idle) >= p.retention {
		s.dropped++
		s.mu.Unlock()
		p.inFlight.Add(-1)
		p.metrics.RecordRelease(idx, false)
		p.drop(item)
		p.logger.Debug("retention ceiling reached, item dropped",
			"pool", p.name,
			"shard", idx,
			"retention", p.retention,
		)
		return
	}
	s.idle = append(s.idle, item)
	s.retained++
	s.mu.Unlock()

	p.inFlight.Add(-1)
	p.metrics.RecordRelease(idx, true)
}

// drop disposes of an item that leaves the pool for good.
func (p *Pool[T]) drop(item T) {
	p.discarded.Add(1)
	if p.discard != nil {
		p.discard(item)
	}
}

// With borrows an item for the duration of fn. The item is released when fn
// returns, including when it panics.
func (p *Pool[T]) With(ctx context.Context, fn func(h *Handle[T]) error) error {
	h, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer h.Release()
	return fn(h)
}

// Prewarm manufactures up to perShard idle items on every shard in parallel,
// capped at the retention ceiling. It stops at the first factory failure.
func (p *Pool[T]) Prewarm(ctx context.Context, perShard int) error {
	if p.closed.Load() {
		return ErrClosed
	}
	perShard = min(perShard, p.retention)
	if perShard <= 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range p.shards {
		g.Go(func() error {
			for range perShard {
				if err := gctx.Err(); err != nil {
					return err
				}
				item, err := p.manufacture(gctx, i)
				if err != nil {
					return err
				}
				p.inFlight.Add(1)
				p.put(i, item)
			}
			return nil
		})
	}

	err := g.Wait()
	p.logger.DebugContext(ctx, "pool prewarmed",
		"pool", p.name,
		"shards", len(p.shards),
		"per_shard", perShard,
		"error", err,
	)
	return err
}

// Close tears the pool down. Idle items are dropped through the discard hook,
// later Acquire calls fail with ErrClosed and items released afterwards are
// dropped instead of retained. Close is idempotent and always returns nil.
func (p *Pool[T]) Close() error {
	if p.closed.Swap(true) {
		return nil
	}

	drained := 0
	for i := range p.shards {
		s := &p.shards[i]
		s.mu.Lock()
		idle := s.idle
		s.idle = nil
		s.mu.Unlock()

		for _, item := range idle {
			p.drop(item)
		}
		drained += len(idle)
	}

	p.logger.Debug("pool closed",
		"pool", p.name,
		"drained", drained,
		"in_flight", p.inFlight.Load(),
	)
	return nil
}

// Closed reports whether Close has been called.
func (p *Pool[T]) Closed() bool { return p.closed.Load() }
