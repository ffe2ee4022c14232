package arenapool

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"
	"github.com/hupe1980/arenapool/arena"
	"github.com/hupe1980/arenapool/core"
	"github.com/hupe1980/arenapool/metrics"
	"github.com/hupe1980/arenapool/pool"
	"github.com/hupe1980/arenapool/resource"
	"github.com/hupe1980/arenapool/scratch"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// managed is the type-erased view of a session pool.
type managed interface {
	Name() string
	Stats() pool.Stats
	Prewarm(ctx context.Context, perShard int) error
	Close() error
}

// Session owns the pools of one parallel operation: the standard scratch
// pools plus any added with NewPool or NewArenaPool. All of them share the
// session's shard count, retention, logger and resource controller, and are
// torn down together by Close.
//
// A Session is safe for concurrent use.
type Session struct {
	name       string
	logger     *Logger
	controller *resource.Controller
	collector  *metrics.Collector
	registerer prometheus.Registerer
	base       []pool.Option

	buffers    *pool.Pool[[]byte]
	rows       *pool.Pool[[]core.IdxSize]
	visited    *pool.Pool[*bitset.BitSet]
	selections *pool.Pool[*roaring.Bitmap]

	mu     sync.Mutex
	pools  []managed
	names  map[string]struct{}
	closed bool
}

// NewSession creates a session with its standard scratch pools.
func NewSession(opts ...Option) (*Session, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctrl := o.controller
	if ctrl == nil {
		ctrl = resource.NewController(o.resource)
	}

	logger := o.logger.WithSession(o.name)

	base := []pool.Option{
		pool.WithShards(o.shards),
		pool.WithRetention(o.retention),
		pool.WithLogger(logger.Logger),
	}
	if o.selector != nil {
		base = append(base, pool.WithSelector(o.selector))
	}
	if o.poolMetrics != nil {
		base = append(base, pool.WithMetrics(o.poolMetrics))
	}

	s := &Session{
		name:       o.name,
		logger:     logger,
		controller: ctrl,
		collector:  metrics.NewCollector(metrics.WithConstLabels(prometheus.Labels{"session": o.name})),
		registerer: o.registerer,
		base:       base,
		names:      make(map[string]struct{}),
	}
	s.collector.SetController(ctrl)

	s.buffers = scratch.NewBytePool(o.bufferSize, s.scratchOptions("buffers")...)
	s.rows = scratch.NewIdxPool(o.rowCapacity, s.scratchOptions("rows")...)
	s.visited = scratch.NewVisitedPool(o.visitedSize, s.scratchOptions("visited")...)
	s.selections = scratch.NewSelectionPool(s.scratchOptions("selections")...)

	for _, p := range []managed{s.buffers, s.rows, s.visited, s.selections} {
		if err := s.add(p); err != nil {
			return nil, err
		}
	}

	if s.registerer != nil {
		if err := s.registerer.Register(s.collector); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("arenapool: register metrics: %w", err)
		}
	}

	return s, nil
}

// poolOptions returns the session defaults for a pool named name.
func (s *Session) poolOptions(name string, extra ...pool.Option) []pool.Option {
	opts := slices.Clone(s.base)
	opts = append(opts, pool.WithName(name))
	return append(opts, extra...)
}

func (s *Session) scratchOptions(name string) []scratch.Option {
	return []scratch.Option{
		scratch.WithController(s.controller),
		scratch.WithPoolOptions(s.poolOptions(name)...),
	}
}

// add registers p with the session. It closes p when registration fails.
func (s *Session) add(p managed) error {
	name := p.Name()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		_ = p.Close()
		return ErrSessionClosed
	}
	if _, ok := s.names[name]; ok {
		_ = p.Close()
		return fmt.Errorf("%w: %s", ErrDuplicatePool, name)
	}
	if err := s.collector.AddPool(p); err != nil {
		_ = p.Close()
		return err
	}

	s.names[name] = struct{}{}
	s.pools = append(s.pools, p)

	st := p.Stats()
	s.logger.WithPool(name).LogPool(context.Background(), st.Shards, st.Retention)
	return nil
}

// NewPool creates a pool with the session defaults and registers it. The
// factory is subject to the session's manufacture rate. opts are applied
// after the defaults.
func NewPool[T any](s *Session, name string, factory pool.Factory[T], opts ...pool.Option) (*pool.Pool[T], error) {
	ctrl := s.controller
	limited := func(ctx context.Context) (T, error) {
		if err := ctrl.Manufacture(ctx); err != nil {
			var zero T
			return zero, err
		}
		return factory(ctx)
	}

	p := pool.New(limited, s.poolOptions(name, opts...)...)
	if err := s.add(p); err != nil {
		return nil, err
	}
	return p, nil
}

// NewArenaPool creates a pool of arenas pre-sized for capacity nodes and
// registers it. Arenas are cleared when returned.
func NewArenaPool[T any](s *Session, name string, capacity int) (*pool.Pool[*arena.Arena[T]], error) {
	p := scratch.NewArenaPool[T](capacity, s.scratchOptions(name)...)
	if err := s.add(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Name returns the session name.
func (s *Session) Name() string { return s.name }

// Controller returns the resource controller shared by the session pools.
func (s *Session) Controller() *resource.Controller { return s.controller }

// Collector returns the Prometheus collector over the session pools.
func (s *Session) Collector() *metrics.Collector { return s.collector }

// Buffers returns the pool of 64-byte aligned byte buffers.
func (s *Session) Buffers() *pool.Pool[[]byte] { return s.buffers }

// Rows returns the pool of row-index buffers.
func (s *Session) Rows() *pool.Pool[[]core.IdxSize] { return s.rows }

// Visited returns the pool of visited bitsets.
func (s *Session) Visited() *pool.Pool[*bitset.BitSet] { return s.visited }

// Selections returns the pool of row-selection bitmaps.
func (s *Session) Selections() *pool.Pool[*roaring.Bitmap] { return s.selections }

// Prewarm fills every session pool with perShard idle items per shard. Pools
// are prewarmed as background jobs, at most as many at once as the
// controller has background slots. Prewarm waits for the manufacture rate
// instead of failing on it.
func (s *Session) Prewarm(ctx context.Context, perShard int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	pools := slices.Clone(s.pools)
	s.mu.Unlock()

	start := time.Now()
	g, gctx := errgroup.WithContext(resource.WithWait(ctx))

	for _, p := range pools {
		g.Go(func() error {
			if err := s.controller.AcquireBackground(gctx); err != nil {
				return err
			}
			defer s.controller.ReleaseBackground()

			if err := p.Prewarm(gctx, perShard); err != nil {
				return &PoolError{Op: "prewarm", Pool: p.Name(), Err: err}
			}
			return nil
		})
	}

	err := g.Wait()
	s.logger.LogPrewarm(ctx, len(pools), perShard, time.Since(start), err)
	return err
}

// Stats is a snapshot of every session pool and the resource budget.
type Stats struct {
	Name     string
	Pools    []pool.Stats
	Resource resource.Stats
}

// InFlight returns the number of items borrowed across all pools.
func (s Stats) InFlight() int64 {
	var n int64
	for _, p := range s.Pools {
		n += p.InFlight
	}
	return n
}

// Pool returns the statistics of the named pool.
func (s Stats) Pool(name string) (pool.Stats, bool) {
	for _, p := range s.Pools {
		if p.Name == name {
			return p, true
		}
	}
	return pool.Stats{}, false
}

func (s Stats) String() string {
	return fmt.Sprintf("Session{name: %s, pools: %d, in_flight: %d, memory_used: %d}",
		s.Name, len(s.Pools), s.InFlight(), s.Resource.MemoryUsed)
}

// Stats returns the current session statistics.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	pools := slices.Clone(s.pools)
	s.mu.Unlock()

	st := Stats{
		Name:     s.name,
		Pools:    make([]pool.Stats, 0, len(pools)),
		Resource: s.controller.Stats(),
	}
	for _, p := range pools {
		st.Pools = append(st.Pools, p.Stats())
	}
	return st
}

// Close closes every session pool and unregisters the metrics collector.
// Items still borrowed are dropped when released. Close is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	pools := s.pools
	s.mu.Unlock()

	var errs []error
	var inFlight int64
	for _, p := range pools {
		inFlight += p.Stats().InFlight
		if err := p.Close(); err != nil {
			errs = append(errs, &PoolError{Op: "close", Pool: p.Name(), Err: err})
		}
	}

	if s.registerer != nil {
		s.registerer.Unregister(s.collector)
	}

	err := errors.Join(errs...)
	s.logger.LogClose(context.Background(), len(pools), inFlight, err)
	return err
}
