package pool

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type buffer struct {
	id   int64
	data []byte
}

// bufferFactory returns a factory that tags each buffer with a sequence number.
func bufferFactory(made *atomic.Int64) Factory[*buffer] {
	return func(context.Context) (*buffer, error) {
		return &buffer{id: made.Add(1)}, nil
	}
}

func assertConserved(t *testing.T, st Stats) {
	t.Helper()
	assert.Equal(t, st.Manufactured-st.Discarded, int64(st.Idle)+st.InFlight,
		"conservation violated: %s", st)
}

func TestPool_New(t *testing.T) {
	var made atomic.Int64

	t.Run("defaults", func(t *testing.T) {
		p := New(bufferFactory(&made))

		assert.Equal(t, runtime.GOMAXPROCS(0), p.NumShards())
		assert.Equal(t, "pool", p.Name())
		assert.Equal(t, DefaultRetention, p.Stats().Retention)
	})

	t.Run("options", func(t *testing.T) {
		p := New(bufferFactory(&made), WithShards(3), WithName("scratch"), WithRetention(5))

		assert.Equal(t, 3, p.NumShards())
		assert.Equal(t, "scratch", p.Name())
		assert.Equal(t, 5, p.Stats().Retention)
	})

	t.Run("nil factory", func(t *testing.T) {
		assert.Panics(t, func() { New[*buffer](nil) })
	})

	t.Run("hook type mismatch", func(t *testing.T) {
		assert.Panics(t, func() {
			New(bufferFactory(&made), WithReset(func(b []byte) []byte { return b }))
		})
		assert.Panics(t, func() {
			New(bufferFactory(&made), WithDiscard(func(string) {}))
		})
	})
}

func TestPool_RoundTrip(t *testing.T) {
	var made atomic.Int64
	p := New(bufferFactory(&made), WithShards(4))
	ctx := context.Background()

	h, err := p.AcquireOn(ctx, 2)
	require.NoError(t, err)
	first := h.Value()
	first.data = append(first.data, "hello"...)
	h.Release()

	h, err = p.AcquireOn(ctx, 2)
	require.NoError(t, err)
	defer h.Release()

	assert.Same(t, first, h.Value())
	assert.Equal(t, "hello", string(h.Value().data))
	assert.Equal(t, int64(1), made.Load())
}

func TestPool_SingleShardRoundTrip(t *testing.T) {
	var made atomic.Int64
	p := New(bufferFactory(&made), WithShards(1))
	ctx := context.Background()

	h, err := p.Acquire(ctx)
	require.NoError(t, err)
	item := h.Value()
	item.id = -7
	h.Release()

	h, err = p.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(-7), h.Value().id)
	h.Release()
}

func TestPool_TwoShardScenario(t *testing.T) {
	var made atomic.Int64
	p := New(bufferFactory(&made), WithShards(2), WithSelector(RoundRobin()))
	ctx := context.Background()

	h1, err := p.Acquire(ctx)
	require.NoError(t, err)
	h2, err := p.Acquire(ctx)
	require.NoError(t, err)

	assert.NotSame(t, h1.Value(), h2.Value())
	assert.Equal(t, int64(2), made.Load())
	assert.Equal(t, 0, p.Stats().Idle)

	ids := map[int64]bool{h1.Value().id: true, h2.Value().id: true}
	h1.Release()
	h2.Release()
	assert.Equal(t, 2, p.Stats().Idle)

	h3, err := p.Acquire(ctx)
	require.NoError(t, err)
	h4, err := p.Acquire(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), made.Load(), "no new manufacture expected")
	assert.True(t, ids[h3.Value().id])
	assert.True(t, ids[h4.Value().id])
	assert.NotEqual(t, h3.Value().id, h4.Value().id)

	h3.Release()
	h4.Release()

	st := p.Stats()
	assert.Equal(t, int64(2), st.Hits)
	assert.Equal(t, int64(2), st.Misses)
	assert.InDelta(t, 0.5, st.HitRate(), 0.001)
	assertConserved(t, st)
}

func TestPool_Retention(t *testing.T) {
	var made atomic.Int64
	var discarded []int64
	p := New(bufferFactory(&made),
		WithShards(1),
		WithRetention(1),
		WithDiscard(func(b *buffer) { discarded = append(discarded, b.id) }),
	)
	ctx := context.Background()

	handles := make([]*Handle[*buffer], 3)
	for i := range handles {
		h, err := p.Acquire(ctx)
		require.NoError(t, err)
		handles[i] = h
	}
	for _, h := range handles {
		h.Release()
	}

	st := p.Stats()
	assert.Equal(t, 1, st.Idle)
	assert.Equal(t, int64(2), st.Dropped)
	assert.Equal(t, int64(2), st.Discarded)
	assert.Len(t, discarded, 2)
	assertConserved(t, st)
}

func TestPool_UnboundedRetention(t *testing.T) {
	var made atomic.Int64
	p := New(bufferFactory(&made), WithShards(1), WithRetention(0))
	ctx := context.Background()

	var handles []*Handle[*buffer]
	for range 200 {
		h, err := p.Acquire(ctx)
		require.NoError(t, err)
		handles = append(handles, h)
	}
	for _, h := range handles {
		h.Release()
	}

	assert.Equal(t, 200, p.Stats().Idle)
}

func TestPool_ManufactureFailure(t *testing.T) {
	errOOM := errors.New("out of memory")
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	calls := 0
	p := New(func(context.Context) (*buffer, error) {
		calls++
		if calls == 2 {
			return nil, errOOM
		}
		return &buffer{id: int64(calls)}, nil
	}, WithShards(1), WithName("rows"), WithLogger(logger))
	ctx := context.Background()

	h, err := p.Acquire(ctx)
	require.NoError(t, err)

	_, err = p.Acquire(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrManufactureFailed)
	assert.ErrorIs(t, err, errOOM)

	var me *ManufactureError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "rows", me.Pool)
	assert.Equal(t, 0, me.Shard)
	assert.Contains(t, err.Error(), "out of memory")

	assert.Contains(t, logs.String(), "manufacture failed")
	assert.Equal(t, 2, calls, "failures are not retried")

	st := p.Stats()
	assert.Equal(t, int64(1), st.ManufactureFailures)
	assert.Equal(t, int64(1), st.InFlight)
	assertConserved(t, st)

	h.Release()
	assertConserved(t, p.Stats())
}

func TestPool_Reset(t *testing.T) {
	var made atomic.Int64
	p := New(bufferFactory(&made),
		WithShards(1),
		WithReset(func(b *buffer) *buffer {
			if cap(b.data) > 16 {
				return &buffer{id: b.id}
			}
			b.data = b.data[:0]
			return b
		}),
	)
	ctx := context.Background()

	h, err := p.Acquire(ctx)
	require.NoError(t, err)
	h.Value().data = append(h.Value().data, "abc"...)
	small := h.Value()
	h.Release()

	h, err = p.Acquire(ctx)
	require.NoError(t, err)
	assert.Same(t, small, h.Value())
	assert.Empty(t, h.Value().data)

	h.Value().data = make([]byte, 0, 1024)
	large := h.Value()
	h.Release()

	h, err = p.Acquire(ctx)
	require.NoError(t, err)
	defer h.Release()
	assert.NotSame(t, large, h.Value())
	assert.Equal(t, large.id, h.Value().id)
}

func TestPool_AcquireOn(t *testing.T) {
	var made atomic.Int64
	p := New(bufferFactory(&made), WithShards(4))
	ctx := context.Background()

	h, err := p.AcquireOn(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, 1, h.Shard())
	h.Release()
	assert.Equal(t, 1, p.Stats().PerShard[1].Idle)

	_, err = p.AcquireOn(ctx, -1)
	assert.ErrorIs(t, err, ErrInvalidShard)
}

func TestPool_With(t *testing.T) {
	var made atomic.Int64
	p := New(bufferFactory(&made), WithShards(1))
	ctx := context.Background()

	errBoom := errors.New("boom")
	err := p.With(ctx, func(h *Handle[*buffer]) error {
		assert.Equal(t, int64(1), p.Stats().InFlight)
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, int64(0), p.Stats().InFlight)
	assert.Equal(t, 1, p.Stats().Idle)

	assert.Panics(t, func() {
		_ = p.With(ctx, func(*Handle[*buffer]) error {
			panic("scan failed")
		})
	})
	st := p.Stats()
	assert.Equal(t, int64(0), st.InFlight, "released on panic")
	assert.Equal(t, 1, st.Idle)
	assertConserved(t, st)
}

func TestPool_Prewarm(t *testing.T) {
	ctx := context.Background()

	t.Run("fills shards", func(t *testing.T) {
		var made atomic.Int64
		p := New(bufferFactory(&made), WithShards(4))

		require.NoError(t, p.Prewarm(ctx, 3))

		st := p.Stats()
		assert.Equal(t, 12, st.Idle)
		assert.Equal(t, int64(12), st.Manufactured)
		for _, ss := range st.PerShard {
			assert.Equal(t, 3, ss.Idle)
		}
		assertConserved(t, st)
	})

	t.Run("capped by retention", func(t *testing.T) {
		var made atomic.Int64
		p := New(bufferFactory(&made), WithShards(2), WithRetention(2))

		require.NoError(t, p.Prewarm(ctx, 10))

		st := p.Stats()
		assert.Equal(t, 4, st.Idle)
		assert.Equal(t, int64(0), st.Dropped)
	})

	t.Run("factory failure", func(t *testing.T) {
		errNoMem := errors.New("no memory")
		p := New(func(context.Context) (*buffer, error) {
			return nil, errNoMem
		}, WithShards(2))

		err := p.Prewarm(ctx, 1)
		assert.ErrorIs(t, err, errNoMem)
		assertConserved(t, p.Stats())
	})

	t.Run("closed", func(t *testing.T) {
		var made atomic.Int64
		p := New(bufferFactory(&made), WithShards(2))
		require.NoError(t, p.Close())

		assert.ErrorIs(t, p.Prewarm(ctx, 1), ErrClosed)
	})
}

func TestPool_Close(t *testing.T) {
	var made atomic.Int64
	var discarded atomic.Int64
	p := New(bufferFactory(&made),
		WithShards(2),
		WithDiscard(func(*buffer) { discarded.Add(1) }),
	)
	ctx := context.Background()

	require.NoError(t, p.Prewarm(ctx, 2))
	held, err := p.Acquire(ctx)
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.True(t, p.Closed())
	assert.Equal(t, int64(3), discarded.Load(), "idle items dropped")

	_, err = p.Acquire(ctx)
	assert.ErrorIs(t, err, ErrClosed)

	held.Release()
	assert.Equal(t, int64(4), discarded.Load(), "late release dropped")

	require.NoError(t, p.Close())
	st := p.Stats()
	assert.Equal(t, 0, st.Idle)
	assert.Equal(t, int64(0), st.InFlight)
	assertConserved(t, st)
}

func TestPool_Metrics(t *testing.T) {
	var made atomic.Int64
	m := &BasicMetricsCollector{}
	p := New(bufferFactory(&made), WithShards(1), WithRetention(1), WithMetrics(m))
	ctx := context.Background()

	h1, err := p.Acquire(ctx)
	require.NoError(t, err)
	h2, err := p.Acquire(ctx)
	require.NoError(t, err)
	h1.Release()
	h2.Release()
	h3, err := p.Acquire(ctx)
	require.NoError(t, err)
	h3.Discard()

	assert.Equal(t, int64(1), m.AcquireHits.Load())
	assert.Equal(t, int64(2), m.AcquireMisses.Load())
	assert.Equal(t, int64(2), m.ManufactureCount.Load())
	assert.Equal(t, int64(0), m.ManufactureErrors.Load())
	assert.Equal(t, int64(1), m.ReleasesRetained.Load())
	assert.Equal(t, int64(2), m.ReleasesDropped.Load())
	assert.GreaterOrEqual(t, m.AvgManufactureLatency(), time.Duration(0))
}
