package scratch

import (
	"bytes"
	"context"
	"testing"

	"github.com/hupe1980/arenapool/arena"
	"github.com/hupe1980/arenapool/core"
	"github.com/hupe1980/arenapool/internal/mem"
	"github.com/hupe1980/arenapool/pool"
	"github.com/hupe1980/arenapool/resource"
	"github.com/hupe1980/arenapool/testutil"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oneShard() Option {
	return WithPoolOptions(pool.WithShards(1))
}

func TestBytePool(t *testing.T) {
	p := NewBytePool(100, oneShard())
	defer p.Close()
	ctx := context.Background()

	h, err := p.Acquire(ctx)
	require.NoError(t, err)
	buf := h.Ptr()
	assert.Empty(t, *buf)
	assert.Equal(t, 100, cap(*buf))
	assert.True(t, mem.IsAligned(*buf))
	*buf = append(*buf, "row"...)
	h.Release()

	h, err = p.Acquire(ctx)
	require.NoError(t, err)
	assert.Empty(t, h.Value(), "truncated on return")
	assert.Equal(t, 100, cap(h.Value()))

	// Outgrown buffers are swapped for a fresh one.
	*h.Ptr() = append(*h.Ptr(), make([]byte, 1000)...)
	h.Release()

	h, err = p.Acquire(ctx)
	require.NoError(t, err)
	defer h.Release()
	assert.Equal(t, 100, cap(h.Value()))
	assert.Equal(t, int64(1), p.Stats().Manufactured)
}

func TestIdxPool(t *testing.T) {
	p := NewIdxPool(64, oneShard())
	defer p.Close()
	ctx := context.Background()

	err := p.With(ctx, func(h *pool.Handle[[]core.IdxSize]) error {
		rows := h.Ptr()
		for i := range 10 {
			*rows = append(*rows, core.IdxSize(i*2))
		}
		assert.Len(t, *rows, 10)
		return nil
	})
	require.NoError(t, err)

	h, err := p.Acquire(ctx)
	require.NoError(t, err)
	defer h.Release()
	assert.Empty(t, h.Value())
	assert.Equal(t, 64, cap(h.Value()))
}

func TestArenaPool(t *testing.T) {
	type node struct {
		op          string
		left, right arena.Node
	}
	p := NewArenaPool[node](16, oneShard())
	defer p.Close()
	ctx := context.Background()

	h, err := p.Acquire(ctx)
	require.NoError(t, err)
	a := h.Value()
	gen := a.Generation()
	a.Insert(node{op: "col", left: arena.NullNode, right: arena.NullNode})
	a.Insert(node{op: "lit", left: arena.NullNode, right: arena.NullNode})
	h.Release()

	h, err = p.Acquire(ctx)
	require.NoError(t, err)
	defer h.Release()
	assert.Same(t, a, h.Value())
	assert.True(t, h.Value().IsEmpty())
	assert.NotEqual(t, gen, h.Value().Generation())
	assert.Equal(t, 16, h.Value().Cap())
}

func TestVisitedPool(t *testing.T) {
	p := NewVisitedPool(128, oneShard())
	defer p.Close()
	ctx := context.Background()

	h, err := p.Acquire(ctx)
	require.NoError(t, err)
	h.Value().Set(3).Set(100)
	h.Release()

	h, err = p.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(0), h.Value().Count())

	h.Value().Set(128 * 20)
	h.Release()

	h, err = p.Acquire(ctx)
	require.NoError(t, err)
	defer h.Release()
	assert.Equal(t, uint(128), h.Value().Len(), "oversized bitset replaced")
	assert.Equal(t, uint(0), h.Value().Count())
}

func TestSelectionPool(t *testing.T) {
	p := NewSelectionPool(oneShard())
	defer p.Close()
	ctx := context.Background()

	h, err := p.Acquire(ctx)
	require.NoError(t, err)
	h.Value().AddRange(10, 20)
	assert.Equal(t, uint64(10), h.Value().GetCardinality())
	h.Release()

	h, err = p.Acquire(ctx)
	require.NoError(t, err)
	defer h.Release()
	assert.True(t, h.Value().IsEmpty())
}

func TestZstdRoundTrip(t *testing.T) {
	enc := NewZstdEncoderPool(zstd.SpeedFastest, oneShard())
	defer enc.Close()
	dec := NewZstdDecoderPool(oneShard())
	defer dec.Close()
	ctx := context.Background()

	src := bytes.Repeat([]byte("spill block "), 512)

	frame, err := EncodeZstd(ctx, enc, nil, src)
	require.NoError(t, err)
	assert.Less(t, len(frame), len(src))

	out, err := DecodeZstd(ctx, dec, nil, frame)
	require.NoError(t, err)
	assert.Equal(t, src, out)

	// Second round trip reuses the pooled codecs.
	_, err = EncodeZstd(ctx, enc, nil, src)
	require.NoError(t, err)
	assert.Equal(t, int64(1), enc.Stats().Manufactured)
	assert.Equal(t, int64(1), enc.Stats().Hits)
}

func TestCompressLZ4(t *testing.T) {
	p := NewLZ4CompressorPool(oneShard())
	defer p.Close()
	ctx := context.Background()

	t.Run("compressible", func(t *testing.T) {
		src := bytes.Repeat([]byte("abcd"), 1000)
		prefix := []byte("hdr")

		out, err := CompressLZ4(ctx, p, prefix, src)
		require.NoError(t, err)
		assert.Equal(t, "hdr", string(out[:3]))

		dst := make([]byte, len(src))
		n, err := lz4.UncompressBlock(out[3:], dst)
		require.NoError(t, err)
		assert.Equal(t, src, dst[:n])
	})

	t.Run("incompressible", func(t *testing.T) {
		rng := testutil.NewRNG(7)
		src := make([]byte, 1024)
		for i := range src {
			src[i] = byte(rng.Uint64())
		}

		out, err := CompressLZ4(ctx, p, nil, src)
		assert.ErrorIs(t, err, ErrIncompressible)
		assert.Empty(t, out)
	})
}

func TestOffHeapPool(t *testing.T) {
	c := resource.NewController(resource.Config{})
	p := NewOffHeapPool(100, oneShard(), WithController(c))
	ctx := context.Background()

	h, err := p.Acquire(ctx)
	require.NoError(t, err)
	region := h.Value()
	reserved := c.MemoryUsage()
	assert.Equal(t, int64(region.Size()), reserved)
	assert.GreaterOrEqual(t, region.Size(), 100)

	region.Bytes()[0] = 42
	h.Release()

	h, err = p.Acquire(ctx)
	require.NoError(t, err)
	assert.Same(t, region, h.Value())
	assert.Zero(t, h.Value().Bytes()[0], "zeroed on return")
	h.Release()

	require.NoError(t, p.Close())
	assert.Equal(t, int64(0), c.MemoryUsage())
	assert.Nil(t, region.Bytes(), "unmapped on close")
}

func TestMemoryBudget(t *testing.T) {
	c := resource.NewController(resource.Config{MemoryLimitBytes: 250})
	p := NewBytePool(100, oneShard(), WithController(c), WithPoolOptions(pool.WithRetention(1)))
	ctx := context.Background()

	h1, err := p.Acquire(ctx)
	require.NoError(t, err)
	h2, err := p.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(200), c.MemoryUsage())

	_, err = p.Acquire(ctx)
	assert.ErrorIs(t, err, pool.ErrManufactureFailed)
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)

	h1.Release()
	h2.Release() // above retention: dropped and unreserved
	assert.Equal(t, int64(100), c.MemoryUsage())

	require.NoError(t, p.Close())
	assert.Equal(t, int64(0), c.MemoryUsage())

	st := p.Stats()
	assert.Equal(t, st.Manufactured, st.Discarded)
}

func TestManufactureRate(t *testing.T) {
	c := resource.NewController(resource.Config{ManufacturePerSec: 0.001, ManufactureBurst: 1})
	p := NewSelectionPool(WithPoolOptions(pool.WithShards(2), pool.WithSelector(pool.RoundRobin())), WithController(c))
	defer p.Close()
	ctx := context.Background()

	h, err := p.Acquire(ctx)
	require.NoError(t, err)
	defer h.Release()

	_, err = p.Acquire(ctx)
	assert.ErrorIs(t, err, resource.ErrRateLimited)
	assert.Equal(t, int64(1), p.Stats().ManufactureFailures)
}

func TestPoolNames(t *testing.T) {
	assert.Equal(t, "bytes", NewBytePool(8).Name())
	assert.Equal(t, "rows", NewIdxPool(8).Name())
	assert.Equal(t, "visited", NewVisitedPool(8).Name())
	assert.Equal(t, "spill", NewBytePool(8, WithPoolOptions(pool.WithName("spill"))).Name())
}
