package scratch

import (
	"unsafe"

	"github.com/hupe1980/arenapool/core"
	"github.com/hupe1980/arenapool/internal/mem"
	"github.com/hupe1980/arenapool/pool"
)

// maxGrowth bounds how far a returned buffer may have outgrown its nominal
// size before the reset hook swaps in a fresh one.
const maxGrowth = 4

// NewBytePool pools empty byte buffers with capacity size, aligned to 64
// bytes. Borrowers append through Handle.Ptr; the buffer is truncated on
// return.
func NewBytePool(size int, opts ...Option) *pool.Pool[[]byte] {
	size = max(size, 1)
	alloc := func() []byte { return mem.AllocAligned(size)[:0] }

	return newPool("bytes", int64(size), buildOptions(opts),
		func() ([]byte, error) { return alloc(), nil },
		func(b []byte) []byte {
			if cap(b) > maxGrowth*size {
				return alloc()
			}
			return b[:0]
		},
		nil,
	)
}

// NewIdxPool pools empty row-index buffers with capacity n.
func NewIdxPool(n int, opts ...Option) *pool.Pool[[]core.IdxSize] {
	n = max(n, 1)
	alloc := func() []core.IdxSize { return mem.AllocAlignedSlice[core.IdxSize](n)[:0] }
	bytes := int64(n) * int64(unsafe.Sizeof(core.IdxSize(0)))

	return newPool("rows", bytes, buildOptions(opts),
		func() ([]core.IdxSize, error) { return alloc(), nil },
		func(s []core.IdxSize) []core.IdxSize {
			if cap(s) > maxGrowth*n {
				return alloc()
			}
			return s[:0]
		},
		nil,
	)
}
