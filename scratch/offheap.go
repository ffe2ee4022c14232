package scratch

import (
	"github.com/hupe1980/arenapool/internal/mmap"
	"github.com/hupe1980/arenapool/pool"
)

// OffHeap is an anonymous read-write mapping outside the Go heap.
type OffHeap = mmap.Region

// NewOffHeapPool pools anonymous mappings of at least size bytes. Mappings
// are zeroed on return and unmapped when the pool drops them. The budget is
// charged for the page-rounded size.
func NewOffHeapPool(size int, opts ...Option) *pool.Pool[*OffHeap] {
	size = mmap.PageAlign(max(size, 1))

	return newPool("offheap", int64(size), buildOptions(opts),
		func() (*OffHeap, error) { return mmap.MapAnon(size) },
		func(r *OffHeap) *OffHeap {
			_ = r.Zero()
			return r
		},
		func(r *OffHeap) { _ = r.Close() },
	)
}
