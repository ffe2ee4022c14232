package scratch

import (
	"github.com/hupe1980/arenapool/arena"
	"github.com/hupe1980/arenapool/pool"
)

// NewArenaPool pools arenas pre-sized for capacity nodes. An arena is cleared
// on return, so handles taken from it must not outlive the borrow.
func NewArenaPool[T any](capacity int, opts ...Option) *pool.Pool[*arena.Arena[T]] {
	capacity = max(capacity, 1)
	alloc := func() *arena.Arena[T] { return arena.New[T](arena.WithCapacity(capacity)) }
	bytes := alloc().Stats().ReservedBytes()

	return newPool("arena", bytes, buildOptions(opts),
		func() (*arena.Arena[T], error) { return alloc(), nil },
		func(a *arena.Arena[T]) *arena.Arena[T] {
			if a.Cap() > maxGrowth*capacity {
				return alloc()
			}
			a.Clear()
			return a
		},
		nil,
	)
}
