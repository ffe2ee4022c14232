package scratch

import (
	"context"

	"github.com/hupe1980/arenapool/pool"
	"github.com/hupe1980/arenapool/resource"
)

// Option configures a scratch pool.
type Option func(*options)

type options struct {
	controller *resource.Controller
	poolOpts   []pool.Option
}

// WithController charges every manufactured item against c.
func WithController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

// WithPoolOptions passes options to the underlying pool. Reset and discard
// hooks are owned by the scratch constructor and override any given here.
func WithPoolOptions(opts ...pool.Option) Option {
	return func(o *options) {
		o.poolOpts = append(o.poolOpts, opts...)
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// newPool assembles a pool for items of a fixed nominal size. The factory
// takes a manufacture token and reserves bytes before calling alloc; the
// discard hook releases the reservation after dispose.
func newPool[T any](
	name string,
	bytes int64,
	o options,
	alloc func() (T, error),
	reset func(T) T,
	dispose func(T),
) *pool.Pool[T] {
	c := o.controller

	factory := func(ctx context.Context) (T, error) {
		var zero T
		if err := c.Manufacture(ctx); err != nil {
			return zero, err
		}
		if err := c.AcquireMemory(bytes); err != nil {
			return zero, err
		}
		v, err := alloc()
		if err != nil {
			c.ReleaseMemory(bytes)
			return zero, err
		}
		return v, nil
	}

	opts := make([]pool.Option, 0, len(o.poolOpts)+3)
	opts = append(opts, pool.WithName(name))
	opts = append(opts, o.poolOpts...)
	if reset != nil {
		opts = append(opts, pool.WithReset(reset))
	}
	opts = append(opts, pool.WithDiscard(func(v T) {
		if dispose != nil {
			dispose(v)
		}
		c.ReleaseMemory(bytes)
	}))

	return pool.New(factory, opts...)
}
