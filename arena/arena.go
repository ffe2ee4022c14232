package arena

import (
	"fmt"
	"iter"

	"github.com/bits-and-blooms/bitset"
	"github.com/hupe1980/arenapool/core"
)

// Node is a handle to a slot in an Arena.
type Node core.IdxSize

// Idx returns the handle as a raw index.
func (n Node) Idx() core.IdxSize { return core.IdxSize(n) }

// NullNode is never issued by Insert. Use it to encode a missing edge.
const NullNode = Node(core.NullIdx)

// Option configures an Arena.
type Option func(*options)

type options struct {
	capacity  int
	slotReuse bool
}

// WithCapacity pre-sizes the backing store for n nodes.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithSlotReuse makes Insert fill slots emptied by Take (lowest first) before
// appending. Without it, Insert always appends and vacant slots stay vacant
// until Replace or Clear.
func WithSlotReuse() Option {
	return func(o *options) {
		o.slotReuse = true
	}
}

// Arena stores nodes of type T and addresses them by Node.
type Arena[T any] struct {
	items     []T
	vacant    *bitset.BitSet // slots emptied by Take; nil until the first Take
	numVacant int
	slotReuse bool
	gen       uint32
}

// New creates an empty Arena.
func New[T any](opts ...Option) *Arena[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return &Arena[T]{
		items:     make([]T, 0, o.capacity),
		slotReuse: o.slotReuse,
		gen:       1,
	}
}

// Insert stores v and returns its handle.
func (a *Arena[T]) Insert(v T) Node {
	if a.slotReuse && a.numVacant > 0 {
		if i, ok := a.vacant.NextSet(0); ok {
			a.vacant.Clear(i)
			a.numVacant--
			a.items[i] = v
			return Node(i)
		}
	}

	n := a.nextNode()
	a.items = append(a.items, v)
	return n
}

func (a *Arena[T]) nextNode() Node {
	idx, err := core.IdxFromInt(len(a.items))
	if err != nil {
		panic(fmt.Errorf("%w: %w", ErrCapacityExceeded, err))
	}
	if Node(idx) == NullNode {
		panic(fmt.Errorf("%w: %d slots", ErrCapacityExceeded, len(a.items)))
	}
	return Node(idx)
}

// slot returns the position of a live node or panics.
func (a *Arena[T]) slot(n Node, op string) int {
	if uint64(n) >= uint64(len(a.items)) {
		panic(&InvalidHandleError{Op: op, Node: n, Len: len(a.items)})
	}
	i := int(n)
	if a.numVacant > 0 && a.vacant.Test(uint(i)) {
		panic(&InvalidHandleError{Op: op, Node: n, Len: len(a.items), Vacant: true})
	}
	return i
}

// Get returns the value stored at n.
func (a *Arena[T]) Get(n Node) T {
	return a.items[a.slot(n, "get")]
}

// GetPtr returns a pointer to the value stored at n for in-place mutation.
//
// The pointer is invalidated by the next Insert that grows the backing store.
// The handle is not; re-fetch the pointer after inserting.
func (a *Arena[T]) GetPtr(n Node) *T {
	return &a.items[a.slot(n, "get_ptr")]
}

// Replace stores v at n and returns the previous value. A slot emptied by Take
// becomes live again and the zero value is returned.
func (a *Arena[T]) Replace(n Node, v T) T {
	if uint64(n) >= uint64(len(a.items)) {
		panic(&InvalidHandleError{Op: "replace", Node: n, Len: len(a.items)})
	}
	i := int(n)
	if a.numVacant > 0 && a.vacant.Test(uint(i)) {
		a.vacant.Clear(uint(i))
		a.numVacant--
	}
	old := a.items[i]
	a.items[i] = v
	return old
}

// Take moves the value out of n and leaves the slot vacant. The handle stays
// reserved: Replace can fill it again.
func (a *Arena[T]) Take(n Node) T {
	i := a.slot(n, "take")
	var zero T
	v := a.items[i]
	a.items[i] = zero

	if a.vacant == nil {
		a.vacant = bitset.New(uint(cap(a.items)))
	}
	a.vacant.Set(uint(i))
	a.numVacant++
	return v
}

// Pop removes the last slot and returns its value. It reports false when the
// arena is empty. A vacant last slot yields the zero value.
func (a *Arena[T]) Pop() (T, bool) {
	var zero T
	if len(a.items) == 0 {
		return zero, false
	}

	last := len(a.items) - 1
	v := a.items[last]
	a.items[last] = zero
	a.items = a.items[:last]

	if a.numVacant > 0 && a.vacant.Test(uint(last)) {
		a.vacant.Clear(uint(last))
		a.numVacant--
	}
	return v, true
}

// LastNode returns the handle of the most recently appended slot.
func (a *Arena[T]) LastNode() (Node, bool) {
	if len(a.items) == 0 {
		return 0, false
	}
	return Node(len(a.items) - 1), true
}

// Contains reports whether n refers to a live slot.
func (a *Arena[T]) Contains(n Node) bool {
	if uint64(n) >= uint64(len(a.items)) {
		return false
	}
	return a.numVacant == 0 || !a.vacant.Test(uint(n))
}

// Clear drops every node and keeps the backing capacity. All handles issued so
// far become invalid and the generation advances.
func (a *Arena[T]) Clear() {
	clear(a.items) // release references held by T for the GC
	a.items = a.items[:0]
	if a.vacant != nil {
		a.vacant.ClearAll()
	}
	a.numVacant = 0
	a.gen++
}

// Len returns the number of slots issued since the last Clear, vacant ones
// included. Handles are always below Len.
func (a *Arena[T]) Len() int { return len(a.items) }

// IsEmpty reports whether no slot has been issued since the last Clear.
func (a *Arena[T]) IsEmpty() bool { return len(a.items) == 0 }

// Live returns the number of slots holding a value.
func (a *Arena[T]) Live() int { return len(a.items) - a.numVacant }

// Cap returns the capacity of the backing store.
func (a *Arena[T]) Cap() int { return cap(a.items) }

// Generation identifies the current reuse cycle. It changes on every Clear.
func (a *Arena[T]) Generation() uint32 { return a.gen }

// All iterates over live nodes in insertion order.
func (a *Arena[T]) All() iter.Seq2[Node, T] {
	return func(yield func(Node, T) bool) {
		for i, v := range a.items {
			if a.numVacant > 0 && a.vacant.Test(uint(i)) {
				continue
			}
			if !yield(Node(i), v) {
				return
			}
		}
	}
}
