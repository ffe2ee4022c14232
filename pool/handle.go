package pool

// Handle is an exclusive borrow of one pooled item.
//
// A Handle belongs to a single goroutine. Release (or Discard) ends the borrow;
// calling either again is a no-op, and any other method on a released handle
// panics with ErrReleased.
type Handle[T any] struct {
	item     T
	pool     *Pool[T]
	shard    int
	released bool
}

func (h *Handle[T]) mustLive() {
	if h.released {
		panic(ErrReleased)
	}
}

// Value returns the borrowed item.
func (h *Handle[T]) Value() T {
	h.mustLive()
	return h.item
}

// Ptr returns a pointer to the borrowed item, for value types such as slices
// that are grown in place.
func (h *Handle[T]) Ptr() *T {
	h.mustLive()
	return &h.item
}

// Set replaces the borrowed item. The new item is what Release returns to the
// pool; the old one is forgotten without passing through the discard hook.
func (h *Handle[T]) Set(v T) {
	h.mustLive()
	h.item = v
}

// Shard returns the shard the item will be returned to.
func (h *Handle[T]) Shard() int { return h.shard }

// Released reports whether the borrow has ended.
func (h *Handle[T]) Released() bool { return h.released }

// Release returns the item to its origin shard, or drops it if the shard is at
// its retention ceiling or the pool is closed.
func (h *Handle[T]) Release() {
	if h == nil || h.released {
		return
	}
	h.released = true

	item := h.item
	var zero T
	h.item = zero
	h.pool.put(h.shard, item)
}

// Discard ends the borrow and drops the item instead of returning it, for items
// left in an unusable state.
func (h *Handle[T]) Discard() {
	if h == nil || h.released {
		return
	}
	h.released = true

	item := h.item
	var zero T
	h.item = zero

	h.pool.inFlight.Add(-1)
	h.pool.metrics.RecordRelease(h.shard, false)
	h.pool.drop(item)
}
