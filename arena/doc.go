// Package arena provides a typed, index-addressed arena for graph structures.
//
// An Arena owns every node of a graph. Edges are Node handles, plain integers
// issued by Insert, so expression trees, logical plans with shared subtrees and
// structures with back-edges can be built without pointers between nodes and
// without reference counting. Two parents share a subtree by storing the same
// handle.
//
// # Handles
//
// A handle stays valid until Clear, no matter how many insertions follow it.
// Growth of the backing slice never changes what a handle refers to. Replace
// overwrites a slot in place and leaves the handle unchanged.
//
// Looking up a handle that was never issued, or a slot emptied by Take, is a
// programming error and panics with an *InvalidHandleError (which wraps
// ErrInvalidHandle). Handles issued before a Clear are not detected on the fast
// path; callers that keep references across reuse cycles should hold a Ref and
// use Resolve, which checks the arena generation.
//
// # Reuse
//
// Clear drops all nodes but keeps the backing capacity, so an arena obtained
// from a pool can build the next graph without reallocating. The first handle
// issued after Clear is 0 again.
//
// # Concurrency
//
// An Arena has a single owner. It is not safe for concurrent mutation; give
// each goroutine its own arena instead, for example from a
// pool.Pool[*arena.Arena[T]].
package arena
