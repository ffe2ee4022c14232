// Package pool implements a contention-sharded object pool.
//
// A Pool owns a fixed number of shards, each an independently locked stack of
// idle items. Acquire picks a shard with a Selector and pops an idle item, or
// manufactures a new one with the pool's Factory when the shard is empty. It
// never waits for another borrower: a miss costs one manufacture, not a stall.
// There is no stealing between shards.
//
// The returned Handle owns the item exclusively. Release puts the item back on
// the shard it was issued from, unless that shard already holds its retention
// ceiling of idle items, in which case the item is dropped. Release belongs in
// a defer so the item comes back on every exit path:
//
//	h, err := p.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer h.Release()
//
// # Conservation
//
// Items are never duplicated or silently lost. At any quiescent point
//
//	Idle + InFlight == Manufactured - Discarded
//
// where Discarded counts retention drops, explicit Handle.Discard calls and the
// idle items disposed of by Close. Stats reports all of these.
//
// # Shard Selection
//
// The default Affinity selector keeps a goroutine on the shard last used by the
// processor it runs on, which is the closest Go gets to thread-local affinity.
// RoundRobin and Random spread load without affinity. Callers that already know
// a worker index can bypass selection with AcquireOn.
package pool
