package pool

import (
	"math/rand/v2"
	"sync"
	"sync/atomic"
)

// Selector chooses the shard for an Acquire. Select must return a value in
// [0,n) and be safe for concurrent use.
type Selector interface {
	Select(n int) int
}

// SelectorFunc adapts a function to the Selector interface.
type SelectorFunc func(n int) int

// Select implements Selector.
func (f SelectorFunc) Select(n int) int { return f(n) }

type roundRobin struct {
	next atomic.Uint64
}

// RoundRobin cycles through the shards in order.
func RoundRobin() Selector {
	return &roundRobin{}
}

func (r *roundRobin) Select(n int) int {
	return int((r.next.Add(1) - 1) % uint64(n))
}

type random struct{}

// Random picks a shard uniformly at random.
func Random() Selector {
	return random{}
}

func (random) Select(n int) int {
	return rand.IntN(n)
}

// affinity hands out shard tokens through a sync.Pool. sync.Pool keeps a
// private slot per processor, so a goroutine running on the same P keeps
// getting the same token back. Tokens lost to GC are replaced round-robin.
type affinity struct {
	tokens sync.Pool
	next   atomic.Uint64
}

// Affinity keeps each processor on a stable shard.
func Affinity() Selector {
	return &affinity{}
}

func (a *affinity) Select(n int) int {
	tok, _ := a.tokens.Get().(*uint64)
	if tok == nil {
		tok = new(uint64)
		*tok = a.next.Add(1) - 1
	}
	i := int(*tok % uint64(n))
	a.tokens.Put(tok)
	return i
}
