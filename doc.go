// Package arenapool provides the allocation substrate of a parallel query
// engine: typed arenas for graph-shaped plan and expression data, and
// contention-sharded pools for the scratch resources workers borrow while
// they run.
//
// # Packages
//
//   - arena: append-only typed storage addressed by integer handles
//   - pool: sharded object pool with per-shard locking and retention ceilings
//   - scratch: ready-made pools for buffers, bitsets, arenas and codecs
//   - resource: memory budget, background slots and manufacture rate
//   - metrics: Prometheus export of pool and budget statistics
//
// # Sessions
//
// A Session owns the pools of one parallel operation and tears them down
// together:
//
//	s, err := arenapool.NewSession(
//	    arenapool.WithName("q42"),
//	    arenapool.WithResourceConfig(resource.Config{MemoryLimitBytes: 256 << 20}),
//	)
//	if err != nil { ... }
//	defer s.Close()
//
//	h, err := s.Buffers().Acquire(ctx)
//	if err != nil { ... }
//	defer h.Release()
//
// Additional pools share the session's shard count, retention, logger and
// budget:
//
//	exprs, err := arenapool.NewArenaPool[Expr](s, "exprs", 1024)
//
// # Logging
//
// Logging uses log/slog through Logger. The default discards everything.
package arenapool
