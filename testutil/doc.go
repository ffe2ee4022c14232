// Package testutil provides testing utilities for arenapool.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Workloads
//
//	rng := testutil.NewRNG(seed)
//	ops := rng.Ops(1000, 0.7) // true = acquire/insert, false = release/replace
//	n := rng.Intn(64)
//
// # Concurrency
//
//	testutil.Parallel(8, func(worker int) {
//	    // runs on 8 goroutines, returns when all are done
//	})
package testutil
