// Package scratch provides ready-made pools for the scratch resources of a
// parallel query engine.
//
// Each constructor returns a *pool.Pool whose factory, reset and discard
// hooks suit the resource:
//
//   - NewBytePool: 64-byte aligned byte buffers, truncated on return
//   - NewIdxPool: row-index buffers of core.IdxSize
//   - NewArenaPool: expression arenas, cleared on return
//   - NewVisitedPool: dense visited bitsets
//   - NewSelectionPool: roaring row-selection bitmaps
//   - NewZstdEncoderPool, NewZstdDecoderPool, NewLZ4CompressorPool: spill codecs
//   - NewOffHeapPool: anonymous mappings outside the Go heap
//
// With WithController every manufactured item reserves its nominal size from
// a resource.Controller and gives it back when the pool drops the item.
package scratch
