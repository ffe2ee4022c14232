// Package mmap provides anonymous memory mappings for off-heap scratch space.
//
// A Region is a read-write mapping obtained directly from the operating
// system. Its pages live outside the Go heap, so large scratch areas held in
// pools neither inflate the heap goal nor get scanned by the garbage
// collector.
//
//	r, err := mmap.MapAnon(1 << 20)
//	if err != nil { ... }
//	defer r.Close()
//
//	buf := r.Bytes()
//	r.Advise(mmap.AccessSequential)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE and
//     madvise(2) for access hints
//   - Windows: VirtualAlloc/VirtualFree (hints are no-ops)
//
// # Thread Safety
//
// Close is idempotent and safe to call concurrently. Callers must ensure no
// goroutine touches Bytes() after Close returns.
package mmap
