// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// Scratch buffers start on a 64-byte boundary so a buffer owned by one worker
// never shares its first cache line with another allocation.
package mem
