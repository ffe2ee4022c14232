package mmap

import (
	"fmt"
	"os"
	"sync/atomic"
)

// Region is an anonymous read-write mapping.
// It owns the pages and unmaps them on Close.
type Region struct {
	data   []byte
	closed atomic.Bool
	unmap  func([]byte) error
}

// MapAnon maps size bytes of zeroed memory, rounded up to the page size.
func MapAnon(size int) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	size = PageAlign(size)

	data, unmap, err := osMapAnon(size)
	if err != nil {
		return nil, fmt.Errorf("mmap: map %d bytes: %w", size, err)
	}

	return &Region{data: data, unmap: unmap}, nil
}

// PageAlign rounds size up to a multiple of the page size.
func PageAlign(size int) int {
	page := os.Getpagesize()
	return (size + page - 1) / page * page
}

// Bytes returns the mapped memory.
// Warning: The slice is valid only until Close() is called.
func (r *Region) Bytes() []byte {
	if r.closed.Load() {
		return nil
	}
	return r.data
}

// Size returns the size of the mapping in bytes.
func (r *Region) Size() int {
	return len(r.data)
}

// Advise provides hints to the kernel about how the memory will be accessed.
func (r *Region) Advise(pattern AccessPattern) error {
	if r.closed.Load() {
		return ErrClosed
	}
	return osAdvise(r.data, pattern)
}

// Zero clears the region. Where the kernel supports it the pages are handed
// back and fault in as zero on next use.
func (r *Region) Zero() error {
	if r.closed.Load() {
		return ErrClosed
	}
	if osZero(r.data) {
		return nil
	}
	clear(r.data)
	return nil
}

// Close unmaps the memory. It is idempotent.
func (r *Region) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	data := r.data
	r.data = nil
	return r.unmap(data)
}
