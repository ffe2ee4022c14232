package pool

import (
	"errors"
	"fmt"
)

var (
	// ErrManufactureFailed is wrapped by every *ManufactureError.
	ErrManufactureFailed = errors.New("pool: manufacture failed")
	// ErrClosed is returned by Acquire and Prewarm after Close.
	ErrClosed = errors.New("pool: closed")
	// ErrInvalidShard is returned by AcquireOn for a negative shard.
	ErrInvalidShard = errors.New("pool: invalid shard")
	// ErrReleased is the panic value for use of a released handle.
	ErrReleased = errors.New("pool: handle already released")
)

// ManufactureError reports a factory failure during Acquire or Prewarm.
//
// It matches both ErrManufactureFailed and the factory's own error with
// errors.Is.
type ManufactureError struct {
	Pool  string
	Shard int
	Err   error
}

func (e *ManufactureError) Error() string {
	return fmt.Sprintf("pool %s: manufacture on shard %d: %v", e.Pool, e.Shard, e.Err)
}

func (e *ManufactureError) Unwrap() []error { return []error{ErrManufactureFailed, e.Err} }
