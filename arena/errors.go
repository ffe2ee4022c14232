package arena

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHandle is wrapped by every *InvalidHandleError.
	ErrInvalidHandle = errors.New("arena: invalid handle")
	// ErrStaleRef is returned by Resolve for a reference from an earlier generation.
	ErrStaleRef = errors.New("arena: stale reference")
	// ErrCapacityExceeded is the panic value when the index space is exhausted.
	ErrCapacityExceeded = errors.New("arena: index space exhausted")
)

// InvalidHandleError describes a lookup with a handle the arena did not issue,
// or one whose slot has been emptied by Take.
//
// It is raised with panic by the accessors and returned by Resolve.
type InvalidHandleError struct {
	Op     string
	Node   Node
	Len    int
	Vacant bool
}

func (e *InvalidHandleError) Error() string {
	if e.Vacant {
		return fmt.Sprintf("arena: %s: handle %d refers to a vacant slot", e.Op, e.Node)
	}
	return fmt.Sprintf("arena: %s: handle %d out of bounds (len %d)", e.Op, e.Node, e.Len)
}

func (e *InvalidHandleError) Unwrap() error { return ErrInvalidHandle }
