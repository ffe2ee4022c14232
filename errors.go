package arenapool

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionClosed is returned when adding a pool to a closed session.
	ErrSessionClosed = errors.New("arenapool: session closed")
	// ErrDuplicatePool is returned when a pool name is already taken.
	ErrDuplicatePool = errors.New("arenapool: duplicate pool name")
)

// PoolError reports a failure of one pool during a session-wide operation.
//
// The original underlying error can be accessed via errors.Unwrap.
type PoolError struct {
	Op   string
	Pool string
	Err  error
}

func (e *PoolError) Error() string {
	return fmt.Sprintf("%s pool %s: %v", e.Op, e.Pool, e.Err)
}

func (e *PoolError) Unwrap() error { return e.Err }
