package arena

import (
	"fmt"
	"unsafe"
)

// Stats is a snapshot of arena occupancy.
type Stats struct {
	Len        int    // slots issued since the last Clear
	Live       int    // slots holding a value
	Vacant     int    // slots emptied by Take
	Capacity   int    // backing store capacity in slots
	NodeBytes  int    // size of one slot
	Generation uint32 // reuse cycle
}

// Stats returns the current arena statistics.
func (a *Arena[T]) Stats() Stats {
	var zero T
	return Stats{
		Len:        len(a.items),
		Live:       len(a.items) - a.numVacant,
		Vacant:     a.numVacant,
		Capacity:   cap(a.items),
		NodeBytes:  int(unsafe.Sizeof(zero)),
		Generation: a.gen,
	}
}

// ReservedBytes approximates the memory held by the backing store.
func (s Stats) ReservedBytes() int64 {
	return int64(s.Capacity) * int64(s.NodeBytes)
}

// Usage returns the ratio of issued slots to capacity as a percentage.
func (s Stats) Usage() float64 {
	if s.Capacity == 0 {
		return 0
	}
	return float64(s.Len) / float64(s.Capacity) * 100
}

func (a *Arena[T]) String() string {
	s := a.Stats()
	return fmt.Sprintf(
		"Arena{len: %d, live: %d, vacant: %d, cap: %d, reserved: %.2f KB, gen: %d}",
		s.Len, s.Live, s.Vacant, s.Capacity,
		float64(s.ReservedBytes())/1024,
		s.Generation,
	)
}
