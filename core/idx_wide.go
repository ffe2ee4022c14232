//go:build bigidx

package core

import "github.com/hupe1980/arenapool/internal/conv"

// IdxSize is the index type for arena slots and rows.
type IdxSize = uint64

// IdxBits is the width of IdxSize in bits.
const IdxBits = 64

// IdxFromInt converts a non-negative int to IdxSize.
func IdxFromInt(n int) (IdxSize, error) {
	return conv.IntToUint64(n)
}

// IdxToInt converts an index to int, failing if it exceeds math.MaxInt.
func IdxToInt(i IdxSize) (int, error) {
	return conv.Uint64ToInt(i)
}
