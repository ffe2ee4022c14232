//go:build !bigidx

package core

import "github.com/hupe1980/arenapool/internal/conv"

// IdxSize is the index type for arena slots and rows.
type IdxSize = uint32

// IdxBits is the width of IdxSize in bits.
const IdxBits = 32

// IdxFromInt converts a non-negative int to IdxSize.
func IdxFromInt(n int) (IdxSize, error) {
	return conv.IntToUint32(n)
}

// IdxToInt converts an index to int. It only fails on 32-bit platforms for
// indices above math.MaxInt32.
func IdxToInt(i IdxSize) (int, error) {
	return conv.Uint64ToInt(uint64(i))
}
