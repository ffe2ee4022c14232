package scratch

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"
	"github.com/hupe1980/arenapool/pool"
)

// NewVisitedPool pools dense bitsets sized for n positions, for graph and
// join traversals that mark what they have seen. A bitset that grew past ten
// times n is replaced on return.
func NewVisitedPool(n uint, opts ...Option) *pool.Pool[*bitset.BitSet] {
	n = max(n, 64)
	bytes := int64(bitset.New(n).BinaryStorageSize())

	return newPool("visited", bytes, buildOptions(opts),
		func() (*bitset.BitSet, error) { return bitset.New(n), nil },
		func(b *bitset.BitSet) *bitset.BitSet {
			if b.Len() > n*10 {
				return bitset.New(n)
			}
			b.ClearAll()
			return b
		},
		nil,
	)
}

// NewSelectionPool pools roaring bitmaps used as row selections. Selections
// address rows within one chunk by their 32-bit offset.
func NewSelectionPool(opts ...Option) *pool.Pool[*roaring.Bitmap] {
	return newPool("selection", 0, buildOptions(opts),
		func() (*roaring.Bitmap, error) { return roaring.New(), nil },
		func(b *roaring.Bitmap) *roaring.Bitmap {
			b.Clear()
			return b
		},
		nil,
	)
}
