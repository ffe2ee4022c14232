package scratch

import (
	"context"
	"errors"
	"slices"
	"unsafe"

	"github.com/hupe1980/arenapool/pool"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ErrIncompressible is returned by CompressLZ4 when the block does not shrink.
// Callers store such blocks raw.
var ErrIncompressible = errors.New("scratch: block is incompressible")

// NewZstdEncoderPool pools single-threaded zstd encoders for spill blocks.
// Borrowers use EncodeAll; streaming through Reset is not reset on return.
func NewZstdEncoderPool(level zstd.EncoderLevel, opts ...Option) *pool.Pool[*zstd.Encoder] {
	return newPool("zstd-encoder", 0, buildOptions(opts),
		func() (*zstd.Encoder, error) {
			return zstd.NewWriter(nil,
				zstd.WithEncoderLevel(level),
				zstd.WithEncoderConcurrency(1),
			)
		},
		nil,
		nil,
	)
}

// NewZstdDecoderPool pools single-threaded zstd decoders. A dropped decoder
// is closed.
func NewZstdDecoderPool(opts ...Option) *pool.Pool[*zstd.Decoder] {
	return newPool("zstd-decoder", 0, buildOptions(opts),
		func() (*zstd.Decoder, error) {
			return zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		},
		nil,
		func(d *zstd.Decoder) { d.Close() },
	)
}

// NewLZ4CompressorPool pools LZ4 block compressors. Each one carries the hash
// table CompressBlock would otherwise allocate per call.
func NewLZ4CompressorPool(opts ...Option) *pool.Pool[*lz4.Compressor] {
	bytes := int64(unsafe.Sizeof(lz4.Compressor{}))
	return newPool("lz4-compressor", bytes, buildOptions(opts),
		func() (*lz4.Compressor, error) { return new(lz4.Compressor), nil },
		nil,
		nil,
	)
}

// EncodeZstd compresses src with a pooled encoder and appends the frame to dst.
func EncodeZstd(ctx context.Context, p *pool.Pool[*zstd.Encoder], dst, src []byte) ([]byte, error) {
	h, err := p.Acquire(ctx)
	if err != nil {
		return dst, err
	}
	defer h.Release()

	return h.Value().EncodeAll(src, dst), nil
}

// DecodeZstd decompresses a frame with a pooled decoder and appends the result
// to dst.
func DecodeZstd(ctx context.Context, p *pool.Pool[*zstd.Decoder], dst, src []byte) ([]byte, error) {
	h, err := p.Acquire(ctx)
	if err != nil {
		return dst, err
	}
	defer h.Release()

	return h.Value().DecodeAll(src, dst)
}

// CompressLZ4 compresses src as one LZ4 block with a pooled compressor and
// appends it to dst.
func CompressLZ4(ctx context.Context, p *pool.Pool[*lz4.Compressor], dst, src []byte) ([]byte, error) {
	h, err := p.Acquire(ctx)
	if err != nil {
		return dst, err
	}
	defer h.Release()

	bound := lz4.CompressBlockBound(len(src))
	dst = slices.Grow(dst, bound)
	out := dst[len(dst) : len(dst)+bound]

	n, err := h.Value().CompressBlock(src, out)
	if err != nil {
		return dst, err
	}
	if len(src) > 0 && (n == 0 || n >= len(src)) {
		return dst, ErrIncompressible
	}
	return dst[:len(dst)+n], nil
}
