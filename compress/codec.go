package compress

import (
	"fmt"

	"github.com/arloliu/aria/errs"
	"github.com/arloliu/aria/format"
)

// Compressor compresses a complete buffer in one call.
//
// Memory management:
//   - Returned slice is newly allocated and owned by the caller, except for
//     the no-op compressor which returns its input
//   - Input slice is not modified
//   - Implementations are safe for concurrent use
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a buffer produced by the matching Compressor.
//
// The caller always knows the exact decompressed size from the stream
// layout, so implementations decode into a buffer of exactly size bytes and
// fail with errs.ErrSizeMismatch when the payload is corrupt or decodes to a
// different length. There is no tolerance for truncation or padding.
type Decompressor interface {
	Decompress(data []byte, size int) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// Stats accumulates compression totals for a session.
type Stats struct {
	// Method identifies the compression method used.
	Method format.CompressionMethod

	// Packets is the number of compressed buffers.
	Packets int64

	// OriginalSize is the total size before compression.
	OriginalSize int64

	// CompressedSize is the total size after compression.
	CompressedSize int64
}

// Add records one compressed buffer.
func (s *Stats) Add(originalSize, compressedSize int) {
	s.Packets++
	s.OriginalSize += int64(originalSize)
	s.CompressedSize += int64(compressedSize)
}

// CompressionRatio returns compressed size / original size, or 0 when
// nothing was recorded.
func (s Stats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage.
func (s Stats) SpaceSavings() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return (1.0 - s.CompressionRatio()) * 100.0
}

// CreateCodec creates the Codec for a packet compression method.
//
// Parameters:
//   - method: Stream compression method
//   - level: Method-specific level, 0 selects the default. LZ4 levels 1-9
//     select high-compression mode (higher values are clamped to 9); S2
//     levels 2 and 3 select the better and best encoders; Zstd levels follow
//     the zstd scale.
//
// Returns:
//   - Codec: Codec for the method
//   - error: ErrInvalidCompression for an unknown method
func CreateCodec(method format.CompressionMethod, level int) (Codec, error) {
	switch method {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionLZ4:
		if level <= 0 {
			level = DefaultLZ4Level
		}

		return NewLZ4HCCompressor(level), nil
	case format.CompressionS2:
		return NewS2Compressor(level), nil
	case format.CompressionZstd:
		return NewZstdCompressor(level), nil
	default:
		return nil, fmt.Errorf("%w: %s (%d)", errs.ErrInvalidCompression, method, uint8(method))
	}
}

func sizeMismatch(name string, got, want int) error {
	return fmt.Errorf("%w: %s decoded %d bytes, want %d", errs.ErrSizeMismatch, name, got, want)
}

// MaxCompressedSize returns an upper bound on the compressed size of n bytes
// for every supported method. Larger declared sizes indicate corruption.
func MaxCompressedSize(n int) int {
	return n + n/4 + 1024
}
