package compress

import (
	"fmt"
	"sync"

	"github.com/arloliu/aria/errs"
	"github.com/pierrec/lz4/v4"
)

// DefaultLZ4Level is the high-compression level used for packets and size
// estimation when no level is configured.
const DefaultLZ4Level = 9

var lz4HCLevels = [...]lz4.CompressionLevel{
	lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4, lz4.Level5,
	lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

// lz4CompressorPool pools fast-mode compressors; their hash tables are
// reusable across calls.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// lz4HCCompressorPool pools high-compression compressors. Level is set per call.
var lz4HCCompressorPool = sync.Pool{
	New: func() any {
		return &lz4.CompressorHC{}
	},
}

// LZ4Compressor compresses raw LZ4 blocks in fast or high-compression mode.
// The block format carries no length, so Decompress needs the exact size.
type LZ4Compressor struct {
	level int // 0 = fast mode, 1-9 = high compression
}

var _ Codec = LZ4Compressor{}

// NewLZ4Compressor creates a fast-mode LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// NewLZ4HCCompressor creates a high-compression LZ4 compressor.
// level is clamped to [1, 9].
func NewLZ4HCCompressor(level int) LZ4Compressor {
	return LZ4Compressor{level: min(max(level, 1), len(lz4HCLevels))}
}

// Level returns the high-compression level, 0 in fast mode.
func (c LZ4Compressor) Level() int {
	return c.level
}

// Compress compresses data into a single LZ4 block.
//
// Parameters:
//   - data: Input data to compress
//
// Returns:
//   - []byte: Compressed block (nil if input is empty)
//   - error: Compression error if any
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	var (
		n   int
		err error
	)
	if c.level == 0 {
		lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
		n, err = lc.CompressBlock(data, dst)
		lz4CompressorPool.Put(lc)
	} else {
		hc, _ := lz4HCCompressorPool.Get().(*lz4.CompressorHC)
		hc.Level = lz4HCLevels[c.level-1]
		n, err = hc.CompressBlock(data, dst)
		lz4HCCompressorPool.Put(hc)
	}

	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}

	return dst[:n], nil
}

// Decompress decodes an LZ4 block that must expand to exactly size bytes.
func (c LZ4Compressor) Decompress(data []byte, size int) ([]byte, error) {
	if size == 0 && len(data) == 0 {
		return []byte{}, nil
	}

	buf := make([]byte, size)
	n, err := lz4.UncompressBlock(data, buf)
	if err != nil {
		return nil, fmt.Errorf("%w: lz4: %w", errs.ErrSizeMismatch, err)
	}

	if n != size {
		return nil, sizeMismatch("lz4", n, size)
	}

	return buf, nil
}
