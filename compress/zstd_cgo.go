//go:build cgo && aria_cgozstd

package compress

import (
	"fmt"

	"github.com/arloliu/aria/errs"
	"github.com/valyala/gozstd"
)

const gozstdDefaultLevel = 3

// Compress compresses the input data using the cgo zstd binding.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	level := c.level
	if level <= 0 {
		level = gozstdDefaultLevel
	}

	return gozstd.CompressLevel(nil, data, level), nil
}

// Decompress decodes a zstd frame that must expand to exactly size bytes.
func (c ZstdCompressor) Decompress(data []byte, size int) ([]byte, error) {
	if size == 0 && len(data) == 0 {
		return []byte{}, nil
	}

	out, err := gozstd.Decompress(make([]byte, 0, size), data)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %w", errs.ErrSizeMismatch, err)
	}

	if len(out) != size {
		return nil, sizeMismatch("zstd", len(out), size)
	}

	return out, nil
}
