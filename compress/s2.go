package compress

import (
	"fmt"

	"github.com/arloliu/aria/errs"
	"github.com/klauspost/compress/s2"
)

// S2Compressor compresses S2 blocks. Level 2 selects the better encoder and
// level 3 or above the best encoder; anything else uses the default speed.
type S2Compressor struct {
	level int
}

var _ Codec = S2Compressor{}

// NewS2Compressor creates a new S2 compressor.
func NewS2Compressor(level int) S2Compressor {
	return S2Compressor{level: level}
}

// Compress compresses the input data using S2 compression.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	switch {
	case c.level >= 3:
		return s2.EncodeBest(nil, data), nil
	case c.level == 2:
		return s2.EncodeBetter(nil, data), nil
	default:
		return s2.Encode(nil, data), nil
	}
}

// Decompress decodes an S2 block that must expand to exactly size bytes.
func (c S2Compressor) Decompress(data []byte, size int) ([]byte, error) {
	if size == 0 && len(data) == 0 {
		return []byte{}, nil
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("%w: s2: %w", errs.ErrSizeMismatch, err)
	}

	if n != size {
		return nil, sizeMismatch("s2", n, size)
	}

	out, err := s2.Decode(make([]byte, size), data)
	if err != nil {
		return nil, fmt.Errorf("%w: s2: %w", errs.ErrSizeMismatch, err)
	}

	return out, nil
}
