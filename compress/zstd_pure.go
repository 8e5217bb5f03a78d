//go:build !cgo || !aria_cgozstd

package compress

import (
	"fmt"
	"sync"

	"github.com/arloliu/aria/errs"
	"github.com/klauspost/compress/zstd"
)

// zstdDecoderPool pools zstd decoders; they run without allocations after warmup.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

// zstdEncoderPools holds one encoder pool per speed level.
var zstdEncoderPools sync.Map // map[zstd.EncoderLevel]*sync.Pool

func zstdEncoderPool(level int) *sync.Pool {
	encLevel := zstd.SpeedDefault
	if level > 0 {
		encLevel = zstd.EncoderLevelFromZstd(level)
	}

	if p, ok := zstdEncoderPools.Load(encLevel); ok {
		return p.(*sync.Pool)
	}

	p := &sync.Pool{
		New: func() any {
			encoder, err := zstd.NewWriter(nil,
				zstd.WithEncoderLevel(encLevel),
				zstd.WithEncoderCRC(false),
				zstd.WithEncoderConcurrency(1),
			)
			if err != nil {
				panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
			}

			return encoder
		},
	}
	actual, _ := zstdEncoderPools.LoadOrStore(encLevel, p)

	return actual.(*sync.Pool)
}

// Compress compresses the input data using a pooled encoder.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	pool := zstdEncoderPool(c.level)
	encoder, _ := pool.Get().(*zstd.Encoder)
	defer pool.Put(encoder)

	return encoder.EncodeAll(data, nil), nil
}

// Decompress decodes a zstd frame that must expand to exactly size bytes.
func (c ZstdCompressor) Decompress(data []byte, size int) ([]byte, error) {
	if size == 0 && len(data) == 0 {
		return []byte{}, nil
	}

	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	out, err := decoder.DecodeAll(data, make([]byte, 0, size))
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %w", errs.ErrSizeMismatch, err)
	}

	if len(out) != size {
		return nil, sizeMismatch("zstd", len(out), size)
	}

	return out, nil
}
