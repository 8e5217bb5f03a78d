package compress

// ZstdCompressor provides Zstandard compression for packets where ratio
// matters more than speed.
//
// The implementation is selected at build time: the pure Go
// klauspost/compress encoder by default, or the cgo valyala/gozstd binding
// when built with cgo and the aria_cgozstd tag.
type ZstdCompressor struct {
	level int // zstd scale, 0 = library default
}

var _ Codec = ZstdCompressor{}

// NewZstdCompressor creates a Zstd compressor at the given level.
//
// Example:
//
//	compressor := NewZstdCompressor(0)
//	compressed, err := compressor.Compress(data)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor(level int) ZstdCompressor {
	return ZstdCompressor{level: level}
}
