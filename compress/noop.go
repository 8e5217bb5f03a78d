package compress

// NoOpCompressor stores data verbatim. It is selected by
// format.CompressionNone and is useful for debugging stream contents.
type NoOpCompressor struct{}

var _ Codec = NoOpCompressor{}

// NewNoOpCompressor creates a new no-operation compressor.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns data unchanged. The result shares memory with the input.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data unchanged after checking it is exactly size bytes.
func (c NoOpCompressor) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) != size {
		return nil, sizeMismatch("none", len(data), size)
	}

	return data, nil
}
