package compress

// SizeEstimator reports the compressed size of a buffer.
type SizeEstimator interface {
	EstimateSize(data []byte) (int, error)
}

// CodecEstimator estimates sizes by compressing with a Compressor and
// discarding the output.
type CodecEstimator struct {
	c Compressor
}

var _ SizeEstimator = CodecEstimator{}

// NewCodecEstimator creates an estimator backed by c.
func NewCodecEstimator(c Compressor) CodecEstimator {
	return CodecEstimator{c: c}
}

// EstimateSize returns the compressed size of data. Empty input has size 0.
func (e CodecEstimator) EstimateSize(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}

	out, err := e.c.Compress(data)
	if err != nil {
		return 0, err
	}

	return len(out), nil
}

// LZ4Estimator estimates sizes with LZ4 and reports the smaller of the
// high-compression and fast-mode blocks.
//
// The high-compression matcher emits short blocks as plain literals, so a
// 16-byte zero residual costs as much as 16 bytes of noise. The fast matcher
// still finds the match on such blocks.
type LZ4Estimator struct {
	hc   LZ4Compressor
	fast LZ4Compressor
}

var _ SizeEstimator = LZ4Estimator{}

// NewLZ4Estimator creates an LZ4 estimator at high-compression level
// (clamped to [1, 9]).
func NewLZ4Estimator(level int) LZ4Estimator {
	return LZ4Estimator{hc: NewLZ4HCCompressor(level), fast: NewLZ4Compressor()}
}

// EstimateSize returns the smaller LZ4 block size of data. Empty input has
// size 0.
func (e LZ4Estimator) EstimateSize(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}

	hc, err := e.hc.Compress(data)
	if err != nil {
		return 0, err
	}

	fast, err := e.fast.Compress(data)
	if err != nil {
		return 0, err
	}

	return min(len(hc), len(fast)), nil
}
