// Package compress provides the packet codecs of an aria stream, the
// asynchronous compression task used by the flush scheduler, and the size
// estimator used by mode decisions.
//
// # Overview
//
// Every packet holds the concatenated frame records of up to MaxPacketSize
// frames, compressed as one block. The decompressed size is always known from
// the main header, so codecs decode into an exactly sized buffer and reject
// anything else with errs.ErrSizeMismatch:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte, size int) ([]byte, error)
//	}
//
// # Supported Algorithms
//
// **LZ4** (format.CompressionLZ4) is the default. Packets are written in
// high-compression mode at level 9:
//
//	codec := compress.NewLZ4HCCompressor(9)
//	compressed, _ := codec.Compress(data)
//	original, _ := codec.Decompress(compressed, len(data))
//
// **S2** (format.CompressionS2) trades ratio for encode speed.
//
// **Zstandard** (format.CompressionZstd) gives the best ratio. The pure Go
// implementation is used unless the module is built with cgo and the
// aria_cgozstd tag.
//
// **None** (format.CompressionNone) stores packets verbatim.
//
// # Tasks
//
// NewTask compresses a buffer on its own goroutine and computes the adler32
// checksum of the result. Wait polls or blocks for completion and Result hands
// the output over exactly once:
//
//	task := compress.NewTask(codec, payload, true)
//	if task.Wait(0) == compress.TaskRunning {
//	    // not ready yet, try again later
//	}
//	data, checksum, err := task.Result()
//
// # Size Estimation
//
// A SizeEstimator reports how large a buffer would be after compression. The
// mode decision engine compares candidate filters and references by this
// size, so the estimator should match the packet codec's behavior.
//
// # Thread Safety
//
// All codecs are stateless values backed by sync.Pool and are safe for
// concurrent use.
package compress
