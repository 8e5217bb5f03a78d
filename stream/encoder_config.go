package stream

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/arloliu/aria/compress"
	"github.com/arloliu/aria/errs"
	"github.com/arloliu/aria/format"
	"github.com/arloliu/aria/internal/options"
	"github.com/arloliu/aria/section"
)

// Default encoder settings for 8-bit and 16-bit samples.
const (
	DefaultDropThreshold8  = 1
	DefaultDropThreshold16 = 128
)

// FrameFormat describes the frames of a stream.
type FrameFormat struct {
	Width     int
	Height    int
	Framerate int
	Layout    section.ChannelLayout
}

// EncoderConfig holds the encoder settings collected from EncoderOption values.
type EncoderConfig struct {
	maxPacketSize    int // 0 = derived from the framerate
	dropThreshold    int // -1 = default for the sample width
	scaleRadius      int
	moveRadius       int
	compression      format.CompressionMethod
	compressionLevel int
	estimateLevel    int
	estimator        compress.SizeEstimator
	flushQueueSize   int
	workers          int
	userData         uint64
	logger           *slog.Logger

	// startTask compresses a packet payload; replaced in tests.
	startTask func(c compress.Compressor, data []byte) packetTask
}

func newEncoderConfig() *EncoderConfig {
	return &EncoderConfig{
		dropThreshold:  -1,
		compression:    format.CompressionLZ4,
		estimateLevel:  compress.DefaultLZ4Level,
		flushQueueSize: 2 * runtime.NumCPU(),
		logger:         slog.New(slog.DiscardHandler),
		startTask: func(c compress.Compressor, data []byte) packetTask {
			return compress.NewTask(c, data, true)
		},
	}
}

// defaultMaxPacketSize is one packet per tenth of a second of footage.
func defaultMaxPacketSize(framerate int) int {
	return max(1, (framerate+9)/10)
}

// EncoderOption configures an Encoder.
type EncoderOption = options.Option[*EncoderConfig]

// WithMaxPacketSize sets the number of frames batched into one packet, 1 to 255.
// The default is framerate/10 rounded up.
func WithMaxPacketSize(n int) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		if n < 1 || n > 255 {
			return fmt.Errorf("%w: max packet size %d", errs.ErrInvalidOption, n)
		}
		c.maxPacketSize = n

		return nil
	})
}

// WithDropThreshold sets the lossy dead zone. Residuals of at most
// threshold are dropped; 0 selects lossless coding. The default is
// DefaultDropThreshold8 or DefaultDropThreshold16 by sample width.
func WithDropThreshold(threshold int) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		if threshold < 0 {
			return fmt.Errorf("%w: drop threshold %d", errs.ErrInvalidOption, threshold)
		}
		c.dropThreshold = threshold

		return nil
	})
}

// WithMotionSearch enables the motion search of delta frames over
// scale in [-scaleRadius, scaleRadius] and moves in [-moveRadius, moveRadius].
// The cost grows with (2*scaleRadius+1) * (2*moveRadius+1)^2.
func WithMotionSearch(scaleRadius, moveRadius int) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		if scaleRadius < 0 || scaleRadius > section.MaxDimension || moveRadius < 0 || moveRadius > section.MaxDimension {
			return fmt.Errorf("%w: motion radius %d/%d", errs.ErrInvalidOption, scaleRadius, moveRadius)
		}
		c.scaleRadius, c.moveRadius = scaleRadius, moveRadius

		return nil
	})
}

// WithCompression sets the packet compression method. LZ4 is the default.
func WithCompression(method format.CompressionMethod) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		if !method.IsValid() {
			return fmt.Errorf("%w: %d", errs.ErrInvalidCompression, method)
		}
		c.compression = method

		return nil
	})
}

// WithCompressionLevel sets the method-specific packet compression level.
// See compress.CreateCodec.
func WithCompressionLevel(level int) EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		c.compressionLevel = level
	})
}

// WithEstimateLevel sets the LZ4 high-compression level used to cost
// candidates during mode decisions.
func WithEstimateLevel(level int) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		if level < 1 {
			return fmt.Errorf("%w: estimate level %d", errs.ErrInvalidOption, level)
		}
		c.estimateLevel = level

		return nil
	})
}

// WithSizeEstimator replaces the LZ4 estimator used to cost candidates.
func WithSizeEstimator(est compress.SizeEstimator) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		if est == nil {
			return fmt.Errorf("%w: nil size estimator", errs.ErrInvalidOption)
		}
		c.estimator = est

		return nil
	})
}

// WithFlushQueueSize sets how many packets may compress in the background
// before encoding waits for the oldest. The default is twice the CPU count.
func WithFlushQueueSize(n int) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		if n < 1 {
			return fmt.Errorf("%w: flush queue size %d", errs.ErrInvalidOption, n)
		}
		c.flushQueueSize = n

		return nil
	})
}

// WithWorkers bounds the goroutines estimating candidates of one plane.
// 0 selects GOMAXPROCS.
func WithWorkers(n int) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		if n < 0 {
			return fmt.Errorf("%w: workers %d", errs.ErrInvalidOption, n)
		}
		c.workers = n

		return nil
	})
}

// WithUserData stores an opaque value in the main header.
func WithUserData(v uint64) EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		c.userData = v
	})
}

// WithLogger sets the logger for debug output. Logging is discarded by default.
func WithLogger(l *slog.Logger) EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		if l != nil {
			c.logger = l
		}
	})
}
