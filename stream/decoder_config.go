package stream

import (
	"log/slog"

	"github.com/arloliu/aria/internal/options"
)

// DecoderConfig holds the decoder settings collected from DecoderOption values.
type DecoderConfig struct {
	verifyChecksum bool
	logger         *slog.Logger
}

func newDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		verifyChecksum: true,
		logger:         slog.New(slog.DiscardHandler),
	}
}

// DecoderOption configures a Decoder.
type DecoderOption = options.Option[*DecoderConfig]

// WithChecksumVerification enables or disables the Adler-32 check of packet
// payloads. It is enabled by default.
func WithChecksumVerification(enabled bool) DecoderOption {
	return options.NoError(func(c *DecoderConfig) {
		c.verifyChecksum = enabled
	})
}

// WithDecoderLogger sets the logger for debug output.
func WithDecoderLogger(l *slog.Logger) DecoderOption {
	return options.NoError(func(c *DecoderConfig) {
		if l != nil {
			c.logger = l
		}
	})
}
