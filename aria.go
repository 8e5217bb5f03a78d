// Package aria provides a lightweight lossy and lossless container codec for
// planar video frames.
//
// A stream starts with a 40-byte main header followed by packets. Each packet
// batches up to MaxPacketSize frames into one compressed payload. Every frame
// is coded against nothing (an intra frame), the last intra frame, or the
// previous frame, whichever the size estimate favors. Each plane of a frame is
// then filtered with the cheapest predictive filter.
//
// # Core Features
//
//   - 8-bit and 16-bit samples, up to 4 full-size and 4 half-size planes
//   - PNG-style predictive filters with wide-stride lane variants
//   - Delta frames with optional integer scale and translate motion search
//   - Lossy coding through a residual dead zone, lossless at threshold 0
//   - LZ4 HC packet compression by default, S2 and Zstd as alternatives
//   - Background packet compression with ordered writes
//   - Adler-32 checksums on every packet
//
// # Basic Usage
//
// Encoding frames:
//
//	f, _ := os.Create("clip.aria")
//	enc, _ := aria.NewDefaultEncoder[uint8](f, stream.FrameFormat{
//	    Width: 640, Height: 360, Framerate: 30,
//	    Layout: section.ChannelLayout{Full: 1, Half: 2},
//	})
//	for _, frame := range frames {
//	    if err := enc.EncodeFrame(ctx, frame); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//	enc.Close()
//
// Decoding frames:
//
//	dec, _ := aria.NewDecoder[uint8](f)
//	for planes, err := range dec.Frames() {
//	    ...
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the stream
// package. For fine-grained control, use stream directly; the predict, filter
// and compress packages expose the individual coding stages.
package aria

import (
	"io"

	"github.com/arloliu/aria/format"
	"github.com/arloliu/aria/plane"
	"github.com/arloliu/aria/section"
	"github.com/arloliu/aria/stream"
)

// NewEncoder creates an encoder with custom options.
//
// Parameters:
//   - w: Destination; it must support seeking back to the main header
//   - f: Frame dimensions, framerate and plane layout
//   - opts: Optional configuration functions (see stream.EncoderOption)
//
// Returns:
//   - *stream.Encoder[T]: The created encoder.
//   - error: An error if the format or configuration is invalid.
//
// Available options:
//   - stream.WithMaxPacketSize(1..255)
//   - stream.WithDropThreshold(threshold)
//   - stream.WithMotionSearch(scaleRadius, moveRadius)
//   - stream.WithCompression(format.CompressionNone|LZ4|S2|Zstd)
//   - stream.WithCompressionLevel(level)
//   - stream.WithEstimateLevel(level) / stream.WithSizeEstimator(est)
//   - stream.WithFlushQueueSize(n) / stream.WithWorkers(n)
//   - stream.WithUserData(v) / stream.WithLogger(l)
func NewEncoder[T plane.Sample](w io.WriteSeeker, f stream.FrameFormat, opts ...stream.EncoderOption) (*stream.Encoder[T], error) {
	return stream.NewEncoder[T](w, f, opts...)
}

// NewDefaultEncoder creates an encoder with recommended default settings.
//
// It uses:
//   - The default drop threshold for the sample width (near lossless)
//   - LZ4 high-compression packets
//   - One packet per tenth of a second of footage
//   - No motion search
func NewDefaultEncoder[T plane.Sample](w io.WriteSeeker, f stream.FrameFormat) (*stream.Encoder[T], error) {
	return stream.NewEncoder[T](w, f)
}

// NewLosslessEncoder creates an encoder whose output decodes bit-exactly.
// Additional options are applied after the lossless setting, so they may
// still override it.
func NewLosslessEncoder[T plane.Sample](w io.WriteSeeker, f stream.FrameFormat, opts ...stream.EncoderOption) (*stream.Encoder[T], error) {
	allOpts := append([]stream.EncoderOption{stream.WithDropThreshold(0)}, opts...)
	return stream.NewEncoder[T](w, f, allOpts...)
}

// NewArchivalEncoder creates a lossless encoder tuned for size over speed:
// Zstd packets, a motion search of one pixel and the longest packets the
// container allows.
func NewArchivalEncoder[T plane.Sample](w io.WriteSeeker, f stream.FrameFormat, opts ...stream.EncoderOption) (*stream.Encoder[T], error) {
	allOpts := append([]stream.EncoderOption{
		stream.WithDropThreshold(0),
		stream.WithCompression(format.CompressionZstd),
		stream.WithCompressionLevel(19),
		stream.WithMotionSearch(1, 1),
		stream.WithMaxPacketSize(255),
	}, opts...)

	return stream.NewEncoder[T](w, f, allOpts...)
}

// NewDecoder creates a decoder for a stream with samples of type T.
//
// The decoder reads the main header immediately. When r implements
// io.Seeker, the decoder also supports Seek.
func NewDecoder[T plane.Sample](r io.Reader, opts ...stream.DecoderOption) (*stream.Decoder[T], error) {
	return stream.NewDecoder[T](r, opts...)
}

// ReadInfo reads the main header of a stream without decoding any frames.
func ReadInfo(r io.Reader) (section.MainHeader, error) {
	return stream.ReadInfo(r)
}
