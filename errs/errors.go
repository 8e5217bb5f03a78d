// Package errs defines the sentinel errors returned by aria packages.
//
// Errors are grouped into families. Every specific error wraps its family
// sentinel, so callers can match either level with errors.Is:
//
//	if errors.Is(err, errs.ErrFormat) { ... }          // any format violation
//	if errors.Is(err, errs.ErrInvalidMagic) { ... }    // only a bad magic
//
// Functions attach context with fmt.Errorf("%w: ...", errs.ErrX) so the
// sentinel chain is always preserved.
package errs

import (
	"errors"
	"fmt"
)

// Error families.
var (
	// ErrFormat reports a malformed container: bad magic, unsupported version
	// or an out-of-range header field.
	ErrFormat = errors.New("format error")

	// ErrSizeMismatch reports a decompressed or compressed size that disagrees
	// with the declared or requested size.
	ErrSizeMismatch = errors.New("size mismatch")

	// ErrMissingReference reports a delta-coded frame whose anchor does not exist yet.
	ErrMissingReference = errors.New("missing reference")

	// ErrUnsupportedValue reports a channel count, filter mode, reference type,
	// compression method or option value outside the valid set.
	ErrUnsupportedValue = errors.New("unsupported value")
)

// Format errors.
var (
	ErrInvalidMagic        = fmt.Errorf("%w: invalid magic", ErrFormat)
	ErrUnsupportedVersion  = fmt.Errorf("%w: unsupported version", ErrFormat)
	ErrInvalidHeaderField  = fmt.Errorf("%w: header field out of range", ErrFormat)
	ErrInvalidHeaderSize   = fmt.Errorf("%w: invalid header size", ErrFormat)
	ErrInvalidHeaderFlags  = fmt.Errorf("%w: invalid header flags", ErrFormat)
	ErrChecksumMismatch    = fmt.Errorf("%w: checksum mismatch", ErrFormat)
	ErrFullFrameCount      = fmt.Errorf("%w: full frame count mismatch", ErrFormat)
	ErrNoFrames            = fmt.Errorf("%w: stream holds no frames", ErrFormat)
	ErrFrameCountExceeded  = fmt.Errorf("%w: frame count exceeded", ErrFormat)
	ErrMotionOutOfRange    = fmt.Errorf("%w: motion parameter out of range", ErrFormat)
	ErrTrailingPacketBytes = fmt.Errorf("%w: packet holds trailing bytes", ErrFormat)
)

// Unsupported values.
var (
	ErrInvalidChannelCount  = fmt.Errorf("%w: channel count", ErrUnsupportedValue)
	ErrInvalidFilterMode    = fmt.Errorf("%w: filter mode", ErrUnsupportedValue)
	ErrInvalidReferenceType = fmt.Errorf("%w: reference type", ErrUnsupportedValue)
	ErrInvalidCompression   = fmt.Errorf("%w: compression method", ErrUnsupportedValue)
	ErrSampleWidthMismatch  = fmt.Errorf("%w: sample width", ErrUnsupportedValue)
	ErrInvalidDimensions    = fmt.Errorf("%w: plane dimensions", ErrUnsupportedValue)
	ErrInvalidOption        = fmt.Errorf("%w: option", ErrUnsupportedValue)
)

// Session and task errors.
var (
	ErrEmptyResult     = errors.New("compression produced an empty result")
	ErrTaskConsumed    = errors.New("task result already consumed")
	ErrEncoderClosed   = errors.New("encoder is closed")
	ErrNotSeekable     = errors.New("stream is not seekable")
	ErrPlaneCount      = fmt.Errorf("%w: plane count", ErrUnsupportedValue)
	ErrFrameOutOfRange = errors.New("frame index out of range")
)
