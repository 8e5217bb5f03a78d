package section

import (
	"fmt"

	"github.com/arloliu/aria/endian"
	"github.com/arloliu/aria/errs"
	"github.com/arloliu/aria/format"
)

// ChannelLayout is the number of full-size and half-size planes in a frame.
// On the wire it is a nibble pair: full planes in the low nibble, half planes
// in the high nibble.
type ChannelLayout struct {
	Full uint8
	Half uint8
}

// ParseChannelLayout decodes the packed layout byte.
func ParseChannelLayout(b byte) ChannelLayout {
	return ChannelLayout{Full: b & 0x0F, Half: b >> 4}
}

// Byte returns the packed layout byte.
func (l ChannelLayout) Byte() byte {
	return (l.Half << 4) | (l.Full & 0x0F)
}

// Count returns the total number of planes per frame.
func (l ChannelLayout) Count() int {
	return int(l.Full) + int(l.Half)
}

// Validate checks both groups are in [0, 4] and the total is in [1, 8].
func (l ChannelLayout) Validate() error {
	if l.Full > MaxLayoutGroup || l.Half > MaxLayoutGroup {
		return fmt.Errorf("%w: full=%d half=%d", errs.ErrInvalidChannelCount, l.Full, l.Half)
	}

	if n := l.Count(); n < 1 || n > MaxPlanes {
		return fmt.Errorf("%w: total=%d", errs.ErrInvalidChannelCount, n)
	}

	return nil
}

// MainHeader is the fixed 40-byte header at the start of a stream.
//
// Layout:
//
//	0-3   magic "ARiA"
//	4     version (0)
//	5     channel layout
//	6     flags (bit 0: 16-bit samples)
//	7     framerate
//	8     max packet size
//	9     reserved
//	10-11 max scale radius
//	12-13 max move radius
//	14-15 reserved
//	16-19 width
//	20-23 height
//	24-27 frame count
//	28-31 reserved
//	32-39 user data
type MainHeader struct {
	UserData       uint64             // byte offset 32-39, opaque to the codec
	Width          uint32             // byte offset 16-19
	Height         uint32             // byte offset 20-23
	FrameCount     uint32             // byte offset 24-27, patched when the encoder closes
	MaxScaleRadius uint16             // byte offset 10-11
	MaxMoveRadius  uint16             // byte offset 12-13
	Layout         ChannelLayout      // byte offset 5
	SampleWidth    format.SampleWidth // byte offset 6, bit 0
	Framerate      uint8              // byte offset 7
	MaxPacketSize  uint8              // byte offset 8
}

// Parse decodes and validates the header from exactly MainHeaderSize bytes.
//
// Parameters:
//   - data: Byte slice containing the header
//
// Returns:
//   - error: ErrInvalidHeaderSize, ErrInvalidMagic, ErrUnsupportedVersion,
//     ErrInvalidHeaderFlags or any Validate error
func (h *MainHeader) Parse(data []byte) error {
	if len(data) != MainHeaderSize {
		return fmt.Errorf("%w: main header is %d bytes, want %d", errs.ErrInvalidHeaderSize, len(data), MainHeaderSize)
	}

	if [4]byte(data[0:4]) != MainMagic {
		return fmt.Errorf("%w: main header %q", errs.ErrInvalidMagic, data[0:4])
	}

	if data[4] != Version {
		return fmt.Errorf("%w: %d", errs.ErrUnsupportedVersion, data[4])
	}

	flags := data[6]
	if flags&^flagsKnownMask != 0 {
		return fmt.Errorf("%w: 0x%02x", errs.ErrInvalidHeaderFlags, flags)
	}

	engine := endian.GetLittleEndianEngine()

	h.Layout = ParseChannelLayout(data[5])
	h.SampleWidth = format.SampleWidth8
	if flags&FlagSample16 != 0 {
		h.SampleWidth = format.SampleWidth16
	}
	h.Framerate = data[7]
	h.MaxPacketSize = data[8]
	h.MaxScaleRadius = engine.Uint16(data[10:12])
	h.MaxMoveRadius = engine.Uint16(data[12:14])
	h.Width = engine.Uint32(data[16:20])
	h.Height = engine.Uint32(data[20:24])
	h.FrameCount = engine.Uint32(data[24:28])
	h.UserData = engine.Uint64(data[32:40])

	return h.Validate()
}

// Bytes serializes the header into a new MainHeaderSize byte slice.
func (h *MainHeader) Bytes() []byte {
	b := make([]byte, MainHeaderSize)
	engine := endian.GetLittleEndianEngine()

	copy(b[0:4], MainMagic[:])
	b[4] = Version
	b[5] = h.Layout.Byte()
	if h.SampleWidth == format.SampleWidth16 {
		b[6] = FlagSample16
	}
	b[7] = h.Framerate
	b[8] = h.MaxPacketSize
	engine.PutUint16(b[10:12], h.MaxScaleRadius)
	engine.PutUint16(b[12:14], h.MaxMoveRadius)
	engine.PutUint32(b[16:20], h.Width)
	engine.PutUint32(b[20:24], h.Height)
	engine.PutUint32(b[24:28], h.FrameCount)
	engine.PutUint64(b[32:40], h.UserData)

	return b
}

// Validate checks the field ranges of the header.
func (h *MainHeader) Validate() error {
	if err := h.Layout.Validate(); err != nil {
		return err
	}

	if !h.SampleWidth.IsValid() {
		return fmt.Errorf("%w: %d", errs.ErrSampleWidthMismatch, h.SampleWidth)
	}

	if h.Framerate < 1 {
		return fmt.Errorf("%w: framerate %d", errs.ErrInvalidHeaderField, h.Framerate)
	}

	if h.MaxPacketSize < 1 {
		return fmt.Errorf("%w: max packet size %d", errs.ErrInvalidHeaderField, h.MaxPacketSize)
	}

	if h.Width < 1 || h.Width > MaxDimension {
		return fmt.Errorf("%w: width %d", errs.ErrInvalidHeaderField, h.Width)
	}

	if h.Height < 1 || h.Height > MaxDimension {
		return fmt.Errorf("%w: height %d", errs.ErrInvalidHeaderField, h.Height)
	}

	return nil
}

// PlaneDimensions returns the width and height of plane i.
// Planes [0, Layout.Full) are full size, the rest are half size.
func (h *MainHeader) PlaneDimensions(i int) (int, int) {
	w, hh := int(h.Width), int(h.Height)
	if i < int(h.Layout.Full) {
		return w, hh
	}

	return HalfDimension(w), HalfDimension(hh)
}

// PlaneSize returns the byte size of plane i.
func (h *MainHeader) PlaneSize(i int) int {
	w, hh := h.PlaneDimensions(i)
	return w * hh * h.SampleWidth.Bytes()
}

// FrameDataSize returns the byte size of one frame's plane data, excluding
// its frame header.
func (h *MainHeader) FrameDataSize() int {
	total := 0
	for i := range h.Layout.Count() {
		total += h.PlaneSize(i)
	}

	return total
}

// FrameRecordSize returns the byte size of one frame including its header.
func (h *MainHeader) FrameRecordSize() int {
	return FrameHeaderSize + h.FrameDataSize()
}

// ParseMainHeader parses a MainHeader from the first MainHeaderSize bytes of data.
func ParseMainHeader(data []byte) (MainHeader, error) {
	if len(data) < MainHeaderSize {
		return MainHeader{}, fmt.Errorf("%w: main header is %d bytes, want %d", errs.ErrInvalidHeaderSize, len(data), MainHeaderSize)
	}

	h := MainHeader{}
	if err := h.Parse(data[:MainHeaderSize]); err != nil {
		return MainHeader{}, err
	}

	return h, nil
}
