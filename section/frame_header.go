package section

import (
	"fmt"

	"github.com/arloliu/aria/endian"
	"github.com/arloliu/aria/errs"
	"github.com/arloliu/aria/format"
)

// FrameHeader precedes each frame's plane data inside a packet payload.
//
// Layout:
//
//	0-3   magic "VFRM"
//	4     reference type
//	5-7   reserved
//	8-9   scale (signed)
//	10-11 move x (signed)
//	12-13 move y (signed)
//	14-21 intra filter mode per plane
//	22-27 reserved
//	28-31 plane data size
type FrameHeader struct {
	Size      uint32                       // byte offset 28-31
	Scale     int16                        // byte offset 8-9
	MoveX     int16                        // byte offset 10-11
	MoveY     int16                        // byte offset 12-13
	Modes     [MaxPlanes]format.FilterMode // byte offset 14-21
	Reference format.ReferenceType         // byte offset 4
}

// HasMotion reports whether any motion parameter is non-zero.
func (h *FrameHeader) HasMotion() bool {
	return h.Scale != 0 || h.MoveX != 0 || h.MoveY != 0
}

// Parse decodes the header from exactly FrameHeaderSize bytes and checks
// the reference type and filter modes.
func (h *FrameHeader) Parse(data []byte) error {
	if len(data) != FrameHeaderSize {
		return fmt.Errorf("%w: frame header is %d bytes, want %d", errs.ErrInvalidHeaderSize, len(data), FrameHeaderSize)
	}

	if [4]byte(data[0:4]) != FrameMagic {
		return fmt.Errorf("%w: frame header %q", errs.ErrInvalidMagic, data[0:4])
	}

	engine := endian.GetLittleEndianEngine()

	h.Reference = format.ReferenceType(data[4])
	h.Scale = int16(engine.Uint16(data[8:10]))
	h.MoveX = int16(engine.Uint16(data[10:12]))
	h.MoveY = int16(engine.Uint16(data[12:14]))
	for i := range h.Modes {
		h.Modes[i] = format.FilterMode(data[14+i])
	}
	h.Size = engine.Uint32(data[28:32])

	if !h.Reference.IsValid() {
		return fmt.Errorf("%w: %d", errs.ErrInvalidReferenceType, h.Reference)
	}

	for i, m := range h.Modes {
		if !m.IsValid() {
			return fmt.Errorf("%w: plane %d mode %d", errs.ErrInvalidFilterMode, i, m)
		}
	}

	return nil
}

// Bytes serializes the header into a new FrameHeaderSize byte slice.
func (h *FrameHeader) Bytes() []byte {
	return h.AppendBytes(make([]byte, 0, FrameHeaderSize))
}

// AppendBytes appends the serialized header to dst.
func (h *FrameHeader) AppendBytes(dst []byte) []byte {
	engine := endian.GetLittleEndianEngine()

	dst = append(dst, FrameMagic[:]...)
	dst = append(dst, uint8(h.Reference), 0, 0, 0)
	dst = engine.AppendUint16(dst, uint16(h.Scale))
	dst = engine.AppendUint16(dst, uint16(h.MoveX))
	dst = engine.AppendUint16(dst, uint16(h.MoveY))
	for _, m := range h.Modes {
		dst = append(dst, uint8(m))
	}
	dst = append(dst, 0, 0, 0, 0, 0, 0)
	dst = engine.AppendUint32(dst, h.Size)

	return dst
}

// Validate checks the frame against the stream's main header: the declared
// data size must equal the layout's exact frame size and the motion
// parameters must lie within the declared radii.
func (h *FrameHeader) Validate(main *MainHeader) error {
	if want := main.FrameDataSize(); int(h.Size) != want {
		return fmt.Errorf("%w: frame data is %d bytes, want %d", errs.ErrSizeMismatch, h.Size, want)
	}

	if absInt16(h.Scale) > int(main.MaxScaleRadius) {
		return fmt.Errorf("%w: scale %d, radius %d", errs.ErrMotionOutOfRange, h.Scale, main.MaxScaleRadius)
	}

	if absInt16(h.MoveX) > int(main.MaxMoveRadius) || absInt16(h.MoveY) > int(main.MaxMoveRadius) {
		return fmt.Errorf("%w: move (%d,%d), radius %d", errs.ErrMotionOutOfRange, h.MoveX, h.MoveY, main.MaxMoveRadius)
	}

	for i := main.Layout.Count(); i < MaxPlanes; i++ {
		if h.Modes[i] != format.FilterNone {
			return fmt.Errorf("%w: unused plane %d carries mode %s", errs.ErrInvalidFilterMode, i, h.Modes[i])
		}
	}

	return nil
}

func absInt16(v int16) int {
	if v < 0 {
		return -int(v)
	}

	return int(v)
}
