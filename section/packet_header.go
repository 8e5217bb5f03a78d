package section

import (
	"fmt"

	"github.com/arloliu/aria/endian"
	"github.com/arloliu/aria/errs"
	"github.com/arloliu/aria/format"
)

// PacketHeader precedes each compressed batch of frames.
//
// Layout:
//
//	0-3   magic "VFPK"
//	4     frame count
//	5     full (NONE-coded) frame count
//	6     compression method
//	7     reserved
//	8-11  compressed payload size
//	12-15 Adler-32 checksum of the compressed payload
type PacketHeader struct {
	Size           uint32                   // byte offset 8-11
	Checksum       uint32                   // byte offset 12-15
	FrameCount     uint8                    // byte offset 4
	FullFrameCount uint8                    // byte offset 5
	Compression    format.CompressionMethod // byte offset 6
}

// Parse decodes the header from exactly PacketHeaderSize bytes.
// Field ranges that depend on the main header are checked by Validate.
func (h *PacketHeader) Parse(data []byte) error {
	if len(data) != PacketHeaderSize {
		return fmt.Errorf("%w: packet header is %d bytes, want %d", errs.ErrInvalidHeaderSize, len(data), PacketHeaderSize)
	}

	if [4]byte(data[0:4]) != PacketMagic {
		return fmt.Errorf("%w: packet header %q", errs.ErrInvalidMagic, data[0:4])
	}

	engine := endian.GetLittleEndianEngine()

	h.FrameCount = data[4]
	h.FullFrameCount = data[5]
	h.Compression = format.CompressionMethod(data[6])
	h.Size = engine.Uint32(data[8:12])
	h.Checksum = engine.Uint32(data[12:16])

	return nil
}

// Bytes serializes the header into a new PacketHeaderSize byte slice.
func (h *PacketHeader) Bytes() []byte {
	b := make([]byte, PacketHeaderSize)
	engine := endian.GetLittleEndianEngine()

	copy(b[0:4], PacketMagic[:])
	b[4] = h.FrameCount
	b[5] = h.FullFrameCount
	b[6] = uint8(h.Compression)
	engine.PutUint32(b[8:12], h.Size)
	engine.PutUint32(b[12:16], h.Checksum)

	return b
}

// Validate checks the packet against the stream's main header.
//
// Parameters:
//   - main: The validated main header of the stream
//
// Returns:
//   - error: ErrInvalidHeaderField for frame counts out of range,
//     ErrInvalidCompression for an unknown method
func (h *PacketHeader) Validate(main *MainHeader) error {
	if h.FrameCount < 1 || h.FrameCount > main.MaxPacketSize {
		return fmt.Errorf("%w: packet frame count %d, max %d", errs.ErrInvalidHeaderField, h.FrameCount, main.MaxPacketSize)
	}

	if h.FullFrameCount > h.FrameCount {
		return fmt.Errorf("%w: packet full frame count %d exceeds frame count %d", errs.ErrInvalidHeaderField, h.FullFrameCount, h.FrameCount)
	}

	if !h.Compression.IsValid() {
		return fmt.Errorf("%w: %d", errs.ErrInvalidCompression, h.Compression)
	}

	return nil
}

// PayloadSize returns the exact decompressed size of the packet payload.
func (h *PacketHeader) PayloadSize(main *MainHeader) int {
	return int(h.FrameCount) * main.FrameRecordSize()
}
