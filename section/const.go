package section

const (
	MainHeaderSize   = 40 // fixed main header size in bytes
	PacketHeaderSize = 16 // fixed packet header size in bytes
	FrameHeaderSize  = 32 // fixed frame header size in bytes

	Version = 0 // the only supported container version

	MaxPlanes      = 8     // maximum number of planes per frame
	MaxLayoutGroup = 4     // maximum number of full or half planes
	MaxDimension   = 32767 // maximum width and height

	FlagSample16   = 0x01 // flags bit 0: 16-bit samples
	flagsKnownMask = FlagSample16
)

var (
	MainMagic   = [4]byte{'A', 'R', 'i', 'A'}
	PacketMagic = [4]byte{'V', 'F', 'P', 'K'}
	FrameMagic  = [4]byte{'V', 'F', 'R', 'M'}
)

// HalfDimension returns the size of a half-resolution plane along one axis.
func HalfDimension(n int) int {
	return max(1, n/2)
}
