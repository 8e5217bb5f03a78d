// Package endian provides the byte order engine used by aria's fixed-size
// structures and sample serialization.
//
// Every field and every 16-bit sample in an aria stream is little-endian.
// The EndianEngine interface combines binary.ByteOrder with
// binary.AppendByteOrder so headers can be parsed in place and appended
// without scratch buffers:
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint32(buf, width)
//	height := engine.Uint32(data[20:24])
//
// All functions in this package are safe for concurrent use.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness reports the host byte order.
func CheckEndianness() binary.ByteOrder {
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittleEndian reports whether the host is little-endian.
func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

// GetLittleEndianEngine returns the engine used for the aria wire format.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// AppendUint16s appends each value of src to dst using engine's byte order.
//
// Parameters:
//   - engine: Byte order to encode with
//   - dst: Destination buffer, grown as needed
//   - src: Values to append
//
// Returns:
//   - []byte: The extended buffer
func AppendUint16s(engine EndianEngine, dst []byte, src []uint16) []byte {
	if engine == CheckEndianness() && len(src) > 0 {
		raw := unsafe.Slice((*byte)(unsafe.Pointer(&src[0])), len(src)*2)
		return append(dst, raw...)
	}

	for _, v := range src {
		dst = engine.AppendUint16(dst, v)
	}

	return dst
}

// Uint16s decodes len(dst) values from src into dst.
// src must hold at least 2*len(dst) bytes.
func Uint16s(engine EndianEngine, dst []uint16, src []byte) {
	_ = src[:len(dst)*2]
	for i := range dst {
		dst[i] = engine.Uint16(src[i*2:])
	}
}
