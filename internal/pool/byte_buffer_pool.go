// Package pool recycles the byte buffers that hold uncompressed packets while
// they are assembled and compressed.
package pool

import "sync"

const (
	PacketBufferDefaultSize  = 1024 * 256       // initial capacity of a packet buffer
	PacketBufferMaxThreshold = 1024 * 1024 * 64 // larger buffers are not recycled
)

// ByteBuffer is an append-only byte slice that is reset between packets.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer returns an empty buffer with capacity size.
func NewByteBuffer(size int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, size)}
}

// Bytes returns the buffered bytes. They alias the buffer.
func (bb *ByteBuffer) Bytes() []byte { return bb.B }

// Len returns the number of buffered bytes.
func (bb *ByteBuffer) Len() int { return len(bb.B) }

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int { return cap(bb.B) }

// Reset empties the buffer and keeps its memory.
func (bb *ByteBuffer) Reset() { bb.B = bb.B[:0] }

// Grow makes room for n more bytes.
//
// The capacity grows by PacketBufferDefaultSize while the buffer is small and
// by a quarter once it exceeds four default sizes, but always by at least n.
func (bb *ByteBuffer) Grow(n int) {
	free := cap(bb.B) - len(bb.B)
	if free >= n {
		return
	}

	step := PacketBufferDefaultSize
	if c := cap(bb.B); c > 4*PacketBufferDefaultSize {
		step = c / 4
	}

	grown := make([]byte, len(bb.B), len(bb.B)+max(step, n))
	copy(grown, bb.B)
	bb.B = grown
}

// Write appends p. The error is always nil.
func (bb *ByteBuffer) Write(p []byte) (int, error) {
	bb.B = append(bb.B, p...)
	return len(p), nil
}

// ByteBufferPool hands out ByteBuffers of a fixed initial capacity.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int // 0 keeps every buffer
}

// NewByteBufferPool creates a pool of buffers with capacity size. Buffers
// whose capacity exceeds maxThreshold are dropped on Put.
func NewByteBufferPool(size, maxThreshold int) *ByteBufferPool {
	p := &ByteBufferPool{maxThreshold: maxThreshold}
	p.pool.New = func() any { return NewByteBuffer(size) }

	return p
}

// Get returns an empty buffer.
func (p *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)
	return bb
}

// Put resets bb and recycles it. A nil bb is ignored.
func (p *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil || (p.maxThreshold > 0 && cap(bb.B) > p.maxThreshold) {
		return
	}

	bb.Reset()
	p.pool.Put(bb)
}

var packets = NewByteBufferPool(PacketBufferDefaultSize, PacketBufferMaxThreshold)

// GetPacketBuffer returns an empty buffer for one uncompressed packet.
func GetPacketBuffer() *ByteBuffer { return packets.Get() }

// PutPacketBuffer recycles a buffer obtained from GetPacketBuffer.
func PutPacketBuffer(bb *ByteBuffer) { packets.Put(bb) }
