// Package plane provides the generic sample grid that every codec stage
// operates on.
//
// A Plane holds Width x Height pixels of Channels interleaved samples each.
// The sample type is either uint8 or uint16 and is fixed per session, so all
// stages are written once as generic functions instead of dispatching on the
// sample width at every call.
package plane

import (
	"fmt"
	"unsafe"

	"github.com/arloliu/aria/endian"
	"github.com/arloliu/aria/errs"
	"github.com/arloliu/aria/format"
	"github.com/arloliu/aria/internal/hash"
	"github.com/arloliu/aria/section"
)

// Sample is the set of supported sample types.
type Sample interface {
	uint8 | uint16
}

// Plane is a row-major grid of interleaved samples.
type Plane[T Sample] struct {
	Pix      []T
	Width    int
	Height   int
	Channels int
}

// New allocates a zeroed plane.
func New[T Sample](width, height, channels int) *Plane[T] {
	return &Plane[T]{
		Pix:      make([]T, width*height*channels),
		Width:    width,
		Height:   height,
		Channels: channels,
	}
}

// FromPix wraps pix without copying. pix must hold exactly
// width*height*channels samples.
func FromPix[T Sample](width, height, channels int, pix []T) (*Plane[T], error) {
	p := &Plane[T]{Pix: pix, Width: width, Height: height, Channels: channels}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks the dimensions and that Pix has exactly the implied length.
func (p *Plane[T]) Validate() error {
	if p.Width < 1 || p.Height < 1 || p.Channels < 1 {
		return fmt.Errorf("%w: %dx%dx%d", errs.ErrInvalidDimensions, p.Width, p.Height, p.Channels)
	}

	if want := p.Width * p.Height * p.Channels; len(p.Pix) != want {
		return fmt.Errorf("%w: plane holds %d samples, want %d", errs.ErrSizeMismatch, len(p.Pix), want)
	}

	return nil
}

// Stride returns the number of samples per row.
func (p *Plane[T]) Stride() int {
	return p.Width * p.Channels
}

// Len returns the number of samples.
func (p *Plane[T]) Len() int {
	return len(p.Pix)
}

// SizeBytes returns the serialized size of the plane.
func (p *Plane[T]) SizeBytes() int {
	return len(p.Pix) * BytesPerSample[T]()
}

// At returns channel c of the pixel at (x, y).
func (p *Plane[T]) At(x, y, c int) T {
	return p.Pix[(y*p.Width+x)*p.Channels+c]
}

// Set stores v in channel c of the pixel at (x, y).
func (p *Plane[T]) Set(x, y, c int, v T) {
	p.Pix[(y*p.Width+x)*p.Channels+c] = v
}

// Clone returns a deep copy.
func (p *Plane[T]) Clone() *Plane[T] {
	out := &Plane[T]{Width: p.Width, Height: p.Height, Channels: p.Channels}
	out.Pix = make([]T, len(p.Pix))
	copy(out.Pix, p.Pix)

	return out
}

// SameShape reports whether o has the same dimensions and channel count.
func (p *Plane[T]) SameShape(o *Plane[T]) bool {
	return p.Width == o.Width && p.Height == o.Height && p.Channels == o.Channels
}

// Equal reports whether o has the same shape and samples.
func (p *Plane[T]) Equal(o *Plane[T]) bool {
	if p == nil || o == nil {
		return p == o
	}

	if !p.SameShape(o) || len(p.Pix) != len(o.Pix) {
		return false
	}

	for i, v := range p.Pix {
		if o.Pix[i] != v {
			return false
		}
	}

	return true
}

// AppendBytes appends the little-endian serialization of the samples to dst.
func (p *Plane[T]) AppendBytes(dst []byte) []byte {
	switch pix := any(p.Pix).(type) {
	case []uint8:
		return append(dst, pix...)
	case []uint16:
		return endian.AppendUint16s(endian.GetLittleEndianEngine(), dst, pix)
	}

	return dst
}

// Bytes returns the little-endian serialization of the samples.
func (p *Plane[T]) Bytes() []byte {
	return p.AppendBytes(make([]byte, 0, p.SizeBytes()))
}

// Decode builds a plane from its serialized samples. data must hold exactly
// width*height*channels samples; any other length is ErrSizeMismatch.
func Decode[T Sample](data []byte, width, height, channels int) (*Plane[T], error) {
	if width < 1 || height < 1 || channels < 1 {
		return nil, fmt.Errorf("%w: %dx%dx%d", errs.ErrInvalidDimensions, width, height, channels)
	}

	p := New[T](width, height, channels)
	if want := p.SizeBytes(); len(data) != want {
		return nil, fmt.Errorf("%w: plane data is %d bytes, want %d", errs.ErrSizeMismatch, len(data), want)
	}

	switch pix := any(p.Pix).(type) {
	case []uint8:
		copy(pix, data)
	case []uint16:
		endian.Uint16s(endian.GetLittleEndianEngine(), pix, data)
	}

	return p, nil
}

// BytesPerSample returns the serialized size of one sample of type T.
func BytesPerSample[T Sample]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// SampleWidthOf returns the header sample width tag for T.
func SampleWidthOf[T Sample]() format.SampleWidth {
	if BytesPerSample[T]() == 2 {
		return format.SampleWidth16
	}

	return format.SampleWidth8
}

// MaxValue returns the largest value representable by T.
func MaxValue[T Sample]() int {
	return 1<<(8*BytesPerSample[T]()) - 1
}

// HalfSize returns the dimensions of the half-resolution plane class.
func HalfSize(width, height int) (int, int) {
	return section.HalfDimension(width), section.HalfDimension(height)
}

// CloneAll deep-copies a list of planes.
func CloneAll[T Sample](planes []*Plane[T]) []*Plane[T] {
	if planes == nil {
		return nil
	}

	out := make([]*Plane[T], len(planes))
	for i, p := range planes {
		out[i] = p.Clone()
	}

	return out
}

// EqualAll reports whether two plane lists hold equal planes in order.
func EqualAll[T Sample](a, b []*Plane[T]) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}

	return true
}

// Digest returns an xxHash64 digest over the shapes and samples of planes.
func Digest[T Sample](planes []*Plane[T]) uint64 {
	parts := make([][]byte, 0, 2*len(planes))
	for _, p := range planes {
		shape := []byte{
			byte(p.Width), byte(p.Width >> 8), byte(p.Height), byte(p.Height >> 8), byte(p.Channels),
		}
		parts = append(parts, shape, p.Bytes())
	}

	return hash.Sum(parts...)
}
