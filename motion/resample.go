// Package motion implements the integer scale and translate resampler used
// for motion-compensated delta prediction.
package motion

import (
	"github.com/arloliu/aria/plane"
)

// Params describes one motion candidate. Scale grows (positive) or shrinks
// (negative) the shorter plane side by that many pixels, keeping the aspect
// ratio; MoveX and MoveY translate the content.
type Params struct {
	Scale int
	MoveX int
	MoveY int
}

// IsZero reports whether p is the identity transform.
func (p Params) IsZero() bool {
	return p.Scale == 0 && p.MoveX == 0 && p.MoveY == 0
}

// Resample warps src by p with nearest-neighbor sampling and returns a plane
// of the same shape. Samples mapped outside the source are clamped to the
// border. A zero p returns a copy of src.
func Resample[T plane.Sample](src *plane.Plane[T], p Params) *plane.Plane[T] {
	if p.IsZero() {
		return src.Clone()
	}

	width, height, channels := src.Width, src.Height, src.Channels
	scaledW, scaledH := scaledSize(width, height, p.Scale)
	halfDiffW := (scaledW - width) / 2
	halfDiffH := (scaledH - height) / 2

	mappedX := make([]int, width)
	for x := range width {
		mappedX[x] = clamp((x+halfDiffW-p.MoveX)*width/scaledW, 0, width-1)
	}

	out := plane.New[T](width, height, channels)
	for y := range height {
		my := clamp((y+halfDiffH-p.MoveY)*height/scaledH, 0, height-1)
		dstRow := out.Pix[y*width*channels : (y+1)*width*channels]
		srcRow := src.Pix[my*width*channels : (my+1)*width*channels]
		for x, mx := range mappedX {
			copy(dstRow[x*channels:(x+1)*channels], srcRow[mx*channels:(mx+1)*channels])
		}
	}

	return out
}

// scaledSize returns the virtual size of the scaled plane. The shorter side
// grows by scale and the other side follows proportionally.
func scaledSize(width, height, scale int) (int, int) {
	if height < width {
		h := max(1, height+scale)
		return max(1, width*h/height), h
	}

	w := max(1, width+scale)

	return w, max(1, height*w/width)
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
