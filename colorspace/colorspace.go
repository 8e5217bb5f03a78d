// Package colorspace converts between interleaved RGB(A) planes and the
// planar luma/chroma layout stored in aria frames.
//
// The transform is YCoCg: Y carries luma, U carries the orange chroma (Co)
// and V the green chroma (Cg), both offset by half the sample range. Chroma
// planes are usually stored at half resolution, so a frame produced by
// SplitFrame is [Y, A (optional), U/2, V/2]: full-size planes first, then
// half-size planes, matching the container's plane order.
package colorspace

import (
	"fmt"

	"github.com/arloliu/aria/errs"
	"github.com/arloliu/aria/plane"
	"github.com/arloliu/aria/section"
)

// RGBToYUV splits an interleaved RGB or RGBA plane into full-resolution Y,
// U and V planes. a is the alpha plane for RGBA input and nil otherwise.
func RGBToYUV[T plane.Sample](rgb *plane.Plane[T]) (y, u, v, a *plane.Plane[T], err error) {
	if err := rgb.Validate(); err != nil {
		return nil, nil, nil, nil, err
	}

	if rgb.Channels != 3 && rgb.Channels != 4 {
		return nil, nil, nil, nil, fmt.Errorf("%w: rgb plane has %d channels", errs.ErrInvalidChannelCount, rgb.Channels)
	}

	w, h, stride := rgb.Width, rgb.Height, rgb.Channels
	y = plane.New[T](w, h, 1)
	u = plane.New[T](w, h, 1)
	v = plane.New[T](w, h, 1)
	if stride == 4 {
		a = plane.New[T](w, h, 1)
	}

	vmax := float64(plane.MaxValue[T]())
	half := float64(plane.MaxValue[T]() / 2)

	for i := range w * h {
		r := float64(rgb.Pix[i*stride])
		g := float64(rgb.Pix[i*stride+1])
		b := float64(rgb.Pix[i*stride+2])

		cy := r*0.25 + g*0.5 + b*0.25
		cg := -r*0.25 + g*0.5 - b*0.25 + half
		co := r*0.5 - b*0.5 + half

		y.Pix[i] = T(clampFloat(cy, vmax))
		u.Pix[i] = T(clampFloat(co, vmax))
		v.Pix[i] = T(clampFloat(cg, vmax))
		if a != nil {
			a.Pix[i] = rgb.Pix[i*stride+3]
		}
	}

	return y, u, v, a, nil
}

// YUVToRGB merges planes of equal size into an interleaved RGB plane, or
// RGBA when a is non-nil.
func YUVToRGB[T plane.Sample](y, u, v, a *plane.Plane[T]) (*plane.Plane[T], error) {
	for _, p := range []*plane.Plane[T]{y, u, v, a} {
		if p == nil {
			continue
		}

		if p.Channels != 1 || !p.SameShape(y) {
			return nil, fmt.Errorf("%w: yuv planes must share one single-channel shape", errs.ErrInvalidDimensions)
		}
	}

	stride := 3
	if a != nil {
		stride = 4
	}

	vmax := plane.MaxValue[T]()
	half := vmax / 2
	out := plane.New[T](y.Width, y.Height, stride)

	for i := range y.Pix {
		cy := int(y.Pix[i])
		co := int(u.Pix[i]) - half
		cg := int(v.Pix[i]) - half

		out.Pix[i*stride] = T(clampInt(cy-cg+co, vmax))
		out.Pix[i*stride+1] = T(clampInt(cy+cg, vmax))
		out.Pix[i*stride+2] = T(clampInt(cy-cg-co, vmax))
		if a != nil {
			out.Pix[i*stride+3] = a.Pix[i]
		}
	}

	return out, nil
}

// Downsample halves p in both dimensions (minimum 1) by averaging each 2x2
// block, rounding to nearest. Edge blocks average the samples they cover.
func Downsample[T plane.Sample](p *plane.Plane[T]) *plane.Plane[T] {
	hw, hh := plane.HalfSize(p.Width, p.Height)
	out := plane.New[T](hw, hh, p.Channels)

	for oy := range hh {
		y0, y1 := span(oy, hh, p.Height)
		for ox := range hw {
			x0, x1 := span(ox, hw, p.Width)
			for c := range p.Channels {
				sum, n := 0, 0
				for y := y0; y < y1; y++ {
					for x := x0; x < x1; x++ {
						sum += int(p.At(x, y, c))
						n++
					}
				}
				out.Set(ox, oy, c, T((sum+n/2)/n))
			}
		}
	}

	return out
}

// Upsample scales p to width x height with nearest-neighbor sampling.
func Upsample[T plane.Sample](p *plane.Plane[T], width, height int) *plane.Plane[T] {
	out := plane.New[T](width, height, p.Channels)
	for y := range height {
		sy := min(y*p.Height/height, p.Height-1)
		for x := range width {
			sx := min(x*p.Width/width, p.Width-1)
			for c := range p.Channels {
				out.Set(x, y, c, p.At(sx, sy, c))
			}
		}
	}

	return out
}

// SplitFrame converts an interleaved RGB(A) image into aria frame planes and
// the matching channel layout: Y and optional A at full size, U and V at
// half size.
func SplitFrame[T plane.Sample](rgb *plane.Plane[T]) ([]*plane.Plane[T], section.ChannelLayout, error) {
	y, u, v, a, err := RGBToYUV(rgb)
	if err != nil {
		return nil, section.ChannelLayout{}, err
	}

	planes := []*plane.Plane[T]{y}
	layout := section.ChannelLayout{Full: 1, Half: 2}
	if a != nil {
		planes = append(planes, a)
		layout.Full = 2
	}
	planes = append(planes, Downsample(u), Downsample(v))

	return planes, layout, nil
}

// MergeFrame reverses SplitFrame, upsampling the chroma planes.
func MergeFrame[T plane.Sample](planes []*plane.Plane[T], layout section.ChannelLayout) (*plane.Plane[T], error) {
	if layout.Half != 2 || (layout.Full != 1 && layout.Full != 2) || len(planes) != layout.Count() {
		return nil, fmt.Errorf("%w: layout %d+%d is not a YUV(A) frame", errs.ErrInvalidChannelCount, layout.Full, layout.Half)
	}

	y := planes[0]
	var a *plane.Plane[T]
	if layout.Full == 2 {
		a = planes[1]
	}
	u := Upsample(planes[layout.Full], y.Width, y.Height)
	v := Upsample(planes[layout.Full+1], y.Width, y.Height)

	return YUVToRGB(y, u, v, a)
}

// span returns the source range [lo, hi) covered by output index i when n
// outputs cover size inputs.
func span(i, n, size int) (int, int) {
	lo := i * size / n
	hi := max((i+1)*size/n, lo+1)

	return lo, min(hi, size)
}

func clampFloat(v, hi float64) float64 {
	return min(max(v, 0), hi)
}

func clampInt(v, hi int) int {
	return min(max(v, 0), hi)
}
