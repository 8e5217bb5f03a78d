// Package filter implements the intra predictive filters applied to a plane
// before compression, and their exact inverses.
//
// Each filter replaces a sample with its difference to a prediction built
// from already-coded neighbors of the same channel:
//
//	Top      the sample above
//	Left     the sample to the left
//	Average  (top + left) / 2
//	Paeth    the PNG Paeth predictor over left, top and top-left
//
// Samples without the required neighbors are stored unchanged. The Ex
// variants of Left and Average treat each row as interleaved lanes, so the
// left neighbor is the sample of the same channel one lane-group away.
//
// Forward accepts a drop threshold. Residuals whose magnitude is at most the
// threshold are zeroed, except when the sample is at most the threshold
// while its prediction is above it; that keeps hard dark-to-bright edges.
// Predictions are always made from the reconstructed samples, so Inverse
// reproduces the encoder's reconstruction exactly even for lossy output.
package filter

import (
	"fmt"

	"github.com/arloliu/aria/errs"
	"github.com/arloliu/aria/format"
	"github.com/arloliu/aria/plane"
)

// ExLanes returns the lane counts offered for a plane with the given
// channel count.
func ExLanes(channels int) []int {
	switch channels {
	case 1:
		return []int{4, 6, 8}
	case 2:
		return []int{2, 4}
	case 3, 4:
		return []int{2}
	default:
		return nil
	}
}

// Supported reports whether mode can be offered for a plane of the given
// width and channel count. Ex modes need one of ExLanes(channels) lanes and a
// width that divides evenly into them.
func Supported(mode format.FilterMode, width, channels int) bool {
	if !mode.IsValid() {
		return false
	}

	lanes := mode.Lanes()
	if lanes == 1 {
		return true
	}

	if width%lanes != 0 {
		return false
	}

	for _, l := range ExLanes(channels) {
		if l == lanes {
			return true
		}
	}

	return false
}

// Candidates returns the filter modes to try for a plane, in tie-break order:
// None, Top, Left, Average, Paeth, then the supported Ex variants of Left and
// Average by ascending lane count.
func Candidates(width, channels int) []format.FilterMode {
	modes := []format.FilterMode{
		format.FilterNone,
		format.FilterTop,
		format.FilterLeft,
		format.FilterAverage,
		format.FilterPaeth,
	}

	for _, kind := range []format.FilterKind{format.KindLeft, format.KindAverage} {
		for _, lanes := range ExLanes(channels) {
			if width%lanes != 0 {
				continue
			}

			if m, ok := format.ExFilterMode(kind, lanes); ok {
				modes = append(modes, m)
			}
		}
	}

	return modes
}

// Forward filters p with mode and returns the filtered plane together with
// the reconstruction a decoder will produce from it.
//
// Parameters:
//   - p: Source plane, not modified
//   - mode: Filter to apply
//   - threshold: Drop threshold, 0 for lossless output
//
// Returns:
//   - filtered: The residual plane to serialize
//   - recon: Inverse(filtered, mode), computed during the same pass
//   - error: ErrInvalidFilterMode for an unknown mode, ErrInvalidOption for
//     a threshold outside the sample range
func Forward[T plane.Sample](p *plane.Plane[T], mode format.FilterMode, threshold int) (*plane.Plane[T], *plane.Plane[T], error) {
	if !mode.IsValid() {
		return nil, nil, fmt.Errorf("%w: %d", errs.ErrInvalidFilterMode, mode)
	}

	if threshold < 0 || threshold > plane.MaxValue[T]() {
		return nil, nil, fmt.Errorf("%w: drop threshold %d", errs.ErrInvalidOption, threshold)
	}

	if mode == format.FilterNone {
		return p.Clone(), p.Clone(), nil
	}

	n := newNeighborhood(p, mode)
	out := plane.New[T](p.Width, p.Height, p.Channels)
	rec := plane.New[T](p.Width, p.Height, p.Channels)
	src := p.Pix

	i := 0
	for y := range p.Height {
		for x := range p.Width {
			for range p.Channels {
				cur := int(src[i])
				pred, ok := predict(rec.Pix, n, i, x, y)
				if !ok {
					out.Pix[i] = src[i]
					rec.Pix[i] = src[i]
					i++

					continue
				}

				v := cur - pred
				if threshold > 0 && abs(v) <= threshold && (cur > threshold || pred <= threshold) {
					v = 0
				}
				out.Pix[i] = T(v)
				rec.Pix[i] = T(pred + v)
				i++
			}
		}
	}

	return out, rec, nil
}

// Inverse reverses Forward.
//
// Returns ErrInvalidFilterMode when mode is not a known filter id.
func Inverse[T plane.Sample](p *plane.Plane[T], mode format.FilterMode) (*plane.Plane[T], error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidFilterMode, mode)
	}

	if mode == format.FilterNone {
		return p.Clone(), nil
	}

	n := newNeighborhood(p, mode)
	out := plane.New[T](p.Width, p.Height, p.Channels)
	src := p.Pix

	i := 0
	for y := range p.Height {
		for x := range p.Width {
			for range p.Channels {
				pred, ok := predict(out.Pix, n, i, x, y)
				if ok {
					out.Pix[i] = T(pred + int(src[i]))
				} else {
					out.Pix[i] = src[i]
				}
				i++
			}
		}
	}

	return out, nil
}

// neighborhood locates the prediction inputs of a sample.
type neighborhood struct {
	kind    format.FilterKind
	lanes   int // left neighbor distance in pixels
	leftOff int // left neighbor distance in samples
	stride  int // row distance in samples
}

func newNeighborhood[T plane.Sample](p *plane.Plane[T], mode format.FilterMode) neighborhood {
	lanes := mode.Lanes()

	return neighborhood{
		kind:    mode.Kind(),
		lanes:   lanes,
		leftOff: lanes * p.Channels,
		stride:  p.Stride(),
	}
}

// predict returns the prediction for sample i at pixel (x, y) computed from
// buf, which must already hold the reconstruction of every earlier sample.
// ok is false when the sample has no prediction and is stored verbatim.
func predict[T plane.Sample](buf []T, n neighborhood, i, x, y int) (int, bool) {
	switch n.kind {
	case format.KindTop:
		if y < 1 {
			return 0, false
		}

		return int(buf[i-n.stride]), true
	case format.KindLeft:
		if x < n.lanes {
			return 0, false
		}

		return int(buf[i-n.leftOff]), true
	case format.KindAverage:
		if y < 1 || x < n.lanes {
			return 0, false
		}

		return (int(buf[i-n.stride]) + int(buf[i-n.leftOff])) / 2, true
	case format.KindPaeth:
		if y < 1 || x < n.lanes {
			return 0, false
		}

		return paeth(int(buf[i-n.leftOff]), int(buf[i-n.stride]), int(buf[i-n.stride-n.leftOff])), true
	default:
		return 0, false
	}
}

// paeth picks whichever of left (a), above (b) and upper-left (c) is closest
// to a + b - c, preferring a, then b.
func paeth(a, b, c int) int {
	p := a + b - c
	pa, pb, pc := abs(p-a), abs(p-b), abs(p-c)

	switch {
	case pa < pb && pa < pc:
		return a
	case pb < pc:
		return b
	default:
		return c
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
