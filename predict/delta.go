package predict

import (
	"fmt"

	"github.com/arloliu/aria/errs"
	"github.com/arloliu/aria/motion"
	"github.com/arloliu/aria/plane"
)

// Residual returns cur - ref sample by sample, wrapped to T.
//
// The difference is taken in int, so the drop test sees the true magnitude.
// A residual is zeroed when its magnitude is at most threshold, unless cur is
// below threshold while ref is above it.
func Residual[T plane.Sample](cur, ref *plane.Plane[T], threshold int) *plane.Plane[T] {
	out := plane.New[T](cur.Width, cur.Height, cur.Channels)
	for i, c := range cur.Pix {
		ci, ri := int(c), int(ref.Pix[i])
		d := ci - ri
		if threshold > 0 && abs(d) <= threshold && !(ci < threshold && ri > threshold) {
			d = 0
		}
		out.Pix[i] = T(d)
	}

	return out
}

// AddReference returns residual + ref sample by sample, wrapped to T.
func AddReference[T plane.Sample](residual, ref *plane.Plane[T]) *plane.Plane[T] {
	out := plane.New[T](residual.Width, residual.Height, residual.Channels)
	for i, v := range residual.Pix {
		out.Pix[i] = v + ref.Pix[i]
	}

	return out
}

// Delta codes cur against ref warped by m.
//
// Returns nil when the best intra coding of the residual is not smaller than
// ceiling, and ErrSizeMismatch when the planes differ in shape.
func (e *Engine[T]) Delta(cur, ref *plane.Plane[T], m motion.Params, ceiling int) (*Result[T], error) {
	if err := checkShape(cur, ref); err != nil {
		return nil, err
	}

	if !m.IsZero() {
		ref = motion.Resample(ref, m)
	}

	residual := Residual(cur, ref, e.cfg.DropThreshold)
	r, err := e.BestIntra(residual, 0, ceiling)
	if err != nil || r == nil {
		return nil, err
	}

	r.Reconstructed = AddReference(r.Reconstructed, ref)
	r.Motion = m

	return r, nil
}

// DeltaSearch runs Delta for every motion candidate in the configured radius
// box and returns the smallest. Candidates are visited by scale, then moveY,
// then moveX, each bounded by the best size found so far; ties keep the
// earlier candidate.
func (e *Engine[T]) DeltaSearch(cur, ref *plane.Plane[T], ceiling int) (*Result[T], error) {
	var best *Result[T]
	sr, mr := e.cfg.ScaleRadius, e.cfg.MoveRadius

	for scale := -sr; scale <= sr; scale++ {
		for moveY := -mr; moveY <= mr; moveY++ {
			for moveX := -mr; moveX <= mr; moveX++ {
				m := motion.Params{Scale: scale, MoveX: moveX, MoveY: moveY}
				r, err := e.Delta(cur, ref, m, ceiling)
				if err != nil {
					return nil, err
				}

				if r != nil {
					best = r
					ceiling = r.Size
				}
			}
		}
	}

	return best, nil
}

func checkShape[T plane.Sample](cur, ref *plane.Plane[T]) error {
	if err := cur.Validate(); err != nil {
		return err
	}

	if ref == nil || !cur.SameShape(ref) || len(ref.Pix) != len(cur.Pix) {
		return fmt.Errorf("%w: reference plane shape differs", errs.ErrSizeMismatch)
	}

	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
