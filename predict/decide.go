package predict

import (
	"fmt"

	"github.com/arloliu/aria/errs"
	"github.com/arloliu/aria/format"
	"github.com/arloliu/aria/motion"
	"github.com/arloliu/aria/plane"
)

// Decide chooses the reference mode of a frame.
//
// NONE codes every plane with BestIntra. PREV_FULL and PREV code the planes
// against the matching anchor; the first plane runs the motion search and the
// remaining planes reuse its motion. PREV is skipped when anchors.Shared is
// set. A mode replaces the current choice only with a strictly smaller total,
// so the first frame of a stream is always NONE.
//
// Returns ErrPlaneCount when the anchors do not hold one plane per frame
// plane and ErrSizeMismatch when a plane shape differs from its anchor.
func (e *Engine[T]) Decide(planes []*plane.Plane[T], anchors Anchors[T]) (*Decision[T], error) {
	if len(planes) == 0 {
		return nil, fmt.Errorf("%w: empty frame", errs.ErrPlaneCount)
	}

	best, err := e.intraFrame(planes)
	if err != nil {
		return nil, err
	}

	if anchors.IsEmpty() {
		return best, nil
	}

	if len(anchors.PrevFull) != len(planes) || len(anchors.Prev) != len(planes) {
		return nil, fmt.Errorf("%w: frame has %d planes, anchors %d/%d",
			errs.ErrPlaneCount, len(planes), len(anchors.PrevFull), len(anchors.Prev))
	}

	full, err := e.deltaFrame(planes, anchors.PrevFull, format.ReferencePrevFull)
	if err != nil {
		return nil, err
	}

	if full.Size < best.Size {
		best = full
	}

	if !anchors.Shared {
		prev, err := e.deltaFrame(planes, anchors.Prev, format.ReferencePrev)
		if err != nil {
			return nil, err
		}

		if prev.Size < best.Size {
			best = prev
		}
	}

	return best, nil
}

func (e *Engine[T]) intraFrame(planes []*plane.Plane[T]) (*Decision[T], error) {
	d := &Decision[T]{Reference: format.ReferenceNone, Results: make([]*Result[T], len(planes))}
	for i, p := range planes {
		r, err := e.BestIntra(p, e.cfg.DropThreshold, Unbounded)
		if err != nil {
			return nil, fmt.Errorf("plane %d: %w", i, err)
		}

		d.Results[i] = r
		d.Size += r.Size
	}

	return d, nil
}

func (e *Engine[T]) deltaFrame(planes, refs []*plane.Plane[T], ref format.ReferenceType) (*Decision[T], error) {
	d := &Decision[T]{Reference: ref, Results: make([]*Result[T], len(planes))}

	var m motion.Params
	for i, p := range planes {
		var (
			r   *Result[T]
			err error
		)
		if i == 0 {
			r, err = e.DeltaSearch(p, refs[i], Unbounded)
		} else {
			r, err = e.Delta(p, refs[i], m, Unbounded)
		}
		if err != nil {
			return nil, fmt.Errorf("%s plane %d: %w", ref, i, err)
		}

		if i == 0 {
			m = r.Motion
			d.Motion = m
		}

		d.Results[i] = r
		d.Size += r.Size
	}

	return d, nil
}
