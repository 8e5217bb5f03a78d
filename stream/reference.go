package stream

import (
	"fmt"

	"github.com/arloliu/aria/errs"
	"github.com/arloliu/aria/format"
	"github.com/arloliu/aria/plane"
	"github.com/arloliu/aria/predict"
)

// State describes which anchors a Reference holds.
type State uint8

const (
	StateEmpty   State = iota // no frame coded yet
	StateHasPrev              // previous frame only
	StateHasBoth              // previous frame and last NONE frame
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "EMPTY"
	case StateHasPrev:
		return "HAS_PREV"
	case StateHasBoth:
		return "HAS_BOTH"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Reference tracks the reconstructions a session codes against.
//
// After every frame, Prev is that frame's reconstruction and PrevFull the
// reconstruction of the most recent NONE frame. A NONE frame replaces both;
// a delta frame replaces Prev only.
type Reference[T plane.Sample] struct {
	prev     []*plane.Plane[T]
	prevFull []*plane.Plane[T]
	shared   bool

	// digests enables content comparison of Prev against PrevFull.
	digests    bool
	fullDigest uint64
}

// newReference creates an empty Reference. With digests set, Advance keeps
// Shared accurate for delta frames whose reconstruction equals PrevFull.
func newReference[T plane.Sample](digests bool) *Reference[T] {
	return &Reference[T]{digests: digests}
}

// State returns which anchors are present.
func (r *Reference[T]) State() State {
	switch {
	case r.prev == nil:
		return StateEmpty
	case r.prevFull == nil:
		return StateHasPrev
	default:
		return StateHasBoth
	}
}

// Prev returns the reconstruction of the previous frame.
func (r *Reference[T]) Prev() []*plane.Plane[T] { return r.prev }

// PrevFull returns the reconstruction of the last NONE frame.
func (r *Reference[T]) PrevFull() []*plane.Plane[T] { return r.prevFull }

// Shared reports whether Prev holds the same reconstruction as PrevFull.
func (r *Reference[T]) Shared() bool { return r.shared }

// Anchors returns the anchors for a mode decision.
func (r *Reference[T]) Anchors() predict.Anchors[T] {
	return predict.Anchors[T]{PrevFull: r.prevFull, Prev: r.prev, Shared: r.shared}
}

// Anchor returns the planes a frame with reference type ref is coded against.
//
// Returns ErrMissingReference when that anchor does not exist yet and
// ErrInvalidReferenceType for NONE or an unknown type.
func (r *Reference[T]) Anchor(ref format.ReferenceType) ([]*plane.Plane[T], error) {
	var anchor []*plane.Plane[T]
	switch ref {
	case format.ReferencePrevFull:
		anchor = r.prevFull
	case format.ReferencePrev:
		anchor = r.prev
	default:
		return nil, fmt.Errorf("%w: %s has no anchor", errs.ErrInvalidReferenceType, ref)
	}

	if anchor == nil {
		return nil, fmt.Errorf("%w: %s in state %s", errs.ErrMissingReference, ref, r.State())
	}

	return anchor, nil
}

// Advance records the reconstruction of a frame coded with ref.
func (r *Reference[T]) Advance(ref format.ReferenceType, recon []*plane.Plane[T]) error {
	switch ref {
	case format.ReferenceNone:
		r.prevFull = recon
		r.prev = recon
		r.shared = true
		if r.digests {
			r.fullDigest = plane.Digest(recon)
		}
	case format.ReferencePrevFull, format.ReferencePrev:
		if _, err := r.Anchor(ref); err != nil {
			return err
		}

		r.prev = recon
		r.shared = r.digests && plane.Digest(recon) == r.fullDigest && plane.EqualAll(recon, r.prevFull)
	default:
		return fmt.Errorf("%w: %d", errs.ErrInvalidReferenceType, ref)
	}

	return nil
}

// Reset drops both anchors.
func (r *Reference[T]) Reset() {
	r.prev, r.prevFull = nil, nil
	r.shared = false
	r.fullDigest = 0
}
