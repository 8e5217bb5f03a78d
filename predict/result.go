package predict

import (
	"github.com/arloliu/aria/format"
	"github.com/arloliu/aria/motion"
	"github.com/arloliu/aria/plane"
)

// Hint tells how a candidate result was produced.
type Hint uint8

const (
	HintLossless Hint = iota // no filter applied
	HintFiltered             // lossless filter
	HintDropped              // filter with small residuals dropped
)

func (h Hint) String() string {
	switch h {
	case HintLossless:
		return "lossless"
	case HintFiltered:
		return "filtered"
	case HintDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Result is the outcome of coding one plane.
type Result[T plane.Sample] struct {
	// Filtered is the plane that is serialized into the frame.
	Filtered *plane.Plane[T]

	// Data is Filtered in wire byte order.
	Data []byte

	// Reconstructed is what a decoder recovers from Filtered, including the
	// reference plane for delta coded results.
	Reconstructed *plane.Plane[T]

	// Mode is the intra filter applied to Filtered.
	Mode format.FilterMode

	// Size is the estimated compressed size of Data.
	Size int

	Hint Hint

	// Motion is the reference warp of a delta coded result.
	Motion motion.Params
}

// Decision is the coding plan for one frame.
type Decision[T plane.Sample] struct {
	Results   []*Result[T]
	Reference format.ReferenceType
	Motion    motion.Params
	Size      int
}

// Reconstruction returns the reconstructed planes in frame order.
func (d *Decision[T]) Reconstruction() []*plane.Plane[T] {
	out := make([]*plane.Plane[T], len(d.Results))
	for i, r := range d.Results {
		out[i] = r.Reconstructed
	}

	return out
}

// Modes returns the per-plane intra filter modes.
func (d *Decision[T]) Modes() []format.FilterMode {
	out := make([]format.FilterMode, len(d.Results))
	for i, r := range d.Results {
		out[i] = r.Mode
	}

	return out
}

// Anchors are the reference plane sets a frame may be coded against.
type Anchors[T plane.Sample] struct {
	// PrevFull is the reconstruction of the last NONE frame.
	PrevFull []*plane.Plane[T]

	// Prev is the reconstruction of the previous frame.
	Prev []*plane.Plane[T]

	// Shared reports that Prev holds the same reconstruction as PrevFull, so
	// PREV would only repeat the PREV_FULL search.
	Shared bool
}

// IsEmpty reports whether no frame has been coded yet.
func (a Anchors[T]) IsEmpty() bool {
	return a.Prev == nil
}
