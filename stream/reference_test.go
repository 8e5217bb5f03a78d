package stream

import (
	"testing"

	"github.com/arloliu/aria/errs"
	"github.com/arloliu/aria/format"
	"github.com/arloliu/aria/plane"
	"github.com/stretchr/testify/require"
)

func onePlane(v uint8) []*plane.Plane[uint8] {
	p, _ := plane.FromPix(2, 1, 1, []uint8{v, v})
	return []*plane.Plane[uint8]{p}
}

func TestReference_Transitions(t *testing.T) {
	r := newReference[uint8](true)
	require.Equal(t, StateEmpty, r.State())
	require.True(t, r.Anchors().IsEmpty())

	_, err := r.Anchor(format.ReferencePrevFull)
	require.ErrorIs(t, err, errs.ErrMissingReference)
	require.ErrorIs(t, r.Advance(format.ReferencePrev, onePlane(1)), errs.ErrMissingReference)
	require.Equal(t, StateEmpty, r.State())

	f0 := onePlane(1)
	require.NoError(t, r.Advance(format.ReferenceNone, f0))
	require.Equal(t, StateHasBoth, r.State())
	require.True(t, r.Shared())
	require.Equal(t, f0, r.PrevFull())
	require.Equal(t, f0, r.Prev())

	f1 := onePlane(2)
	require.NoError(t, r.Advance(format.ReferencePrevFull, f1))
	require.False(t, r.Shared())
	require.Equal(t, f0, r.PrevFull())
	require.Equal(t, f1, r.Prev())

	anchor, err := r.Anchor(format.ReferencePrev)
	require.NoError(t, err)
	require.Equal(t, f1, anchor)

	// a delta frame reconstructing the intra frame exactly shares it again
	require.NoError(t, r.Advance(format.ReferencePrev, onePlane(1)))
	require.True(t, r.Shared())
	require.Equal(t, f0, r.PrevFull())

	f3 := onePlane(9)
	require.NoError(t, r.Advance(format.ReferenceNone, f3))
	require.Equal(t, f3, r.PrevFull())
	require.Equal(t, f3, r.Prev())

	_, err = r.Anchor(format.ReferenceNone)
	require.ErrorIs(t, err, errs.ErrInvalidReferenceType)
	require.ErrorIs(t, r.Advance(format.ReferenceType(7), f3), errs.ErrInvalidReferenceType)

	r.Reset()
	require.Equal(t, StateEmpty, r.State())
	require.False(t, r.Shared())
}

func TestReference_WithoutDigests(t *testing.T) {
	r := newReference[uint8](false)
	require.NoError(t, r.Advance(format.ReferenceNone, onePlane(1)))
	require.True(t, r.Shared())

	require.NoError(t, r.Advance(format.ReferencePrev, onePlane(1)))
	require.False(t, r.Shared())
}

func TestReference_HasPrevState(t *testing.T) {
	r := &Reference[uint8]{prev: onePlane(1)}
	require.Equal(t, StateHasPrev, r.State())

	_, err := r.Anchor(format.ReferencePrevFull)
	require.ErrorIs(t, err, errs.ErrMissingReference)

	_, err = r.Anchor(format.ReferencePrev)
	require.NoError(t, err)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "EMPTY", StateEmpty.String())
	require.Equal(t, "HAS_PREV", StateHasPrev.String())
	require.Equal(t, "HAS_BOTH", StateHasBoth.String())
	require.Equal(t, "State(9)", State(9).String())
}
