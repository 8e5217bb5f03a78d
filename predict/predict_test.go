package predict

import (
	"errors"
	"math/rand/v2"
	"sync/atomic"
	"testing"

	"github.com/arloliu/aria/compress"
	"github.com/arloliu/aria/errs"
	"github.com/arloliu/aria/filter"
	"github.com/arloliu/aria/format"
	"github.com/arloliu/aria/motion"
	"github.com/arloliu/aria/plane"
	"github.com/stretchr/testify/require"
)

// nonZeroEstimator sizes a buffer by its count of non-zero bytes.
type nonZeroEstimator struct {
	calls atomic.Int64
}

func (e *nonZeroEstimator) EstimateSize(data []byte) (int, error) {
	e.calls.Add(1)
	n := 0
	for _, b := range data {
		if b != 0 {
			n++
		}
	}

	return n, nil
}

type failingEstimator struct{ err error }

func (f failingEstimator) EstimateSize([]byte) (int, error) { return 0, f.err }

func newTestEngine[T plane.Sample](t *testing.T, cfg Config) (*Engine[T], *nonZeroEstimator) {
	t.Helper()

	est := &nonZeroEstimator{}
	e, err := NewEngine[T](est, cfg)
	require.NoError(t, err)

	return e, est
}

func noisePlane[T plane.Sample](seed uint64, w, h int) *plane.Plane[T] {
	r := rand.New(rand.NewPCG(seed, seed+1))
	p := plane.New[T](w, h, 1)
	for i := range p.Pix {
		p.Pix[i] = T(r.IntN(plane.MaxValue[T]() + 1))
	}

	return p
}

// columnRamp varies along x only, so Top leaves just the first row.
func columnRamp(w, h int) *plane.Plane[uint8] {
	p := plane.New[uint8](w, h, 1)
	for y := range h {
		for x := range w {
			p.Set(x, y, 0, uint8(10+x))
		}
	}

	return p
}

func TestNewEngine(t *testing.T) {
	_, err := NewEngine[uint8](nil, Config{})
	require.ErrorIs(t, err, errs.ErrInvalidOption)

	_, err = NewEngine[uint8](&nonZeroEstimator{}, Config{DropThreshold: 256})
	require.ErrorIs(t, err, errs.ErrInvalidOption)

	_, err = NewEngine[uint16](&nonZeroEstimator{}, Config{DropThreshold: 256})
	require.NoError(t, err)

	_, err = NewEngine[uint8](&nonZeroEstimator{}, Config{MoveRadius: -1})
	require.ErrorIs(t, err, errs.ErrInvalidOption)

	e, err := NewEngine[uint8](compress.NewLZ4Estimator(compress.DefaultLZ4Level), Config{ScaleRadius: 1})
	require.NoError(t, err)
	require.Equal(t, 1, e.Config().ScaleRadius)
	require.Positive(t, e.workers)
}

func TestBestIntra_PicksSmallest(t *testing.T) {
	e, _ := newTestEngine[uint8](t, Config{})
	p := columnRamp(8, 4)

	r, err := e.BestIntra(p, 0, Unbounded)
	require.NoError(t, err)
	require.Equal(t, format.FilterTop, r.Mode)
	require.Equal(t, HintFiltered, r.Hint)
	require.Equal(t, 8, r.Size)
	require.True(t, r.Reconstructed.Equal(p))
	require.Equal(t, r.Filtered.Bytes(), r.Data)

	t.Run("ceiling", func(t *testing.T) {
		r, err := e.BestIntra(p, 0, 8)
		require.NoError(t, err)
		require.Nil(t, r)

		r, err = e.BestIntra(p, 0, 9)
		require.NoError(t, err)
		require.NotNil(t, r)
	})
}

func TestBestIntra_TiePrefersNone(t *testing.T) {
	e, _ := newTestEngine[uint16](t, Config{})
	r, err := e.BestIntra(plane.New[uint16](6, 3, 1), 0, Unbounded)
	require.NoError(t, err)
	require.Equal(t, format.FilterNone, r.Mode)
	require.Equal(t, HintLossless, r.Hint)
	require.Zero(t, r.Size)
}

func TestBestIntra_DroppedCandidate(t *testing.T) {
	p := plane.New[uint8](8, 4, 1)
	for y := range 4 {
		for x := range 8 {
			p.Set(x, y, 0, uint8(100+(x+y)%2))
		}
	}

	t.Run("lossless has no dropped candidates", func(t *testing.T) {
		e, est := newTestEngine[uint8](t, Config{})
		r, err := e.BestIntra(p, 0, Unbounded)
		require.NoError(t, err)
		require.NotEqual(t, HintDropped, r.Hint)
		require.True(t, r.Reconstructed.Equal(p))
		require.Equal(t, int64(len(filter.Candidates(8, 1))), est.calls.Load())
	})

	t.Run("threshold", func(t *testing.T) {
		e, est := newTestEngine[uint8](t, Config{})
		r, err := e.BestIntra(p, 1, Unbounded)
		require.NoError(t, err)
		require.Equal(t, HintDropped, r.Hint)
		require.Equal(t, format.FilterLeft, r.Mode)
		require.Equal(t, 4, r.Size)
		require.Equal(t, int64(2*len(filter.Candidates(8, 1))-1), est.calls.Load())

		back, err := filter.Inverse(r.Filtered, r.Mode)
		require.NoError(t, err)
		require.True(t, back.Equal(r.Reconstructed))
		for i := range p.Pix {
			require.LessOrEqual(t, abs(int(p.Pix[i])-int(back.Pix[i])), 1)
		}
	})

	t.Run("invalid threshold", func(t *testing.T) {
		e, _ := newTestEngine[uint8](t, Config{})
		_, err := e.BestIntra(p, 300, Unbounded)
		require.ErrorIs(t, err, errs.ErrInvalidOption)
	})
}

func TestBestIntra_WorkerCountDoesNotChangeResult(t *testing.T) {
	p := noisePlane[uint8](9, 24, 6)
	for i := range 24 {
		p.Pix[i] = 0
	}

	var modes []format.FilterMode
	for _, workers := range []int{1, 2, 16} {
		e, _ := newTestEngine[uint8](t, Config{Workers: workers})
		r, err := e.BestIntra(p, 2, Unbounded)
		require.NoError(t, err)
		modes = append(modes, r.Mode)
	}
	require.Equal(t, modes[0], modes[1])
	require.Equal(t, modes[0], modes[2])
}

func TestBestIntra_EstimatorError(t *testing.T) {
	boom := errors.New("boom")
	e, err := NewEngine[uint8](failingEstimator{boom}, Config{Workers: 4})
	require.NoError(t, err)

	_, err = e.BestIntra(columnRamp(4, 4), 0, Unbounded)
	require.ErrorIs(t, err, boom)
}

func TestResidual_DropRule(t *testing.T) {
	cur, _ := plane.FromPix(5, 1, 1, []uint8{0, 5, 2, 1, 50})
	ref, _ := plane.FromPix(5, 1, 1, []uint8{3, 4, 100, 4, 10})

	got := Residual(cur, ref, 3)
	// 0-3: ref not above threshold, dropped
	// 5-4: dropped
	// 2-100: too large
	// 1-4: dark pixel over bright reference, kept
	// 50-10: too large
	require.Equal(t, []uint8{0, 0, 158, 253, 40}, got.Pix)

	lossless := Residual(cur, ref, 0)
	require.True(t, AddReference(lossless, ref).Equal(cur))
}

func TestResidual_Widened16Bit(t *testing.T) {
	cur, _ := plane.FromPix(2, 1, 1, []uint16{0, 65535})
	ref, _ := plane.FromPix(2, 1, 1, []uint16{65535, 0})

	got := Residual(cur, ref, 128)
	require.Equal(t, []uint16{1, 65535}, got.Pix)
	require.True(t, AddReference(got, ref).Equal(cur))
}

func TestDelta(t *testing.T) {
	e, _ := newTestEngine[uint8](t, Config{})
	ref := noisePlane[uint8](1, 16, 8)
	cur := ref.Clone()
	cur.Pix[5] += 7

	r, err := e.Delta(cur, ref, motion.Params{}, Unbounded)
	require.NoError(t, err)
	require.Equal(t, 1, r.Size)
	require.True(t, r.Reconstructed.Equal(cur))

	r, err = e.Delta(cur, ref, motion.Params{}, 1)
	require.NoError(t, err)
	require.Nil(t, r)

	_, err = e.Delta(cur, plane.New[uint8](8, 16, 1), motion.Params{}, Unbounded)
	require.ErrorIs(t, err, errs.ErrSizeMismatch)
}

func TestDelta_LossyReconstructionMatchesDecoder(t *testing.T) {
	e, _ := newTestEngine[uint16](t, Config{DropThreshold: 300})
	ref := noisePlane[uint16](4, 12, 6)
	cur := ref.Clone()
	r := rand.New(rand.NewPCG(5, 6))
	for i := range cur.Pix {
		cur.Pix[i] += uint16(r.IntN(600))
	}

	res, err := e.Delta(cur, ref, motion.Params{}, Unbounded)
	require.NoError(t, err)

	residual, err := filter.Inverse(res.Filtered, res.Mode)
	require.NoError(t, err)
	require.True(t, AddReference(residual, ref).Equal(res.Reconstructed))
}

func TestDeltaSearch_FindsMotion(t *testing.T) {
	e, _ := newTestEngine[uint8](t, Config{ScaleRadius: 1, MoveRadius: 1})
	ref := noisePlane[uint8](3, 12, 10)
	want := motion.Params{MoveX: 1}
	cur := motion.Resample(ref, want)

	r, err := e.DeltaSearch(cur, ref, Unbounded)
	require.NoError(t, err)
	require.Equal(t, want, r.Motion)
	require.Zero(t, r.Size)
	require.True(t, r.Reconstructed.Equal(cur))
}

func TestDecide(t *testing.T) {
	a := noisePlane[uint8](10, 8, 8)
	b := noisePlane[uint8](11, 4, 4)
	frame := []*plane.Plane[uint8]{a, b}

	t.Run("first frame is intra", func(t *testing.T) {
		e, _ := newTestEngine[uint8](t, Config{})
		d, err := e.Decide(frame, Anchors[uint8]{})
		require.NoError(t, err)
		require.Equal(t, format.ReferenceNone, d.Reference)
		require.Len(t, d.Results, 2)
		require.Equal(t, d.Results[0].Size+d.Results[1].Size, d.Size)
		require.True(t, plane.EqualAll(frame, d.Reconstruction()))
		require.Len(t, d.Modes(), 2)
	})

	t.Run("static frame uses previous full", func(t *testing.T) {
		e, _ := newTestEngine[uint8](t, Config{})
		anchor := plane.CloneAll(frame)
		d, err := e.Decide(frame, Anchors[uint8]{PrevFull: anchor, Prev: anchor, Shared: true})
		require.NoError(t, err)
		require.Equal(t, format.ReferencePrevFull, d.Reference)
		require.Zero(t, d.Size)
		require.True(t, plane.EqualAll(frame, d.Reconstruction()))
	})

	t.Run("previous wins when closer", func(t *testing.T) {
		e, _ := newTestEngine[uint8](t, Config{})
		other := []*plane.Plane[uint8]{noisePlane[uint8](20, 8, 8), noisePlane[uint8](21, 4, 4)}
		d, err := e.Decide(frame, Anchors[uint8]{PrevFull: other, Prev: plane.CloneAll(frame)})
		require.NoError(t, err)
		require.Equal(t, format.ReferencePrev, d.Reference)
	})

	t.Run("shared anchors skip previous", func(t *testing.T) {
		e, _ := newTestEngine[uint8](t, Config{})
		other := []*plane.Plane[uint8]{noisePlane[uint8](20, 8, 8), noisePlane[uint8](21, 4, 4)}
		d, err := e.Decide(frame, Anchors[uint8]{PrevFull: other, Prev: plane.CloneAll(frame), Shared: true})
		require.NoError(t, err)
		require.NotEqual(t, format.ReferencePrev, d.Reference)
	})

	t.Run("plane count", func(t *testing.T) {
		e, _ := newTestEngine[uint8](t, Config{})
		_, err := e.Decide(nil, Anchors[uint8]{})
		require.ErrorIs(t, err, errs.ErrPlaneCount)

		_, err = e.Decide(frame, Anchors[uint8]{PrevFull: frame[:1], Prev: frame[:1]})
		require.ErrorIs(t, err, errs.ErrPlaneCount)
	})
}

func TestDecide_MotionReusedAcrossPlanes(t *testing.T) {
	e, _ := newTestEngine[uint8](t, Config{MoveRadius: 1})
	refs := []*plane.Plane[uint8]{noisePlane[uint8](30, 10, 10), noisePlane[uint8](31, 10, 10)}
	want := motion.Params{MoveY: -1}
	frame := []*plane.Plane[uint8]{motion.Resample(refs[0], want), motion.Resample(refs[1], want)}

	d, err := e.Decide(frame, Anchors[uint8]{PrevFull: refs, Prev: refs, Shared: true})
	require.NoError(t, err)
	require.Equal(t, format.ReferencePrevFull, d.Reference)
	require.Equal(t, want, d.Motion)
	require.Equal(t, want, d.Results[1].Motion)
	require.True(t, plane.EqualAll(frame, d.Reconstruction()))
}

func TestDecide_Deterministic(t *testing.T) {
	frame := []*plane.Plane[uint16]{noisePlane[uint16](40, 16, 4)}
	prev := []*plane.Plane[uint16]{noisePlane[uint16](41, 16, 4)}

	e, _ := newTestEngine[uint16](t, Config{DropThreshold: 1000, Workers: 8})
	first, err := e.Decide(frame, Anchors[uint16]{PrevFull: prev, Prev: prev, Shared: true})
	require.NoError(t, err)

	for range 3 {
		again, err := e.Decide(frame, Anchors[uint16]{PrevFull: prev, Prev: prev, Shared: true})
		require.NoError(t, err)
		require.Equal(t, first.Reference, again.Reference)
		require.Equal(t, first.Modes(), again.Modes())
		require.Equal(t, first.Size, again.Size)
	}
}

func TestHintString(t *testing.T) {
	require.Equal(t, "lossless", HintLossless.String())
	require.Equal(t, "filtered", HintFiltered.String())
	require.Equal(t, "dropped", HintDropped.String())
	require.Equal(t, "unknown", Hint(9).String())
}

func BenchmarkBestIntra(b *testing.B) {
	e, err := NewEngine[uint8](compress.NewLZ4Estimator(compress.DefaultLZ4Level), Config{})
	if err != nil {
		b.Fatal(err)
	}
	p := noisePlane[uint8](1, 320, 180)

	b.SetBytes(int64(p.SizeBytes()))
	for b.Loop() {
		_, _ = e.BestIntra(p, 2, Unbounded)
	}
}
