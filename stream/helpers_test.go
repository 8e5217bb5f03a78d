package stream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/arloliu/aria/compress"
	"github.com/arloliu/aria/internal/options"
	"github.com/arloliu/aria/plane"
	"github.com/arloliu/aria/section"
	"github.com/stretchr/testify/require"
)

// memFile is an in-memory io.ReadWriteSeeker.
type memFile struct {
	data []byte
	pos  int
}

func (m *memFile) Write(p []byte) (int, error) {
	if end := m.pos + len(p); end > len(m.data) {
		m.data = append(m.data, make([]byte, end-len(m.data))...)
	}
	copy(m.data[m.pos:], p)
	m.pos += len(p)

	return len(p), nil
}

func (m *memFile) Read(p []byte) (int, error) {
	if m.pos >= len(m.data) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.pos:])
	m.pos += n

	return n, nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(m.pos) + offset
	case io.SeekEnd:
		abs = int64(len(m.data)) + offset
	default:
		return 0, errors.New("invalid whence")
	}

	if abs < 0 {
		return 0, errors.New("negative position")
	}
	m.pos = int(abs)

	return abs, nil
}

// streamOnly hides the Seek method of a reader.
type streamOnly struct{ io.Reader }

// texture is a smooth pattern that moves right by t pixels per frame.
func texture(x, y, t, planeIdx int) int {
	x -= t
	return (x*x+3*y*y)/7 + 11*planeIdx + ((x/3 + y/2) % 4 * 9)
}

func makeFrame[T plane.Sample](f FrameFormat, t int) []*plane.Plane[T] {
	planes := make([]*plane.Plane[T], f.Layout.Count())
	scale := 1
	if plane.BytesPerSample[T]() == 2 {
		scale = 257
	}

	for i := range planes {
		w, h := f.Width, f.Height
		if i >= int(f.Layout.Full) {
			w, h = plane.HalfSize(w, h)
		}

		p := plane.New[T](w, h, 1)
		for y := range h {
			for x := range w {
				p.Set(x, y, 0, T((texture(x, y, t, i)%256+256)%256*scale))
			}
		}
		planes[i] = p
	}

	return planes
}

func noiseFrame[T plane.Sample](seed uint64, f FrameFormat) []*plane.Plane[T] {
	r := rand.New(rand.NewPCG(seed, ^seed))
	planes := make([]*plane.Plane[T], f.Layout.Count())
	for i := range planes {
		w, h := f.Width, f.Height
		if i >= int(f.Layout.Full) {
			w, h = plane.HalfSize(w, h)
		}

		p := plane.New[T](w, h, 1)
		for j := range p.Pix {
			p.Pix[j] = T(r.IntN(plane.MaxValue[T]() + 1))
		}
		planes[i] = p
	}

	return planes
}

// encodeAll encodes frames into a new memFile and closes the encoder.
func encodeAll[T plane.Sample](t *testing.T, f FrameFormat, frames [][]*plane.Plane[T], opts ...EncoderOption) *memFile {
	t.Helper()

	out := &memFile{}
	enc, err := NewEncoder[T](out, f, opts...)
	require.NoError(t, err)

	for i, frame := range frames {
		require.NoError(t, enc.EncodeFrame(context.Background(), frame), "frame %d", i)
	}
	require.NoError(t, enc.Close())
	require.Equal(t, len(out.data), out.pos, "writer left at end of stream")

	return out
}

func decodeAll[T plane.Sample](t *testing.T, data []byte, opts ...DecoderOption) [][]*plane.Plane[T] {
	t.Helper()

	dec, err := NewDecoder[T](&memFile{data: data}, opts...)
	require.NoError(t, err)

	var frames [][]*plane.Plane[T]
	for {
		frame, err := dec.ReadFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		frames = append(frames, frame)
	}

	return frames
}

// packetHeaders walks the packets of an encoded stream.
func packetHeaders(t *testing.T, data []byte) []section.PacketHeader {
	t.Helper()

	var list []section.PacketHeader
	for off := section.MainHeaderSize; off < len(data); {
		var ph section.PacketHeader
		require.NoError(t, ph.Parse(data[off:off+section.PacketHeaderSize]))
		list = append(list, ph)
		off += section.PacketHeaderSize + int(ph.Size)
	}

	return list
}

// fakeTask finishes when release is closed.
type fakeTask struct {
	id      int
	task    *compress.Task
	release chan struct{}
	results *[]int
	mu      *sync.Mutex
}

func (f *fakeTask) Wait(timeout time.Duration) compress.TaskStatus {
	if timeout == 0 {
		select {
		case <-f.release:
			return f.task.Wait(-1)
		default:
			return compress.TaskRunning
		}
	}
	<-f.release

	return f.task.Wait(-1)
}

func (f *fakeTask) Result() ([]byte, uint32, error) {
	<-f.release
	f.mu.Lock()
	*f.results = append(*f.results, f.id)
	f.mu.Unlock()

	return f.task.Result()
}

// fakeTasks hands out gated tasks and records the order results are taken.
type fakeTasks struct {
	mu      sync.Mutex
	tasks   []*fakeTask
	results []int
}

func (ft *fakeTasks) option() EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		c.startTask = func(codec compress.Compressor, data []byte) packetTask {
			ft.mu.Lock()
			defer ft.mu.Unlock()

			task := &fakeTask{
				id:      len(ft.tasks),
				task:    compress.NewTask(codec, data, true),
				release: make(chan struct{}),
				results: &ft.results,
				mu:      &ft.mu,
			}
			ft.tasks = append(ft.tasks, task)

			return task
		}
	})
}

func (ft *fakeTasks) release(id int) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	close(ft.tasks[id].release)
}

func (ft *fakeTasks) count() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	return len(ft.tasks)
}

func (ft *fakeTasks) resultOrder() []int {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	return append([]int(nil), ft.results...)
}

// recordHandler keeps every slog record.
type recordHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())

	return nil
}

func (h *recordHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordHandler) WithGroup(string) slog.Handler      { return h }

// attrs returns the attributes of every record with message msg.
func (h *recordHandler) attrs(msg string) []map[string]slog.Value {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []map[string]slog.Value
	for _, r := range h.records {
		if r.Message != msg {
			continue
		}
		m := map[string]slog.Value{}
		r.Attrs(func(a slog.Attr) bool {
			m[a.Key] = a.Value
			return true
		})
		out = append(out, m)
	}

	return out
}
