package compress

import (
	"errors"
	"hash/adler32"
	"sync"
	"testing"
	"time"

	"github.com/arloliu/aria/errs"
	"github.com/stretchr/testify/require"
)

// gatedCompressor blocks Compress until release is closed.
type gatedCompressor struct {
	release chan struct{}
	out     []byte
	err     error
}

func (g *gatedCompressor) Compress([]byte) ([]byte, error) {
	<-g.release

	return g.out, g.err
}

func TestTask_Result(t *testing.T) {
	data := generateBenchmarkData(16384, "compressible")
	task := NewTask(NewLZ4HCCompressor(9), data, true)

	out, sum, err := task.Result()
	require.NoError(t, err)
	require.Equal(t, adler32.Checksum(out), sum)
	require.Equal(t, TaskFinished, task.Wait(0))

	back, err := NewLZ4Compressor().Decompress(out, len(data))
	require.NoError(t, err)
	require.Equal(t, data, back)

	_, _, err = task.Result()
	require.ErrorIs(t, err, errs.ErrTaskConsumed)
}

func TestTask_NoChecksum(t *testing.T) {
	task := NewTask(NewS2Compressor(0), []byte("abcabcabc"), false)
	_, sum, err := task.Result()
	require.NoError(t, err)
	require.Zero(t, sum)
}

func TestTask_Wait(t *testing.T) {
	g := &gatedCompressor{release: make(chan struct{}), out: []byte{1}}
	task := NewTask(g, []byte{1}, false)

	require.Equal(t, TaskRunning, task.Wait(0))
	require.Equal(t, TaskRunning, task.Wait(5*time.Millisecond))
	require.Equal(t, "running", TaskRunning.String())

	close(g.release)
	require.Equal(t, TaskFinished, task.Wait(-1))
	require.Equal(t, TaskFinished, task.Wait(0))
	require.Equal(t, "finished", TaskFinished.String())

	select {
	case <-task.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestTask_Errors(t *testing.T) {
	t.Run("empty result", func(t *testing.T) {
		g := &gatedCompressor{release: make(chan struct{})}
		close(g.release)
		_, _, err := NewTask(g, []byte{1, 2}, true).Result()
		require.ErrorIs(t, err, errs.ErrEmptyResult)
	})

	t.Run("compressor error", func(t *testing.T) {
		boom := errors.New("boom")
		g := &gatedCompressor{release: make(chan struct{}), err: boom}
		close(g.release)
		_, _, err := NewTask(g, []byte{1}, true).Result()
		require.ErrorIs(t, err, boom)
	})
}

func TestTask_ConcurrentResult(t *testing.T) {
	task := NewTask(NewLZ4Compressor(), generateTestData(4096), true)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := task.Result()
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else {
				fail++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, ok)
	require.Equal(t, 7, fail)
}
