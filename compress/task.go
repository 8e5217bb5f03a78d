package compress

import (
	"fmt"
	"hash/adler32"
	"sync"
	"time"

	"github.com/arloliu/aria/errs"
)

// TaskStatus reports whether a Task has finished.
type TaskStatus uint8

const (
	TaskRunning TaskStatus = iota
	TaskFinished
)

func (s TaskStatus) String() string {
	if s == TaskFinished {
		return "finished"
	}

	return "running"
}

// Task compresses one buffer in the background.
//
// A Task is safe for concurrent use. Result transfers ownership of the output
// and can be called once.
type Task struct {
	done chan struct{}

	mu       sync.Mutex
	data     []byte
	checksum uint32
	err      error
	consumed bool
}

// NewTask starts compressing data with c on a new goroutine. When checksum is
// true the adler32 of the compressed bytes is computed on the same goroutine.
//
// data must not be modified until the task finishes.
func NewTask(c Compressor, data []byte, checksum bool) *Task {
	t := &Task{done: make(chan struct{})}

	go func() {
		defer close(t.done)

		out, err := c.Compress(data)
		if err == nil && len(out) == 0 {
			err = fmt.Errorf("%w: %d input bytes", errs.ErrEmptyResult, len(data))
		}

		var sum uint32
		if err == nil && checksum {
			sum = adler32.Checksum(out)
		}

		t.mu.Lock()
		t.data, t.checksum, t.err = out, sum, err
		t.mu.Unlock()
	}()

	return t
}

// Done returns a channel closed when compression finishes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait waits up to timeout for the task to finish. A zero timeout polls
// without blocking and a negative timeout blocks until completion.
func (t *Task) Wait(timeout time.Duration) TaskStatus {
	switch {
	case timeout < 0:
		<-t.done

		return TaskFinished
	case timeout == 0:
		select {
		case <-t.done:
			return TaskFinished
		default:
			return TaskRunning
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-t.done:
		return TaskFinished
	case <-timer.C:
		return TaskRunning
	}
}

// Result blocks until the task finishes and returns the compressed bytes and
// their checksum (0 when checksumming was disabled).
//
// Returns:
//   - []byte: Compressed data, owned by the caller
//   - uint32: Adler32 of the compressed data
//   - error: The compression error, ErrEmptyResult for an empty output, or
//     ErrTaskConsumed when the result was already taken
func (t *Task) Result() ([]byte, uint32, error) {
	<-t.done

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.consumed {
		return nil, 0, errs.ErrTaskConsumed
	}
	t.consumed = true

	data, sum, err := t.data, t.checksum, t.err
	t.data = nil

	if err != nil {
		return nil, 0, err
	}

	return data, sum, nil
}
