package stream

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/arloliu/aria/compress"
	"github.com/arloliu/aria/errs"
	"github.com/arloliu/aria/internal/pool"
	"github.com/arloliu/aria/section"
)

// packetTask is the background compression of one packet payload.
type packetTask interface {
	Wait(timeout time.Duration) compress.TaskStatus
	Result() ([]byte, uint32, error)
}

type pendingPacket struct {
	header section.PacketHeader
	task   packetTask
	buf    *pool.ByteBuffer
	seq    int
}

// flushQueue writes compressed packets in the order they were enqueued.
//
// Tasks may finish in any order. A non-forced drain writes finished packets
// from the head and stops at the first unfinished one, unless the queue is at
// capacity, in which case it waits for the head. A forced drain waits for
// every task.
type flushQueue struct {
	w        io.Writer
	codec    compress.Compressor
	start    func(c compress.Compressor, data []byte) packetTask
	capacity int
	logger   *slog.Logger
	stats    *compress.Stats

	queue []pendingPacket
	seq   int
}

// enqueue starts compressing buf. The queue owns buf from here on.
func (q *flushQueue) enqueue(header section.PacketHeader, buf *pool.ByteBuffer) {
	q.queue = append(q.queue, pendingPacket{
		header: header,
		task:   q.start(q.codec, buf.Bytes()),
		buf:    buf,
		seq:    q.seq,
	})
	q.logger.Debug("packet enqueued",
		"packet", q.seq,
		"frames", header.FrameCount,
		"full_frames", header.FullFrameCount,
		"bytes", buf.Len(),
		"queued", len(q.queue),
	)
	q.seq++
}

// pending returns the number of packets not yet written.
func (q *flushQueue) pending() int {
	return len(q.queue)
}

// drain writes finished packets from the head of the queue.
func (q *flushQueue) drain(force bool) error {
	for len(q.queue) > 0 {
		head := &q.queue[0]
		if len(q.queue) < q.capacity && !force {
			if head.task.Wait(0) != compress.TaskFinished {
				break
			}
		}

		if err := q.write(head); err != nil {
			return err
		}

		q.queue[0] = pendingPacket{}
		q.queue = q.queue[1:]
	}

	if len(q.queue) == 0 {
		q.queue = nil
	}

	return nil
}

func (q *flushQueue) write(p *pendingPacket) error {
	data, checksum, err := p.task.Result()
	if err != nil {
		return fmt.Errorf("packet %d: %w", p.seq, err)
	}

	rawSize := p.buf.Len()
	if len(data) > math.MaxUint32 || len(data) > compress.MaxCompressedSize(rawSize) {
		return fmt.Errorf("%w: packet %d compressed to %d bytes from %d", errs.ErrSizeMismatch, p.seq, len(data), rawSize)
	}

	p.header.Size = uint32(len(data))
	p.header.Checksum = checksum

	if _, err := q.w.Write(p.header.Bytes()); err != nil {
		return fmt.Errorf("write packet %d header: %w", p.seq, err)
	}

	if _, err := q.w.Write(data); err != nil {
		return fmt.Errorf("write packet %d: %w", p.seq, err)
	}

	q.stats.Add(rawSize, len(data))
	q.logger.Debug("packet written",
		"packet", p.seq,
		"raw_bytes", rawSize,
		"compressed_bytes", len(data),
	)

	// data may alias buf for the no-op codec, so release only after writing.
	pool.PutPacketBuffer(p.buf)
	p.buf = nil

	return nil
}
