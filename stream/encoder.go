package stream

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/arloliu/aria/compress"
	"github.com/arloliu/aria/errs"
	"github.com/arloliu/aria/format"
	"github.com/arloliu/aria/internal/options"
	"github.com/arloliu/aria/internal/pool"
	"github.com/arloliu/aria/plane"
	"github.com/arloliu/aria/predict"
	"github.com/arloliu/aria/section"
)

// Encoder writes frames of sample type T to a container.
//
// Frames are coded strictly in the order EncodeFrame is called. An Encoder
// is not safe for concurrent use. The first error is sticky: every later call
// returns it, and the stream should be discarded.
type Encoder[T plane.Sample] struct {
	w      io.WriteSeeker
	base   int64
	header section.MainHeader
	cfg    *EncoderConfig
	engine *predict.Engine[T]
	ref    *Reference[T]
	queue  *flushQueue
	logger *slog.Logger
	stats  compress.Stats

	buf       *pool.ByteBuffer
	bufFrames int
	bufFull   int

	err    error
	closed bool
}

// NewEncoder writes a provisional main header at the current position of w and
// returns an Encoder for the frames described by f.
//
// Parameters:
//   - w: Destination; Close seeks back to patch the frame count
//   - f: Frame dimensions, framerate and plane layout
//   - opts: Encoder options
//
// Returns:
//   - *Encoder[T]: The encoder
//   - error: ErrInvalidHeaderField or ErrInvalidChannelCount for an invalid
//     format, ErrInvalidOption for invalid options, or the write error
func NewEncoder[T plane.Sample](w io.WriteSeeker, f FrameFormat, opts ...EncoderOption) (*Encoder[T], error) {
	cfg := newEncoderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if f.Framerate < 1 || f.Framerate > math.MaxUint8 {
		return nil, fmt.Errorf("%w: framerate %d", errs.ErrInvalidHeaderField, f.Framerate)
	}

	if f.Width < 1 || f.Width > section.MaxDimension || f.Height < 1 || f.Height > section.MaxDimension {
		return nil, fmt.Errorf("%w: dimensions %dx%d", errs.ErrInvalidHeaderField, f.Width, f.Height)
	}

	if cfg.maxPacketSize == 0 {
		cfg.maxPacketSize = defaultMaxPacketSize(f.Framerate)
	}

	sampleWidth := plane.SampleWidthOf[T]()
	if cfg.dropThreshold < 0 {
		cfg.dropThreshold = DefaultDropThreshold8
		if sampleWidth == format.SampleWidth16 {
			cfg.dropThreshold = DefaultDropThreshold16
		}
	}

	header := section.MainHeader{
		UserData:       cfg.userData,
		Width:          uint32(f.Width),
		Height:         uint32(f.Height),
		MaxScaleRadius: uint16(cfg.scaleRadius),
		MaxMoveRadius:  uint16(cfg.moveRadius),
		Layout:         f.Layout,
		SampleWidth:    sampleWidth,
		Framerate:      uint8(f.Framerate),
		MaxPacketSize:  uint8(cfg.maxPacketSize),
	}
	if err := header.Validate(); err != nil {
		return nil, err
	}

	est := cfg.estimator
	if est == nil {
		est = compress.NewLZ4Estimator(cfg.estimateLevel)
	}

	engine, err := predict.NewEngine[T](est, predict.Config{
		DropThreshold: cfg.dropThreshold,
		ScaleRadius:   cfg.scaleRadius,
		MoveRadius:    cfg.moveRadius,
		Workers:       cfg.workers,
	})
	if err != nil {
		return nil, err
	}

	codec, err := compress.CreateCodec(cfg.compression, cfg.compressionLevel)
	if err != nil {
		return nil, err
	}

	base, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrNotSeekable, err)
	}

	if _, err := w.Write(header.Bytes()); err != nil {
		return nil, fmt.Errorf("write main header: %w", err)
	}

	e := &Encoder[T]{
		w:      w,
		base:   base,
		header: header,
		cfg:    cfg,
		engine: engine,
		ref:    newReference[T](true),
		logger: cfg.logger,
		buf:    pool.GetPacketBuffer(),
	}
	e.stats.Method = cfg.compression
	e.queue = &flushQueue{
		w:        w,
		codec:    codec,
		start:    cfg.startTask,
		capacity: cfg.flushQueueSize,
		logger:   cfg.logger,
		stats:    &e.stats,
	}

	e.logger.Debug("encoder started",
		"width", f.Width,
		"height", f.Height,
		"framerate", f.Framerate,
		"planes", f.Layout.Count(),
		"sample_width", sampleWidth,
		"drop_threshold", cfg.dropThreshold,
		"max_packet_size", cfg.maxPacketSize,
		"compression", cfg.compression,
	)

	return e, nil
}

// Header returns the main header as it will be written on Close.
func (e *Encoder[T]) Header() section.MainHeader {
	return e.header
}

// FrameCount returns the number of frames encoded so far.
func (e *Encoder[T]) FrameCount() int {
	return int(e.header.FrameCount)
}

// Stats returns the compression totals of the packets written so far.
func (e *Encoder[T]) Stats() compress.Stats {
	return e.stats
}

// Reference returns the encoder's reference state. It must not be modified.
func (e *Encoder[T]) Reference() *Reference[T] {
	return e.ref
}

// EncodeFrame codes one frame and appends it to the current packet.
//
// planes holds Layout.Full full-size planes followed by Layout.Half half-size
// planes, each single-channel. The planes are not retained.
//
// ctx is checked once before the frame starts. A frame that has started is
// always completed, so cancellation never leaves a partial frame behind.
func (e *Encoder[T]) EncodeFrame(ctx context.Context, planes []*plane.Plane[T]) error {
	if err := e.usable(); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := e.checkFrame(planes); err != nil {
		return err
	}

	if e.header.FrameCount == math.MaxUint32 {
		return e.fail(fmt.Errorf("%w: %d frames", errs.ErrFrameCountExceeded, e.header.FrameCount))
	}

	d, err := e.engine.Decide(planes, e.ref.Anchors())
	if err != nil {
		return e.fail(fmt.Errorf("frame %d: %w", e.header.FrameCount, err))
	}

	if err := e.commit(d); err != nil {
		return e.fail(err)
	}

	if e.bufFrames >= e.cfg.maxPacketSize {
		if err := e.flush(false); err != nil {
			return e.fail(err)
		}
	}

	return nil
}

// commit appends the frame record and advances the reference state.
func (e *Encoder[T]) commit(d *predict.Decision[T]) error {
	fh := section.FrameHeader{
		Size:      uint32(e.header.FrameDataSize()),
		Scale:     int16(d.Motion.Scale),
		MoveX:     int16(d.Motion.MoveX),
		MoveY:     int16(d.Motion.MoveY),
		Reference: d.Reference,
	}
	for i, r := range d.Results {
		fh.Modes[i] = r.Mode
	}

	e.buf.Grow(e.header.FrameRecordSize())
	e.buf.B = fh.AppendBytes(e.buf.B)
	for _, r := range d.Results {
		_, _ = e.buf.Write(r.Data)
	}

	if err := e.ref.Advance(d.Reference, d.Reconstruction()); err != nil {
		return err
	}

	e.bufFrames++
	if d.Reference == format.ReferenceNone {
		e.bufFull++
	}

	e.logger.Debug("frame coded",
		"frame", e.header.FrameCount,
		"reference", d.Reference,
		"size", d.Size,
		"modes", d.Modes(),
		"scale", d.Motion.Scale,
		"move_x", d.Motion.MoveX,
		"move_y", d.Motion.MoveY,
	)
	e.header.FrameCount++

	return nil
}

// Flush compresses the buffered frames into a packet and waits until every
// pending packet is written.
func (e *Encoder[T]) Flush() error {
	if err := e.usable(); err != nil {
		return err
	}

	if err := e.flush(true); err != nil {
		return e.fail(err)
	}

	return nil
}

func (e *Encoder[T]) flush(force bool) error {
	if e.bufFrames > 0 {
		e.queue.enqueue(section.PacketHeader{
			FrameCount:     uint8(e.bufFrames),
			FullFrameCount: uint8(e.bufFull),
			Compression:    e.cfg.compression,
		}, e.buf)

		e.buf = pool.GetPacketBuffer()
		e.bufFrames, e.bufFull = 0, 0
	}

	return e.queue.drain(force)
}

// Close writes all pending packets, patches the frame count into the main
// header and leaves w positioned at the end of the stream. Close does not
// close w. Calling Close again returns nil.
func (e *Encoder[T]) Close() error {
	if e.closed {
		return nil
	}

	if e.err != nil {
		e.closed = true
		return e.err
	}

	if err := e.flush(true); err != nil {
		e.closed = true
		return e.fail(err)
	}
	e.closed = true
	pool.PutPacketBuffer(e.buf)
	e.buf = nil

	if err := e.patchHeader(); err != nil {
		return e.fail(err)
	}

	e.logger.Debug("encoder closed",
		"frames", e.header.FrameCount,
		"packets", e.stats.Packets,
		"ratio", e.stats.CompressionRatio(),
	)

	return nil
}

func (e *Encoder[T]) patchHeader() error {
	end, err := e.w.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrNotSeekable, err)
	}

	if _, err := e.w.Seek(e.base, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrNotSeekable, err)
	}

	if _, err := e.w.Write(e.header.Bytes()); err != nil {
		return fmt.Errorf("patch main header: %w", err)
	}

	if _, err := e.w.Seek(end, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrNotSeekable, err)
	}

	return nil
}

func (e *Encoder[T]) checkFrame(planes []*plane.Plane[T]) error {
	if want := e.header.Layout.Count(); len(planes) != want {
		return fmt.Errorf("%w: got %d planes, want %d", errs.ErrPlaneCount, len(planes), want)
	}

	for i, p := range planes {
		if p == nil {
			return fmt.Errorf("%w: plane %d is nil", errs.ErrPlaneCount, i)
		}

		if err := p.Validate(); err != nil {
			return fmt.Errorf("plane %d: %w", i, err)
		}

		if p.Channels != 1 {
			return fmt.Errorf("%w: plane %d has %d channels, want 1", errs.ErrInvalidChannelCount, i, p.Channels)
		}

		if w, h := e.header.PlaneDimensions(i); p.Width != w || p.Height != h {
			return fmt.Errorf("%w: plane %d is %dx%d, want %dx%d", errs.ErrSizeMismatch, i, p.Width, p.Height, w, h)
		}
	}

	return nil
}

func (e *Encoder[T]) usable() error {
	if e.closed {
		return errs.ErrEncoderClosed
	}

	return e.err
}

func (e *Encoder[T]) fail(err error) error {
	if e.err == nil {
		e.err = err
	}

	return err
}
