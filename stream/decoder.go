package stream

import (
	"errors"
	"fmt"
	"hash/adler32"
	"io"
	"iter"
	"log/slog"

	"github.com/arloliu/aria/compress"
	"github.com/arloliu/aria/errs"
	"github.com/arloliu/aria/filter"
	"github.com/arloliu/aria/format"
	"github.com/arloliu/aria/internal/options"
	"github.com/arloliu/aria/motion"
	"github.com/arloliu/aria/plane"
	"github.com/arloliu/aria/predict"
	"github.com/arloliu/aria/section"
)

// Decoder reads frames of sample type T from a container.
//
// A Decoder is not safe for concurrent use. Errors other than io.EOF are
// sticky.
type Decoder[T plane.Sample] struct {
	r      io.Reader
	header section.MainHeader
	cfg    *DecoderConfig
	logger *slog.Logger
	ref    *Reference[T]
	codecs [4]compress.Decompressor

	dataStart int64 // offset of the first packet, -1 when r cannot seek

	packet      []byte
	packetFrame int // next frame record inside packet
	packetCount int // frame records in packet
	packetSeq   int

	frame int // frames returned so far
	err   error
}

// ReadInfo reads and validates the main header at the current position of r.
func ReadInfo(r io.Reader) (section.MainHeader, error) {
	buf := make([]byte, section.MainHeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return section.MainHeader{}, fmt.Errorf("%w: read main header: %w", errs.ErrInvalidHeaderSize, truncated(err))
	}

	return section.ParseMainHeader(buf)
}

// NewDecoder reads the main header from r and returns a Decoder positioned at
// the first frame. When r implements io.Seeker the decoder supports Seek.
//
// Returns ErrSampleWidthMismatch when the stream's sample width differs from
// T and ErrNoFrames for a stream that holds no frames or was never closed.
func NewDecoder[T plane.Sample](r io.Reader, opts ...DecoderOption) (*Decoder[T], error) {
	cfg := newDecoderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	header, err := ReadInfo(r)
	if err != nil {
		return nil, err
	}

	if want := plane.SampleWidthOf[T](); header.SampleWidth != want {
		return nil, fmt.Errorf("%w: stream has %s samples, decoder %s", errs.ErrSampleWidthMismatch, header.SampleWidth, want)
	}

	if header.FrameCount == 0 {
		return nil, errs.ErrNoFrames
	}

	d := &Decoder[T]{
		r:         r,
		header:    header,
		cfg:       cfg,
		logger:    cfg.logger,
		ref:       newReference[T](false),
		dataStart: -1,
	}

	if s, ok := r.(io.Seeker); ok {
		if pos, err := s.Seek(0, io.SeekCurrent); err == nil {
			d.dataStart = pos
		}
	}

	d.logger.Debug("decoder opened",
		"width", header.Width,
		"height", header.Height,
		"frames", header.FrameCount,
		"planes", header.Layout.Count(),
		"sample_width", header.SampleWidth,
	)

	return d, nil
}

// Info returns the stream's main header.
func (d *Decoder[T]) Info() section.MainHeader {
	return d.header
}

// FramePos returns the index of the next frame ReadFrame returns.
func (d *Decoder[T]) FramePos() int {
	return d.frame
}

// Reference returns the decoder's reference state. It must not be modified.
func (d *Decoder[T]) Reference() *Reference[T] {
	return d.ref
}

// ReadFrame decodes the next frame.
//
// Returns:
//   - []*plane.Plane[T]: Reconstructed planes in layout order, owned by the caller
//   - error: io.EOF after the last frame, otherwise a sticky decode error
func (d *Decoder[T]) ReadFrame() ([]*plane.Plane[T], error) {
	planes, err := d.next()
	if err != nil {
		return nil, err
	}

	return plane.CloneAll(planes), nil
}

// Frames returns an iterator over the remaining frames. Iteration stops after
// the first error, which is yielded with nil planes; io.EOF is not yielded.
func (d *Decoder[T]) Frames() iter.Seq2[[]*plane.Plane[T], error] {
	return func(yield func([]*plane.Plane[T], error) bool) {
		for {
			planes, err := d.ReadFrame()
			if errors.Is(err, io.EOF) {
				return
			}

			if !yield(planes, err) || err != nil {
				return
			}
		}
	}
}

// Seek positions the decoder so the next ReadFrame returns frame n.
//
// Delta frames depend on every earlier reconstruction, so Seek rewinds to the
// first packet and decodes forward to n.
//
// Returns ErrNotSeekable when the reader cannot seek and ErrFrameOutOfRange
// when n is outside [0, frame count].
func (d *Decoder[T]) Seek(n int) error {
	if d.err != nil {
		return d.err
	}

	if n < 0 || n > int(d.header.FrameCount) {
		return fmt.Errorf("%w: %d of %d", errs.ErrFrameOutOfRange, n, d.header.FrameCount)
	}

	if n < d.frame {
		if err := d.rewind(); err != nil {
			return err
		}
	}

	for d.frame < n {
		if _, err := d.next(); err != nil {
			return err
		}
	}

	return nil
}

func (d *Decoder[T]) rewind() error {
	s, ok := d.r.(io.Seeker)
	if !ok || d.dataStart < 0 {
		return errs.ErrNotSeekable
	}

	if _, err := s.Seek(d.dataStart, io.SeekStart); err != nil {
		return d.fail(fmt.Errorf("%w: %w", errs.ErrNotSeekable, err))
	}

	d.ref.Reset()
	d.packet = nil
	d.packetFrame, d.packetCount, d.packetSeq = 0, 0, 0
	d.frame = 0

	return nil
}

// next decodes the next frame and returns the reconstruction stored as the
// reference.
func (d *Decoder[T]) next() ([]*plane.Plane[T], error) {
	if d.err != nil {
		return nil, d.err
	}

	if d.frame >= int(d.header.FrameCount) {
		return nil, io.EOF
	}

	if d.packetFrame >= d.packetCount {
		if err := d.readPacket(); err != nil {
			return nil, d.fail(err)
		}
	}

	recSize := d.header.FrameRecordSize()
	rec := d.packet[d.packetFrame*recSize : (d.packetFrame+1)*recSize]

	planes, err := d.decodeFrame(rec)
	if err != nil {
		return nil, d.fail(fmt.Errorf("frame %d: %w", d.frame, err))
	}

	d.packetFrame++
	d.frame++

	return planes, nil
}

func (d *Decoder[T]) readPacket() error {
	var hdrBuf [section.PacketHeaderSize]byte
	if _, err := io.ReadFull(d.r, hdrBuf[:]); err != nil {
		return fmt.Errorf("%w: packet %d header at frame %d: %w", errs.ErrFormat, d.packetSeq, d.frame, truncated(err))
	}

	var ph section.PacketHeader
	if err := ph.Parse(hdrBuf[:]); err != nil {
		return fmt.Errorf("packet %d: %w", d.packetSeq, err)
	}

	if err := ph.Validate(&d.header); err != nil {
		return fmt.Errorf("packet %d: %w", d.packetSeq, err)
	}

	if d.frame+int(ph.FrameCount) > int(d.header.FrameCount) {
		return fmt.Errorf("%w: packet %d ends at frame %d of %d", errs.ErrFrameCountExceeded, d.packetSeq, d.frame+int(ph.FrameCount), d.header.FrameCount)
	}

	payloadSize := ph.PayloadSize(&d.header)
	if int(ph.Size) > compress.MaxCompressedSize(payloadSize) {
		return fmt.Errorf("%w: packet %d declares %d compressed bytes for %d", errs.ErrSizeMismatch, d.packetSeq, ph.Size, payloadSize)
	}

	compressed := make([]byte, ph.Size)
	if _, err := io.ReadFull(d.r, compressed); err != nil {
		return fmt.Errorf("%w: packet %d payload: %w", errs.ErrSizeMismatch, d.packetSeq, truncated(err))
	}

	codec, err := d.codec(ph.Compression)
	if err != nil {
		return err
	}

	payload, err := codec.Decompress(compressed, payloadSize)
	if err != nil {
		return fmt.Errorf("packet %d: %w", d.packetSeq, err)
	}

	if d.cfg.verifyChecksum {
		if sum := adler32.Checksum(compressed); sum != ph.Checksum {
			return fmt.Errorf("%w: packet %d adler32 0x%08x, header 0x%08x", errs.ErrChecksumMismatch, d.packetSeq, sum, ph.Checksum)
		}
	}

	if err := d.checkFrameHeaders(&ph, payload); err != nil {
		return fmt.Errorf("packet %d: %w", d.packetSeq, err)
	}

	d.logger.Debug("packet read",
		"packet", d.packetSeq,
		"frames", ph.FrameCount,
		"full_frames", ph.FullFrameCount,
		"compressed_bytes", ph.Size,
	)

	d.packet = payload
	d.packetFrame = 0
	d.packetCount = int(ph.FrameCount)
	d.packetSeq++

	return nil
}

// checkFrameHeaders validates every frame header of a packet payload and the
// packet's count of NONE frames.
func (d *Decoder[T]) checkFrameHeaders(ph *section.PacketHeader, payload []byte) error {
	recSize := d.header.FrameRecordSize()
	full := 0
	for i := range int(ph.FrameCount) {
		var fh section.FrameHeader
		if err := fh.Parse(payload[i*recSize : i*recSize+section.FrameHeaderSize]); err != nil {
			return fmt.Errorf("frame %d: %w", d.frame+i, err)
		}

		if err := fh.Validate(&d.header); err != nil {
			return fmt.Errorf("frame %d: %w", d.frame+i, err)
		}

		if fh.Reference == format.ReferenceNone {
			full++
		}
	}

	if full != int(ph.FullFrameCount) {
		return fmt.Errorf("%w: header says %d, payload holds %d", errs.ErrFullFrameCount, ph.FullFrameCount, full)
	}

	return nil
}

func (d *Decoder[T]) decodeFrame(rec []byte) ([]*plane.Plane[T], error) {
	var fh section.FrameHeader
	if err := fh.Parse(rec[:section.FrameHeaderSize]); err != nil {
		return nil, err
	}

	var anchor []*plane.Plane[T]
	if fh.Reference != format.ReferenceNone {
		var err error
		if anchor, err = d.ref.Anchor(fh.Reference); err != nil {
			return nil, err
		}
	}

	m := motion.Params{Scale: int(fh.Scale), MoveX: int(fh.MoveX), MoveY: int(fh.MoveY)}
	data := rec[section.FrameHeaderSize:]
	planes := make([]*plane.Plane[T], d.header.Layout.Count())

	for i := range planes {
		w, h := d.header.PlaneDimensions(i)
		size := d.header.PlaneSize(i)
		filtered, err := plane.Decode[T](data[:size], w, h, 1)
		if err != nil {
			return nil, fmt.Errorf("plane %d: %w", i, err)
		}
		data = data[size:]

		p, err := filter.Inverse(filtered, fh.Modes[i])
		if err != nil {
			return nil, fmt.Errorf("plane %d: %w", i, err)
		}

		if anchor != nil {
			ref := anchor[i]
			if !m.IsZero() {
				ref = motion.Resample(ref, m)
			}
			p = predict.AddReference(p, ref)
		}

		planes[i] = p
	}

	if err := d.ref.Advance(fh.Reference, planes); err != nil {
		return nil, err
	}

	return planes, nil
}

func (d *Decoder[T]) codec(method format.CompressionMethod) (compress.Decompressor, error) {
	if !method.IsValid() {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidCompression, method)
	}

	if c := d.codecs[method]; c != nil {
		return c, nil
	}

	c, err := compress.CreateCodec(method, 0)
	if err != nil {
		return nil, err
	}
	d.codecs[method] = c

	return c, nil
}

// truncated reports a short read inside the container as io.ErrUnexpectedEOF.
// io.EOF is reserved for the end of the last frame.
func truncated(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}

	return err
}

func (d *Decoder[T]) fail(err error) error {
	if d.err == nil {
		d.err = err
	}

	return err
}
