// Package enginetest provides engines for exercising the imageio drivers
// without native codec libraries: a lossless reference engine whose stream
// is a small header followed by zstd-compressed samples, and scripted
// engines that replay a fixed sequence of events.
package enginetest

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/oy3o/imageio/engine"
)

// Magic starts every reference stream. It begins with the JPEG XL
// codestream signature so format detection routes it to the JPEG XL driver.
var Magic = []byte{0xFF, 0x0A, 'Z', 'R'}

// HeaderSize is the length of the magic plus big-endian width and height.
const HeaderSize = 12

// ErrCorrupt is reported through BasicInfo and friends for bad streams.
var ErrCorrupt = errors.New("enginetest: corrupt reference stream")

func concurrency(threads int) int {
	if threads <= 0 {
		return 1
	}
	return threads
}

// LosslessEncoder is the encoding half of the reference engine.
type LosslessEncoder struct {
	zenc      *zstd.Encoder
	info      engine.BasicInfo
	hasInfo   bool
	lossless  bool
	frame     []byte
	inputDone bool
	pending   []byte
	ready     bool

	Calls    int // ProcessOutput calls
	NeedMore int // StatusNeedMoreOutput results
	Closed   bool
}

// NewLosslessEncoder creates a reference encoder whose zstd stage uses up
// to threads goroutines.
func NewLosslessEncoder(threads int) (*LosslessEncoder, error) {
	zenc, err := zstd.NewWriter(nil,
		zstd.WithEncoderConcurrency(concurrency(threads)),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
	)
	if err != nil {
		return nil, err
	}
	return &LosslessEncoder{zenc: zenc}, nil
}

// LosslessEncoderFactory is an engine.EncoderFactory for the reference engine.
func LosslessEncoderFactory(threads int) (engine.Encoder, error) {
	e, err := NewLosslessEncoder(threads)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// SetLossless rejects lossy mode.
func (e *LosslessEncoder) SetLossless(lossless bool) error {
	if !lossless {
		return errors.New("enginetest: reference engine is lossless only")
	}
	e.lossless = true
	return nil
}

// SetBasicInfo records the frame dimensions.
func (e *LosslessEncoder) SetBasicInfo(info engine.BasicInfo) error {
	if info.Width == 0 || info.Height == 0 {
		return fmt.Errorf("enginetest: empty %dx%d image", info.Width, info.Height)
	}
	if info.BitsPerSample != 16 || info.AlphaBits != 16 || info.ColorChannels != 3 || info.ExtraChannels != 1 {
		return fmt.Errorf("enginetest: unsupported basic info %+v", info)
	}
	e.info = info
	e.hasInfo = true
	return nil
}

// AddFrame stores the frame as big-endian samples for compression.
func (e *LosslessEncoder) AddFrame(format engine.PixelFormat, pixels []byte) error {
	if !e.hasInfo || !e.lossless {
		return errors.New("enginetest: frame added before configuration")
	}
	if format.Channels != 4 {
		return fmt.Errorf("enginetest: %d channel frame", format.Channels)
	}
	want := int(e.info.Width) * int(e.info.Height) * 8
	if len(pixels) != want {
		return fmt.Errorf("enginetest: frame of %d bytes, want %d", len(pixels), want)
	}
	e.frame = reorder(pixels, format.Endianness.ByteOrder(), binary.BigEndian)
	return nil
}

// CloseInput marks the frame as final.
func (e *LosslessEncoder) CloseInput() { e.inputDone = true }

// ProcessOutput copies as much of the stream as fits into out.
func (e *LosslessEncoder) ProcessOutput(out []byte) (int, engine.Status) {
	e.Calls++
	if !e.inputDone || e.frame == nil {
		return 0, engine.StatusError
	}
	if !e.ready {
		hdr := make([]byte, HeaderSize, HeaderSize+len(e.frame)/2)
		copy(hdr, Magic)
		binary.BigEndian.PutUint32(hdr[4:], e.info.Width)
		binary.BigEndian.PutUint32(hdr[8:], e.info.Height)
		e.pending = e.zenc.EncodeAll(e.frame, hdr)
		e.ready = true
	}
	n := copy(out, e.pending)
	e.pending = e.pending[n:]
	if len(e.pending) > 0 {
		e.NeedMore++
		return n, engine.StatusNeedMoreOutput
	}
	return n, engine.StatusSuccess
}

// Close releases the zstd encoder.
func (e *LosslessEncoder) Close() {
	if e.zenc != nil {
		_ = e.zenc.Close()
		e.zenc = nil
	}
	e.Closed = true
}

type decodeStage int

const (
	stageHeader decodeStage = iota
	stageInfo
	stageOutput
	stageImage
	stageDone
)

// LosslessDecoder is the decoding half of the reference engine.
type LosslessDecoder struct {
	zdec      *zstd.Decoder
	mask      engine.EventMask
	input     []byte
	inputDone bool
	stage     decodeStage
	info      engine.BasicInfo
	out       []byte
	format    engine.PixelFormat

	Events []engine.Event
	Closed bool
}

// NewLosslessDecoder creates a reference decoder.
func NewLosslessDecoder(threads int) (*LosslessDecoder, error) {
	zdec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(concurrency(threads)))
	if err != nil {
		return nil, err
	}
	return &LosslessDecoder{zdec: zdec}, nil
}

// LosslessDecoderFactory is an engine.DecoderFactory for the reference engine.
func LosslessDecoderFactory(threads int) (engine.Decoder, error) {
	d, err := NewLosslessDecoder(threads)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Subscribe selects the informational events ProcessInput reports.
func (d *LosslessDecoder) Subscribe(events engine.EventMask) error {
	d.mask = events
	return nil
}

// SetInput stores the whole stream.
func (d *LosslessDecoder) SetInput(data []byte) error {
	if len(data) == 0 {
		return errors.New("enginetest: empty input")
	}
	d.input = data
	return nil
}

// CloseInput marks the input as complete.
func (d *LosslessDecoder) CloseInput() { d.inputDone = true }

// ProcessInput advances through header, info, output and image stages.
func (d *LosslessDecoder) ProcessInput() engine.Event {
	ev := d.step()
	d.Events = append(d.Events, ev)
	return ev
}

func (d *LosslessDecoder) step() engine.Event {
	for {
		switch d.stage {
		case stageHeader:
			if len(d.input) < HeaderSize {
				if !d.inputDone {
					return engine.EventNeedMoreInput
				}
				return engine.EventError
			}
			if !bytes.HasPrefix(d.input, Magic) {
				return engine.EventError
			}
			d.info = engine.BasicInfo{
				Width:               binary.BigEndian.Uint32(d.input[4:]),
				Height:              binary.BigEndian.Uint32(d.input[8:]),
				BitsPerSample:       16,
				AlphaBits:           16,
				ColorChannels:       3,
				ExtraChannels:       1,
				UsesOriginalProfile: true,
			}
			if d.info.Width == 0 || d.info.Height == 0 {
				return engine.EventError
			}
			d.stage = stageInfo
			if d.mask&engine.SubscribeBasicInfo != 0 {
				return engine.EventBasicInfo
			}
		case stageInfo:
			if d.out == nil {
				return engine.EventNeedOutputBuffer
			}
			d.stage = stageOutput
		case stageOutput:
			samples, err := d.zdec.DecodeAll(d.input[HeaderSize:], nil)
			if err != nil || len(samples) != len(d.out) {
				return engine.EventError
			}
			copy(d.out, reorder(samples, binary.BigEndian, d.format.Endianness.ByteOrder()))
			d.stage = stageImage
			if d.mask&engine.SubscribeFullImage != 0 {
				return engine.EventFullImage
			}
		case stageImage:
			d.stage = stageDone
			return engine.EventSuccess
		default:
			return engine.EventSuccess
		}
	}
}

// BasicInfo returns the parsed header.
func (d *LosslessDecoder) BasicInfo() (engine.BasicInfo, error) {
	if d.stage == stageHeader {
		return engine.BasicInfo{}, ErrCorrupt
	}
	return d.info, nil
}

// OutputBufferSize returns the byte size of the frame in format.
func (d *LosslessDecoder) OutputBufferSize(format engine.PixelFormat) (int, error) {
	if d.stage == stageHeader {
		return 0, ErrCorrupt
	}
	if format.Channels != 4 {
		return 0, fmt.Errorf("enginetest: %d channel output", format.Channels)
	}
	return int(d.info.Width) * int(d.info.Height) * 8, nil
}

// SetOutputBuffer installs the frame destination.
func (d *LosslessDecoder) SetOutputBuffer(format engine.PixelFormat, buf []byte) error {
	size, err := d.OutputBufferSize(format)
	if err != nil {
		return err
	}
	if len(buf) != size {
		return fmt.Errorf("enginetest: output buffer of %d bytes, want %d", len(buf), size)
	}
	d.out = buf
	d.format = format
	return nil
}

// Close releases the zstd decoder.
func (d *LosslessDecoder) Close() {
	if d.zdec != nil {
		d.zdec.Close()
		d.zdec = nil
	}
	d.Closed = true
}

// reorder converts 16-bit samples between byte orders.
func reorder(src []byte, from, to binary.ByteOrder) []byte {
	out := make([]byte, len(src)&^1)
	for i := 0; i+1 < len(src); i += 2 {
		to.PutUint16(out[i:], from.Uint16(src[i:]))
	}
	return out
}
