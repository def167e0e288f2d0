package imageio

import (
	"errors"
	"fmt"

	"github.com/oy3o/imageio/engine"
)

type encodeState int

const (
	encodeInit encodeState = iota
	encodeConfiguring
	encodeEncoding
	encodeDraining
	encodeDone
	encodeFailed
)

func (s encodeState) String() string {
	switch s {
	case encodeInit:
		return "init"
	case encodeConfiguring:
		return "configuring"
	case encodeEncoding:
		return "encoding"
	case encodeDraining:
		return "draining"
	case encodeDone:
		return "done"
	case encodeFailed:
		return "failed"
	default:
		return fmt.Sprintf("encodeState(%d)", int(s))
	}
}

// jxlEncoder drives a JPEG XL engine through one lossless frame.
type jxlEncoder struct {
	opts  *Options
	state encodeState
	img   *Image
}

func encodeJXL(img *Image, opts *Options) ([]byte, error) {
	e := &jxlEncoder{opts: opts, img: img}
	return e.encode()
}

func (e *jxlEncoder) enter(s encodeState) {
	e.state = s
	var w, h uint32
	if e.img != nil {
		w, h = e.img.Width, e.img.Height
	}
	transition(JPEGXL, s.String(), w, h)
}

func (e *jxlEncoder) fail(err error) error {
	e.enter(encodeFailed)
	return err
}

func (e *jxlEncoder) encode() ([]byte, error) {
	e.enter(encodeInit)
	if err := e.img.Validate(); err != nil {
		return nil, e.fail(fmt.Errorf("%w: %w", ErrEncodeFailed, err))
	}
	eng, err := e.opts.jxlEncoder()(e.opts.Threads)
	if err != nil {
		if errors.Is(err, ErrEngineUnavailable) {
			return nil, e.fail(err)
		}
		return nil, e.fail(fmt.Errorf("%w: jxl engine: %w", ErrEncodeFailed, err))
	}
	defer eng.Close()

	e.enter(encodeConfiguring)
	if err := eng.SetLossless(true); err != nil {
		return nil, e.fail(fmt.Errorf("%w: lossless: %w", ErrEncodeFailed, err))
	}
	info := engine.BasicInfo{
		Width:               e.img.Width,
		Height:              e.img.Height,
		BitsPerSample:       16,
		AlphaBits:           16,
		ColorChannels:       3,
		ExtraChannels:       1,
		UsesOriginalProfile: true,
	}
	if err := eng.SetBasicInfo(info); err != nil {
		return nil, e.fail(fmt.Errorf("%w: basic info: %w", ErrEncodeFailed, err))
	}

	e.enter(encodeEncoding)
	format := e.opts.pixelFormat()
	if err := eng.AddFrame(format, packSamples(e.img.Pix, format.Endianness.ByteOrder())); err != nil {
		return nil, e.fail(fmt.Errorf("%w: add frame: %w", ErrEncodeFailed, err))
	}
	eng.CloseInput()

	e.enter(encodeDraining)
	out, err := drain(eng, e.opts.initialCapacity(), e.opts.MaxOutputBytes)
	if err != nil {
		return nil, e.fail(err)
	}
	e.enter(encodeDone)
	return out, nil
}

// drain collects the engine's output, doubling the buffer every time the
// engine reports it needs more room.
func drain(eng engine.Encoder, initial, limit int) ([]byte, error) {
	buf := NewOutputBuffer(initial, limit)
	defer buf.Release()
	for {
		n, status := eng.ProcessOutput(buf.Free())
		if err := buf.Advance(n); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncodeFailed, err)
		}
		switch status {
		case engine.StatusSuccess:
			return buf.Detach(), nil
		case engine.StatusNeedMoreOutput:
			if err := buf.Grow(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: jxl engine reported %s", ErrEncodeFailed, status)
		}
	}
}
