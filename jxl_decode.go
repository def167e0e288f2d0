package imageio

import (
	"errors"
	"fmt"

	"github.com/oy3o/imageio/engine"
)

// jxlDecoder drives an event-driven JPEG XL engine over one payload that
// is supplied whole and closed before the first step.
type jxlDecoder struct {
	opts          *Options
	state         decodeState
	width, height uint32
	buf           []byte
	haveInfo      bool
	haveImage     bool
}

func decodeJXL(data []byte, opts *Options) (*Image, error) {
	d := &jxlDecoder{opts: opts}
	return d.decode(data)
}

func (d *jxlDecoder) enter(s decodeState) {
	d.state = s
	transition(JPEGXL, s.String(), d.width, d.height)
}

func (d *jxlDecoder) fail(err error) error {
	d.enter(decodeFailed)
	return err
}

func (d *jxlDecoder) decode(data []byte) (*Image, error) {
	d.enter(decodeInit)
	eng, err := d.opts.jxlDecoder()(d.opts.Threads)
	if err != nil {
		if errors.Is(err, ErrEngineUnavailable) {
			return nil, d.fail(err)
		}
		return nil, d.fail(fmt.Errorf("%w: jxl engine: %w", ErrDecodeFailed, err))
	}
	defer eng.Close()

	if err := eng.Subscribe(engine.SubscribeBasicInfo | engine.SubscribeFullImage); err != nil {
		return nil, d.fail(fmt.Errorf("%w: subscribe: %w", ErrDecodeFailed, err))
	}
	if err := eng.SetInput(data); err != nil {
		return nil, d.fail(fmt.Errorf("%w: %w", ErrInputUnreadable, err))
	}
	eng.CloseInput()

	if err := d.run(eng); err != nil {
		return nil, d.fail(err)
	}
	img, err := d.normalize()
	if err != nil {
		return nil, d.fail(err)
	}
	d.enter(decodeDone)
	return img, nil
}

// run steps the engine until it reports success or a failure.
func (d *jxlDecoder) run(eng engine.Decoder) error {
	format := d.opts.pixelFormat()
	for {
		ev := eng.ProcessInput()
		switch ev {
		case engine.EventBasicInfo:
			if d.buf != nil {
				return fmt.Errorf("%w: basic info repeated after the output buffer was set", ErrDecodeFailed)
			}
			info, err := eng.BasicInfo()
			if err != nil {
				return fmt.Errorf("%w: basic info: %w", ErrDecodeFailed, err)
			}
			if info.Width == 0 || info.Height == 0 {
				return fmt.Errorf("%w: jxl dimensions %dx%d", ErrDecodeFailed, info.Width, info.Height)
			}
			d.width, d.height = info.Width, info.Height
			d.haveInfo = true
			d.enter(decodeHeaderParsed)

		case engine.EventNeedOutputBuffer:
			d.enter(decodeAllocatingOutput)
			if err := d.allocate(eng, format); err != nil {
				return err
			}
			d.enter(decodeReading)

		case engine.EventFullImage:
			if d.buf == nil {
				return fmt.Errorf("%w: full image before an output buffer was set", ErrDecodeFailed)
			}
			d.haveImage = true

		case engine.EventSuccess:
			if !d.haveInfo || !d.haveImage {
				return fmt.Errorf("%w: engine finished without a full image", ErrDecodeFailed)
			}
			return nil

		case engine.EventNeedMoreInput:
			return ErrUnexpectedMoreInput

		case engine.EventError:
			return fmt.Errorf("%w: jxl engine reported an error", ErrDecodeFailed)

		default:
			return fmt.Errorf("%w: unexpected engine event %s", ErrDecodeFailed, ev)
		}
	}
}

// allocate sizes and installs the output buffer. The engine's required
// size must match the canonical layout exactly.
func (d *jxlDecoder) allocate(eng engine.Decoder, format engine.PixelFormat) error {
	if !d.haveInfo {
		return fmt.Errorf("%w: output buffer requested before basic info", ErrDecodeFailed)
	}
	samples, err := sampleCount(d.width, d.height, d.opts.MaxPixels)
	if err != nil {
		return err
	}
	want, ok := mulChecked(uint64(samples), 2)
	if !ok || !fitsInt(want) {
		return fmt.Errorf("%w: %dx%d output overflows", ErrAllocationFailed, d.width, d.height)
	}
	size, err := eng.OutputBufferSize(format)
	if err != nil {
		return fmt.Errorf("%w: output buffer size: %w", ErrDecodeFailed, err)
	}
	if uint64(size) != want {
		return fmt.Errorf("%w: engine wants %d output bytes for %dx%d, want %d", ErrDecodeFailed, size, d.width, d.height, want)
	}
	d.buf = make([]byte, size)
	if err := eng.SetOutputBuffer(format, d.buf); err != nil {
		return fmt.Errorf("%w: set output buffer: %w", ErrDecodeFailed, err)
	}
	return nil
}

func (d *jxlDecoder) normalize() (*Image, error) {
	layout, err := newSampleLayout(Channels, 16, d.opts.Endianness.ByteOrder())
	if err != nil {
		return nil, err
	}
	rowBytes, err := layout.rowBytes(d.width)
	if err != nil {
		return nil, err
	}
	if want, ok := mulChecked(uint64(rowBytes), uint64(d.height)); !ok || uint64(len(d.buf)) != want {
		return nil, fmt.Errorf("%w: output buffer holds %d bytes for %dx%d", ErrDecodeFailed, len(d.buf), d.width, d.height)
	}
	pix := make([]uint16, 0, len(d.buf)/2)
	for y := 0; y < int(d.height); y++ {
		if pix, err = layout.appendRow(pix, d.buf[y*rowBytes:(y+1)*rowBytes], int(d.width)); err != nil {
			return nil, err
		}
	}
	return &Image{Pix: pix, Width: d.width, Height: d.height}, nil
}
