package imageio

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/puzpuzpuz/xsync/v4"
)

// Decoder turns a complete compressed byte region into an Image.
type Decoder interface {
	Decode(data []byte, opts *Options) (*Image, error)
}

// Encoder turns an Image into a complete compressed byte stream.
type Encoder interface {
	Encode(img *Image, opts *Options) ([]byte, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(data []byte, opts *Options) (*Image, error)

func (f DecoderFunc) Decode(data []byte, opts *Options) (*Image, error) { return f(data, opts) }

// EncoderFunc adapts a function to the Encoder interface.
type EncoderFunc func(img *Image, opts *Options) ([]byte, error)

func (f EncoderFunc) Encode(img *Image, opts *Options) ([]byte, error) { return f(img, opts) }

type entry struct {
	dec Decoder
	enc Encoder
}

// registry maps each format to its drivers. Lookups happen on every call
// from any goroutine, so it is a concurrent map rather than a locked one.
var registry = xsync.NewMap[Format, entry]()

func init() {
	Register(PNG, DecoderFunc(decodePNG), nil)
	Register(JPEGXL, DecoderFunc(decodeJXL), EncoderFunc(encodeJXL))
}

// Register installs the drivers for a format, replacing any previous ones.
// Either driver may be nil when the format supports only one direction.
func Register(format Format, dec Decoder, enc Encoder) {
	if dec == nil && enc == nil {
		registry.Delete(format)
		return
	}
	registry.Store(format, entry{dec: dec, enc: enc})
}

// Formats returns the registered formats in ascending order.
func Formats() []Format {
	var out []Format
	registry.Range(func(f Format, _ entry) bool {
		out = append(out, f)
		return true
	})
	slices.Sort(out)
	return out
}

// Codec routes decode and encode requests to the registered format drivers.
// It holds only its options and is safe for concurrent use.
type Codec struct {
	opts Options
}

// NewCodec creates a Codec with the given options.
func NewCodec(opts Options) *Codec {
	return &Codec{opts: opts}
}

// Options returns a copy of the codec's options.
func (c *Codec) Options() Options { return c.opts }

var defaultCodec = NewCodec(DefaultOptions())

// Decode decodes data with the default codec.
func Decode(data []byte, format Format) (*Image, error) {
	return defaultCodec.Decode(data, format)
}

// Encode encodes img with the default codec.
func Encode(img *Image, format Format) ([]byte, error) {
	return defaultCodec.Encode(img, format)
}

// DecodeReader decodes the whole of r with the default codec.
func DecodeReader(r io.Reader, format Format) (*Image, error) {
	return defaultCodec.DecodeReader(r, format)
}

// Decode decodes a complete compressed image. Auto detects the format from
// the leading signature. On failure no image is returned.
func (c *Codec) Decode(data []byte, format Format) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInputUnreadable)
	}
	if format == Auto {
		f, ok := DetectFormat(data)
		if !ok {
			return nil, fmt.Errorf("%w: unrecognized signature", ErrUnsupportedFormat)
		}
		format = f
	}
	e, ok := registry.Load(format)
	if !ok || e.dec == nil {
		return nil, fmt.Errorf("%w: no decoder for %s", ErrUnsupportedFormat, format)
	}
	opts := c.opts
	img, err := e.dec.Decode(data, &opts)
	if err != nil {
		return nil, unavailable(format, err)
	}
	if err := img.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s driver returned %w", ErrDecodeFailed, format, err)
	}
	return img, nil
}

// Encode encodes img in the given format. Only formats with a registered
// encoder are accepted; Auto is not.
func (c *Codec) Encode(img *Image, format Format) ([]byte, error) {
	e, ok := registry.Load(format)
	if !ok || e.enc == nil {
		return nil, fmt.Errorf("%w: no encoder for %s", ErrUnsupportedFormat, format)
	}
	opts := c.opts
	out, err := e.enc.Encode(img, &opts)
	if err != nil {
		return nil, unavailable(format, err)
	}
	return out, nil
}

// DecodeReader reads r to the end, bounded by Options.MaxInputBytes, and
// decodes the result. With Auto, a stream whose signature matches no
// format is rejected before the rest of it is read.
func (c *Codec) DecodeReader(r io.Reader, format Format) (*Image, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil reader", ErrInputUnreadable)
	}
	if format == Auto {
		pr := newPeekReader(r)
		sig, err := pr.Peek(signatureLen)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: %w", ErrInputUnreadable, err)
		}
		if len(sig) == 0 {
			return nil, fmt.Errorf("%w: empty input", ErrInputUnreadable)
		}
		f, ok := DetectFormat(sig)
		if !ok {
			return nil, fmt.Errorf("%w: unrecognized signature", ErrUnsupportedFormat)
		}
		format, r = f, pr
	}
	data, err := readInput(r, c.opts.MaxInputBytes)
	if err != nil {
		return nil, err
	}
	return c.Decode(data, format)
}

// unavailable marks a missing engine as an unsupported format as well.
func unavailable(format Format, err error) error {
	if errors.Is(err, ErrEngineUnavailable) && !errors.Is(err, ErrUnsupportedFormat) {
		return fmt.Errorf("%w: %s: %w", ErrUnsupportedFormat, format, err)
	}
	return err
}
