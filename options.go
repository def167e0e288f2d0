package imageio

import (
	"github.com/oy3o/imageio/engine"
	"github.com/oy3o/imageio/internal/libjxl"
)

// DefaultInitialOutputCapacity is the starting size of the encoder output buffer.
const DefaultInitialOutputCapacity = 64

// Options configures a Codec. The zero value is usable; DefaultOptions
// returns the same settings spelled out.
type Options struct {
	// Endianness is the byte order of 16-bit samples exchanged with the
	// JPEG XL engine.
	Endianness engine.Endianness
	// Threads sizes the engine worker pool; zero lets the engine decide.
	Threads int
	// InitialOutputCapacity is the first encoder output buffer size.
	InitialOutputCapacity int
	// MaxOutputBytes bounds encoder output growth; zero means unbounded.
	MaxOutputBytes int
	// MaxInputBytes bounds DecodeReader input; zero means unbounded.
	MaxInputBytes int64
	// MaxPixels bounds decoded image size; zero means unbounded.
	MaxPixels uint64

	JXLDecoder engine.DecoderFactory
	JXLEncoder engine.EncoderFactory
	PNGRaster  engine.RasterFactory
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Endianness:            engine.NativeEndian,
		InitialOutputCapacity: DefaultInitialOutputCapacity,
	}
}

// WithEndianness sets the sample byte order used with the JPEG XL engine.
func (o Options) WithEndianness(e engine.Endianness) Options {
	o.Endianness = e
	return o
}

// WithThreads sets the engine worker count.
func (o Options) WithThreads(n int) Options {
	o.Threads = n
	return o
}

// WithInitialOutputCapacity sets the first encoder output buffer size.
func (o Options) WithInitialOutputCapacity(n int) Options {
	o.InitialOutputCapacity = n
	return o
}

// WithMaxOutputBytes bounds encoder output.
func (o Options) WithMaxOutputBytes(n int) Options {
	o.MaxOutputBytes = n
	return o
}

// WithMaxInputBytes bounds the input DecodeReader accepts.
func (o Options) WithMaxInputBytes(n int64) Options {
	o.MaxInputBytes = n
	return o
}

// WithMaxPixels bounds decoded image size.
func (o Options) WithMaxPixels(n uint64) Options {
	o.MaxPixels = n
	return o
}

// WithJXLEngine replaces the JPEG XL engine factories. A nil factory keeps
// the built-in libjxl engine for that direction.
func (o Options) WithJXLEngine(dec engine.DecoderFactory, enc engine.EncoderFactory) Options {
	o.JXLDecoder = dec
	o.JXLEncoder = enc
	return o
}

// WithPNGRaster replaces the PNG raster engine factory.
func (o Options) WithPNGRaster(f engine.RasterFactory) Options {
	o.PNGRaster = f
	return o
}

func (o *Options) pixelFormat() engine.PixelFormat {
	return engine.PixelFormat{Channels: Channels, Endianness: o.Endianness}
}

func (o *Options) initialCapacity() int {
	if o.InitialOutputCapacity > 0 {
		return o.InitialOutputCapacity
	}
	return DefaultInitialOutputCapacity
}

func (o *Options) jxlDecoder() engine.DecoderFactory {
	if o.JXLDecoder != nil {
		return o.JXLDecoder
	}
	return libjxl.NewDecoder
}

func (o *Options) jxlEncoder() engine.EncoderFactory {
	if o.JXLEncoder != nil {
		return o.JXLEncoder
	}
	return libjxl.NewEncoder
}

func (o *Options) pngRaster() engine.RasterFactory {
	if o.PNGRaster != nil {
		return o.PNGRaster
	}
	return newPNGRaster
}
