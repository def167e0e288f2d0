package imageio

import (
	"errors"
	"fmt"

	"github.com/oy3o/imageio/engine"
)

// decodeState tracks a decode driver through its lifecycle.
type decodeState int

const (
	decodeInit decodeState = iota
	decodeHeaderParsed
	decodeAllocatingOutput
	decodeReading
	decodeDone
	decodeFailed
)

func (s decodeState) String() string {
	switch s {
	case decodeInit:
		return "init"
	case decodeHeaderParsed:
		return "header_parsed"
	case decodeAllocatingOutput:
		return "allocating_output"
	case decodeReading:
		return "reading"
	case decodeDone:
		return "done"
	case decodeFailed:
		return "failed"
	default:
		return fmt.Sprintf("decodeState(%d)", int(s))
	}
}

// pngDecoder drives a raster engine over one PNG payload.
type pngDecoder struct {
	opts          *Options
	state         decodeState
	width, height uint32
}

func (d *pngDecoder) enter(s decodeState) {
	d.state = s
	transition(PNG, s.String(), d.width, d.height)
}

func (d *pngDecoder) fail(err error) error {
	d.enter(decodeFailed)
	switch {
	case errors.Is(err, ErrUnsupportedPixelLayout),
		errors.Is(err, ErrAllocationFailed),
		errors.Is(err, ErrDecodeFailed),
		errors.Is(err, ErrEngineUnavailable):
		return err
	default:
		return fmt.Errorf("%w: png: %w", ErrDecodeFailed, err)
	}
}

func decodePNG(data []byte, opts *Options) (*Image, error) {
	d := &pngDecoder{opts: opts}
	return d.decode(data)
}

func (d *pngDecoder) decode(data []byte) (*Image, error) {
	d.enter(decodeInit)
	raster, err := d.opts.pngRaster()()
	if err != nil {
		return nil, d.fail(err)
	}
	defer raster.Close()

	info, err := raster.ReadInfo(NewCursor(data))
	if err != nil {
		return nil, d.fail(err)
	}
	d.width, d.height = info.Width, info.Height
	d.enter(decodeHeaderParsed)

	layout, err := newSampleLayout(info.Channels, info.BitDepth, engine.BigEndian.ByteOrder())
	if err != nil {
		return nil, d.fail(fmt.Errorf("png %d-bit %d channel: %w", info.BitDepth, info.Channels, err))
	}
	rowBytes, err := layout.rowBytes(info.Width)
	if err != nil {
		return nil, d.fail(err)
	}
	if info.RowBytes < rowBytes {
		return nil, d.fail(fmt.Errorf("%w: png row stride %d, want at least %d", ErrDecodeFailed, info.RowBytes, rowBytes))
	}
	n, err := sampleCount(info.Width, info.Height, d.opts.MaxPixels)
	if err != nil {
		return nil, d.fail(err)
	}
	if total, ok := mulChecked(uint64(info.RowBytes), uint64(info.Height)); !ok || !fitsInt(total) {
		return nil, d.fail(fmt.Errorf("%w: png rows overflow", ErrAllocationFailed))
	}

	d.enter(decodeReading)
	rows := acquireRows(int(info.Height), info.RowBytes)
	defer releaseRows(rows)
	if err := raster.ReadRows(rows); err != nil {
		return nil, d.fail(err)
	}

	pix := make([]uint16, 0, n)
	for _, row := range rows {
		if pix, err = layout.appendRow(pix, row, int(info.Width)); err != nil {
			return nil, d.fail(err)
		}
	}
	d.enter(decodeDone)
	return &Image{Pix: pix, Width: info.Width, Height: info.Height}, nil
}
