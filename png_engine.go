package imageio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/oy3o/imageio/engine"
)

// PNG color types from the IHDR chunk.
const (
	pngGray      = 0
	pngRGB       = 2
	pngPalette   = 3
	pngGrayAlpha = 4
	pngRGBA      = 6
)

type pngHeader struct {
	width, height uint32
	depth         uint8
	colorType     uint8
}

// channels returns the number of samples per pixel stored in the stream.
func (h pngHeader) channels() (int, error) {
	switch h.colorType {
	case pngGray, pngPalette:
		return 1, nil
	case pngGrayAlpha:
		return 2, nil
	case pngRGB:
		return 3, nil
	case pngRGBA:
		return 4, nil
	default:
		return 0, fmt.Errorf("%w: png color type %d", ErrDecodeFailed, h.colorType)
	}
}

// readPNGHeader parses the signature and the IHDR chunk.
func readPNGHeader(r io.Reader) (pngHeader, error) {
	var h pngHeader
	rd := NewReader(r).WithByteOrder(binary.BigEndian)
	sig := rd.ReadBytes(len(pngSignature))
	var length uint32
	rd.ReadUint32(&length)
	kind := rd.ReadBytes(4)
	rd.ReadUint32(&h.width)
	rd.ReadUint32(&h.height)
	rd.ReadUint8(&h.depth)
	rd.ReadUint8(&h.colorType)
	if err := rd.Err(); err != nil {
		return h, fmt.Errorf("%w: png header: %w", ErrDecodeFailed, err)
	}
	if !bytes.Equal(sig, pngSignature) {
		return h, fmt.Errorf("%w: not a png stream", ErrDecodeFailed)
	}
	if length != 13 || string(kind) != "IHDR" {
		return h, fmt.Errorf("%w: png stream does not start with IHDR", ErrDecodeFailed)
	}
	if h.width == 0 || h.height == 0 {
		return h, fmt.Errorf("%w: png dimensions %dx%d", ErrDecodeFailed, h.width, h.height)
	}
	return h, nil
}

// pngRaster is the raster engine backed by image/png. The header is parsed
// up front so layout checks run before any pixel data is inflated.
type pngRaster struct {
	header bytes.Buffer
	rest   io.Reader
	info   engine.RasterInfo
}

func newPNGRaster() (engine.Raster, error) {
	return &pngRaster{}, nil
}

func (p *pngRaster) ReadInfo(r io.Reader) (engine.RasterInfo, error) {
	h, err := readPNGHeader(io.TeeReader(r, &p.header))
	if err != nil {
		return engine.RasterInfo{}, err
	}
	channels, err := h.channels()
	if err != nil {
		return engine.RasterInfo{}, err
	}
	sw := 1
	if h.depth == 16 {
		sw = 2
	}
	rowBytes, ok := mulChecked(uint64(h.width), uint64(channels*sw))
	if !ok || !fitsInt(rowBytes) {
		return engine.RasterInfo{}, fmt.Errorf("%w: png row of %d pixels overflows", ErrAllocationFailed, h.width)
	}
	p.rest = r
	p.info = engine.RasterInfo{
		Width:    h.width,
		Height:   h.height,
		BitDepth: int(h.depth),
		Channels: channels,
		RowBytes: int(rowBytes),
	}
	return p.info, nil
}

func (p *pngRaster) ReadRows(rows [][]byte) error {
	if p.rest == nil {
		return fmt.Errorf("%w: png rows read before header", ErrDecodeFailed)
	}
	if len(rows) != int(p.info.Height) {
		return fmt.Errorf("%w: %d rows for a %d row image", ErrDecodeFailed, len(rows), p.info.Height)
	}
	for _, row := range rows {
		if len(row) < p.info.RowBytes {
			return fmt.Errorf("%w: row of %d bytes, want %d", ErrDecodeFailed, len(row), p.info.RowBytes)
		}
	}
	img, err := png.Decode(io.MultiReader(&p.header, p.rest))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	b := img.Bounds()
	if b.Dx() != int(p.info.Width) || b.Dy() != int(p.info.Height) {
		return fmt.Errorf("%w: png decoded to %dx%d", ErrDecodeFailed, b.Dx(), b.Dy())
	}
	depth := p.info.BitDepth
	ch := p.info.Channels
	for y, row := range rows {
		switch src := img.(type) {
		case *image.NRGBA:
			copyRow8(row, src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):], int(p.info.Width), ch)
		case *image.RGBA:
			copyRow8(row, src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):], int(p.info.Width), ch)
		case *image.NRGBA64:
			copyRow16(row, src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):], int(p.info.Width), ch)
		case *image.RGBA64:
			copyRow16(row, src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):], int(p.info.Width), ch)
		default:
			for x := 0; x < int(p.info.Width); x++ {
				c := color.NRGBA64Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
				putSamples(row[x*ch*depth/8:], [Channels]uint16{c.R, c.G, c.B, c.A}, ch, depth)
			}
		}
	}
	return nil
}

func (p *pngRaster) Close() {
	p.header.Reset()
	p.rest = nil
}

// copyRow8 copies width pixels of 4-byte RGBA from src into a row of ch
// channels. Opaque images decode to RGBA in image/png, so 3-channel rows
// simply drop the alpha byte.
func copyRow8(dst, src []byte, width, ch int) {
	if ch == 4 {
		copy(dst, src[:width*4])
		return
	}
	for x := 0; x < width; x++ {
		copy(dst[x*ch:x*ch+ch], src[x*4:x*4+ch])
	}
}

// copyRow16 is copyRow8 for big-endian 16-bit samples.
func copyRow16(dst, src []byte, width, ch int) {
	if ch == 4 {
		copy(dst, src[:width*8])
		return
	}
	for x := 0; x < width; x++ {
		copy(dst[x*ch*2:(x+1)*ch*2], src[x*8:x*8+ch*2])
	}
}

// putSamples writes the first ch samples of px at the given depth.
func putSamples(dst []byte, px [Channels]uint16, ch, depth int) {
	for c := 0; c < ch; c++ {
		if depth == 16 {
			binary.BigEndian.PutUint16(dst[c*2:], px[c])
		} else {
			dst[c] = byte(px[c] >> 8)
		}
	}
}
