package imageio

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"slices"
)

// Channels is the number of samples per pixel in an Image (R, G, B, A).
const Channels = 4

// Image is the canonical in-memory pixel representation: 16-bit samples,
// four interleaved channels in R, G, B, A order with straight alpha,
// rows stored top to bottom.
//
// len(Pix) == Width*Height*Channels holds for every Image returned by a decoder.
type Image struct {
	Pix    []uint16
	Width  uint32
	Height uint32
}

// NewImage allocates a zeroed width x height image.
func NewImage(width, height uint32) (*Image, error) {
	n, err := sampleCount(width, height, 0)
	if err != nil {
		return nil, err
	}
	return &Image{Pix: make([]uint16, n), Width: width, Height: height}, nil
}

// sampleCount returns width*height*Channels, refusing sizes that overflow
// or exceed maxPixels (zero means no limit).
func sampleCount(width, height uint32, maxPixels uint64) (int, error) {
	pixels, ok := mulChecked(uint64(width), uint64(height))
	if !ok {
		return 0, fmt.Errorf("%w: %dx%d image overflows", ErrAllocationFailed, width, height)
	}
	if maxPixels > 0 && pixels > maxPixels {
		return 0, fmt.Errorf("%w: %dx%d image exceeds the %d pixel limit", ErrAllocationFailed, width, height, maxPixels)
	}
	samples, ok := mulChecked(pixels, Channels)
	if !ok || !fitsInt(samples) {
		return 0, fmt.Errorf("%w: %dx%d image overflows", ErrAllocationFailed, width, height)
	}
	return int(samples), nil
}

// Validate reports ErrInvalidImage if m has a zero dimension or its pixel
// slice does not match its dimensions.
func (m *Image) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	if m.Width == 0 || m.Height == 0 {
		return fmt.Errorf("%w: empty %dx%d image", ErrInvalidImage, m.Width, m.Height)
	}
	want, err := sampleCount(m.Width, m.Height, 0)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	if len(m.Pix) != want {
		return fmt.Errorf("%w: %dx%d image holds %d samples, want %d", ErrInvalidImage, m.Width, m.Height, len(m.Pix), want)
	}
	return nil
}

// Stride returns the number of samples in one row.
func (m *Image) Stride() int { return int(m.Width) * Channels }

// PixOffset returns the index of the first sample of pixel (x, y).
func (m *Image) PixOffset(x, y int) int { return y*m.Stride() + x*Channels }

// Pixel returns the RGBA samples at (x, y).
func (m *Image) Pixel(x, y int) [Channels]uint16 {
	i := m.PixOffset(x, y)
	return [Channels]uint16(m.Pix[i : i+Channels])
}

// SetPixel stores px at (x, y).
func (m *Image) SetPixel(x, y int, px [Channels]uint16) {
	i := m.PixOffset(x, y)
	copy(m.Pix[i:i+Channels], px[:])
}

// Equal reports whether m and o have the same dimensions and samples.
func (m *Image) Equal(o *Image) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.Width == o.Width && m.Height == o.Height && slices.Equal(m.Pix, o.Pix)
}

// NRGBA64 copies m into a standard library image. Both use straight alpha
// and 16-bit samples, so the conversion is exact.
func (m *Image) NRGBA64() *image.NRGBA64 {
	dst := image.NewNRGBA64(image.Rect(0, 0, int(m.Width), int(m.Height)))
	for i, s := range m.Pix {
		binary.BigEndian.PutUint16(dst.Pix[i*2:], s)
	}
	return dst
}

// FromImage converts any image.Image into an Image. *image.NRGBA64 sources
// are copied exactly; other types go through color.NRGBA64Model.
func FromImage(src image.Image) (*Image, error) {
	b := src.Bounds()
	m, err := NewImage(uint32(b.Dx()), uint32(b.Dy()))
	if err != nil {
		return nil, err
	}
	if n, ok := src.(*image.NRGBA64); ok {
		for y := 0; y < b.Dy(); y++ {
			row := n.Pix[n.PixOffset(b.Min.X, b.Min.Y+y):]
			dst := m.Pix[y*m.Stride() : (y+1)*m.Stride()]
			for i := range dst {
				dst[i] = binary.BigEndian.Uint16(row[i*2:])
			}
		}
		return m, nil
	}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBA64Model.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
			m.SetPixel(x, y, [Channels]uint16{c.R, c.G, c.B, c.A})
		}
	}
	return m, nil
}
