package imageio

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImage(t *testing.T) {
	m, err := NewImage(3, 2)
	require.NoError(t, err)
	assert.Len(t, m.Pix, 3*2*Channels)
	assert.NoError(t, m.Validate())
	assert.Equal(t, 12, m.Stride())

	_, err = NewImage(0xFFFFFFFF, 0xFFFFFFFF)
	assert.ErrorIs(t, err, ErrAllocationFailed)
}

func TestImageValidate(t *testing.T) {
	var nilImage *Image
	assert.ErrorIs(t, nilImage.Validate(), ErrInvalidImage)
	assert.ErrorIs(t, (&Image{Width: 0, Height: 1}).Validate(), ErrInvalidImage)
	assert.ErrorIs(t, (&Image{Pix: make([]uint16, 7), Width: 2, Height: 1}).Validate(), ErrInvalidImage)
	assert.NoError(t, (&Image{Pix: make([]uint16, 8), Width: 2, Height: 1}).Validate())
}

func TestImagePixels(t *testing.T) {
	m, err := NewImage(2, 2)
	require.NoError(t, err)
	m.SetPixel(1, 1, [Channels]uint16{1, 2, 3, 4})
	assert.Equal(t, [Channels]uint16{1, 2, 3, 4}, m.Pixel(1, 1))
	assert.Equal(t, []uint16{1, 2, 3, 4}, m.Pix[12:16])
	assert.Equal(t, [Channels]uint16{}, m.Pixel(0, 1))
}

func TestImageEqual(t *testing.T) {
	a := &Image{Pix: []uint16{1, 2, 3, 4}, Width: 1, Height: 1}
	b := &Image{Pix: []uint16{1, 2, 3, 4}, Width: 1, Height: 1}
	assert.True(t, a.Equal(b))

	b.Pix[3] = 5
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(&Image{Pix: make([]uint16, 8), Width: 1, Height: 2}))
	assert.False(t, a.Equal(nil))

	var n *Image
	assert.True(t, n.Equal(nil))
}

func TestNRGBA64RoundTrip(t *testing.T) {
	m := &Image{
		Pix:    []uint16{100, 200, 300, 400, 1, 2, 3, 4},
		Width:  2,
		Height: 1,
	}
	std := m.NRGBA64()
	assert.Equal(t, image.Rect(0, 0, 2, 1), std.Bounds())
	assert.Equal(t, color.NRGBA64{R: 100, G: 200, B: 300, A: 400}, std.NRGBA64At(0, 0))

	back, err := FromImage(std)
	require.NoError(t, err)
	assert.True(t, m.Equal(back))
}

func TestFromImageConvertsOtherModels(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	src.SetNRGBA(5, 5, color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xFF})
	src.SetNRGBA(6, 5, color.NRGBA{R: 0xFF, G: 0x00, B: 0x80, A: 0xFF})

	m, err := FromImage(src)
	require.NoError(t, err)
	assert.EqualValues(t, 2, m.Width)
	assert.EqualValues(t, 1, m.Height)
	assert.Equal(t, [Channels]uint16{0x1212, 0x3434, 0x5656, 0xFFFF}, m.Pixel(0, 0))
	assert.Equal(t, [Channels]uint16{0xFFFF, 0x0000, 0x8080, 0xFFFF}, m.Pixel(1, 0))
}
