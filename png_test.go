package imageio

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/oy3o/imageio/engine"
)

// recordingRaster wraps a raster engine and remembers whether it was closed.
type recordingRaster struct {
	engine.Raster
	closed bool
}

func (r *recordingRaster) Close() {
	r.closed = true
	r.Raster.Close()
}

type PNGTestSuite struct {
	suite.Suite
	raster *recordingRaster
	codec  *Codec
}

func (s *PNGTestSuite) SetupTest() {
	s.raster = nil
	s.codec = NewCodec(DefaultOptions().WithPNGRaster(s.factory))
}

func (s *PNGTestSuite) factory() (engine.Raster, error) {
	inner, err := newPNGRaster()
	if err != nil {
		return nil, err
	}
	s.raster = &recordingRaster{Raster: inner}
	return s.raster, nil
}

func (s *PNGTestSuite) encode(img image.Image) []byte {
	var buf bytes.Buffer
	s.Require().NoError(png.Encode(&buf, img))
	return buf.Bytes()
}

func (s *PNGTestSuite) TestRGBA8() {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 0x00, G: 0x80, B: 0xFF, A: 0x7F})
	src.SetNRGBA(1, 0, color.NRGBA{R: 0x01, G: 0x02, B: 0x03, A: 0x00})
	src.SetNRGBA(0, 1, color.NRGBA{R: 0xFE, G: 0xFD, B: 0xFC, A: 0xFF})

	img, err := s.codec.Decode(s.encode(src), PNG)
	s.Require().NoError(err)
	s.Require().NoError(img.Validate())
	s.Equal([Channels]uint16{0x0000, 0x8080, 0xFFFF, 0x7F7F}, img.Pixel(0, 0))
	s.Equal([Channels]uint16{0x0101, 0x0202, 0x0303, 0x0000}, img.Pixel(1, 0))
	s.Equal([Channels]uint16{0xFEFE, 0xFDFD, 0xFCFC, 0xFFFF}, img.Pixel(0, 1))
	s.Equal([Channels]uint16{0, 0, 0, 0}, img.Pixel(1, 1))
	s.True(s.raster.closed)
}

func (s *PNGTestSuite) TestRGB8GetsOpaqueAlpha() {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	for x := 0; x < 3; x++ {
		src.SetNRGBA(x, 0, color.NRGBA{R: uint8(x), G: uint8(10 * x), B: uint8(100 * x), A: 0xFF})
	}
	data := s.encode(src)
	s.Equal(byte(pngRGB), data[25], "fixture is stored without alpha")

	img, err := s.codec.Decode(data, PNG)
	s.Require().NoError(err)
	for x := 0; x < 3; x++ {
		s.Equal([Channels]uint16{Widen(uint16(x), 8), Widen(uint16(10*x), 8), Widen(uint16(100*x), 8), 0xFFFF}, img.Pixel(x, 0))
	}
}

func (s *PNGTestSuite) TestRGBA16() {
	src := image.NewNRGBA64(image.Rect(0, 0, 2, 1))
	src.SetNRGBA64(0, 0, color.NRGBA64{R: 100, G: 200, B: 300, A: 400})
	src.SetNRGBA64(1, 0, color.NRGBA64{R: 1, G: 2, B: 3, A: 4})

	img, err := s.codec.Decode(s.encode(src), Auto)
	s.Require().NoError(err)
	s.Equal([]uint16{100, 200, 300, 400, 1, 2, 3, 4}, img.Pix)
}

func (s *PNGTestSuite) TestRGB16() {
	src := image.NewNRGBA64(image.Rect(0, 0, 1, 2))
	src.SetNRGBA64(0, 0, color.NRGBA64{R: 0x1234, G: 0x5678, B: 0x9ABC, A: 0xFFFF})
	src.SetNRGBA64(0, 1, color.NRGBA64{R: 1, G: 0xFFFE, B: 7, A: 0xFFFF})
	data := s.encode(src)
	s.Equal(byte(16), data[24])
	s.Equal(byte(pngRGB), data[25])

	img, err := s.codec.Decode(data, PNG)
	s.Require().NoError(err)
	s.Equal([]uint16{0x1234, 0x5678, 0x9ABC, 0xFFFF, 1, 0xFFFE, 7, 0xFFFF}, img.Pix)
}

func (s *PNGTestSuite) TestGrayscaleIsRejected() {
	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	img, err := s.codec.Decode(s.encode(gray), PNG)
	s.ErrorIs(err, ErrUnsupportedPixelLayout)
	s.Nil(img)
	s.True(s.raster.closed)

	gray16 := image.NewGray16(image.Rect(0, 0, 2, 2))
	_, err = s.codec.Decode(s.encode(gray16), PNG)
	s.ErrorIs(err, ErrUnsupportedPixelLayout)
}

func (s *PNGTestSuite) TestPaletteIsRejected() {
	pal := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.White})
	_, err := s.codec.Decode(s.encode(pal), PNG)
	s.ErrorIs(err, ErrUnsupportedPixelLayout)
}

func (s *PNGTestSuite) TestTruncatedInput() {
	src := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 7)
	}
	data := s.encode(src)

	for _, n := range []int{4, 20, len(data) / 2, len(data) - 13} {
		img, err := s.codec.Decode(data[:n], PNG)
		s.ErrorIs(err, ErrDecodeFailed, "truncated to %d bytes", n)
		s.Nil(img)
		s.True(s.raster.closed)
	}
}

func (s *PNGTestSuite) TestGarbageInput() {
	_, err := s.codec.Decode(bytes.Repeat([]byte{0x42}, 64), PNG)
	s.ErrorIs(err, ErrDecodeFailed)
}

func (s *PNGTestSuite) TestPixelLimit() {
	src := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	codec := NewCodec(DefaultOptions().WithPNGRaster(s.factory).WithMaxPixels(99))
	_, err := codec.Decode(s.encode(src), PNG)
	s.ErrorIs(err, ErrAllocationFailed)
	s.True(s.raster.closed)
}

func (s *PNGTestSuite) TestRasterFactoryFailure() {
	boom := io.ErrClosedPipe
	codec := NewCodec(DefaultOptions().WithPNGRaster(func() (engine.Raster, error) { return nil, boom }))
	_, err := codec.Decode(s.encode(image.NewNRGBA(image.Rect(0, 0, 1, 1))), PNG)
	s.ErrorIs(err, ErrDecodeFailed)
	s.ErrorIs(err, boom)
}

func (s *PNGTestSuite) TestEncodeIsUnsupported() {
	_, err := s.codec.Encode(&Image{Pix: make([]uint16, 4), Width: 1, Height: 1}, PNG)
	s.ErrorIs(err, ErrUnsupportedFormat)
}

func (s *PNGTestSuite) TestHeader() {
	src := image.NewNRGBA64(image.Rect(0, 0, 7, 3))
	src.Pix[7] = 1 // not opaque
	h, err := readPNGHeader(bytes.NewReader(s.encode(src)))
	s.Require().NoError(err)
	s.EqualValues(7, h.width)
	s.EqualValues(3, h.height)
	s.EqualValues(16, h.depth)
	s.EqualValues(pngRGBA, h.colorType)

	ch, err := h.channels()
	s.Require().NoError(err)
	s.Equal(4, ch)
}

func TestPNG(t *testing.T) {
	suite.Run(t, new(PNGTestSuite))
}
