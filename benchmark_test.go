package imageio

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"math/rand/v2"
	"testing"

	"github.com/oy3o/imageio/engine/enginetest"
)

func benchImage(b *testing.B, w, h uint32) *Image {
	b.Helper()
	r := rand.New(rand.NewPCG(3, 4))
	return randomImage(r, w, h)
}

func BenchmarkAppendRow8(b *testing.B) {
	l, _ := newSampleLayout(4, 8, binary.BigEndian)
	row := make([]byte, 1024*4)
	dst := make([]uint16, 0, 1024*Channels)
	b.SetBytes(int64(len(row)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dst, _ = l.appendRow(dst[:0], row, 1024)
	}
}

func BenchmarkAppendRow16(b *testing.B) {
	l, _ := newSampleLayout(4, 16, binary.LittleEndian)
	row := make([]byte, 1024*8)
	dst := make([]uint16, 0, 1024*Channels)
	b.SetBytes(int64(len(row)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dst, _ = l.appendRow(dst[:0], row, 1024)
	}
}

func BenchmarkPackSamples(b *testing.B) {
	img := benchImage(b, 256, 256)
	b.SetBytes(int64(len(img.Pix) * 2))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = packSamples(img.Pix, binary.NativeEndian)
	}
}

func BenchmarkDecodePNG(b *testing.B) {
	src := image.NewNRGBA64(image.Rect(0, 0, 256, 256))
	for i := range src.Pix {
		src.Pix[i] = byte(i)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		b.Fatal(err)
	}
	data := buf.Bytes()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(data, PNG); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkReferenceRoundTrip(b *testing.B) {
	codec := NewCodec(DefaultOptions().WithJXLEngine(enginetest.LosslessDecoderFactory, enginetest.LosslessEncoderFactory))
	img := benchImage(b, 128, 128)
	b.SetBytes(int64(len(img.Pix) * 2))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		data, err := codec.Encode(img, JPEGXL)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := codec.Decode(data, JPEGXL); err != nil {
			b.Fatal(err)
		}
	}
}
