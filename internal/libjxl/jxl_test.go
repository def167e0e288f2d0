//go:build libjxl && cgo

package libjxl_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oy3o/imageio"
	"github.com/oy3o/imageio/engine"
	"github.com/oy3o/imageio/internal/libjxl"
)

func TestAvailable(t *testing.T) {
	assert.True(t, libjxl.Available())
}

func TestLosslessRoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for _, e := range []engine.Endianness{engine.NativeEndian, engine.LittleEndian, engine.BigEndian} {
		for _, threads := range []int{0, 1, 4} {
			img, err := imageio.NewImage(13, 7)
			require.NoError(t, err)
			for i := range img.Pix {
				img.Pix[i] = uint16(r.UintN(0x10000))
			}

			codec := imageio.NewCodec(imageio.DefaultOptions().WithEndianness(e).WithThreads(threads))
			data, err := codec.Encode(img, imageio.JPEGXL)
			require.NoError(t, err)
			f, ok := imageio.DetectFormat(data)
			require.True(t, ok)
			assert.Equal(t, imageio.JPEGXL, f)

			got, err := codec.Decode(data, imageio.Auto)
			require.NoError(t, err)
			assert.True(t, img.Equal(got), "endianness %s threads %d", e, threads)
		}
	}
}

func TestScenario(t *testing.T) {
	img := &imageio.Image{Pix: []uint16{100, 200, 300, 400, 1, 2, 3, 4}, Width: 2, Height: 1}
	data, err := imageio.Encode(img, imageio.JPEGXL)
	require.NoError(t, err)
	got, err := imageio.Decode(data, imageio.JPEGXL)
	require.NoError(t, err)
	assert.Equal(t, img.Pix, got.Pix)
}

func TestTruncatedInput(t *testing.T) {
	img, err := imageio.NewImage(32, 32)
	require.NoError(t, err)
	for i := range img.Pix {
		img.Pix[i] = uint16(i * 31)
	}
	data, err := imageio.Encode(img, imageio.JPEGXL)
	require.NoError(t, err)

	_, err = imageio.Decode(data[:len(data)/2], imageio.JPEGXL)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, imageio.ErrDecodeFailed) || errors.Is(err, imageio.ErrUnexpectedMoreInput), err)
}
