package imageio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWiden8(t *testing.T) {
	for b := 0; b < 256; b++ {
		got := Widen(uint16(b), 8)
		assert.Equal(t, uint16(b)*257, got, "byte %d", b)
		assert.Equal(t, uint8(b), uint8(got>>8), "high byte of %d", b)
	}
	assert.Equal(t, uint16(0x0000), Widen(0x00, 8))
	assert.Equal(t, uint16(0xFFFF), Widen(0xFF, 8))
	assert.Equal(t, uint16(0x8080), Widen(0x80, 8))
}

func TestWiden16IsIdentity(t *testing.T) {
	for v := 0; v <= 0xFFFF; v += 257 {
		assert.Equal(t, uint16(v), Widen(uint16(v), 16))
	}
	assert.Equal(t, uint16(0xFFFF), Widen(0xFFFF, 16))
	assert.Equal(t, uint16(1), Widen(1, 16))
}

func TestExpandChannels(t *testing.T) {
	px, err := ExpandChannels([]uint16{1, 2, 3, 4}, 4)
	require.NoError(t, err)
	assert.Equal(t, [Channels]uint16{1, 2, 3, 4}, px)

	px, err = ExpandChannels([]uint16{0x1111, 0x2222, 0x3333}, 3)
	require.NoError(t, err)
	assert.Equal(t, [Channels]uint16{0x1111, 0x2222, 0x3333, 0xFFFF}, px)

	for _, ch := range []int{0, 1, 2, 5} {
		_, err = ExpandChannels([]uint16{1, 2, 3, 4, 5}, ch)
		assert.ErrorIs(t, err, ErrUnsupportedPixelLayout, "channels %d", ch)
	}

	_, err = ExpandChannels([]uint16{1, 2}, 3)
	assert.ErrorIs(t, err, ErrUnsupportedPixelLayout)
}

func TestNewSampleLayoutRejects(t *testing.T) {
	tests := []struct {
		name           string
		channels, bits int
	}{
		{"gray", 1, 8},
		{"gray alpha", 2, 16},
		{"sub-byte", 3, 4},
		{"32-bit", 4, 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newSampleLayout(tt.channels, tt.bits, binary.BigEndian)
			assert.ErrorIs(t, err, ErrUnsupportedPixelLayout)
		})
	}
}

func TestAppendRow(t *testing.T) {
	t.Run("RGB8", func(t *testing.T) {
		l, err := newSampleLayout(3, 8, binary.BigEndian)
		require.NoError(t, err)
		got, err := l.appendRow(nil, []byte{0x00, 0x80, 0xFF, 0x01, 0x02, 0x03}, 2)
		require.NoError(t, err)
		assert.Equal(t, []uint16{0x0000, 0x8080, 0xFFFF, 0xFFFF, 0x0101, 0x0202, 0x0303, 0xFFFF}, got)
	})

	t.Run("RGBA16BigEndian", func(t *testing.T) {
		l, err := newSampleLayout(4, 16, binary.BigEndian)
		require.NoError(t, err)
		got, err := l.appendRow([]uint16{9}, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}, 1)
		require.NoError(t, err)
		assert.Equal(t, []uint16{9, 0x0102, 0x0304, 0x0506, 0x0708}, got)
	})

	t.Run("RGBA16LittleEndian", func(t *testing.T) {
		l, err := newSampleLayout(4, 16, binary.LittleEndian)
		require.NoError(t, err)
		got, err := l.appendRow(nil, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}, 1)
		require.NoError(t, err)
		assert.Equal(t, []uint16{0x0201, 0x0403, 0x0605, 0x0807}, got)
	})

	t.Run("ShortRow", func(t *testing.T) {
		l, err := newSampleLayout(4, 8, binary.BigEndian)
		require.NoError(t, err)
		_, err = l.appendRow(nil, []byte{1, 2, 3}, 1)
		assert.ErrorIs(t, err, ErrDecodeFailed)
	})
}

func TestRowBytes(t *testing.T) {
	l, err := newSampleLayout(4, 16, binary.BigEndian)
	require.NoError(t, err)
	n, err := l.rowBytes(3)
	require.NoError(t, err)
	assert.Equal(t, 24, n)

	l, err = newSampleLayout(3, 8, binary.BigEndian)
	require.NoError(t, err)
	n, err = l.rowBytes(5)
	require.NoError(t, err)
	assert.Equal(t, 15, n)
}

func TestPackSamples(t *testing.T) {
	pix := []uint16{0x0102, 0xA0B0}
	assert.Equal(t, []byte{0x01, 0x02, 0xA0, 0xB0}, packSamples(pix, binary.BigEndian))
	assert.Equal(t, []byte{0x02, 0x01, 0xB0, 0xA0}, packSamples(pix, binary.LittleEndian))
	assert.Empty(t, packSamples(nil, binary.BigEndian))
}

func TestMulChecked(t *testing.T) {
	p, ok := mulChecked[uint64](1<<32, 1<<31)
	assert.True(t, ok)
	assert.Equal(t, uint64(1)<<63, p)

	_, ok = mulChecked[uint64](1<<32, 1<<32)
	assert.False(t, ok)

	_, ok = mulChecked[uint32](0xFFFF, 0x10002)
	assert.False(t, ok)

	p32, ok := mulChecked[uint32](0, 0xFFFFFFFF)
	assert.True(t, ok)
	assert.Zero(t, p32)
}
