package imageio

import (
	"encoding/binary"
	"fmt"
)

// Widen promotes a sample of the given bit width to 16 bits. 8-bit samples
// are replicated into both bytes, so 0x00 maps to 0x0000 and 0xFF to 0xFFFF;
// 16-bit samples pass through.
func Widen(sample uint16, bits int) uint16 {
	if bits == 8 {
		s := sample & 0xFF
		return s<<8 | s
	}
	return sample
}

// ExpandChannels maps one source pixel onto RGBA. Four channels pass
// through, three gain an opaque alpha. One- and two-channel (gray, gray+alpha)
// pixels are rejected.
func ExpandChannels(px []uint16, channels int) ([Channels]uint16, error) {
	var out [Channels]uint16
	if len(px) < channels {
		return out, fmt.Errorf("%w: pixel has %d samples, want %d", ErrUnsupportedPixelLayout, len(px), channels)
	}
	switch channels {
	case 4:
		copy(out[:], px[:4])
	case 3:
		copy(out[:], px[:3])
		out[3] = 0xFFFF
	default:
		return out, fmt.Errorf("%w: %d channel source", ErrUnsupportedPixelLayout, channels)
	}
	return out, nil
}

// sampleLayout describes how raw source rows are packed.
type sampleLayout struct {
	channels int
	bits     int
	order    binary.ByteOrder
}

func newSampleLayout(channels, bits int, order binary.ByteOrder) (sampleLayout, error) {
	if channels != 3 && channels != 4 {
		return sampleLayout{}, fmt.Errorf("%w: %d channel source", ErrUnsupportedPixelLayout, channels)
	}
	if bits != 8 && bits != 16 {
		return sampleLayout{}, fmt.Errorf("%w: %d-bit samples", ErrUnsupportedPixelLayout, bits)
	}
	return sampleLayout{channels: channels, bits: bits, order: order}, nil
}

func (l sampleLayout) sampleWidth() int { return l.bits / 8 }

func (l sampleLayout) pixelBytes() int { return l.channels * l.sampleWidth() }

// rowBytes returns the packed length of a row of width pixels.
func (l sampleLayout) rowBytes(width uint32) (int, error) {
	n, ok := mulChecked(uint64(width), uint64(l.pixelBytes()))
	if !ok || !fitsInt(n) {
		return 0, fmt.Errorf("%w: row of %d pixels overflows", ErrAllocationFailed, width)
	}
	return int(n), nil
}

// appendRow normalizes width pixels from row and appends them to dst in
// left-to-right order.
func (l sampleLayout) appendRow(dst []uint16, row []byte, width int) ([]uint16, error) {
	sw := l.sampleWidth()
	if len(row) < width*l.pixelBytes() {
		return dst, fmt.Errorf("%w: row holds %d bytes, want %d", ErrDecodeFailed, len(row), width*l.pixelBytes())
	}
	var src [Channels]uint16
	for x := 0; x < width; x++ {
		for c := 0; c < l.channels; c++ {
			off := (x*l.channels + c) * sw
			var s uint16
			if sw == 1 {
				s = uint16(row[off])
			} else {
				s = l.order.Uint16(row[off:])
			}
			src[c] = Widen(s, l.bits)
		}
		px, err := ExpandChannels(src[:l.channels], l.channels)
		if err != nil {
			return dst, err
		}
		dst = append(dst, px[:]...)
	}
	return dst, nil
}

// packSamples serializes pix as 16-bit samples in the given byte order.
func packSamples(pix []uint16, order binary.ByteOrder) []byte {
	w := NewWriter(NewOutputBuffer(len(pix)*2, 0)).WithByteOrder(order)
	for _, s := range pix {
		w.WriteUint16(s)
	}
	return w.Bytes()
}
