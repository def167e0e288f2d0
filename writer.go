package imageio

import (
	"encoding/binary"
)

// Writer serializes samples into an OutputBuffer. It tracks the first
// error that occurs; after an error all subsequent writes become no-ops.
type Writer struct {
	w     *OutputBuffer
	err   error // first error encountered.
	order binary.ByteOrder
}

// NewWriter creates a big-endian Writer over w.
func NewWriter(w *OutputBuffer) *Writer {
	return &Writer{w: w, order: binary.BigEndian}
}

// WithByteOrder allows setting a custom byte order and returns
// the configured for chaining.
func (w *Writer) WithByteOrder(order binary.ByteOrder) *Writer {
	w.order = order
	return w
}

// Write implements the io.Writer interface.
func (w *Writer) Write(buf []byte) (int, error) {
	if buf == nil || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(buf)
	if w.err == nil && err != nil {
		w.err = err
	}
	return n, w.err
}

func (w *Writer) Err() error { return w.err }

// Bytes returns the data written so far.
func (w *Writer) Bytes() []byte { return w.w.Bytes() }

func (w *Writer) WriteUint16(v uint16) {
	if w.err != nil {
		return
	}
	var buf [2]byte
	w.order.PutUint16(buf[:], v)
	_, _ = w.Write(buf[:])
}
