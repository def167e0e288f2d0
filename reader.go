package imageio

import (
	"encoding/binary"
	"io"
)

// Reader simplifies reading fixed-layout binary headers. It tracks the
// first error; subsequent reads become no-ops.
type Reader struct {
	r     io.Reader
	err   error // first error encountered.
	order binary.ByteOrder
}

// NewReader creates a big-endian Reader over r.
func NewReader(r io.Reader) *Reader {
	rd := &Reader{r: r, order: binary.BigEndian}
	if r == nil {
		rd.err = ErrInputUnreadable
	}
	return rd
}

// WithByteOrder allows setting a custom byte order and returns
// the configured for chaining.
func (r *Reader) WithByteOrder(order binary.ByteOrder) *Reader {
	r.order = order
	return r
}

func (r *Reader) Err() error { return r.err }

// readFull is an internal helper to read an exact number of bytes.
func (r *Reader) readFull(n int) []byte {
	if r.err != nil {
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		if err == io.EOF {
			// a header cut short is never a clean end of stream
			err = io.ErrUnexpectedEOF
		}
		r.err = err
		return nil
	}
	return buf
}

// ReadBytes reads n bytes and returns a new byte slice.
func (r *Reader) ReadBytes(n int) []byte {
	if n <= 0 {
		return nil
	}
	return r.readFull(n)
}

// --- Primitive Read Operations ---

func (r *Reader) ReadUint8(dest *uint8) {
	buf := r.readFull(1)
	if r.err == nil {
		*dest = buf[0]
	}
}

func (r *Reader) ReadUint32(dest *uint32) {
	buf := r.readFull(4)
	if r.err == nil {
		*dest = r.order.Uint32(buf)
	}
}
