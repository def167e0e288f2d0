package imageio

import (
	"fmt"
	"io"
)

// OutputBuffer is a growable byte buffer whose free tail is handed to an
// engine that writes directly into it. Unlike bytes.Buffer, the caller
// controls exactly when and by how much it grows.
type OutputBuffer struct {
	B     []byte // backing storage; len(B) is the current capacity
	N     int    // bytes written so far
	limit int    // growth limit in bytes, zero for none
}

// NewOutputBuffer allocates a buffer of the given capacity (at least one
// byte) that refuses to grow beyond limit bytes when limit is positive.
// A capacity above a positive limit is clamped to it.
func NewOutputBuffer(capacity, limit int) *OutputBuffer {
	if limit > 0 && capacity > limit {
		capacity = limit
	}
	if capacity < 1 {
		capacity = 1
	}
	return &OutputBuffer{B: make([]byte, capacity), limit: limit}
}

// Free returns the unwritten tail of the buffer.
func (b *OutputBuffer) Free() []byte { return b.B[b.N:] }

// Advance records that n bytes were written into Free().
func (b *OutputBuffer) Advance(n int) error {
	if n < 0 || n > len(b.B)-b.N {
		return fmt.Errorf("%w: advance by %d with %d bytes free", ErrInvalidWrite, n, len(b.B)-b.N)
	}
	b.N += n
	return nil
}

// Grow doubles the capacity, preserving the written prefix.
func (b *OutputBuffer) Grow() error {
	size := len(b.B)
	if size > maxInt/2 {
		return fmt.Errorf("%w: output buffer of %d bytes cannot double", ErrAllocationFailed, size)
	}
	size *= 2
	if b.limit > 0 && size > b.limit {
		if len(b.B) >= b.limit {
			return fmt.Errorf("%w: output exceeds %d bytes", ErrAllocationFailed, b.limit)
		}
		size = b.limit
	}
	nb := make([]byte, size)
	copy(nb, b.B[:b.N])
	b.B = nb
	return nil
}

// Write implements the io.Writer interface, growing the buffer as needed.
func (b *OutputBuffer) Write(p []byte) (int, error) {
	for len(p) > len(b.B)-b.N {
		if err := b.Grow(); err != nil {
			n := copy(b.B[b.N:], p)
			b.N += n
			return n, err
		}
	}
	n := copy(b.B[b.N:], p)
	b.N += n
	return n, nil
}

// ReadFrom implements the io.ReaderFrom interface and reads from r until EOF.
func (b *OutputBuffer) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for {
		if b.N == len(b.B) {
			if err := b.Grow(); err != nil {
				return total, err
			}
		}
		n, err := r.Read(b.B[b.N:])
		if n < 0 || n > len(b.B)-b.N {
			return total, ErrInvalidWrite
		}
		b.N += n
		total += int64(n)
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Len returns the number of bytes written.
func (b *OutputBuffer) Len() int { return b.N }

// Cap returns the current capacity.
func (b *OutputBuffer) Cap() int { return len(b.B) }

// Bytes returns a view of the written data.
func (b *OutputBuffer) Bytes() []byte { return b.B[:b.N] }

// Detach returns an exact-length copy of the written data.
func (b *OutputBuffer) Detach() []byte {
	out := make([]byte, b.N)
	copy(out, b.B[:b.N])
	return out
}

// Release drops the backing storage.
func (b *OutputBuffer) Release() {
	b.B = nil
	b.N = 0
}
