package imageio

import "io"

// Cursor is an io.Reader over a caller-owned byte slice. It never copies or
// retains anything beyond B, and N stays within [0, len(B)].
type Cursor struct {
	B []byte // source slice
	N int    // current read position
}

// NewCursor creates a new Cursor positioned at the start of b.
func NewCursor(b []byte) *Cursor {
	return &Cursor{B: b}
}

// Read implements the [io.Reader] interface.
func (c *Cursor) Read(p []byte) (int, error) {
	if c.N >= len(c.B) {
		return 0, io.EOF
	}
	n := copy(p, c.B[c.N:])
	c.N += n
	return n, nil
}
