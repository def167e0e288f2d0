package imageio

import (
	"fmt"
	"io"
)

// readInput reads all of r, refusing more than limit bytes when limit is
// positive. Empty input is reported as unreadable.
func readInput(r io.Reader, limit int64) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil reader", ErrInputUnreadable)
	}
	src := r
	if limit > 0 {
		src = &io.LimitedReader{R: r, N: limit + 1}
	}
	buf := NewOutputBuffer(64*1024, 0)
	if _, err := buf.ReadFrom(src); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputUnreadable, err)
	}
	if limit > 0 && int64(buf.Len()) > limit {
		return nil, fmt.Errorf("%w: input exceeds %d bytes", ErrInputUnreadable, limit)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInputUnreadable)
	}
	return buf.Detach(), nil
}
