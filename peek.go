package imageio

import "io"

// peekReader lets DecodeReader look at a stream's signature before the
// whole stream is read.
type peekReader struct {
	r io.Reader // The underlying reader.
	b []byte    // Peeked bytes not yet returned by Read.
}

func newPeekReader(r io.Reader) *peekReader {
	return &peekReader{r: r}
}

// Peek returns up to n upcoming bytes without consuming them. Fewer bytes
// are returned only together with the error that cut the stream short.
func (p *peekReader) Peek(n int) ([]byte, error) {
	if len(p.b) >= n {
		return p.b[:n], nil
	}
	i := len(p.b)
	p.b = append(p.b, make([]byte, n-i)...)
	read, err := io.ReadFull(p.r, p.b[i:])
	p.b = p.b[:i+read]
	return p.b, err
}

// Read returns peeked bytes first, then reads from the underlying reader.
func (p *peekReader) Read(b []byte) (int, error) {
	if len(p.b) > 0 {
		n := copy(b, p.b)
		p.b = p.b[n:]
		return n, nil
	}
	return p.r.Read(b)
}
