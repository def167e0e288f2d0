//go:build !libjxl || !cgo

package libjxl

import "github.com/oy3o/imageio/engine"

// Available reports whether the libjxl binding is compiled in.
func Available() bool { return false }

// NewDecoder reports engine.ErrUnavailable.
func NewDecoder(threads int) (engine.Decoder, error) {
	return nil, unavailable("decoder")
}

// NewEncoder reports engine.ErrUnavailable.
func NewEncoder(threads int) (engine.Encoder, error) {
	return nil, unavailable("encoder")
}
