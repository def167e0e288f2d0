package imageio

import (
	"errors"

	"github.com/oy3o/imageio/engine"
)

var (
	// ErrInputUnreadable indicates the caller's input could not be read as a byte region:
	// it is empty, the reader failed, or it exceeds the configured input limit.
	ErrInputUnreadable = errors.New("imageio: input is unreadable")

	// ErrDecodeFailed indicates the engine rejected the input or reported a decoding error.
	ErrDecodeFailed = errors.New("imageio: decode failed")

	// ErrUnexpectedMoreInput indicates the engine asked for more input after
	// the whole payload had been supplied and closed.
	ErrUnexpectedMoreInput = errors.New("imageio: engine requested more input after input was closed")

	// ErrAllocationFailed indicates a pixel or output buffer could not be sized or grown.
	ErrAllocationFailed = errors.New("imageio: buffer allocation failed")

	// ErrEncodeFailed indicates the engine reported an encoding error.
	ErrEncodeFailed = errors.New("imageio: encode failed")

	// ErrUnsupportedFormat indicates the format has no decoder or encoder path.
	ErrUnsupportedFormat = errors.New("imageio: unsupported format")

	// ErrUnsupportedPixelLayout indicates a source layout that is rejected rather
	// than widened, such as grayscale, gray+alpha, palette or sub-byte samples.
	ErrUnsupportedPixelLayout = errors.New("imageio: unsupported pixel layout")

	// ErrInvalidImage indicates an Image whose pixel slice does not match its dimensions.
	ErrInvalidImage = errors.New("imageio: invalid image")

	// ErrEngineUnavailable indicates the codec engine for a format was not built in.
	ErrEngineUnavailable = engine.ErrUnavailable

	// ErrInvalidWrite indicates an engine reported writing more bytes than it was given.
	ErrInvalidWrite = errors.New("imageio: engine returned invalid count from write")
)
