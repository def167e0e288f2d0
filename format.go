package imageio

import (
	"bytes"
	"fmt"
	"strings"
)

// Format constants for the image formats the bridge knows about.
const (
	// Auto asks the decoder to detect the format from the input signature.
	Auto Format = iota
	// PNG is the Portable Network Graphics format (decode only).
	PNG
	// JPEGXL is the JPEG XL format, bare codestream or ISO BMFF container.
	JPEGXL
)

// Format selects a format driver. It is evaluated once per call.
type Format int

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case Auto:
		return "auto"
	case PNG:
		return "png"
	case JPEGXL:
		return "jpegxl"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Extension returns the conventional file extension, including the dot.
func (f Format) Extension() string {
	switch f {
	case PNG:
		return ".png"
	case JPEGXL:
		return ".jxl"
	default:
		return ""
	}
}

// ParseFormat parses a format name or file extension such as "png",
// "jxl", "jpegxl" or ".jxl".
func ParseFormat(name string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".") {
	case "auto", "":
		return Auto, nil
	case "png":
		return PNG, nil
	case "jxl", "jpegxl", "jpeg-xl":
		return JPEGXL, nil
	default:
		return Auto, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

var (
	pngSignature          = []byte("\x89PNG\r\n\x1a\n")
	jxlCodestreamSig      = []byte{0xFF, 0x0A}
	jxlContainerSignature = []byte{0x00, 0x00, 0x00, 0x0C, 'J', 'X', 'L', ' ', 0x0D, 0x0A, 0x87, 0x0A}
)

// signatureLen is enough leading bytes to tell every known format apart.
var signatureLen = max(len(pngSignature), len(jxlContainerSignature))

// DetectFormat identifies the format of data from its leading signature.
func DetectFormat(data []byte) (Format, bool) {
	switch {
	case bytes.HasPrefix(data, pngSignature):
		return PNG, true
	case bytes.HasPrefix(data, jxlContainerSignature), bytes.HasPrefix(data, jxlCodestreamSig):
		return JPEGXL, true
	default:
		return Auto, false
	}
}
