// Package engine defines the contract between imageio's format drivers and
// the external codec engines that own the actual bitstream work.
//
// An engine is driven step by step: the driver configures it, hands it the
// whole input (or the whole frame) up front, and then repeatedly asks it to
// make progress, reacting to the event or status it reports. Engines never
// see partial input; a request for more input after CloseInput is fatal.
package engine

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnavailable indicates the engine was not compiled into this binary.
var ErrUnavailable = errors.New("engine: codec engine unavailable")

// Event is a notification returned by Decoder.ProcessInput.
type Event int

const (
	// EventError reports an unrecoverable decoding error.
	EventError Event = iota
	// EventSuccess reports that decoding finished.
	EventSuccess
	// EventNeedMoreInput reports that the engine ran out of input.
	EventNeedMoreInput
	// EventBasicInfo reports that image dimensions are available.
	EventBasicInfo
	// EventNeedOutputBuffer asks the caller for a pixel output buffer.
	EventNeedOutputBuffer
	// EventFullImage reports that the output buffer holds the whole frame.
	EventFullImage
)

// String returns the string representation of the event.
func (e Event) String() string {
	switch e {
	case EventError:
		return "Error"
	case EventSuccess:
		return "Success"
	case EventNeedMoreInput:
		return "NeedMoreInput"
	case EventBasicInfo:
		return "BasicInfo"
	case EventNeedOutputBuffer:
		return "NeedOutputBuffer"
	case EventFullImage:
		return "FullImage"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// EventMask selects the informational events a Decoder reports.
// Success, Error, NeedMoreInput and NeedOutputBuffer are always reported.
type EventMask uint32

const (
	SubscribeBasicInfo EventMask = 1 << iota
	SubscribeFullImage
)

// Status is the result of Encoder.ProcessOutput.
type Status int

const (
	StatusError Status = iota
	StatusSuccess
	StatusNeedMoreOutput
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusError:
		return "Error"
	case StatusSuccess:
		return "Success"
	case StatusNeedMoreOutput:
		return "NeedMoreOutput"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Endianness selects the byte order of 16-bit samples exchanged with an engine.
type Endianness int

const (
	NativeEndian Endianness = iota
	LittleEndian
	BigEndian
)

// ByteOrder returns the encoding/binary order for e.
func (e Endianness) ByteOrder() binary.ByteOrder {
	switch e {
	case LittleEndian:
		return binary.LittleEndian
	case BigEndian:
		return binary.BigEndian
	default:
		return binary.NativeEndian
	}
}

// String returns the string representation of the endianness.
func (e Endianness) String() string {
	switch e {
	case NativeEndian:
		return "native"
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	default:
		return fmt.Sprintf("Endianness(%d)", int(e))
	}
}

// ParseEndianness parses "native", "little" or "big" (case-insensitive).
// The empty string selects NativeEndian.
func ParseEndianness(s string) (Endianness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "native":
		return NativeEndian, nil
	case "little", "le":
		return LittleEndian, nil
	case "big", "be":
		return BigEndian, nil
	default:
		return NativeEndian, fmt.Errorf("engine: unknown endianness %q", s)
	}
}

// PixelFormat describes an interleaved buffer of unsigned 16-bit samples.
type PixelFormat struct {
	Channels   int
	Endianness Endianness
}

// BasicInfo is the image header exchanged with an engine.
type BasicInfo struct {
	Width               uint32
	Height              uint32
	BitsPerSample       uint32
	AlphaBits           uint32
	ColorChannels       uint32
	ExtraChannels       uint32
	UsesOriginalProfile bool
}

// Decoder is an event-driven decoding engine.
//
// The engine owns any worker pool it uses; Close releases the engine and
// its pool and must be safe to call once on every exit path.
type Decoder interface {
	Subscribe(events EventMask) error
	SetInput(data []byte) error
	CloseInput()
	ProcessInput() Event
	BasicInfo() (BasicInfo, error)
	OutputBufferSize(format PixelFormat) (int, error)
	// SetOutputBuffer hands buf to the engine; it is filled by the time
	// ProcessInput reports EventFullImage.
	SetOutputBuffer(format PixelFormat, buf []byte) error
	Close()
}

// Encoder is a single-frame encoding engine that drains its output into
// caller-owned buffers.
type Encoder interface {
	SetBasicInfo(info BasicInfo) error
	SetLossless(lossless bool) error
	AddFrame(format PixelFormat, pixels []byte) error
	CloseInput()
	// ProcessOutput writes up to len(out) bytes and reports how many were
	// written. StatusNeedMoreOutput means out was too small to finish.
	ProcessOutput(out []byte) (int, Status)
	Close()
}

// DecoderFactory creates a Decoder whose worker pool uses the given number
// of threads; zero lets the engine decide.
type DecoderFactory func(threads int) (Decoder, error)

// EncoderFactory creates an Encoder; threads has the DecoderFactory meaning.
type EncoderFactory func(threads int) (Encoder, error)

// RasterInfo is the header of a row-oriented image stream.
type RasterInfo struct {
	Width    uint32
	Height   uint32
	BitDepth int
	Channels int
	// RowBytes is the length of one unpacked source row.
	RowBytes int
}

// Raster is a row-oriented decoding engine. ReadRows fills each row with
// big-endian samples in the source channel layout.
type Raster interface {
	ReadInfo(r io.Reader) (RasterInfo, error)
	ReadRows(rows [][]byte) error
	Close()
}

// RasterFactory creates a Raster.
type RasterFactory func() (Raster, error)
