//go:build libjxl && cgo

package libjxl

/*
#cgo pkg-config: libjxl libjxl_threads
#include <stdlib.h>
#include <string.h>
#include <jxl/decode.h>
#include <jxl/encode.h>
#include <jxl/resizable_parallel_runner.h>

static JxlDecoderStatus set_dec_runner(JxlDecoder* dec, void* runner) {
	return JxlDecoderSetParallelRunner(dec, JxlResizableParallelRunner, runner);
}

static JxlEncoderStatus set_enc_runner(JxlEncoder* enc, void* runner) {
	return JxlEncoderSetParallelRunner(enc, JxlResizableParallelRunner, runner);
}

static JxlEncoderStatus process_output(JxlEncoder* enc, uint8_t* out, size_t avail, size_t* written) {
	uint8_t* next = out;
	size_t left = avail;
	JxlEncoderStatus st = JxlEncoderProcessOutput(enc, &next, &left);
	*written = avail - left;
	return st;
}
*/
import "C"

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/oy3o/imageio/engine"
)

// Available reports whether the libjxl binding is compiled in.
func Available() bool { return true }

func pixelFormat(f engine.PixelFormat) C.JxlPixelFormat {
	var end C.JxlEndianness = C.JXL_NATIVE_ENDIAN
	switch f.Endianness {
	case engine.LittleEndian:
		end = C.JXL_LITTLE_ENDIAN
	case engine.BigEndian:
		end = C.JXL_BIG_ENDIAN
	}
	return C.JxlPixelFormat{
		num_channels: C.uint32_t(f.Channels),
		data_type:    C.JXL_TYPE_UINT16,
		endianness:   end,
		align:        0,
	}
}

// JXL_BOOL is a macro for int.
func jxlBool(b bool) C.int {
	if b {
		return C.JXL_TRUE
	}
	return C.JXL_FALSE
}

// Decoder wraps a JxlDecoder and the resizable runner it owns. Input and
// output live in C memory so libjxl may hold them between calls.
type Decoder struct {
	dec     *C.JxlDecoder
	runner  unsafe.Pointer
	threads int

	in     unsafe.Pointer
	out    unsafe.Pointer
	outLen int
	dst    []byte
}

// NewDecoder creates a decoder. threads <= 0 sizes the runner from the
// image dimensions once they are known.
func NewDecoder(threads int) (engine.Decoder, error) {
	d := &Decoder{threads: threads}
	d.dec = C.JxlDecoderCreate(nil)
	if d.dec == nil {
		return nil, errors.New("libjxl: JxlDecoderCreate failed")
	}
	d.runner = C.JxlResizableParallelRunnerCreate(nil)
	if d.runner == nil {
		d.Close()
		return nil, errors.New("libjxl: runner create failed")
	}
	if threads > 0 {
		C.JxlResizableParallelRunnerSetThreads(d.runner, C.size_t(threads))
	}
	if C.set_dec_runner(d.dec, d.runner) != C.JXL_DEC_SUCCESS {
		d.Close()
		return nil, errors.New("libjxl: JxlDecoderSetParallelRunner failed")
	}
	return d, nil
}

// Subscribe selects the informational events ProcessInput reports.
func (d *Decoder) Subscribe(events engine.EventMask) error {
	var mask C.int
	if events&engine.SubscribeBasicInfo != 0 {
		mask |= C.JXL_DEC_BASIC_INFO
	}
	if events&engine.SubscribeFullImage != 0 {
		mask |= C.JXL_DEC_FULL_IMAGE
	}
	if C.JxlDecoderSubscribeEvents(d.dec, mask) != C.JXL_DEC_SUCCESS {
		return errors.New("libjxl: JxlDecoderSubscribeEvents failed")
	}
	return nil
}

// SetInput copies data into C memory and hands it to the decoder.
func (d *Decoder) SetInput(data []byte) error {
	if len(data) == 0 {
		return errors.New("libjxl: empty input")
	}
	if d.in != nil {
		C.free(d.in)
	}
	d.in = C.CBytes(data)
	if C.JxlDecoderSetInput(d.dec, (*C.uint8_t)(d.in), C.size_t(len(data))) != C.JXL_DEC_SUCCESS {
		return errors.New("libjxl: JxlDecoderSetInput failed")
	}
	return nil
}

// CloseInput marks the input as complete.
func (d *Decoder) CloseInput() { C.JxlDecoderCloseInput(d.dec) }

// ProcessInput runs the decoder until its next event.
func (d *Decoder) ProcessInput() engine.Event {
	switch C.JxlDecoderProcessInput(d.dec) {
	case C.JXL_DEC_SUCCESS:
		return engine.EventSuccess
	case C.JXL_DEC_NEED_MORE_INPUT:
		return engine.EventNeedMoreInput
	case C.JXL_DEC_BASIC_INFO:
		if d.threads <= 0 {
			if info, err := d.BasicInfo(); err == nil {
				n := C.JxlResizableParallelRunnerSuggestThreads(C.uint64_t(info.Width), C.uint64_t(info.Height))
				C.JxlResizableParallelRunnerSetThreads(d.runner, C.size_t(n))
			}
		}
		return engine.EventBasicInfo
	case C.JXL_DEC_NEED_IMAGE_OUT_BUFFER:
		return engine.EventNeedOutputBuffer
	case C.JXL_DEC_FULL_IMAGE:
		if d.out != nil && d.dst != nil {
			copy(d.dst, unsafe.Slice((*byte)(d.out), d.outLen))
		}
		return engine.EventFullImage
	default:
		return engine.EventError
	}
}

// BasicInfo returns the image header once EventBasicInfo was reported.
func (d *Decoder) BasicInfo() (engine.BasicInfo, error) {
	var info C.JxlBasicInfo
	if C.JxlDecoderGetBasicInfo(d.dec, &info) != C.JXL_DEC_SUCCESS {
		return engine.BasicInfo{}, errors.New("libjxl: basic info unavailable")
	}
	return engine.BasicInfo{
		Width:               uint32(info.xsize),
		Height:              uint32(info.ysize),
		BitsPerSample:       uint32(info.bits_per_sample),
		AlphaBits:           uint32(info.alpha_bits),
		ColorChannels:       uint32(info.num_color_channels),
		ExtraChannels:       uint32(info.num_extra_channels),
		UsesOriginalProfile: info.uses_original_profile == C.JXL_TRUE,
	}, nil
}

// OutputBufferSize returns the byte size of a full frame in format f.
func (d *Decoder) OutputBufferSize(f engine.PixelFormat) (int, error) {
	pf := pixelFormat(f)
	var size C.size_t
	if C.JxlDecoderImageOutBufferSize(d.dec, &pf, &size) != C.JXL_DEC_SUCCESS {
		return 0, errors.New("libjxl: JxlDecoderImageOutBufferSize failed")
	}
	if uint64(size) > uint64(^uint(0)>>1) {
		return 0, fmt.Errorf("libjxl: output of %d bytes", uint64(size))
	}
	return int(size), nil
}

// SetOutputBuffer gives libjxl a C buffer of len(buf) bytes; its contents
// are copied into buf when the engine reports the full image.
func (d *Decoder) SetOutputBuffer(f engine.PixelFormat, buf []byte) error {
	if len(buf) == 0 {
		return errors.New("libjxl: empty output buffer")
	}
	if d.out != nil {
		C.free(d.out)
	}
	d.out = C.malloc(C.size_t(len(buf)))
	if d.out == nil {
		return errors.New("libjxl: out of memory")
	}
	d.outLen = len(buf)
	d.dst = buf
	pf := pixelFormat(f)
	if C.JxlDecoderSetImageOutBuffer(d.dec, &pf, d.out, C.size_t(len(buf))) != C.JXL_DEC_SUCCESS {
		return errors.New("libjxl: JxlDecoderSetImageOutBuffer failed")
	}
	return nil
}

// Close destroys the decoder, its runner and the C buffers.
func (d *Decoder) Close() {
	if d.dec != nil {
		C.JxlDecoderDestroy(d.dec)
		d.dec = nil
	}
	if d.runner != nil {
		C.JxlResizableParallelRunnerDestroy(d.runner)
		d.runner = nil
	}
	if d.in != nil {
		C.free(d.in)
		d.in = nil
	}
	if d.out != nil {
		C.free(d.out)
		d.out = nil
	}
	d.dst = nil
}

// Encoder wraps a JxlEncoder, its frame settings and its runner.
type Encoder struct {
	enc      *C.JxlEncoder
	settings *C.JxlEncoderFrameSettings
	runner   unsafe.Pointer
	threads  int
}

// NewEncoder creates an encoder. threads <= 0 sizes the runner from the
// image dimensions passed to SetBasicInfo.
func NewEncoder(threads int) (engine.Encoder, error) {
	e := &Encoder{threads: threads}
	e.enc = C.JxlEncoderCreate(nil)
	if e.enc == nil {
		return nil, errors.New("libjxl: JxlEncoderCreate failed")
	}
	e.runner = C.JxlResizableParallelRunnerCreate(nil)
	if e.runner == nil {
		e.Close()
		return nil, errors.New("libjxl: runner create failed")
	}
	if threads > 0 {
		C.JxlResizableParallelRunnerSetThreads(e.runner, C.size_t(threads))
	}
	if C.set_enc_runner(e.enc, e.runner) != C.JXL_ENC_SUCCESS {
		e.Close()
		return nil, errors.New("libjxl: JxlEncoderSetParallelRunner failed")
	}
	e.settings = C.JxlEncoderFrameSettingsCreate(e.enc, nil)
	if e.settings == nil {
		e.Close()
		return nil, errors.New("libjxl: JxlEncoderFrameSettingsCreate failed")
	}
	return e, nil
}

// SetLossless toggles lossless mode on the frame settings.
func (e *Encoder) SetLossless(lossless bool) error {
	if C.JxlEncoderSetFrameLossless(e.settings, jxlBool(lossless)) != C.JXL_ENC_SUCCESS {
		return errors.New("libjxl: JxlEncoderSetFrameLossless failed")
	}
	return nil
}

// SetBasicInfo also declares the color encoding as sRGB, which libjxl
// requires before a frame is added.
func (e *Encoder) SetBasicInfo(info engine.BasicInfo) error {
	var bi C.JxlBasicInfo
	C.JxlEncoderInitBasicInfo(&bi)
	bi.xsize = C.uint32_t(info.Width)
	bi.ysize = C.uint32_t(info.Height)
	bi.bits_per_sample = C.uint32_t(info.BitsPerSample)
	bi.alpha_bits = C.uint32_t(info.AlphaBits)
	bi.num_color_channels = C.uint32_t(info.ColorChannels)
	bi.num_extra_channels = C.uint32_t(info.ExtraChannels)
	bi.uses_original_profile = jxlBool(info.UsesOriginalProfile)
	if C.JxlEncoderSetBasicInfo(e.enc, &bi) != C.JXL_ENC_SUCCESS {
		return errors.New("libjxl: JxlEncoderSetBasicInfo failed")
	}
	var ce C.JxlColorEncoding
	C.JxlColorEncodingSetToSRGB(&ce, jxlBool(info.ColorChannels < 3))
	if C.JxlEncoderSetColorEncoding(e.enc, &ce) != C.JXL_ENC_SUCCESS {
		return errors.New("libjxl: JxlEncoderSetColorEncoding failed")
	}
	if e.threads <= 0 {
		n := C.JxlResizableParallelRunnerSuggestThreads(C.uint64_t(info.Width), C.uint64_t(info.Height))
		C.JxlResizableParallelRunnerSetThreads(e.runner, C.size_t(n))
	}
	return nil
}

// AddFrame hands the pixels to libjxl, which copies them before returning.
func (e *Encoder) AddFrame(f engine.PixelFormat, pixels []byte) error {
	if len(pixels) == 0 {
		return errors.New("libjxl: empty frame")
	}
	pf := pixelFormat(f)
	if C.JxlEncoderAddImageFrame(e.settings, &pf, unsafe.Pointer(&pixels[0]), C.size_t(len(pixels))) != C.JXL_ENC_SUCCESS {
		return errors.New("libjxl: JxlEncoderAddImageFrame failed")
	}
	return nil
}

// CloseInput marks the frame list as complete.
func (e *Encoder) CloseInput() { C.JxlEncoderCloseInput(e.enc) }

// ProcessOutput writes the next part of the codestream into out.
func (e *Encoder) ProcessOutput(out []byte) (int, engine.Status) {
	if len(out) == 0 {
		return 0, engine.StatusNeedMoreOutput
	}
	var written C.size_t
	st := C.process_output(e.enc, (*C.uint8_t)(unsafe.Pointer(&out[0])), C.size_t(len(out)), &written)
	switch st {
	case C.JXL_ENC_SUCCESS:
		return int(written), engine.StatusSuccess
	case C.JXL_ENC_NEED_MORE_OUTPUT:
		return int(written), engine.StatusNeedMoreOutput
	default:
		return int(written), engine.StatusError
	}
}

// Close destroys the encoder (and with it the frame settings) and the runner.
func (e *Encoder) Close() {
	if e.enc != nil {
		C.JxlEncoderDestroy(e.enc)
		e.enc = nil
		e.settings = nil
	}
	if e.runner != nil {
		C.JxlResizableParallelRunnerDestroy(e.runner)
		e.runner = nil
	}
}
