package enginetest

import (
	"github.com/oy3o/imageio/engine"
)

// ScriptedDecoder is a test double for engine.Decoder that replays Events
// in order. Once the script is exhausted it reports EventError.
type ScriptedDecoder struct {
	Events []engine.Event
	Info   engine.BasicInfo
	// Infos, when set, replaces Info with one entry per BasicInfo call;
	// the last entry repeats.
	Infos []engine.BasicInfo
	// Size overrides the reported output buffer size when non-zero.
	Size int
	// Fill is copied into the output buffer when EventFullImage is replayed.
	Fill []byte

	SubscribeErr error
	InputErr     error
	InfoErr      error
	SizeErr      error
	BufferErr    error

	Mask        engine.EventMask
	Input       []byte
	InputClosed bool
	Format      engine.PixelFormat
	Buffer      []byte
	Calls       []string
	Closed      bool
	step        int
	infoStep    int
}

// NewScriptedDecoder creates a decoder that replays events.
func NewScriptedDecoder(info engine.BasicInfo, events ...engine.Event) *ScriptedDecoder {
	return &ScriptedDecoder{Info: info, Events: events}
}

// Factory returns an engine.DecoderFactory that always hands out d.
func (d *ScriptedDecoder) Factory() engine.DecoderFactory {
	return func(int) (engine.Decoder, error) { return d, nil }
}

// Subscribe records events and returns SubscribeErr.
func (d *ScriptedDecoder) Subscribe(events engine.EventMask) error {
	d.Calls = append(d.Calls, "Subscribe")
	d.Mask = events
	return d.SubscribeErr
}

// SetInput records data and returns InputErr.
func (d *ScriptedDecoder) SetInput(data []byte) error {
	d.Calls = append(d.Calls, "SetInput")
	d.Input = data
	return d.InputErr
}

// CloseInput records the call.
func (d *ScriptedDecoder) CloseInput() {
	d.Calls = append(d.Calls, "CloseInput")
	d.InputClosed = true
}

// ProcessInput replays the next scripted event.
func (d *ScriptedDecoder) ProcessInput() engine.Event {
	d.Calls = append(d.Calls, "ProcessInput")
	if d.step >= len(d.Events) {
		return engine.EventError
	}
	ev := d.Events[d.step]
	d.step++
	if ev == engine.EventFullImage && d.Buffer != nil {
		copy(d.Buffer, d.Fill)
	}
	return ev
}

// BasicInfo returns Info, or the next entry of Infos.
func (d *ScriptedDecoder) BasicInfo() (engine.BasicInfo, error) {
	d.Calls = append(d.Calls, "BasicInfo")
	if len(d.Infos) > 0 {
		d.Info = d.Infos[min(d.infoStep, len(d.Infos)-1)]
		d.infoStep++
	}
	return d.Info, d.InfoErr
}

// OutputBufferSize returns Size, or the exact frame size when Size is zero.
func (d *ScriptedDecoder) OutputBufferSize(format engine.PixelFormat) (int, error) {
	d.Calls = append(d.Calls, "OutputBufferSize")
	if d.SizeErr != nil {
		return 0, d.SizeErr
	}
	if d.Size != 0 {
		return d.Size, nil
	}
	return int(d.Info.Width) * int(d.Info.Height) * format.Channels * 2, nil
}

// SetOutputBuffer records buf and returns BufferErr.
func (d *ScriptedDecoder) SetOutputBuffer(format engine.PixelFormat, buf []byte) error {
	d.Calls = append(d.Calls, "SetOutputBuffer")
	d.Format = format
	d.Buffer = buf
	return d.BufferErr
}

// Close records the call.
func (d *ScriptedDecoder) Close() {
	d.Calls = append(d.Calls, "Close")
	d.Closed = true
}

// ScriptedEncoder is a test double for engine.Encoder that emits Output,
// as much per ProcessOutput call as the offered buffer holds.
type ScriptedEncoder struct {
	Output []byte
	// FailAt makes the n-th ProcessOutput call (1-based) report StatusError.
	FailAt int
	// Overreport makes ProcessOutput claim one byte more than it was offered.
	Overreport bool

	LosslessErr error
	InfoErr     error
	FrameErr    error

	Lossless    bool
	Info        engine.BasicInfo
	Format      engine.PixelFormat
	Frame       []byte
	InputClosed bool
	Capacities  []int
	Statuses    []engine.Status
	Calls       []string
	Closed      bool
	pos         int
}

// NewScriptedEncoder creates an encoder that emits output.
func NewScriptedEncoder(output []byte) *ScriptedEncoder {
	return &ScriptedEncoder{Output: output}
}

// Factory returns an engine.EncoderFactory that always hands out e.
func (e *ScriptedEncoder) Factory() engine.EncoderFactory {
	return func(int) (engine.Encoder, error) { return e, nil }
}

// SetLossless records the mode and returns LosslessErr.
func (e *ScriptedEncoder) SetLossless(lossless bool) error {
	e.Calls = append(e.Calls, "SetLossless")
	e.Lossless = lossless
	return e.LosslessErr
}

// SetBasicInfo records info and returns InfoErr.
func (e *ScriptedEncoder) SetBasicInfo(info engine.BasicInfo) error {
	e.Calls = append(e.Calls, "SetBasicInfo")
	e.Info = info
	return e.InfoErr
}

// AddFrame records the frame and returns FrameErr.
func (e *ScriptedEncoder) AddFrame(format engine.PixelFormat, pixels []byte) error {
	e.Calls = append(e.Calls, "AddFrame")
	e.Format = format
	e.Frame = append([]byte(nil), pixels...)
	return e.FrameErr
}

// CloseInput records the call.
func (e *ScriptedEncoder) CloseInput() {
	e.Calls = append(e.Calls, "CloseInput")
	e.InputClosed = true
}

// ProcessOutput copies as much of Output as fits into out.
func (e *ScriptedEncoder) ProcessOutput(out []byte) (int, engine.Status) {
	e.Calls = append(e.Calls, "ProcessOutput")
	e.Capacities = append(e.Capacities, e.pos+len(out))
	if e.FailAt > 0 && len(e.Statuses) == e.FailAt-1 {
		e.Statuses = append(e.Statuses, engine.StatusError)
		return 0, engine.StatusError
	}
	n := copy(out, e.Output[e.pos:])
	e.pos += n
	status := engine.StatusSuccess
	if e.pos < len(e.Output) {
		status = engine.StatusNeedMoreOutput
	}
	e.Statuses = append(e.Statuses, status)
	if e.Overreport {
		return len(out) + 1, status
	}
	return n, status
}

// NeedMore returns how many times ProcessOutput asked for more room.
func (e *ScriptedEncoder) NeedMore() int {
	k := 0
	for _, s := range e.Statuses {
		if s == engine.StatusNeedMoreOutput {
			k++
		}
	}
	return k
}

// Close records the call.
func (e *ScriptedEncoder) Close() {
	e.Calls = append(e.Calls, "Close")
	e.Closed = true
}
