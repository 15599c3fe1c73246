package haltest

import (
	"fmt"
	"sync"

	"lumen/hal"
)

// Recorder keeps the order of peripheral calls.
type Recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *Recorder) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

// Calls returns the recorded calls, e.g. "usb.Init".
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Device is a peripheral that only records its calls. It satisfies every
// void driver interface.
type Device struct {
	Name string
	Rec  *Recorder
}

func (d Device) Init()      { d.Rec.record(d.Name + ".Init") }
func (d Device) ReadDebug() { d.Rec.record(d.Name + ".ReadDebug") }
func (d Device) TurnOn()    { d.Rec.record(d.Name + ".TurnOn") }
func (d Device) TurnOff()   { d.Rec.record(d.Name + ".TurnOff") }

func (d Device) Tone(freqHz uint32, durationMs uint16) {
	d.Rec.record(fmt.Sprintf("%s.Tone(%d,%d)", d.Name, freqHz, durationMs))
}

// Encoder hands out a Scheduler queue.
type Encoder struct {
	Rec   *Recorder
	Sched *Scheduler

	mu          sync.Mutex
	longPressUs uint32
	queue       hal.QueueHandle
}

func (e *Encoder) Init(longPressUs uint32) hal.QueueHandle {
	e.Rec.record("encoder.Init")
	e.mu.Lock()
	defer e.mu.Unlock()
	e.longPressUs = longPressUs
	e.queue = e.Sched.NewQueue()
	return e.queue
}

// Queue returns the queue created by Init, or nil.
func (e *Encoder) Queue() hal.QueueHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue
}

// LongPressUs returns the value passed to Init.
func (e *Encoder) LongPressUs() uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.longPressUs
}

// Display keeps the registered poll function and counts frames.
type Display struct {
	Rec *Recorder

	mu      sync.Mutex
	poll    hal.PollFunc
	renders int
}

func (d *Display) Init(poll hal.PollFunc) {
	d.Rec.record("display.Init")
	d.mu.Lock()
	defer d.mu.Unlock()
	d.poll = poll
}

func (d *Display) FrameRender() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.renders++
}

// Poll calls the registered poll function as the UI library would. It
// returns -1 if none is registered.
func (d *Display) Poll() int32 {
	d.mu.Lock()
	poll := d.poll
	d.mu.Unlock()
	if poll == nil {
		return -1
	}
	return poll()
}

// Renders returns the number of FrameRender calls.
func (d *Display) Renders() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.renders
}

// Board is a hal.HAL built from the fakes in this package.
type Board struct {
	Sched Scheduler
	Mem   Heap
	CPU   Port
	Sink  LogSink
	Abort Aborter
	Rec   Recorder
	Enc   Encoder
	Disp  Display
}

// NewBoard returns a Board with its fakes wired together.
func NewBoard() *Board {
	b := &Board{}
	b.Enc.Rec = &b.Rec
	b.Enc.Sched = &b.Sched
	b.Disp.Rec = &b.Rec
	return b
}

func (b *Board) Scheduler() hal.Scheduler         { return &b.Sched }
func (b *Board) Heap() hal.Heap                   { return &b.Mem }
func (b *Board) Port() hal.Port                   { return &b.CPU }
func (b *Board) LogSink() hal.LogSink             { return &b.Sink }
func (b *Board) Aborter() hal.Aborter             { return &b.Abort }
func (b *Board) CurrentSensor() hal.CurrentSensor { return Device{Name: "current", Rec: &b.Rec} }
func (b *Board) USB() hal.USB                     { return Device{Name: "usb", Rec: &b.Rec} }
func (b *Board) EFuse() hal.EFuse                 { return Device{Name: "efuse", Rec: &b.Rec} }
func (b *Board) Buzzer() hal.Buzzer               { return Device{Name: "buzzer", Rec: &b.Rec} }
func (b *Board) Encoder() hal.Encoder             { return &b.Enc }
func (b *Board) Display() hal.Display             { return &b.Disp }
func (b *Board) Motion() hal.Motion               { return Device{Name: "motion", Rec: &b.Rec} }

var _ hal.HAL = (*Board)(nil)
