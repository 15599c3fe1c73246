// Package hal is the only contact point between the bridge and the outside
// world: the RTOS scheduler, the C heap, the critical-section primitives, the
// log sink, the abort path and the board drivers.
//
// The idf build binds every interface to the C symbols of the firmware image.
// Other builds get a host simulator.
package hal

import "unsafe"

// TaskHandle is an opaque scheduler task reference. Nil means "no task".
type TaskHandle unsafe.Pointer

// QueueHandle is an opaque scheduler queue reference.
type QueueHandle unsafe.Pointer

// Scheduler is the subset of the RTOS task and queue API the bridge uses.
type Scheduler interface {
	// CreateTask starts a task that runs the bridge's task entry point with
	// param, an opaque word the scheduler passes through untouched. ok is
	// false when the scheduler could not create the task.
	CreateTask(name string, stackDepth uint32, param uintptr, priority uint32, core int32) (h TaskHandle, ok bool)
	// DeleteTask terminates h, or the calling task when h is nil.
	DeleteTask(h TaskHandle)
	// QueueReceive copies one item into item. It waits at most ticks and
	// reports whether an item was received.
	QueueReceive(q QueueHandle, item unsafe.Pointer, ticks uint32) bool
	// Delay blocks the calling task for ms milliseconds.
	Delay(ms uint32)
}

// Heap is the host C allocator.
type Heap interface {
	Malloc(size uintptr) unsafe.Pointer
	Free(p unsafe.Pointer)
}

// Port disables and re-enables preemption on the current core.
type Port interface {
	EnterCritical()
	ExitCritical()
}

// LogSink receives NUL-terminated log lines.
//
// The lock guards the caller's line buffer, not the sink itself.
type LogSink interface {
	AcquireLogLock()
	ReleaseLogLock()
	Log(level int32, text *byte)
}

// Aborter is the terminal failure path. Abort never returns.
type Aborter interface {
	Abort(details *byte)
}

// CurrentSensor is the INA226 bus monitor.
type CurrentSensor interface {
	Init()
	ReadDebug()
}

// USB switches the USB output rail.
type USB interface {
	Init()
	TurnOn()
	TurnOff()
}

// EFuse is the output fuse controller.
type EFuse interface {
	Init()
}

// Buzzer is the piezo buzzer.
type Buzzer interface {
	Init()
	Tone(freqHz uint32, durationMs uint16)
}

// Encoder is the rotary encoder. Init returns the queue its events are posted to.
type Encoder interface {
	Init(longPressUs uint32) QueueHandle
}

// PollFunc is called by the display subsystem to pull the next UI action tag.
type PollFunc func() int32

// Display is the LCD and its UI library.
type Display interface {
	// Init starts the UI and registers poll as its action source.
	Init(poll PollFunc)
	// FrameRender renders one frame and updates the frame rate counter.
	FrameRender()
}

// Motion is the IMU.
type Motion interface {
	Init()
	ReadDebug()
}

// HAL aggregates every external collaborator.
type HAL interface {
	Scheduler() Scheduler
	Heap() Heap
	Port() Port
	LogSink() LogSink
	Aborter() Aborter

	CurrentSensor() CurrentSensor
	USB() USB
	EFuse() EFuse
	Buzzer() Buzzer
	Encoder() Encoder
	Display() Display
	Motion() Motion
}
