// Package encoder reads rotary encoder events from the scheduler queue the
// encoder driver posts to.
package encoder

import (
	"time"
	"unsafe"

	"lumen/hal"
)

// Event is a decoded encoder event.
type Event uint8

const (
	EventCW    Event = 0
	EventCCW   Event = 1
	EventClick Event = 2
	EventPress Event = 3
)

func (e Event) String() string {
	switch e {
	case EventCW:
		return "cw"
	case EventCCW:
		return "ccw"
	case EventClick:
		return "click"
	case EventPress:
		return "press"
	default:
		return "unknown"
	}
}

// Queue is a non-owning view of the encoder's event queue. The queue itself
// belongs to the driver and outlives the view.
type Queue struct {
	sched  hal.Scheduler
	handle hal.QueueHandle
}

// Init starts the encoder driver. A press held for longPress reports
// EventPress instead of EventClick.
func Init(dev hal.Encoder, sched hal.Scheduler, longPress time.Duration) *Queue {
	us := longPress.Microseconds()
	if us < 0 {
		us = 0
	} else if us > int64(^uint32(0)) {
		us = int64(^uint32(0))
	}
	return NewQueue(sched, dev.Init(uint32(us)))
}

// NewQueue wraps an existing queue handle.
func NewQueue(sched hal.Scheduler, handle hal.QueueHandle) *Queue {
	return &Queue{sched: sched, handle: handle}
}

// Receive returns the next event without waiting. ok is false when the queue
// is empty or the queued byte is not a known event.
func (q *Queue) Receive() (e Event, ok bool) {
	if q.handle == nil {
		return 0, false
	}
	var raw uint8
	if !q.sched.QueueReceive(q.handle, unsafe.Pointer(&raw), 0) {
		return 0, false
	}
	if raw > uint8(EventPress) {
		return 0, false
	}
	return Event(raw), true
}
