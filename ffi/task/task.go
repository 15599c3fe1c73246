// Package task runs Go closures as RTOS tasks.
//
// Spawn boxes the closure and asks the scheduler for a task whose entry point
// is Trampoline and whose parameter is the box handle. From then on the scheduler
// owns the box until Trampoline reclaims it on the new task.
package task

import (
	"sync/atomic"
	"time"

	"lumen/ffi/box"
	"lumen/ffi/fault"
	"lumen/hal"
)

// NoAffinity lets the scheduler run the task on any core.
const NoAffinity int32 = 0x7FFFFFFF

var scheduler atomic.Value // hal.Scheduler

// SetScheduler installs the host scheduler.
func SetScheduler(s hal.Scheduler) {
	scheduler.Store(&s)
}

func sched() hal.Scheduler {
	p, _ := scheduler.Load().(*hal.Scheduler)
	if p == nil || *p == nil {
		fault.Panic("task: no scheduler installed")
	}
	return *p
}

// Task owns a scheduler task. Closing it terminates the task.
type Task struct {
	_      [0]func() // not comparable.
	handle hal.TaskHandle
	closed atomic.Bool
}

// Spawn starts fn on a new task with no core affinity.
//
// If the scheduler cannot create the task, fn is released without running
// and the returned Task is not Valid.
func Spawn(name string, priority uint8, stackDepth uint32, fn func()) *Task {
	return SpawnOnCore(name, priority, stackDepth, NoAffinity, fn)
}

// SpawnOnCore is Spawn pinned to core.
func SpawnOnCore(name string, priority uint8, stackDepth uint32, core int32, fn func()) *Task {
	s := sched()
	b := box.New(fn)

	h, ok := s.CreateTask(name, stackDepth, uintptr(b), uint32(priority), core)
	if !ok {
		// The scheduler never saw the box.
		box.Drop(b)
		return &Task{}
	}
	return &Task{handle: h}
}

// Valid reports whether the task was created and has not been closed.
func (t *Task) Valid() bool {
	return t != nil && t.handle != nil && !t.closed.Load()
}

// Close terminates the task if it is live. Later calls do nothing.
func (t *Task) Close() {
	if t == nil || t.handle == nil {
		return
	}
	if !t.closed.CompareAndSwap(false, true) {
		return
	}
	sched().DeleteTask(t.handle)
}

// Trampoline is the entry point of every spawned task. It reclaims the boxed
// closure, runs it once, and deletes the calling task when it returns.
func Trampoline(param uintptr) {
	defer fault.Recover()

	fn := box.Reclaim[func()](box.Handle(param))
	fn()
	sched().DeleteTask(nil)
}

// Sleep blocks the calling task for d, clamped to the scheduler's range.
func Sleep(d time.Duration) {
	ms := d.Milliseconds()
	switch {
	case ms < 0:
		ms = 0
	case ms > int64(^uint32(0)):
		ms = int64(^uint32(0))
	}
	sched().Delay(uint32(ms))
}
