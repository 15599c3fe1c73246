// Package haltest provides recording fakes of the hal interfaces for tests.
package haltest

import (
	"sync"
	"unsafe"

	"lumen/ffi/textbuf"
	"lumen/hal"
)

// Aborted is the value Aborter panics with, so tests can observe that the
// abort path was taken without the process exiting.
type Aborted struct {
	Details string
}

// Aborter records the abort text and panics with Aborted.
type Aborter struct {
	mu    sync.Mutex
	calls []string
}

func (a *Aborter) Abort(details *byte) {
	s := textbuf.GoString(details)
	a.mu.Lock()
	a.calls = append(a.calls, s)
	a.mu.Unlock()
	panic(Aborted{Details: s})
}

// Calls returns the recorded abort texts.
func (a *Aborter) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

// CatchAbort runs fn and returns the abort text, or ok=false if fn returned normally.
func CatchAbort(fn func()) (details string, ok bool) {
	defer func() {
		if v := recover(); v != nil {
			ab, isAbort := v.(Aborted)
			if !isAbort {
				panic(v)
			}
			details, ok = ab.Details, true
		}
	}()
	fn()
	return "", false
}

// Heap hands out Go memory and keeps it reachable until freed.
type Heap struct {
	mu    sync.Mutex
	live  map[unsafe.Pointer][]byte
	total int
	freed int

	// Fail makes Malloc return nil.
	Fail bool
	// Reuse hands freed blocks back out, most recent first, like malloc.
	Reuse bool
	spare [][]byte
}

func (h *Heap) Malloc(size uintptr) unsafe.Pointer {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Fail {
		return nil
	}
	if h.live == nil {
		h.live = make(map[unsafe.Pointer][]byte)
	}
	if size == 0 {
		size = 1
	}
	b := h.recycle(size)
	if b == nil {
		b = make([]byte, size)
	}
	p := unsafe.Pointer(&b[0])
	h.live[p] = b
	h.total++
	return p
}

func (h *Heap) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	b, ok := h.live[p]
	if !ok {
		panic("haltest: free of unknown pointer")
	}
	clear(b)
	delete(h.live, p)
	h.freed++
	if h.Reuse {
		h.spare = append(h.spare, b)
	}
}

func (h *Heap) recycle(size uintptr) []byte {
	for i := len(h.spare) - 1; i >= 0; i-- {
		if b := h.spare[i]; uintptr(len(b)) == size {
			h.spare = append(h.spare[:i], h.spare[i+1:]...)
			return b
		}
	}
	return nil
}

// Live returns the number of outstanding allocations.
func (h *Heap) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live)
}

// Stats returns the allocation and free counts.
func (h *Heap) Stats() (allocs, frees int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.total, h.freed
}

// Port is a critical section built on a mutex. It counts entries.
type Port struct {
	mu      sync.Mutex
	entered int
	depth   int
}

func (p *Port) EnterCritical() {
	p.mu.Lock()
	p.entered++
	p.depth++
}

func (p *Port) ExitCritical() {
	p.depth--
	p.mu.Unlock()
}

// Entered returns how many times the section was entered.
func (p *Port) Entered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entered
}

// Held reports whether the section is currently held.
func (p *Port) Held() bool {
	if p.mu.TryLock() {
		p.mu.Unlock()
		return false
	}
	return true
}

// Line is one recorded log call.
type Line struct {
	Level int32
	Text  string
}

// LogSink records log lines and checks lock discipline.
type LogSink struct {
	lock sync.Mutex

	mu       sync.Mutex
	held     bool
	lines    []Line
	unlocked int
}

func (s *LogSink) AcquireLogLock() {
	s.lock.Lock()
	s.mu.Lock()
	s.held = true
	s.mu.Unlock()
}

func (s *LogSink) ReleaseLogLock() {
	s.mu.Lock()
	s.held = false
	s.mu.Unlock()
	s.lock.Unlock()
}

func (s *LogSink) Log(level int32, text *byte) {
	line := Line{Level: level, Text: textbuf.GoString(text)}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.held {
		s.unlocked++
	}
	s.lines = append(s.lines, line)
}

// Lines returns the recorded lines.
func (s *LogSink) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Line(nil), s.lines...)
}

// Unlocked returns how many lines arrived without the lock held.
func (s *LogSink) Unlocked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocked
}

// CreateCall is one recorded Scheduler.CreateTask call.
type CreateCall struct {
	Name       string
	StackDepth uint32
	Param      uintptr
	Priority   uint32
	Core       int32
}

// Scheduler records calls. Created tasks are not started; tests run Param
// through the bridge entry point themselves.
type Scheduler struct {
	mu sync.Mutex

	// Fail makes CreateTask report failure.
	Fail bool
	// OnDelay, if set, is called by Delay.
	OnDelay func(ms uint32)

	creates []CreateCall
	deletes []hal.TaskHandle
	handles []*byte

	queues map[hal.QueueHandle][]byte
}

func (s *Scheduler) CreateTask(name string, stackDepth uint32, param uintptr, priority uint32, core int32) (hal.TaskHandle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates = append(s.creates, CreateCall{Name: name, StackDepth: stackDepth, Param: param, Priority: priority, Core: core})
	if s.Fail {
		return nil, false
	}
	h := new(byte)
	s.handles = append(s.handles, h)
	return hal.TaskHandle(h), true
}

func (s *Scheduler) DeleteTask(h hal.TaskHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, h)
}

// NewQueue returns a handle for a byte queue pre-filled with items.
func (s *Scheduler) NewQueue(items ...byte) hal.QueueHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queues == nil {
		s.queues = make(map[hal.QueueHandle][]byte)
	}
	q := hal.QueueHandle(new(byte))
	s.queues[q] = append([]byte(nil), items...)
	return q
}

// Push appends items to q.
func (s *Scheduler) Push(q hal.QueueHandle, items ...byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[q] = append(s.queues[q], items...)
}

func (s *Scheduler) QueueReceive(q hal.QueueHandle, item unsafe.Pointer, ticks uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.queues[q]
	if len(pending) == 0 {
		return false
	}
	*(*byte)(item) = pending[0]
	s.queues[q] = pending[1:]
	return true
}

func (s *Scheduler) Delay(ms uint32) {
	if s.OnDelay != nil {
		s.OnDelay(ms)
	}
}

// Creates returns the recorded CreateTask calls.
func (s *Scheduler) Creates() []CreateCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CreateCall(nil), s.creates...)
}

// Deletes returns the recorded DeleteTask handles.
func (s *Scheduler) Deletes() []hal.TaskHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]hal.TaskHandle(nil), s.deletes...)
}
