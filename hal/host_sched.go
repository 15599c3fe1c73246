//go:build !idf

package hal

import (
	"log/slog"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"github.com/google/uuid"
)

const (
	// hostMaxPriorities mirrors configMAX_PRIORITIES of the firmware.
	hostMaxPriorities = 25
	// hostMinStackDepth mirrors configMINIMAL_STACK_SIZE.
	hostMinStackDepth = 768
	// hostCores is the number of simulated cores.
	hostCores = 2

	hostNoAffinity = 0x7FFFFFFF
)

type hostTask struct {
	id         uuid.UUID
	name       string
	stackDepth uint32
	priority   uint32
	core       int32

	done chan struct{}
}

// TaskInfo describes a live simulated task.
type TaskInfo struct {
	ID         uuid.UUID
	Name       string
	StackDepth uint32
	Priority   uint32
	Core       int32
}

// hostScheduler runs every task on its own goroutine. Priorities and core
// affinity are validated and recorded but not enforced.
type hostScheduler struct {
	entry    func(param uintptr)
	maxTasks int
	log      *slog.Logger

	mu    sync.Mutex
	tasks map[*hostTask]struct{}
}

func newHostScheduler(entry func(uintptr), maxTasks int, log *slog.Logger) *hostScheduler {
	return &hostScheduler{
		entry:    entry,
		maxTasks: maxTasks,
		log:      log,
		tasks:    make(map[*hostTask]struct{}),
	}
}

func (s *hostScheduler) CreateTask(name string, stackDepth uint32, param uintptr, priority uint32, core int32) (TaskHandle, bool) {
	if s.entry == nil {
		s.log.Error("task create failed: no task entry", "name", name)
		return nil, false
	}
	if priority >= hostMaxPriorities {
		s.log.Error("task create failed: priority out of range", "name", name, "priority", priority)
		return nil, false
	}
	if stackDepth < hostMinStackDepth {
		s.log.Error("task create failed: stack too small", "name", name, "stack", stackDepth)
		return nil, false
	}
	if core != hostNoAffinity && (core < 0 || core >= hostCores) {
		s.log.Error("task create failed: no such core", "name", name, "core", core)
		return nil, false
	}

	t := &hostTask{
		id:         uuid.New(),
		name:       name,
		stackDepth: stackDepth,
		priority:   priority,
		core:       core,
		done:       make(chan struct{}),
	}

	s.mu.Lock()
	if len(s.tasks) >= s.maxTasks {
		s.mu.Unlock()
		s.log.Error("task create failed: out of task slots", "name", name, "max", s.maxTasks)
		return nil, false
	}
	s.tasks[t] = struct{}{}
	s.mu.Unlock()

	s.log.Debug("task created", "name", name, "id", t.id, "priority", priority, "stack", stackDepth)

	go func() {
		defer close(t.done)
		defer s.forget(t)
		s.entry(param)
	}()
	return TaskHandle(unsafe.Pointer(t)), true
}

// DeleteTask with a nil handle ends the calling goroutine. Deleting another
// task only detaches it: goroutines cannot be stopped from outside.
func (s *hostScheduler) DeleteTask(h TaskHandle) {
	if h == nil {
		runtime.Goexit()
	}
	t := (*hostTask)(unsafe.Pointer(h))
	if s.forget(t) {
		s.log.Debug("task detached", "name", t.name, "id", t.id)
	}
}

func (s *hostScheduler) forget(t *hostTask) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t]; !ok {
		return false
	}
	delete(s.tasks, t)
	return true
}

func (s *hostScheduler) QueueReceive(q QueueHandle, item unsafe.Pointer, ticks uint32) bool {
	if q == nil {
		return false
	}
	hq := (*hostQueue)(unsafe.Pointer(q))
	return hq.receive(item, ticks)
}

func (s *hostScheduler) Delay(ms uint32) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

// Tasks returns a snapshot of the live tasks.
func (s *hostScheduler) Tasks() []TaskInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TaskInfo, 0, len(s.tasks))
	for t := range s.tasks {
		out = append(out, TaskInfo{
			ID:         t.id,
			Name:       t.name,
			StackDepth: t.stackDepth,
			Priority:   t.priority,
			Core:       t.core,
		})
	}
	return out
}

// Tasks returns a snapshot of the live simulated tasks.
func (h *Host) Tasks() []TaskInfo { return h.sched.Tasks() }

// hostQueue is a fixed-length queue of single-byte items.
type hostQueue struct {
	ch chan byte
}

func newHostQueue(length int) *hostQueue {
	return &hostQueue{ch: make(chan byte, length)}
}

func (q *hostQueue) handle() QueueHandle { return QueueHandle(unsafe.Pointer(q)) }

func (q *hostQueue) send(b byte) bool {
	select {
	case q.ch <- b:
		return true
	default:
		return false
	}
}

func (q *hostQueue) receive(item unsafe.Pointer, ticks uint32) bool {
	var b byte
	if ticks == 0 {
		select {
		case b = <-q.ch:
		default:
			return false
		}
	} else {
		// Ticks are taken as milliseconds.
		t := time.NewTimer(time.Duration(ticks) * time.Millisecond)
		defer t.Stop()
		select {
		case b = <-q.ch:
		case <-t.C:
			return false
		}
	}
	*(*byte)(item) = b
	return true
}
