// Package critical provides the single global critical section and a mutex
// built on it.
//
// Holding the section suspends preemption on the current core, so it is only
// for short, non-blocking work: never wait, sleep or call into foreign code
// that may block while holding it.
package critical

import (
	"sync/atomic"

	"lumen/ffi/fault"
	"lumen/hal"
)

var (
	port      hal.Port
	installed atomic.Bool
)

// SetPort installs the host critical-section implementation. It may be
// called only once per process.
func SetPort(p hal.Port) {
	if p == nil {
		panic("critical: nil port")
	}
	if !installed.CompareAndSwap(false, true) {
		panic("critical: port already installed")
	}
	port = p
}

// Guard is an acquired critical section.
type Guard struct {
	_    [0]func() // not comparable.
	held bool
}

// Acquire enters the critical section.
func Acquire() Guard {
	if !installed.Load() {
		fault.Panic("critical: no port installed")
	}
	port.EnterCritical()
	return Guard{held: true}
}

// Release leaves the critical section. Extra calls are ignored.
func (g *Guard) Release() {
	if !g.held {
		return
	}
	g.held = false
	port.ExitCritical()
}

// With runs fn inside the critical section and leaves it on every exit path.
func With(fn func()) {
	g := Acquire()
	defer g.Release()
	fn()
}

// Mutex guards a value with the global critical section.
type Mutex[T any] struct {
	v T
}

// Lock runs fn with exclusive access to the guarded value.
func (m *Mutex[T]) Lock(fn func(v *T)) {
	With(func() { fn(&m.v) })
}
