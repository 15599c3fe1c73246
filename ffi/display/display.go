// Package display bridges the UI library's action callback to a Go closure.
//
// The UI library pulls actions by calling a C function with no arguments, so
// the closure lives in a single process-wide slot. Install writes the slot;
// Poll reads it. Install must not run while a Poll is in flight; in the
// firmware it runs once, before the UI task starts.
//
// There is no uninstall. Once installed, the callback stays live for the
// remaining life of the process.
package display

import (
	"sync/atomic"

	"lumen/ffi/box"
	"lumen/ffi/fault"
	"lumen/hal"
)

// Action is a UI navigation tag. The values are part of the C contract with
// the UI library.
type Action int32

const (
	ActionNone   Action = 0
	ActionGoPrev Action = 1
	ActionGoNext Action = 2
	ActionEnter  Action = 3
	ActionExit   Action = 4
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionGoPrev:
		return "go-prev"
	case ActionGoNext:
		return "go-next"
	case ActionEnter:
		return "enter"
	case ActionExit:
		return "exit"
	default:
		return "unknown"
	}
}

var (
	device atomic.Value // hal.Display

	// slot holds the box of the installed func() Action, or zero.
	slot atomic.Uintptr
)

// SetDevice installs the display driver.
func SetDevice(d hal.Display) {
	device.Store(&d)
}

func dev() hal.Display {
	p, _ := device.Load().(*hal.Display)
	if p == nil || *p == nil {
		fault.Panic("display: no device installed")
	}
	return *p
}

// Install replaces the action callback and (re)initializes the display with
// Poll as its action source. The previous callback is released before the
// new one becomes visible to Poll.
func Install(fn func() Action) {
	if old := slot.Swap(0); old != 0 {
		box.Drop(box.Handle(old))
	}
	slot.Store(uintptr(box.New(fn)))
	dev().Init(pollTag)
}

// Poll runs the installed callback and returns its action, or ActionNone
// when nothing is installed.
func Poll() Action {
	defer fault.Recover()

	h := box.Handle(slot.Load())
	if h == 0 {
		return ActionNone
	}
	return box.Borrow[func() Action](h)()
}

func pollTag() int32 { return int32(Poll()) }

// FrameRender renders one UI frame.
func FrameRender() {
	dev().FrameRender()
}
