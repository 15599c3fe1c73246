package display

import (
	"os"
	"testing"

	"lumen/ffi/alloc"
	"lumen/ffi/box"
	"lumen/ffi/critical"
	"lumen/ffi/fault"
	"lumen/hal"
	"lumen/hal/haltest"
)

type fakeDisplay struct {
	inits  int
	frames int
	poll   hal.PollFunc
}

func (d *fakeDisplay) Init(poll hal.PollFunc) {
	d.inits++
	d.poll = poll
}

func (d *fakeDisplay) FrameRender() { d.frames++ }

func TestMain(m *testing.M) {
	critical.SetPort(&haltest.Port{})
	alloc.SetHeap(&haltest.Heap{})
	os.Exit(m.Run())
}

func TestPollWithEmptySlot(t *testing.T) {
	if got := Poll(); got != ActionNone {
		t.Fatalf("Poll() = %v, want %v", got, ActionNone)
	}
}

func TestInstallRegistersPoll(t *testing.T) {
	d := &fakeDisplay{}
	SetDevice(d)

	Install(func() Action { return ActionEnter })
	if d.inits != 1 {
		t.Fatalf("Init calls = %d, want 1", d.inits)
	}
	if got := Action(d.poll()); got != ActionEnter {
		t.Fatalf("registered poll() = %v, want %v", got, ActionEnter)
	}
	if got := box.Live(); got != 1 {
		t.Fatalf("box.Live() = %d, want 1", got)
	}
}

func TestReinstallReplacesCallback(t *testing.T) {
	SetDevice(&fakeDisplay{})

	aCalls, bCalls := 0, 0
	Install(func() Action { aCalls++; return ActionGoPrev })
	Install(func() Action { bCalls++; return ActionGoNext })

	if got := Poll(); got != ActionGoNext {
		t.Fatalf("Poll() = %v, want %v", got, ActionGoNext)
	}
	if aCalls != 0 || bCalls != 1 {
		t.Fatalf("calls a=%d b=%d, want a=0 b=1", aCalls, bCalls)
	}
	if got := box.Live(); got != 1 {
		t.Fatalf("box.Live() = %d, want exactly one live callback", got)
	}
}

func TestCallbackStateIsMutable(t *testing.T) {
	SetDevice(&fakeDisplay{})

	pending := []Action{ActionGoNext, ActionEnter}
	Install(func() Action {
		if len(pending) == 0 {
			return ActionNone
		}
		a := pending[0]
		pending = pending[1:]
		return a
	})

	want := []Action{ActionGoNext, ActionEnter, ActionNone, ActionNone}
	for i, w := range want {
		if got := Poll(); got != w {
			t.Fatalf("Poll() #%d = %v, want %v", i, got, w)
		}
	}
}

func TestFrameRenderForwards(t *testing.T) {
	d := &fakeDisplay{}
	SetDevice(d)

	FrameRender()
	FrameRender()
	if d.frames != 2 {
		t.Fatalf("FrameRender calls = %d, want 2", d.frames)
	}
}

func TestPollPanicIsFatal(t *testing.T) {
	SetDevice(&fakeDisplay{})
	fault.SetAborter(&haltest.Aborter{})

	Install(func() Action { panic("callback exploded") })
	if _, ok := haltest.CatchAbort(func() { Poll() }); !ok {
		t.Fatal("panicking callback did not abort")
	}
}

func TestActionWireValues(t *testing.T) {
	tests := []struct {
		a    Action
		tag  int32
		name string
	}{
		{ActionNone, 0, "none"},
		{ActionGoPrev, 1, "go-prev"},
		{ActionGoNext, 2, "go-next"},
		{ActionEnter, 3, "enter"},
		{ActionExit, 4, "exit"},
	}
	for _, tt := range tests {
		if int32(tt.a) != tt.tag {
			t.Fatalf("%s tag = %d, want %d", tt.name, int32(tt.a), tt.tag)
		}
		if got := tt.a.String(); got != tt.name {
			t.Fatalf("String() = %q, want %q", got, tt.name)
		}
	}
}
