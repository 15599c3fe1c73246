package app

import (
	"context"
	"os"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"lumen/ffi/display"
	"lumen/ffi/encoder"
	"lumen/ffi/task"
	"lumen/hal/haltest"
	"lumen/internal/config"
)

var board = haltest.NewBoard()

func TestMain(m *testing.M) {
	Install(board)
	os.Exit(m.Run())
}

func TestActionFor(t *testing.T) {
	cases := []struct {
		e    encoder.Event
		ok   bool
		want display.Action
	}{
		{encoder.EventCW, true, display.ActionGoNext},
		{encoder.EventCCW, true, display.ActionGoPrev},
		{encoder.EventClick, true, display.ActionEnter},
		{encoder.EventPress, true, display.ActionExit},
		{encoder.EventCW, false, display.ActionNone},
		{encoder.Event(9), true, display.ActionNone},
	}
	for _, tc := range cases {
		if got := ActionFor(tc.e, tc.ok); got != tc.want {
			t.Fatalf("ActionFor(%v, %v) = %v, want %v", tc.e, tc.ok, got, tc.want)
		}
	}
}

func TestBootInitializesInOrder(t *testing.T) {
	before := len(board.Rec.Calls())
	ui := Boot(board, config.Default())
	if !ui.Valid() {
		t.Fatal("Boot() returned an invalid UI task")
	}

	got := board.Rec.Calls()[before:]
	want := []string{"usb.Init", "buzzer.Init", "current.Init", "efuse.Init", "motion.Init", "encoder.Init", "display.Init"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("peripheral calls = %v, want %v", got, want)
	}
	if us := board.Enc.LongPressUs(); us != 1_000_000 {
		t.Fatalf("encoder long press = %dus, want 1000000", us)
	}

	creates := board.Sched.Creates()
	c := creates[len(creates)-1]
	if c.Name != "ui_task" || c.Priority != 9 || c.StackDepth != 8192 || c.Core != task.NoAffinity {
		t.Fatalf("CreateTask = %+v, want ui_task/9/8192/no affinity", c)
	}

	lines := board.Sink.Lines()
	found := false
	for _, l := range lines {
		if l.Level == 1 && strings.HasPrefix(l.Text, "lumen ") && strings.HasSuffix(l.Text, " booting") {
			found = true
		}
	}
	if !found {
		t.Fatalf("boot line missing from %v", lines)
	}
}

func TestBootRoutesEncoderToDisplay(t *testing.T) {
	Boot(board, config.Default())

	board.Sched.Push(board.Enc.Queue(), 0, 1, 2, 3)
	want := []display.Action{display.ActionGoNext, display.ActionGoPrev, display.ActionEnter, display.ActionExit, display.ActionNone}
	for i, w := range want {
		if got := display.Action(board.Disp.Poll()); got != w {
			t.Fatalf("poll %d = %v, want %v", i, got, w)
		}
	}
}

func TestUITaskRendersEachFrame(t *testing.T) {
	cfg := config.Default()
	Boot(board, cfg)
	creates := board.Sched.Creates()
	param := creates[len(creates)-1].Param

	var delays []uint32
	board.Sched.OnDelay = func(ms uint32) {
		delays = append(delays, ms)
		if len(delays) == 3 {
			runtime.Goexit()
		}
	}
	defer func() { board.Sched.OnDelay = nil }()

	rendersBefore := board.Disp.Renders()
	done := make(chan struct{})
	go func() {
		defer close(done)
		task.Trampoline(param)
	}()
	<-done

	if n := board.Disp.Renders() - rendersBefore; n != 3 {
		t.Fatalf("frames rendered = %d, want 3", n)
	}
	if !reflect.DeepEqual(delays, []uint32{10, 10, 10}) {
		t.Fatalf("delays = %v, want [10 10 10]", delays)
	}
}

func TestBootLogsSpawnFailure(t *testing.T) {
	board.Sched.Fail = true
	defer func() { board.Sched.Fail = false }()

	ui := Boot(board, config.Default())
	if ui.Valid() {
		t.Fatal("Boot() returned a valid task after spawn failure")
	}
	lines := board.Sink.Lines()
	last := lines[len(lines)-1]
	if last.Level != 2 || last.Text != "failed to spawn ui_task" {
		t.Fatalf("last log line = %+v, want error about ui_task", last)
	}
}

func TestLoopStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Loop(ctx, board, config.Default()); err != context.Canceled {
		t.Fatalf("Loop() = %v, want context.Canceled", err)
	}
}

func TestLoopDebugDump(t *testing.T) {
	cfg := config.Default()
	cfg.DebugDump = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var delays []uint32
	board.Sched.OnDelay = func(ms uint32) {
		delays = append(delays, ms)
		cancel()
	}
	defer func() { board.Sched.OnDelay = nil }()

	before := len(board.Rec.Calls())
	if err := Loop(ctx, board, cfg); err != context.Canceled {
		t.Fatalf("Loop() = %v, want context.Canceled", err)
	}
	if !reflect.DeepEqual(delays, []uint32{100}) {
		t.Fatalf("delays = %v, want [100]", delays)
	}
	got := board.Rec.Calls()[before:]
	want := []string{"motion.ReadDebug", "current.ReadDebug"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
}
