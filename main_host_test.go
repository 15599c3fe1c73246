//go:build !idf

package main

import (
	"context"
	"io"
	"testing"
	"time"

	"lumen/app"
	"lumen/ffi/task"
	"lumen/hal"
	"lumen/internal/config"
)

func TestBuildScript(t *testing.T) {
	hc := config.Default().Host
	hc.Script = []string{"cw", "press"}
	hc.ScriptInterval = config.Duration(50 * time.Millisecond)

	got, err := buildScript(hc)
	if err != nil {
		t.Fatalf("buildScript() = %v", err)
	}
	want := []hal.ScriptEvent{{At: 50 * time.Millisecond, Event: 0}, {At: 100 * time.Millisecond, Event: 3}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("buildScript() = %v, want %v", got, want)
	}

	hc.Script = []string{"cw", "twist"}
	if _, err := buildScript(hc); err == nil {
		t.Fatal("buildScript() accepted an unknown event")
	}
}

func TestHeadlessBoardNavigatesMenu(t *testing.T) {
	cfg := config.Default()
	cfg.Host.Script = []string{"cw", "cw", "click"}
	cfg.Host.ScriptInterval = config.Duration(40 * time.Millisecond)

	h := hal.NewHost(hal.HostConfig{TaskEntry: task.Trampoline, LogOutput: io.Discard})
	script, err := buildScript(cfg.Host)
	if err != nil {
		t.Fatalf("buildScript() = %v", err)
	}

	err = hal.RunHeadless(context.Background(), h, hal.HeadlessConfig{Duration: 600 * time.Millisecond, Script: script},
		func(ctx context.Context) error { return app.Run(ctx, h, cfg) })
	if err != nil {
		t.Fatalf("RunHeadless() = %v", err)
	}

	got := h.Menu()
	if got.Index != 2 || got.Item != "Motion" || !got.Entered {
		t.Fatalf("Menu() = %+v, want Motion entered", got)
	}
	if h.Halted() {
		t.Fatal("board aborted")
	}
	if n := len(h.Tasks()); n != 0 {
		t.Fatalf("live tasks after run = %d, want 0", n)
	}
}
