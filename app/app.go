// Package app is the board's top-level glue: it wires the bridge to a HAL,
// brings the peripherals up, starts the UI task and runs the main loop.
package app

import (
	"context"

	"lumen/ffi/alloc"
	"lumen/ffi/critical"
	"lumen/ffi/display"
	"lumen/ffi/encoder"
	"lumen/ffi/fault"
	"lumen/ffi/logger"
	"lumen/ffi/task"
	"lumen/hal"
	"lumen/internal/buildinfo"
	"lumen/internal/config"
)

// Install hands h's collaborators to the bridge packages. It must run once,
// before any other bridge call.
func Install(h hal.HAL) {
	fault.SetAborter(h.Aborter())
	critical.SetPort(h.Port())
	alloc.SetHeap(h.Heap())
	logger.SetSink(h.LogSink())
	task.SetScheduler(h.Scheduler())
	display.SetDevice(h.Display())
}

// ActionFor maps an encoder event to the UI action it triggers.
func ActionFor(e encoder.Event, ok bool) display.Action {
	if !ok {
		return display.ActionNone
	}
	switch e {
	case encoder.EventCW:
		return display.ActionGoNext
	case encoder.EventCCW:
		return display.ActionGoPrev
	case encoder.EventClick:
		return display.ActionEnter
	case encoder.EventPress:
		return display.ActionExit
	default:
		return display.ActionNone
	}
}

// Boot initializes the peripherals, routes encoder events to the display
// and spawns the UI task. The returned task may be invalid if the scheduler
// refused it.
func Boot(h hal.HAL, cfg config.Config) *task.Task {
	logger.Info("lumen %s booting", buildinfo.Short())

	steps := []struct {
		name string
		init func()
	}{
		{"usb", h.USB().Init},
		{"buzzer", h.Buzzer().Init},
		{"current sensor", h.CurrentSensor().Init},
		{"efuse", h.EFuse().Init},
		{"motion", h.Motion().Init},
	}
	for _, s := range steps {
		logger.Trace("boot: %s", s.name)
		s.init()
	}

	q := encoder.Init(h.Encoder(), h.Scheduler(), cfg.Encoder.LongPress.Std())
	display.Install(func() display.Action {
		return ActionFor(q.Receive())
	})

	frame := cfg.UI.FramePeriod.Std()
	ui := task.SpawnOnCore(cfg.UI.TaskName, cfg.UI.Priority, cfg.UI.StackDepth, cfg.UI.Core, func() {
		for {
			display.FrameRender()
			task.Sleep(frame)
		}
	})
	if !ui.Valid() {
		logger.Error("failed to spawn %s", cfg.UI.TaskName)
	}
	return ui
}

// Loop runs the main loop until ctx is done.
func Loop(ctx context.Context, h hal.HAL, cfg config.Config) error {
	idle := cfg.IdlePeriod.Std()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		task.Sleep(idle)
		if cfg.DebugDump {
			h.Motion().ReadDebug()
			h.CurrentSensor().ReadDebug()
		}
	}
}

// Run installs h, boots the board and runs the main loop until ctx is done.
// The UI task is deleted on return.
func Run(ctx context.Context, h hal.HAL, cfg config.Config) error {
	Install(h)
	ui := Boot(h, cfg)
	defer ui.Close()
	return Loop(ctx, h, cfg)
}
