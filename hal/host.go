//go:build !idf

package hal

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// LCD geometry of the board.
const (
	LCDWidth  = 240
	LCDHeight = 240
)

// HostConfig configures the host simulator.
type HostConfig struct {
	// TaskEntry is the bridge's task entry point. Required.
	TaskEntry func(param uintptr)

	// LogLevel is the minimum level written by the log sink.
	LogLevel slog.Level
	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer

	// Console mirrors log lines to an on-screen terminal (window mode).
	Console bool

	// MaxTasks bounds the number of live simulated tasks. Defaults to 16.
	MaxTasks int

	// Exit ends the process after an abort. Defaults to os.Exit.
	Exit func(code int)
	// AbortHold keeps the panic screen up before exiting.
	AbortHold time.Duration
}

// Host is the simulated board.
type Host struct {
	log    *slog.Logger
	halted atomic.Bool

	sched   *hostScheduler
	heap    *hostHeap
	port    *hostPort
	sink    *hostLogSink
	aborter *hostAborter

	lcd     *hostFramebuffer
	console *hostConsole

	current *hostCurrentSensor
	usb     *hostUSB
	efuse   *hostEFuse
	buzzer  *hostBuzzer
	encoder *hostEncoder
	display *hostDisplay
	motion  *hostMotion
}

// NewHost returns a host simulator.
func NewHost(cfg HostConfig) *Host {
	if cfg.LogOutput == nil {
		cfg.LogOutput = os.Stderr
	}
	if cfg.MaxTasks <= 0 {
		cfg.MaxTasks = 16
	}
	if cfg.Exit == nil {
		cfg.Exit = os.Exit
	}

	log := newHostLogger(cfg.LogOutput, cfg.LogLevel)
	lcd := newHostFramebuffer(LCDWidth, LCDHeight)

	h := &Host{
		log:   log,
		sched: newHostScheduler(cfg.TaskEntry, cfg.MaxTasks, log.With("component", "sched")),
		heap:  newHostHeap(),
		port:  &hostPort{},
		lcd:   lcd,
	}
	if cfg.Console {
		h.console = newHostConsole(LCDWidth, consoleHeight)
	}
	h.sink = &hostLogSink{log: log.With("component", "app"), console: h.console}
	h.aborter = &hostAborter{log: log.With("component", "abort"), lcd: lcd, halted: &h.halted, exit: cfg.Exit, hold: cfg.AbortHold}

	h.usb = &hostUSB{log: log.With("component", "usb")}
	h.current = &hostCurrentSensor{log: log.With("component", "ina226"), usb: h.usb}
	h.efuse = &hostEFuse{log: log.With("component", "efuse")}
	h.buzzer = &hostBuzzer{log: log.With("component", "buzzer")}
	h.encoder = newHostEncoder(log.With("component", "encoder"))
	h.display = newHostDisplay(lcd, &h.halted, log.With("component", "lcd"))
	h.motion = &hostMotion{log: log.With("component", "imu")}
	return h
}

var _ HAL = (*Host)(nil)

func (h *Host) Scheduler() Scheduler         { return h.sched }
func (h *Host) Heap() Heap                   { return h.heap }
func (h *Host) Port() Port                   { return h.port }
func (h *Host) LogSink() LogSink             { return h.sink }
func (h *Host) Aborter() Aborter             { return h.aborter }
func (h *Host) CurrentSensor() CurrentSensor { return h.current }
func (h *Host) USB() USB                     { return h.usb }
func (h *Host) EFuse() EFuse                 { return h.efuse }
func (h *Host) Buzzer() Buzzer               { return h.buzzer }
func (h *Host) Encoder() Encoder             { return h.encoder }
func (h *Host) Display() Display             { return h.display }
func (h *Host) Motion() Motion               { return h.motion }

// InjectEncoder posts a raw encoder event byte, as the encoder ISR would.
// It reports false if the encoder is not initialized or its queue is full.
func (h *Host) InjectEncoder(raw uint8) bool {
	return h.encoder.post(raw)
}

// Halted reports whether the board has aborted.
func (h *Host) Halted() bool { return h.halted.Load() }

// Logger returns the simulator's own structured logger.
func (h *Host) Logger() *slog.Logger { return h.log }

// hostPort stands in for interrupt masking with a process-wide mutex.
// Unlike the hardware section it does not nest.
type hostPort struct {
	mu sync.Mutex
}

func (p *hostPort) EnterCritical() { p.mu.Lock() }
func (p *hostPort) ExitCritical()  { p.mu.Unlock() }
