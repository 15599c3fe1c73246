//go:build !idf

package hal

import (
	"log/slog"
	"sync"
)

type hostUSB struct {
	log *slog.Logger

	mu sync.Mutex
	on bool
}

func (u *hostUSB) Init() { u.log.Info("init") }

func (u *hostUSB) TurnOn() {
	u.mu.Lock()
	u.on = true
	u.mu.Unlock()
	u.log.Info("output on")
}

func (u *hostUSB) TurnOff() {
	u.mu.Lock()
	u.on = false
	u.mu.Unlock()
	u.log.Info("output off")
}

func (u *hostUSB) isOn() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.on
}

// hostCurrentSensor reports a fixed load on the USB rail while it is on.
type hostCurrentSensor struct {
	log *slog.Logger
	usb *hostUSB
}

func (c *hostCurrentSensor) Init() { c.log.Info("init", "shunt_mohm", 10) }

func (c *hostCurrentSensor) ReadDebug() {
	busMV, currentMA := 0, 0
	if c.usb.isOn() {
		busMV, currentMA = 5020, 480
	}
	c.log.Debug("read", "bus_mv", busMV, "current_ma", currentMA, "power_mw", busMV*currentMA/1000)
}

type hostEFuse struct {
	log *slog.Logger
}

func (e *hostEFuse) Init() { e.log.Info("init") }

type hostBuzzer struct {
	log *slog.Logger
}

func (b *hostBuzzer) Init() { b.log.Info("init") }

func (b *hostBuzzer) Tone(freqHz uint32, durationMs uint16) {
	b.log.Info("tone", "hz", freqHz, "ms", durationMs)
}

// hostMotion reports a board lying flat.
type hostMotion struct {
	log *slog.Logger
}

func (m *hostMotion) Init() { m.log.Info("init") }

func (m *hostMotion) ReadDebug() {
	m.log.Debug("read", "ax_mg", 0, "ay_mg", 0, "az_mg", 1000)
}

const hostEncoderQueueLength = 16

// Raw encoder event bytes.
const (
	encoderCW    uint8 = 0
	encoderCCW   uint8 = 1
	encoderClick uint8 = 2
	encoderPress uint8 = 3
)

// hostEncoder queues raw event bytes posted by the keyboard or a script.
type hostEncoder struct {
	log *slog.Logger

	mu          sync.Mutex
	q           *hostQueue
	longPressUs uint32
}

func newHostEncoder(log *slog.Logger) *hostEncoder {
	return &hostEncoder{log: log}
}

func (e *hostEncoder) Init(longPressUs uint32) QueueHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.q == nil {
		e.q = newHostQueue(hostEncoderQueueLength)
	}
	e.longPressUs = longPressUs
	e.log.Info("init", "long_press_us", longPressUs)
	return e.q.handle()
}

func (e *hostEncoder) ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.q != nil
}

func (e *hostEncoder) post(raw uint8) bool {
	e.mu.Lock()
	q := e.q
	e.mu.Unlock()
	if q == nil {
		return false
	}
	if !q.send(raw) {
		e.log.Warn("queue full, event dropped", "event", raw)
		return false
	}
	return true
}
