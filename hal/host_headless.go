//go:build !idf

package hal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ScriptEvent posts one encoder event At after the run starts.
type ScriptEvent struct {
	At    time.Duration
	Event uint8
}

// ParseEncoderEvent maps "cw", "ccw", "click" or "press" to its raw byte.
func ParseEncoderEvent(s string) (uint8, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cw":
		return encoderCW, nil
	case "ccw":
		return encoderCCW, nil
	case "click":
		return encoderClick, nil
	case "press":
		return encoderPress, nil
	default:
		return 0, fmt.Errorf("hal: unknown encoder event %q", s)
	}
}

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	// Duration stops the run after this long. Zero runs until ctx ends.
	Duration time.Duration
	Script   []ScriptEvent
}

// RunHeadless runs the board without a window, feeding scripted encoder
// events. Reaching Duration is a clean stop.
func RunHeadless(ctx context.Context, h *Host, cfg HeadlessConfig, run func(ctx context.Context) error) error {
	if cfg.Duration < 0 {
		return fmt.Errorf("hal: invalid headless duration: %v", cfg.Duration)
	}

	runCtx := ctx
	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}

	if len(cfg.Script) > 0 {
		go playScript(runCtx, h, cfg.Script)
	}

	err := run(runCtx)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return nil
	}
	return err
}

func playScript(ctx context.Context, h *Host, script []ScriptEvent) {
	start := time.Now()
	for _, ev := range script {
		wait := time.Until(start.Add(ev.At))
		if wait < 0 {
			wait = 0
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		for !h.encoder.ready() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
		h.encoder.post(ev.Event)
	}
}
