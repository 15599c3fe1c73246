//go:build !idf

package hal

import (
	"image/color"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"lumen/internal/buildinfo"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// AbortExitCode is the process exit status after an abort (SIGABRT).
const AbortExitCode = 134

type hostAborter struct {
	log    *slog.Logger
	lcd    *hostFramebuffer
	halted *atomic.Bool
	exit   func(int)
	hold   time.Duration
}

// Abort logs details, draws the panic screen and ends the process.
func (a *hostAborter) Abort(details *byte) {
	msg := cString(details)
	a.halted.Store(true)
	a.log.Error("abort", "details", msg, "build", buildinfo.Long())

	drawPanicScreen(newFBDisplay(a.lcd), msg)
	_ = a.lcd.Present()

	if a.hold > 0 {
		time.Sleep(a.hold)
	}
	a.exit(AbortExitCode)
	select {}
}

const (
	panicFontHeight = 10
	panicFontOffset = 7
)

func drawPanicScreen(d *fbDisplay, msg string) {
	w, h := d.Size()
	_ = d.FillRectangle(0, 0, w, h, color.RGBA{R: 0x80, A: 0xFF})

	font := &proggy.TinySZ8pt7b
	_, outboxWidth := tinyfont.LineWidth(font, "0")
	fontWidth := int16(outboxWidth)
	if fontWidth <= 0 {
		return
	}
	cols := w / fontWidth

	lines := []string{"Lumen abort", "build: " + buildinfo.Long(), ""}
	lines = append(lines, strings.Split(msg, "\n")...)

	fg := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	y := int16(4)
	for _, line := range lines {
		if line == "" {
			y += panicFontHeight
			continue
		}
		for len(line) > 0 {
			if y+panicFontHeight > h {
				return
			}
			chunk, rest := takeRunes(line, cols)
			drawTextLine(d, font, fontWidth, 4, y+panicFontOffset, chunk, fg)
			y += panicFontHeight
			line = strings.TrimLeft(rest, " ")
		}
	}
}

// drawTextLine draws s on a fixed character grid starting at (x0, baseline).
func drawTextLine(d *fbDisplay, font tinyfont.Fonter, fontWidth, x0, baseline int16, s string, fg color.RGBA) {
	x := x0
	for _, r := range s {
		tinyfont.DrawChar(d, font, x, baseline, r, fg)
		x += fontWidth
	}
}

func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if int64(len(s)) <= int64(n) {
		return s, ""
	}
	var i int
	var count int16
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		if size <= 0 {
			break
		}
		i += size
		count++
	}
	if i >= len(s) {
		return s, ""
	}
	return s[:i], s[i:]
}
