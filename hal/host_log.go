//go:build !idf

package hal

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"unsafe"

	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

// LevelTrace sits below slog's debug level.
const LevelTrace = slog.Level(-8)

func newHostLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}))
}

// slogLevel maps a bridge log level (debug=0 info=1 error=2 warn=3 trace=4).
func slogLevel(level int32) slog.Level {
	switch level {
	case 0:
		return slog.LevelDebug
	case 1:
		return slog.LevelInfo
	case 2:
		return slog.LevelError
	case 3:
		return slog.LevelWarn
	case 4:
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

type hostLogSink struct {
	lock    sync.Mutex
	log     *slog.Logger
	console *hostConsole
}

func (s *hostLogSink) AcquireLogLock() { s.lock.Lock() }
func (s *hostLogSink) ReleaseLogLock() { s.lock.Unlock() }

func (s *hostLogSink) Log(level int32, text *byte) {
	msg := cString(text)
	lvl := slogLevel(level)
	s.log.Log(context.Background(), lvl, msg)
	if s.console != nil {
		s.console.println(lvl, msg)
	}
}

// cString copies a NUL-terminated string.
func cString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}

const (
	consoleHeight     = 160
	consoleFontHeight = 10
	consoleFontOffset = 6
)

// hostConsole mirrors log lines onto a terminal drawn below the LCD.
type hostConsole struct {
	mu   sync.Mutex
	fb   *hostFramebuffer
	disp *fbDisplay
	term *tinyterm.Terminal
}

func newHostConsole(width, height int) *hostConsole {
	fb := newHostFramebuffer(width, height)
	disp := newFBDisplay(fb)
	term := tinyterm.NewTerminal(disp)
	term.Configure(&tinyterm.Config{
		Font:       &proggy.TinySZ8pt7b,
		FontHeight: consoleFontHeight,
		FontOffset: consoleFontOffset,
	})
	return &hostConsole{fb: fb, disp: disp, term: term}
}

var consoleLevelSGR = map[slog.Level]string{
	LevelTrace:      "\x1b[37m",
	slog.LevelDebug: "\x1b[36m",
	slog.LevelInfo:  "\x1b[32m",
	slog.LevelWarn:  "\x1b[33m",
	slog.LevelError: "\x1b[31m",
}

func (c *hostConsole) println(level slog.Level, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// The terminal draws as it writes; presenting publishes the frame.
	io.WriteString(c.term, "\r\n"+consoleLevelSGR[level]+msg+"\x1b[0m")
	c.disp.Display()
}

func (c *hostConsole) size() (int, int) { return c.fb.width, c.fb.height }

func (c *hostConsole) snapshotRGB565(dst []byte) { c.disp.snapshotRGB565(dst) }
