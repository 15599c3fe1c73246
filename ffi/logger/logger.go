// Package logger formats log lines into a static buffer and forwards them to
// the host log sink.
//
// The whole format-and-forward sequence runs under the sink's lock, so lines
// from concurrent tasks never interleave.
package logger

import (
	"fmt"
	"sync/atomic"

	"lumen/ffi/textbuf"
	"lumen/hal"
)

// BufferSize is the capacity of the log line buffer, terminator included.
const BufferSize = 1024

// Level is a log severity. The numeric values are part of the sink contract.
type Level int32

const (
	LevelDebug Level = 0
	LevelInfo  Level = 1
	LevelError Level = 2
	LevelWarn  Level = 3
	LevelTrace Level = 4
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelTrace:
		return "trace"
	default:
		return "unknown"
	}
}

var (
	sink atomic.Value // hal.LogSink

	// Guarded by the sink lock.
	level Level = LevelInfo
	store [BufferSize]byte
	line  = textbuf.New(store[:])
)

// SetSink installs the host log sink.
func SetSink(s hal.LogSink) {
	sink.Store(&s)
}

// Log formats a line at lvl as by fmt.Printf and forwards it to the sink.
// Lines longer than the buffer are truncated. Without a sink the line is dropped.
func Log(lvl Level, format string, args ...any) {
	p, _ := sink.Load().(*hal.LogSink)
	if p == nil || *p == nil {
		return
	}
	s := *p

	s.AcquireLogLock()
	defer s.ReleaseLogLock()

	level = lvl
	line.Reset()
	fmt.Fprintf(&line, format, args...)
	s.Log(int32(level), line.CStr())
}

func Trace(format string, args ...any) { Log(LevelTrace, format, args...) }
func Debug(format string, args ...any) { Log(LevelDebug, format, args...) }
func Info(format string, args ...any)  { Log(LevelInfo, format, args...) }
func Warn(format string, args ...any)  { Log(LevelWarn, format, args...) }
func Error(format string, args ...any) { Log(LevelError, format, args...) }

// Print logs its operands at info level, formatted as by fmt.Sprint.
func Print(args ...any) {
	logFunc(false, args...)
}

// Println logs its operands at info level with a trailing newline, formatted
// as by fmt.Sprintln.
func Println(args ...any) {
	logFunc(true, args...)
}

func logFunc(newline bool, args ...any) {
	p, _ := sink.Load().(*hal.LogSink)
	if p == nil || *p == nil {
		return
	}
	s := *p

	s.AcquireLogLock()
	defer s.ReleaseLogLock()

	level = LevelInfo
	line.Reset()
	if newline {
		fmt.Fprintln(&line, args...)
	} else {
		fmt.Fprint(&line, args...)
	}
	s.Log(int32(level), line.CStr())
}
