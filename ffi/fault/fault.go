// Package fault is the process-wide panic reporter.
//
// A fault is terminal: the message is formatted into a static buffer and
// handed to the abort entry point, which never returns. The formatting path
// does not allocate for string, error and fmt.Stringer values.
package fault

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"

	"lumen/ffi/textbuf"
	"lumen/hal"
)

// BufferSize is the capacity of the panic message buffer, terminator included.
const BufferSize = 512

const prefix = "Panic: "

var (
	store [BufferSize]byte
	text  = textbuf.New(store[:])

	active  atomic.Bool
	aborter atomic.Value // hal.Aborter
)

// SetAborter installs the abort entry point and re-arms the reporter.
func SetAborter(a hal.Aborter) {
	aborter.Store(&a)
	active.Store(false)
}

// InPanicMode reports whether the terminal path has started.
func InPanicMode() bool {
	return active.Load()
}

// Panic reports v and aborts the process. It never returns.
func Panic(v any) {
	report(v, 2, false)
}

// Recover turns a Go panic into a fault. It must be deferred directly:
//
//	defer fault.Recover()
func Recover() {
	if v := recover(); v != nil {
		report(v, 2, true)
	}
}

func report(v any, skip int, recovered bool) {
	if !active.CompareAndSwap(false, true) {
		// Someone else owns the buffer and is aborting.
		select {}
	}

	text.Reset()
	text.WriteString(prefix)
	writeValue(v)
	if file, line, ok := site(skip+1, recovered); ok {
		var num [20]byte
		text.WriteString(" at ")
		text.WriteString(file)
		text.WriteByte(':')
		text.Write(strconv.AppendInt(num[:0], int64(line), 10))
	}

	if p, _ := aborter.Load().(*hal.Aborter); p != nil && *p != nil {
		(*p).Abort(text.CStr())
	}
	// No abort path installed, or it returned: fall back to the runtime.
	panic(text.String())
}

// Describer is implemented by fault values that format themselves without
// allocating.
type Describer interface {
	DescribeFault(b *textbuf.Buffer)
}

func writeValue(v any) {
	switch x := v.(type) {
	case Describer:
		x.DescribeFault(&text)
	case string:
		text.WriteString(x)
	case error:
		text.WriteString(x.Error())
	case fmt.Stringer:
		text.WriteString(x.String())
	default:
		fmt.Fprint(&text, x)
	}
}

// site finds the frame that raised the fault. For recovered panics it is the
// first frame after runtime.gopanic; otherwise it is the caller of Panic.
func site(skip int, recovered bool) (file string, line int, ok bool) {
	var pcs [32]uintptr
	n := runtime.Callers(skip+1, pcs[:])
	if n == 0 {
		return "", 0, false
	}

	frames := runtime.CallersFrames(pcs[:n])
	if !recovered {
		f, _ := frames.Next()
		return f.File, f.Line, f.File != ""
	}

	seenPanic := false
	for {
		f, more := frames.Next()
		switch {
		case f.Function == "runtime.gopanic":
			seenPanic = true
		case seenPanic && !strings.HasPrefix(f.Function, "runtime."):
			return f.File, f.Line, true
		}
		if !more {
			return "", 0, false
		}
	}
}
