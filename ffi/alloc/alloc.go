// Package alloc routes the bridge's raw allocations through the host C heap.
//
// Only memory handed to foreign code goes through here; ordinary Go values
// stay on the Go heap. Out-of-memory is fatal.
package alloc

import (
	"strconv"
	"sync/atomic"
	"unsafe"

	"lumen/ffi/fault"
	"lumen/ffi/textbuf"
	"lumen/hal"
)

var (
	heap      hal.Heap
	installed atomic.Bool
)

// SetHeap installs the host allocator. It may be called only once per process.
func SetHeap(h hal.Heap) {
	if h == nil {
		panic("alloc: nil heap")
	}
	if !installed.CompareAndSwap(false, true) {
		panic("alloc: heap already installed")
	}
	heap = h
}

// Installed reports whether a heap has been installed.
func Installed() bool {
	return installed.Load()
}

// Allocate returns size bytes of host memory aligned to the host default.
func Allocate(size uintptr) unsafe.Pointer {
	if !installed.Load() {
		fault.Panic("alloc: no heap installed")
	}
	p := heap.Malloc(size)
	if p == nil {
		fault.Panic(outOfMemory(size))
	}
	return p
}

// Deallocate returns p to the host allocator. A nil p is ignored.
func Deallocate(p unsafe.Pointer) {
	if p == nil {
		return
	}
	heap.Free(p)
}

type outOfMemory uintptr

func (n outOfMemory) DescribeFault(b *textbuf.Buffer) {
	var num [20]byte
	b.WriteString("alloc: out of memory (")
	b.Write(strconv.AppendUint(num[:0], uint64(n), 10))
	b.WriteString(" bytes)")
}
