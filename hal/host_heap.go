//go:build !idf

package hal

import (
	"fmt"
	"sync"
	"unsafe"
)

const (
	hostHeapSize  = 1 << 20
	hostHeapAlign = 16
)

// hostHeap is a size-class allocator over one arena that the Go collector
// does not scan. Values stored in it must not be the only reference to Go
// memory.
type hostHeap struct {
	mu    sync.Mutex
	arena []byte
	err   error
	next  uintptr
	free  map[uintptr][]uintptr
	live  map[uintptr]uintptr
}

func newHostHeap() *hostHeap {
	return &hostHeap{
		free: make(map[uintptr][]uintptr),
		live: make(map[uintptr]uintptr),
	}
}

func (h *hostHeap) Malloc(size uintptr) unsafe.Pointer {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.arena == nil && h.err == nil {
		h.arena, h.err = mapArena(hostHeapSize)
	}
	if h.err != nil || size > uintptr(len(h.arena)) {
		return nil
	}

	class := roundUp(size)
	var off uintptr
	if list := h.free[class]; len(list) > 0 {
		off = list[len(list)-1]
		h.free[class] = list[:len(list)-1]
	} else {
		if h.next+class > uintptr(len(h.arena)) {
			return nil
		}
		off = h.next
		h.next += class
	}
	h.live[off] = class
	return unsafe.Pointer(&h.arena[off])
}

func (h *hostHeap) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	off, ok := h.offset(p)
	if !ok {
		panic(fmt.Sprintf("hal: free of foreign pointer %p", p))
	}
	class, ok := h.live[off]
	if !ok {
		panic(fmt.Sprintf("hal: double free of %p", p))
	}
	delete(h.live, off)
	clear(h.arena[off : off+class])
	h.free[class] = append(h.free[class], off)
}

func (h *hostHeap) offset(p unsafe.Pointer) (uintptr, bool) {
	if len(h.arena) == 0 {
		return 0, false
	}
	base := uintptr(unsafe.Pointer(&h.arena[0]))
	addr := uintptr(p)
	if addr < base || addr >= base+uintptr(len(h.arena)) {
		return 0, false
	}
	return addr - base, true
}

// InUse returns the number of live allocations and their rounded size.
func (h *hostHeap) InUse() (n int, bytes uintptr) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.live {
		bytes += c
	}
	return len(h.live), bytes
}

func roundUp(size uintptr) uintptr {
	if size == 0 {
		size = 1
	}
	return (size + hostHeapAlign - 1) &^ (hostHeapAlign - 1)
}
