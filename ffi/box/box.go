// Package box moves Go values across the C boundary as opaque handles.
//
// New stores a value in a process-wide registry, allocates a small cell on
// the host heap for it, and returns a Handle. Handles come from a counter and
// are never reused, so foreign code can hold one after the cell behind it is
// gone without aliasing a newer box. Reclaim consumes a handle exactly once;
// a second Reclaim of the same handle is a fatal fault.
package box

import (
	"unsafe"

	"lumen/ffi/alloc"
	"lumen/ffi/critical"
	"lumen/ffi/fault"
)

// Handle identifies a live box. The zero Handle is never issued.
type Handle uintptr

type entry struct {
	value any
	cell  unsafe.Pointer
}

type registry struct {
	next    Handle
	entries map[Handle]entry
}

var reg critical.Mutex[registry]

type cell struct {
	h Handle
}

// New boxes v and returns the handle to hand to foreign code.
func New[T any](v T) Handle {
	p := alloc.Allocate(unsafe.Sizeof(cell{}))

	var h Handle
	reg.Lock(func(r *registry) {
		if r.entries == nil {
			r.entries = make(map[Handle]entry)
		}
		r.next++
		h = r.next
		r.entries[h] = entry{value: v, cell: p}
	})
	(*cell)(p).h = h
	return h
}

// Reclaim takes ownership of the value behind h and frees its cell.
func Reclaim[T any](h Handle) T {
	v := take(h)
	t, ok := v.(T)
	if !ok {
		fault.Panic("box: reclaimed with the wrong type")
	}
	return t
}

// Drop reclaims h and discards the value.
func Drop(h Handle) {
	_ = take(h)
}

// Borrow returns the value behind h without taking ownership.
func Borrow[T any](h Handle) T {
	if h == 0 {
		fault.Panic("box: borrow of nil box")
	}

	var (
		e     entry
		found bool
	)
	reg.Lock(func(r *registry) {
		e, found = r.entries[h]
	})
	if !found {
		fault.Panic("box: borrow of reclaimed box")
	}
	t, ok := e.value.(T)
	if !ok {
		fault.Panic("box: borrowed with the wrong type")
	}
	return t
}

// Live returns the number of boxes not yet reclaimed.
func Live() int {
	var n int
	reg.Lock(func(r *registry) {
		n = len(r.entries)
	})
	return n
}

func take(h Handle) any {
	if h == 0 {
		fault.Panic("box: reclaim of nil box")
	}

	var (
		e     entry
		found bool
	)
	reg.Lock(func(r *registry) {
		e, found = r.entries[h]
		delete(r.entries, h)
	})
	if !found {
		fault.Panic("box: reclaimed twice")
	}

	c := (*cell)(e.cell)
	if c.h != h {
		fault.Panic("box: cell overwritten")
	}
	c.h = 0
	alloc.Deallocate(e.cell)
	return e.value
}
