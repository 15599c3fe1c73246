// Package textbuf implements a fixed-capacity, NUL-terminated text buffer.
//
// A Buffer never grows and never fails: writes that do not fit are truncated
// so the buffer can be used on paths that must not allocate or error, such as
// the log line buffer and the panic message buffer.
package textbuf

import "unsafe"

// Buffer appends text into caller-owned storage.
//
// The write cursor is not stored; it is the index of the first zero byte.
// Not safe for concurrent use.
type Buffer struct {
	b []byte
}

// New returns a Buffer over storage and clears it.
func New(storage []byte) Buffer {
	b := Buffer{b: storage}
	b.Reset()
	return b
}

// Cap returns the storage capacity, including the terminator byte.
func (b *Buffer) Cap() int { return len(b.b) }

// Len returns the number of text bytes before the terminator.
func (b *Buffer) Len() int {
	for i, c := range b.b {
		if c == 0 {
			return i
		}
	}
	return len(b.b)
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	if len(b.b) > 0 {
		b.b[0] = 0
	}
}

// Write appends p, truncating to the remaining capacity.
//
// It always reports len(p) bytes written and a nil error.
func (b *Buffer) Write(p []byte) (int, error) {
	b.append(p)
	return len(p), nil
}

// WriteString appends s, truncating to the remaining capacity.
func (b *Buffer) WriteString(s string) (int, error) {
	b.append(unsafe.Slice(unsafe.StringData(s), len(s)))
	return len(s), nil
}

// WriteByte appends c if there is room for it.
func (b *Buffer) WriteByte(c byte) error {
	one := [1]byte{c}
	b.append(one[:])
	return nil
}

func (b *Buffer) append(p []byte) {
	capacity := len(b.b)
	if capacity == 0 {
		return
	}

	pos := b.Len()
	if pos >= capacity {
		// Unterminated storage counts as full.
		pos = capacity - 1
	}

	n := len(p)
	if room := capacity - 1 - pos; n > room {
		n = room
	}
	copy(b.b[pos:pos+n], p[:n])
	b.b[pos+n] = 0
}

// Bytes returns the text without the terminator. The slice aliases storage.
func (b *Buffer) Bytes() []byte { return b.b[:b.Len()] }

// String returns a copy of the text.
func (b *Buffer) String() string { return string(b.Bytes()) }

// CStr returns a pointer to the NUL-terminated text, or nil for zero-capacity storage.
func (b *Buffer) CStr() *byte {
	if len(b.b) == 0 {
		return nil
	}
	if b.Len() == len(b.b) {
		b.b[len(b.b)-1] = 0
	}
	return &b.b[0]
}

// GoString copies a NUL-terminated C string into a Go string.
func GoString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}
