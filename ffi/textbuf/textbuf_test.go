package textbuf

import (
	"bytes"
	"fmt"
	"testing"
	"testing/quick"
)

func TestBufferTruncatesSequentialWrites(t *testing.T) {
	var store [8]byte
	b := New(store[:])

	for _, s := range []string{"ab", "cdef", "ghij"} {
		if n, err := b.WriteString(s); err != nil || n != len(s) {
			t.Fatalf("WriteString(%q) = %d, %v, want %d, nil", s, n, err, len(s))
		}
	}

	if got := b.String(); got != "abcdefg" {
		t.Fatalf("String() = %q, want %q", got, "abcdefg")
	}
	if store[7] != 0 {
		t.Fatalf("store[7] = %#x, want terminator", store[7])
	}
}

func TestBufferReset(t *testing.T) {
	var store [16]byte
	b := New(store[:])
	fmt.Fprintf(&b, "level=%d", 3)
	if got := b.String(); got != "level=3" {
		t.Fatalf("String() = %q, want %q", got, "level=3")
	}

	b.Reset()
	if got := b.Len(); got != 0 {
		t.Fatalf("Len() after Reset = %d, want 0", got)
	}
	b.WriteString("x")
	if got := b.String(); got != "x" {
		t.Fatalf("String() = %q, want %q", got, "x")
	}
}

func TestBufferZeroAndOneCapacity(t *testing.T) {
	b := New(nil)
	b.WriteString("abc")
	if b.Len() != 0 || b.CStr() != nil {
		t.Fatal("zero-capacity buffer accepted data")
	}

	var one [1]byte
	b = New(one[:])
	b.WriteString("abc")
	if got := b.Len(); got != 0 {
		t.Fatalf("Len() = %d, want 0", got)
	}
	if one[0] != 0 {
		t.Fatalf("one[0] = %#x, want terminator", one[0])
	}
}

func TestBufferRepairsUnterminatedStorage(t *testing.T) {
	store := []byte("abcd")
	b := Buffer{b: store}
	b.WriteString("zz")

	if got := b.String(); got != "abc" {
		t.Fatalf("String() = %q, want %q", got, "abc")
	}
	if got := GoString(b.CStr()); got != "abc" {
		t.Fatalf("GoString(CStr()) = %q, want %q", got, "abc")
	}
}

func TestBufferWriteByte(t *testing.T) {
	var store [3]byte
	b := New(store[:])
	for _, c := range []byte("xyz") {
		b.WriteByte(c)
	}
	if got := b.String(); got != "xy" {
		t.Fatalf("String() = %q, want %q", got, "xy")
	}
}

func TestBufferNeverOverflows(t *testing.T) {
	check := func(capacity uint8, fragments []string) bool {
		// Guard bytes after the storage must stay untouched.
		backing := bytes.Repeat([]byte{0xAA}, int(capacity)+4)
		store := backing[:capacity]
		b := New(store)

		var want []byte
		for _, f := range fragments {
			b.WriteString(f)
			if capacity == 0 {
				continue
			}
			n := len(f)
			if room := int(capacity) - 1 - len(want); n > room {
				n = room
			}
			want = append(want, f[:n]...)
			// A NUL inside a fragment ends the text early.
			if i := bytes.IndexByte(want, 0); i >= 0 {
				want = want[:i]
			}
		}

		if capacity > 0 {
			if bytes.IndexByte(store, 0) < 0 {
				return false
			}
			if !bytes.Equal(b.Bytes(), want) {
				return false
			}
		}
		for _, g := range backing[capacity:] {
			if g != 0xAA {
				return false
			}
		}
		return true
	}
	if err := quick.Check(check, nil); err != nil {
		t.Fatal(err)
	}
}
