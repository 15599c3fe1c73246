package alloc

import (
	"strings"
	"testing"

	"lumen/ffi/fault"
	"lumen/hal/haltest"
)

func TestAllocateAndDeallocate(t *testing.T) {
	h := &haltest.Heap{}
	resetHeap(h)

	p := Allocate(16)
	if p == nil {
		t.Fatal("Allocate(16) = nil")
	}
	if got := h.Live(); got != 1 {
		t.Fatalf("Live() = %d, want 1", got)
	}

	Deallocate(p)
	Deallocate(nil)
	if got := h.Live(); got != 0 {
		t.Fatalf("Live() after Deallocate = %d, want 0", got)
	}
}

func TestAllocateOutOfMemoryIsFatal(t *testing.T) {
	resetHeap(&haltest.Heap{Fail: true})
	fault.SetAborter(&haltest.Aborter{})

	details, ok := haltest.CatchAbort(func() { Allocate(64) })
	if !ok {
		t.Fatal("Allocate did not abort on exhaustion")
	}
	if !strings.HasPrefix(details, "Panic: alloc: out of memory (64 bytes)") {
		t.Fatalf("abort details = %q", details)
	}
}

func TestSetHeapOnce(t *testing.T) {
	resetHeap(nil)
	if Installed() {
		t.Fatal("Installed() = true after reset")
	}
	SetHeap(&haltest.Heap{})
	if !Installed() {
		t.Fatal("Installed() = false after SetHeap")
	}

	defer func() {
		if v := recover(); v == nil {
			t.Fatal("second SetHeap did not panic")
		}
	}()
	SetHeap(&haltest.Heap{})
}
