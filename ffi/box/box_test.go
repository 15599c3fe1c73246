package box

import (
	"os"
	"strings"
	"testing"
	"unsafe"

	"lumen/ffi/alloc"
	"lumen/ffi/critical"
	"lumen/ffi/fault"
	"lumen/hal/haltest"
)

var heap = &haltest.Heap{}

func TestMain(m *testing.M) {
	critical.SetPort(&haltest.Port{})
	alloc.SetHeap(heap)
	os.Exit(m.Run())
}

func TestReclaimReturnsValueAndFreesCell(t *testing.T) {
	liveBefore := heap.Live()

	p := New(func() int { return 7 })
	if got := Live(); got != 1 {
		t.Fatalf("Live() = %d, want 1", got)
	}
	if got := heap.Live(); got != liveBefore+1 {
		t.Fatalf("heap Live() = %d, want %d", got, liveBefore+1)
	}

	fn := Reclaim[func() int](p)
	if got := fn(); got != 7 {
		t.Fatalf("reclaimed fn() = %d, want 7", got)
	}
	if got := Live(); got != 0 {
		t.Fatalf("Live() after Reclaim = %d, want 0", got)
	}
	if got := heap.Live(); got != liveBefore {
		t.Fatalf("heap Live() after Reclaim = %d, want %d", got, liveBefore)
	}
}

func TestBorrowDoesNotConsume(t *testing.T) {
	calls := 0
	p := New(func() { calls++ })
	defer Drop(p)

	for i := 0; i < 3; i++ {
		Borrow[func()](p)()
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if got := Live(); got != 1 {
		t.Fatalf("Live() = %d, want 1", got)
	}
}

func TestReclaimTwiceIsFatal(t *testing.T) {
	fault.SetAborter(&haltest.Aborter{})

	p := New("payload")
	if got := Reclaim[string](p); got != "payload" {
		t.Fatalf("Reclaim() = %q, want %q", got, "payload")
	}

	details, ok := haltest.CatchAbort(func() { Reclaim[string](p) })
	if !ok {
		t.Fatal("second Reclaim did not abort")
	}
	if !strings.HasPrefix(details, "Panic: box: reclaimed twice") {
		t.Fatalf("abort details = %q", details)
	}
}

func cellOf(h Handle) unsafe.Pointer {
	var p unsafe.Pointer
	reg.Lock(func(r *registry) {
		p = r.entries[h].cell
	})
	return p
}

func TestStaleReclaimAfterCellReuseIsFatal(t *testing.T) {
	fault.SetAborter(&haltest.Aborter{})
	heap.Reuse = true
	defer func() { heap.Reuse = false }()

	first := New("first")
	firstCell := cellOf(first)
	if got := Reclaim[string](first); got != "first" {
		t.Fatalf("Reclaim() = %q, want %q", got, "first")
	}

	second := New("second")
	defer Drop(second)
	if cellOf(second) != firstCell {
		t.Fatal("heap did not hand the freed cell back out")
	}
	if second == first {
		t.Fatalf("New() reissued handle %d", first)
	}

	details, ok := haltest.CatchAbort(func() { Reclaim[string](first) })
	if !ok {
		t.Fatal("stale Reclaim did not abort")
	}
	if !strings.HasPrefix(details, "Panic: box: reclaimed twice") {
		t.Fatalf("abort details = %q", details)
	}
	if got := Borrow[string](second); got != "second" {
		t.Fatalf("Borrow(second) = %q, want %q", got, "second")
	}
	if got := Live(); got != 1 {
		t.Fatalf("Live() = %d, want 1", got)
	}
}

func TestReclaimWrongTypeIsFatal(t *testing.T) {
	fault.SetAborter(&haltest.Aborter{})

	p := New(3)
	details, ok := haltest.CatchAbort(func() { Reclaim[string](p) })
	if !ok {
		t.Fatal("Reclaim with wrong type did not abort")
	}
	if !strings.HasPrefix(details, "Panic: box: reclaimed with the wrong type") {
		t.Fatalf("abort details = %q", details)
	}
}

func TestNilBoxIsFatal(t *testing.T) {
	fault.SetAborter(&haltest.Aborter{})

	if _, ok := haltest.CatchAbort(func() { Drop(0) }); !ok {
		t.Fatal("Drop(0) did not abort")
	}
	fault.SetAborter(&haltest.Aborter{})
	if _, ok := haltest.CatchAbort(func() { Borrow[int](0) }); !ok {
		t.Fatal("Borrow(nil) did not abort")
	}
}
