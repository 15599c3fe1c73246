package logger

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"lumen/hal/haltest"
)

func TestTiersUseSinkLevels(t *testing.T) {
	s := &haltest.LogSink{}
	SetSink(s)

	Trace("t %d", 1)
	Debug("d %d", 2)
	Info("i %d", 3)
	Warn("w %d", 4)
	Error("e %d", 5)

	want := []haltest.Line{
		{Level: 4, Text: "t 1"},
		{Level: 0, Text: "d 2"},
		{Level: 1, Text: "i 3"},
		{Level: 3, Text: "w 4"},
		{Level: 2, Text: "e 5"},
	}
	got := s.Lines()
	if len(got) != len(want) {
		t.Fatalf("len(Lines()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Lines()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
	if n := s.Unlocked(); n != 0 {
		t.Fatalf("Unlocked() = %d, want 0", n)
	}
}

func TestLogFormatsWithAndWithoutArgs(t *testing.T) {
	s := &haltest.LogSink{}
	SetSink(s)

	Info("load 100%%")
	Info("load %d%%", 100)

	lines := s.Lines()
	if len(lines) != 2 {
		t.Fatalf("len(Lines()) = %d, want 2", len(lines))
	}
	for i, l := range lines {
		if l.Text != "load 100%" {
			t.Fatalf("Lines()[%d].Text = %q, want %q", i, l.Text, "load 100%")
		}
	}
}

func TestPrintAndPrintln(t *testing.T) {
	s := &haltest.LogSink{}
	SetSink(s)

	Print("a", 1)
	Println("b", 2)

	lines := s.Lines()
	if lines[0] != (haltest.Line{Level: 1, Text: "a1"}) {
		t.Fatalf("Print line = %+v", lines[0])
	}
	if lines[1] != (haltest.Line{Level: 1, Text: "b 2\n"}) {
		t.Fatalf("Println line = %+v", lines[1])
	}
}

func TestLongLinesAreTruncated(t *testing.T) {
	s := &haltest.LogSink{}
	SetSink(s)

	Warn("%s", strings.Repeat("z", 3*BufferSize))
	if got := len(s.Lines()[0].Text); got != BufferSize-1 {
		t.Fatalf("len(Text) = %d, want %d", got, BufferSize-1)
	}
}

func TestConcurrentLinesDoNotInterleave(t *testing.T) {
	s := &haltest.LogSink{}
	SetSink(s)

	const writers, perWriter = 6, 200
	var wg sync.WaitGroup
	wg.Add(writers)
	for w := 0; w < writers; w++ {
		go func(w int) {
			defer wg.Done()
			lvl := Level(w % 5)
			for i := 0; i < perWriter; i++ {
				Log(lvl, "writer=%d seq=%d level=%d", w, i, lvl)
			}
		}(w)
	}
	wg.Wait()

	lines := s.Lines()
	if len(lines) != writers*perWriter {
		t.Fatalf("len(Lines()) = %d, want %d", len(lines), writers*perWriter)
	}
	for _, l := range lines {
		var w, seq, lvl int
		if _, err := fmt.Sscanf(l.Text, "writer=%d seq=%d level=%d", &w, &seq, &lvl); err != nil {
			t.Fatalf("garbled line %q: %v", l.Text, err)
		}
		if int32(lvl) != l.Level {
			t.Fatalf("line %q logged at level %d", l.Text, l.Level)
		}
	}
	if n := s.Unlocked(); n != 0 {
		t.Fatalf("Unlocked() = %d, want 0", n)
	}
}

func TestNoSinkDropsLines(t *testing.T) {
	SetSink(nil)
	Info("dropped")
}

func TestLevelString(t *testing.T) {
	if got := LevelWarn.String(); got != "warn" {
		t.Fatalf("LevelWarn.String() = %q, want %q", got, "warn")
	}
	if got := Level(9).String(); got != "unknown" {
		t.Fatalf("Level(9).String() = %q, want %q", got, "unknown")
	}
}
