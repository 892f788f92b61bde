package main

import (
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func newTerminalInputForTest(t *testing.T, layout string) (*TerminalInput, *sliceSink) {
	t.Helper()
	km, err := KeymapByName(layout)
	if err != nil {
		t.Fatalf("KeymapByName: %v", err)
	}
	d, sink := newDecoderForTest(t, layout)
	in := NewTerminalInput(NewScancodeEncoder(km), charmap.ISO8859_1, func(seq []byte) {
		feed(d, seq...)
	})
	return in, sink
}

func feedTerminal(in *TerminalInput, s string) {
	for i := 0; i < len(s); i++ {
		in.Feed(s[i])
	}
}

func TestTerminalInput_PlainText(t *testing.T) {
	in, sink := newTerminalInputForTest(t, "us")
	feedTerminal(in, "Ab1\r")
	if got := string(eventBytes(sink.events)); got != "Ab1\n" {
		t.Fatalf("events = %q", got)
	}
}

func TestTerminalInput_DeleteIsBackspace(t *testing.T) {
	in, sink := newTerminalInputForTest(t, "us")
	feedTerminal(in, "\x7f\x08")
	if len(sink.events) != 2 || sink.events[0] != KeyBackspace || sink.events[1] != KeyBackspace {
		t.Fatalf("events = %v", sink.events)
	}
}

func TestTerminalInput_ArrowSequences(t *testing.T) {
	in, sink := newTerminalInputForTest(t, "us")
	feedTerminal(in, "\x1b[A\x1b[B\x1bOA\x1b[C\x1b[1;5Dx")
	want := []KeyEvent{KeyHistoryUp, KeyHistoryDown, KeyHistoryUp, 'x'}
	if len(sink.events) != len(want) {
		t.Fatalf("events = %v, want %v", sink.events, want)
	}
	for i := range want {
		if sink.events[i] != want[i] {
			t.Fatalf("event %d = %v, want %v", i, sink.events[i], want[i])
		}
	}
}

func TestTerminalInput_UTF8FoldedThroughCodepage(t *testing.T) {
	in, sink := newTerminalInputForTest(t, "fr")
	feedTerminal(in, "é€")
	if len(sink.events) != 1 || sink.events[0] != 0xE9 {
		t.Fatalf("events = %v, want [0xE9]", sink.events)
	}
}

func TestTerminalInput_CtrlC(t *testing.T) {
	in, sink := newTerminalInputForTest(t, "us")
	interrupted := false
	in.OnInterrupt(func() { interrupted = true })
	in.Feed(0x03)
	if !interrupted || len(sink.events) != 0 {
		t.Fatalf("interrupted=%v events=%v", interrupted, sink.events)
	}
}
