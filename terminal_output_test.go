package main

import (
	"bytes"
	"errors"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestTerminalOutput_DecodesCodepage(t *testing.T) {
	var buf bytes.Buffer
	out := NewTerminalOutput(&buf, charmap.CodePage437)
	out.HandleCodes([]byte{'a', 0x82, '\n'})
	if got := buf.String(); got != "aé\r\n" {
		t.Fatalf("mirror = %q", got)
	}
}

func TestTerminalOutput_SkipsControlCodes(t *testing.T) {
	var buf bytes.Buffer
	out := NewTerminalOutput(&buf, nil)
	out.HandleCodes([]byte{0x07, 'x', 0x1B})
	if got := buf.String(); got != "x" {
		t.Fatalf("mirror = %q", got)
	}
}

func TestTerminalOutput_BackspaceAndDisable(t *testing.T) {
	var buf bytes.Buffer
	out := NewTerminalOutput(&buf, nil)
	out.HandleCodes([]byte("ab"))
	out.HandleBackspace()
	out.Disable()
	out.HandleCodes([]byte("zz"))
	out.Enable()
	out.HandleCodes([]byte("c"))
	if got := buf.String(); got != "ab\b \bc" {
		t.Fatalf("mirror = %q", got)
	}
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.calls++
	return 0, errors.New("closed")
}

func TestTerminalOutput_DisablesOnWriteError(t *testing.T) {
	w := &failingWriter{}
	out := NewTerminalOutput(w, nil)
	out.HandleCodes([]byte("a"))
	out.HandleCodes([]byte("b"))
	if w.calls != 1 {
		t.Fatalf("writes after failure = %d, want 1", w.calls)
	}
}

func TestConsole_MirrorsOutput(t *testing.T) {
	c, _ := newConsoleForTest(t, 640, 480)
	var buf bytes.Buffer
	c.SetMirror(NewTerminalOutput(&buf, nil))
	c.WriteString("> ")
	c.LockPrompt()
	c.WriteString("hé")
	c.Backspace()
	c.ClearCurrentLine()
	want := "> hé\b \b\b \b"
	if got := buf.String(); got != want {
		t.Fatalf("mirror = %q, want %q", got, want)
	}
}
