package main

import (
	"bytes"
	"strings"
	"testing"
)

// screenEcho mirrors what the console would show after the prompt.
type screenEcho struct {
	line   []byte
	clears int
	cells  int // row capacity after the prompt; 0 means unbounded
}

func (s *screenEcho) PutChar(ch byte)         { s.line = append(s.line, ch) }
func (s *screenEcho) WriteCodes(codes []byte) { s.line = append(s.line, codes...) }
func (s *screenEcho) ClearCurrentLine()       { s.line = s.line[:0]; s.clears++ }

func (s *screenEcho) Room() int {
	if s.cells == 0 {
		return commandBufferSize
	}
	return s.cells - len(s.line)
}

func (s *screenEcho) Backspace() bool {
	if len(s.line) == 0 {
		return false
	}
	s.line = s.line[:len(s.line)-1]
	return true
}

type dispatchCall struct{ name, args string }

func newEditorForTest(t *testing.T) (*LineEditor, *screenEcho, *[]dispatchCall) {
	t.Helper()
	echo := &screenEcho{}
	var calls []dispatchCall
	ed := NewLineEditor(echo, NewHistory(), DispatchFunc(func(name, args string) {
		calls = append(calls, dispatchCall{name, args})
	}))
	return ed, echo, &calls
}

func typeLine(ed *LineEditor, s string) {
	for i := 0; i < len(s); i++ {
		ed.HandleKey(KeyEvent(s[i]))
	}
}

func assertInSync(t *testing.T, ed *LineEditor, echo *screenEcho) {
	t.Helper()
	if !bytes.Equal(ed.Buffer(), echo.line) {
		t.Fatalf("buffer %q and screen %q drifted apart", ed.Buffer(), echo.line)
	}
}

func TestLineEditor_SubmitSplitsOnFirstSpace(t *testing.T) {
	ed, _, calls := newEditorForTest(t)
	typeLine(ed, "say hello  world")
	ed.HandleKey(KeyNewline)
	if len(*calls) != 1 || (*calls)[0] != (dispatchCall{"say", "hello  world"}) {
		t.Fatalf("calls = %+v", *calls)
	}
	if len(ed.Buffer()) != 0 {
		t.Fatalf("buffer not reset: %q", ed.Buffer())
	}
	if ed.History().Entries()[0] != "say hello  world" {
		t.Fatalf("history = %v", ed.History().Entries())
	}
}

func TestLineEditor_EmptyLineDoesNotDispatch(t *testing.T) {
	ed, _, calls := newEditorForTest(t)
	ed.HandleKey(KeyNewline)
	if len(*calls) != 0 || ed.History().Len() != 0 {
		t.Fatalf("empty submit dispatched %+v, history %d", *calls, ed.History().Len())
	}
}

func TestLineEditor_BackspaceStopsAtEmpty(t *testing.T) {
	ed, echo, _ := newEditorForTest(t)
	typeLine(ed, "ab")
	for range 4 {
		ed.HandleKey(KeyBackspace)
	}
	assertInSync(t, ed, echo)
	if len(ed.Buffer()) != 0 {
		t.Fatalf("buffer = %q", ed.Buffer())
	}
}

func TestLineEditor_FullBufferDropsInput(t *testing.T) {
	ed, echo, calls := newEditorForTest(t)
	long := strings.Repeat("x", commandBufferSize+5)
	typeLine(ed, long)
	if len(ed.Buffer()) != commandBufferSize {
		t.Fatalf("buffer length = %d, want %d", len(ed.Buffer()), commandBufferSize)
	}
	assertInSync(t, ed, echo)
	ed.HandleKey(KeyNewline)
	if (*calls)[0].name != long[:commandBufferSize] {
		t.Fatalf("dispatched %q", (*calls)[0].name)
	}
}

func TestLineEditor_IgnoresNonPrintable(t *testing.T) {
	ed, echo, _ := newEditorForTest(t)
	ed.HandleKey(0x7F)
	ed.HandleKey(0x1B)
	ed.HandleKey(0x85)
	if len(ed.Buffer()) != 0 || len(echo.line) != 0 {
		t.Fatalf("buffer %q screen %q", ed.Buffer(), echo.line)
	}
}

func TestLineEditor_HistoryNavigation(t *testing.T) {
	ed, echo, _ := newEditorForTest(t)
	for _, l := range []string{"one", "two"} {
		typeLine(ed, l)
		ed.HandleKey(KeyNewline)
		echo.line = echo.line[:0]
	}

	typeLine(ed, "dra")
	ed.HandleKey(KeyHistoryUp)
	if string(ed.Buffer()) != "two" {
		t.Fatalf("after Up buffer = %q", ed.Buffer())
	}
	assertInSync(t, ed, echo)

	ed.HandleKey(KeyHistoryUp)
	ed.HandleKey(KeyHistoryUp)
	if string(ed.Buffer()) != "one" {
		t.Fatalf("Up should saturate at oldest, buffer = %q", ed.Buffer())
	}

	ed.HandleKey(KeyHistoryDown)
	if string(ed.Buffer()) != "two" {
		t.Fatalf("after Down buffer = %q", ed.Buffer())
	}
	ed.HandleKey(KeyHistoryDown)
	if string(ed.Buffer()) != "dra" {
		t.Fatalf("Down past newest should restore draft, buffer = %q", ed.Buffer())
	}
	assertInSync(t, ed, echo)

	clears := echo.clears
	ed.HandleKey(KeyHistoryDown)
	if echo.clears != clears || string(ed.Buffer()) != "dra" {
		t.Fatal("Down while live should not touch the line")
	}
}

func TestLineEditor_UpOnEmptyHistoryIsNoop(t *testing.T) {
	ed, echo, _ := newEditorForTest(t)
	typeLine(ed, "abc")
	ed.HandleKey(KeyHistoryUp)
	if echo.clears != 0 || string(ed.Buffer()) != "abc" {
		t.Fatalf("buffer = %q clears = %d", ed.Buffer(), echo.clears)
	}
}

func TestLineEditor_EditRecalledLine(t *testing.T) {
	ed, echo, calls := newEditorForTest(t)
	typeLine(ed, "say hi")
	ed.HandleKey(KeyNewline)
	echo.line = echo.line[:0]

	ed.HandleKey(KeyHistoryUp)
	ed.HandleKey(KeyBackspace)
	ed.HandleKey(KeyBackspace)
	typeLine(ed, "yo")
	assertInSync(t, ed, echo)
	ed.HandleKey(KeyNewline)
	if got := (*calls)[1]; got != (dispatchCall{"say", "yo"}) {
		t.Fatalf("second dispatch = %+v", got)
	}
	if !ed.History().Live() {
		t.Fatal("submit should return history to live")
	}
}

func TestLineEditor_StopsAtRowEnd(t *testing.T) {
	ed, echo, _ := newEditorForTest(t)
	echo.cells = 5
	typeLine(ed, "abcdefgh")
	assertInSync(t, ed, echo)
	if string(ed.Buffer()) != "abcde" {
		t.Fatalf("buffer = %q, want %q", ed.Buffer(), "abcde")
	}
	for range 8 {
		ed.HandleKey(KeyBackspace)
	}
	assertInSync(t, ed, echo)
	if len(ed.Buffer()) != 0 {
		t.Fatalf("buffer = %q after erasing", ed.Buffer())
	}
}

func TestLineEditor_RecallTruncatedToRow(t *testing.T) {
	ed, echo, _ := newEditorForTest(t)
	typeLine(ed, "say a long line")
	ed.HandleKey(KeyNewline)
	echo.line = echo.line[:0]

	echo.cells = 6
	ed.HandleKey(KeyHistoryUp)
	assertInSync(t, ed, echo)
	if string(ed.Buffer()) != "say a " {
		t.Fatalf("recalled %q", ed.Buffer())
	}
}
