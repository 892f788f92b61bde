package main

import "bytes"

const commandBufferSize = 64

// LineEcho is the part of the console the editor draws through.
type LineEcho interface {
	PutChar(ch byte)
	WriteCodes(codes []byte)
	Backspace() bool
	ClearCurrentLine()
	// Room is how many more cells fit on the input row before it would wrap.
	Room() int
}

// Dispatcher executes a submitted line split into name and arguments.
type Dispatcher interface {
	Dispatch(name, args string)
}

// DispatchFunc adapts a plain function to Dispatcher.
type DispatchFunc func(name, args string)

func (f DispatchFunc) Dispatch(name, args string) { f(name, args) }

// LineEditor owns the command buffer and history navigation. Every change to
// the buffer is mirrored on screen so the two never drift apart.
type LineEditor struct {
	echo     LineEcho
	history  *History
	dispatch Dispatcher

	buf   [commandBufferSize]byte
	n     int
	draft []byte
}

func NewLineEditor(echo LineEcho, history *History, dispatch Dispatcher) *LineEditor {
	return &LineEditor{echo: echo, history: history, dispatch: dispatch}
}

// Buffer returns the current line. The slice aliases editor storage.
func (e *LineEditor) Buffer() []byte { return e.buf[:e.n] }

func (e *LineEditor) History() *History { return e.history }

// HandleKey applies one key event.
func (e *LineEditor) HandleKey(ev KeyEvent) {
	switch ev {
	case KeyNewline:
		e.submit()
	case KeyBackspace:
		e.backspace()
	case KeyHistoryUp:
		if line, ok := e.history.Up(); ok {
			if e.history.Cursor() == 0 {
				e.draft = append(e.draft[:0], e.Buffer()...)
			}
			e.replace(line)
		}
	case KeyHistoryDown:
		if line, ok := e.history.Down(); ok {
			if line == nil {
				line = e.draft
			}
			e.replace(line)
		}
	default:
		if ev.IsPrintable() {
			e.insert(byte(ev))
		}
	}
}

func (e *LineEditor) insert(ch byte) {
	if e.n == commandBufferSize || e.echo.Room() < 1 {
		return
	}
	e.buf[e.n] = ch
	e.n++
	e.echo.PutChar(ch)
}

func (e *LineEditor) backspace() {
	if e.n == 0 || !e.echo.Backspace() {
		return
	}
	e.n--
}

// replace swaps the on-screen line and the buffer for line.
func (e *LineEditor) replace(line []byte) {
	e.echo.ClearCurrentLine()
	if room := e.echo.Room(); len(line) > room {
		line = line[:room]
	}
	e.n = copy(e.buf[:], line)
	e.echo.WriteCodes(e.buf[:e.n])
}

func (e *LineEditor) submit() {
	line := append([]byte(nil), e.Buffer()...)
	e.n = 0
	e.draft = e.draft[:0]
	e.history.Push(line)
	if len(line) == 0 || e.dispatch == nil {
		return
	}
	name, args := line, []byte(nil)
	if i := bytes.IndexByte(line, ' '); i >= 0 {
		name, args = line[:i], line[i+1:]
	}
	e.dispatch.Dispatch(string(name), string(args))
}
