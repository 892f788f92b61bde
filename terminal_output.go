package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/text/encoding/charmap"
)

const maxMirrorLine = 1024

// TerminalOutput mirrors console output to a host terminal, the way a
// kernel copies its console to a serial port. Code points are decoded back
// to UTF-8 through the console's code page and flushed per line.
type TerminalOutput struct {
	mutex    sync.Mutex
	out      io.Writer
	codepage *charmap.Charmap
	enabled  bool
	buffer   []byte
}

func NewTerminalOutput(out io.Writer, codepage *charmap.Charmap) *TerminalOutput {
	if codepage == nil {
		codepage = charmap.ISO8859_1
	}
	return &TerminalOutput{
		out:      out,
		codepage: codepage,
		enabled:  true,
		buffer:   make([]byte, 0, maxMirrorLine),
	}
}

// HandleCodes queues console code points. A newline or a full line flushes.
func (t *TerminalOutput) HandleCodes(codes []byte) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if !t.enabled {
		return
	}
	for _, ch := range codes {
		if ch == '\n' {
			// Raw-mode terminals need the carriage return spelled out.
			t.buffer = append(t.buffer, '\r', '\n')
			t.flush()
			continue
		}
		if ch < 0x20 {
			continue
		}
		t.buffer = append(t.buffer, string(t.codepage.DecodeByte(ch))...)
		if len(t.buffer) >= maxMirrorLine {
			t.flush()
		}
	}
	t.flush()
}

// HandleBackspace erases the last cell on the terminal.
func (t *TerminalOutput) HandleBackspace() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if !t.enabled {
		return
	}
	t.buffer = append(t.buffer, '\b', ' ', '\b')
	t.flush()
}

func (t *TerminalOutput) flush() {
	if len(t.buffer) == 0 {
		return
	}
	if _, err := t.out.Write(t.buffer); err != nil {
		fmt.Fprintf(os.Stderr, "terminal: mirror write failed, disabling: %v\n", err)
		t.enabled = false
	}
	t.buffer = t.buffer[:0]
}

func (t *TerminalOutput) Enable() {
	t.mutex.Lock()
	t.enabled = true
	t.mutex.Unlock()
}

func (t *TerminalOutput) Disable() {
	t.mutex.Lock()
	t.enabled = false
	t.mutex.Unlock()
}
