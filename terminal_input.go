package main

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const (
	termStateText = iota
	termStateEsc
	termStateCSI
)

// TerminalInput turns a raw terminal byte stream into keyboard scancodes.
// UTF-8 is folded through the code page, CSI A/B become the up and down
// arrows, every other escape sequence is swallowed.
type TerminalInput struct {
	encoder     *ScancodeEncoder
	codepage    *charmap.Charmap
	emit        func(seq []byte)
	onInterrupt func()

	state   int
	pending []byte
	seq     []byte
}

func NewTerminalInput(encoder *ScancodeEncoder, codepage *charmap.Charmap, emit func([]byte)) *TerminalInput {
	if codepage == nil {
		codepage = charmap.ISO8859_1
	}
	return &TerminalInput{encoder: encoder, codepage: codepage, emit: emit}
}

// OnInterrupt sets what Ctrl-C does; raw mode no longer raises SIGINT.
func (t *TerminalInput) OnInterrupt(fn func()) { t.onInterrupt = fn }

// Feed consumes one byte read from the terminal.
func (t *TerminalInput) Feed(b byte) {
	t.seq = t.seq[:0]
	switch t.state {
	case termStateEsc:
		// ESC O is the application-mode form of the arrow keys.
		if b == '[' || b == 'O' {
			t.state = termStateCSI
		} else {
			t.state = termStateText
		}
	case termStateCSI:
		// Parameter and intermediate bytes run until a final byte 0x40-0x7E.
		if b < 0x40 || b > 0x7E {
			return
		}
		t.state = termStateText
		switch b {
		case 'A':
			t.seq = t.encoder.AppendArrow(t.seq, true)
		case 'B':
			t.seq = t.encoder.AppendArrow(t.seq, false)
		}
	default:
		t.text(b)
	}
	if len(t.seq) > 0 && t.emit != nil {
		t.emit(t.seq)
	}
}

func (t *TerminalInput) text(b byte) {
	if len(t.pending) == 0 {
		switch {
		case b == 0x1B:
			t.state = termStateEsc
			return
		case b == 0x03:
			if t.onInterrupt != nil {
				t.onInterrupt()
			}
			return
		case b == '\r' || b == '\n':
			t.seq = t.encoder.AppendKey(t.seq, '\n')
			return
		case b == 0x7F || b == 0x08:
			t.seq = t.encoder.AppendKey(t.seq, 0x08)
			return
		case b < 0x80:
			t.seq = t.encoder.AppendKey(t.seq, b)
			return
		}
	}
	t.pending = append(t.pending, b)
	if !utf8.FullRune(t.pending) {
		return
	}
	r, _ := utf8.DecodeRune(t.pending)
	t.pending = t.pending[:0]
	if r == utf8.RuneError {
		return
	}
	if code, ok := t.codepage.EncodeRune(r); ok {
		t.seq = t.encoder.AppendKey(t.seq, code)
	}
}
