// keyboard_scancode.go - Set-1 scancode decoder

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/FigConsole
License: GPLv3 or later
*/

package main

import "sync/atomic"

// Set-1 scancodes the decoder treats specially.
const (
	scExtendedPrefix = 0xE0
	scBreakBit       = 0x80
	scLeftShift      = 0x2A
	scRightShift     = 0x36
	scCapsLock       = 0x3A
	scBackspace      = 0x0E
	scEnter          = 0x1C
	scArrowUp        = 0x48 // after 0xE0
	scArrowDown      = 0x50 // after 0xE0
)

// KeySink receives decoded events. KeyQueue is the only implementation used
// outside tests.
type KeySink interface {
	Push(ev KeyEvent)
}

// ScancodeDecoder turns raw set-1 scancodes into key events. It runs in
// interrupt context: no locks, no allocation, at most one event per byte.
type ScancodeDecoder struct {
	keymap  *Keymap
	sink    KeySink
	shift   atomic.Bool
	caps    atomic.Bool
	escaped bool
}

func NewScancodeDecoder(keymap *Keymap, sink KeySink) *ScancodeDecoder {
	return &ScancodeDecoder{keymap: keymap, sink: sink}
}

// HandleScancode processes one byte read from the controller's data port.
func (d *ScancodeDecoder) HandleScancode(sc byte) {
	if sc == scExtendedPrefix {
		d.escaped = true
		return
	}

	if d.escaped {
		d.escaped = false
		if sc&scBreakBit == 0 {
			switch sc {
			case scArrowUp:
				d.sink.Push(KeyHistoryUp)
			case scArrowDown:
				d.sink.Push(KeyHistoryDown)
			}
		}
		return
	}

	switch sc {
	case scLeftShift, scRightShift:
		d.shift.Store(true)
	case scLeftShift | scBreakBit, scRightShift | scBreakBit:
		d.shift.Store(false)
	case scCapsLock:
		d.caps.Store(!d.caps.Load())
	case scBackspace:
		d.sink.Push(KeyBackspace)
	case scEnter:
		d.sink.Push(KeyNewline)
	default:
		if sc&scBreakBit != 0 {
			return
		}
		useShift := d.shift.Load()
		if d.keymap.IsLetter(sc) {
			useShift = useShift != d.caps.Load()
		}
		if ch := d.keymap.Lookup(sc, useShift); ch != 0 {
			d.sink.Push(KeyEvent(ch))
		}
	}
}

// Modifiers reports the current shift and caps-lock state. Safe to call
// from any goroutine.
func (d *ScancodeDecoder) Modifiers() (shift, caps bool) { return d.shift.Load(), d.caps.Load() }
