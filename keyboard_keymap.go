package main

import (
	"fmt"
	"sort"
	"strings"
)

// Keymap translates set-1 make codes to Latin-1 bytes. The first 256 entries
// are unshifted, the second 256 shifted; zero means the key produces nothing.
type Keymap struct {
	name    string
	table   [512]byte
	letters [256]bool
}

func (k *Keymap) Name() string { return k.name }

// Lookup returns the byte for sc, or 0.
func (k *Keymap) Lookup(sc byte, shift bool) byte {
	idx := int(sc)
	if shift {
		idx += 256
	}
	return k.table[idx]
}

// IsLetter reports whether caps lock applies to sc.
func (k *Keymap) IsLetter(sc byte) bool { return k.letters[sc] }

// Find returns the make code and shift state that produce ch, preferring the
// unshifted position.
func (k *Keymap) Find(ch byte) (sc byte, shift bool, ok bool) {
	if ch == 0 {
		return 0, false, false
	}
	for i := range 256 {
		if k.table[i] == ch {
			return byte(i), false, true
		}
	}
	for i := range 256 {
		if k.table[256+i] == ch {
			return byte(i), true, true
		}
	}
	return 0, false, false
}

func (k *Keymap) set(sc byte, normal, shifted rune) {
	k.table[sc] = byte(normal)
	k.table[256+int(sc)] = byte(shifted)
	if normal >= 'a' && normal <= 'z' {
		k.letters[sc] = true
	}
}

// setRow assigns consecutive scancodes from two parallel strings.
func (k *Keymap) setRow(first byte, normal, shifted string) {
	n, s := []rune(normal), []rune(shifted)
	for i := range n {
		k.set(first+byte(i), n[i], s[i])
	}
}

func (k *Keymap) setKeypad() {
	pad := map[byte]rune{
		0x47: '7', 0x48: '8', 0x49: '9', 0x4A: '-',
		0x4B: '4', 0x4C: '5', 0x4D: '6', 0x4E: '+',
		0x4F: '1', 0x50: '2', 0x51: '3', 0x52: '0', 0x53: '.',
	}
	for sc, ch := range pad {
		k.set(sc, ch, ch)
	}
	k.set(0x37, '*', '*')
	k.set(0x39, ' ', ' ')
}

func newUSKeymap() *Keymap {
	k := &Keymap{name: "us"}
	k.setRow(0x02, "1234567890-=", "!@#$%^&*()_+")
	k.setRow(0x10, "qwertyuiop[]", "QWERTYUIOP{}")
	k.setRow(0x1E, "asdfghjkl;'`", "ASDFGHJKL:\"~")
	k.set(0x2B, '\\', '|')
	k.setRow(0x2C, "zxcvbnm,./", "ZXCVBNM<>?")
	k.setKeypad()
	return k
}

// newFRKeymap is the AZERTY layout, digits on the shifted row.
func newFRKeymap() *Keymap {
	k := &Keymap{name: "fr"}
	k.setRow(0x02, "&é\"'(-è_çà)", "1234567890°")
	k.setRow(0x10, "azertyuiop", "AZERTYUIOP")
	k.setRow(0x1E, "qsdfghjklm", "QSDFGHJKLM")
	k.setRow(0x2C, "wxcvbn,;:!", "WXCVBN?./§")
	k.setKeypad()
	return k
}

var keymaps = map[string]func() *Keymap{
	"us": newUSKeymap,
	"fr": newFRKeymap,
}

// KeymapByName returns a fresh keymap for a layout name.
func KeymapByName(name string) (*Keymap, error) {
	build, ok := keymaps[strings.ToLower(name)]
	if !ok {
		names := make([]string, 0, len(keymaps))
		for n := range keymaps {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown keymap %q (available: %s)", name, strings.Join(names, ", "))
	}
	return build(), nil
}
