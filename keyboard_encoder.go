package main

// ScancodeEncoder turns host text back into the set-1 make/break sequence a
// physical keyboard would have sent for it. Host-side sources (raw terminal,
// clipboard paste) use it so every keystroke still goes through the decoder.
type ScancodeEncoder struct {
	keymap *Keymap
}

func NewScancodeEncoder(keymap *Keymap) *ScancodeEncoder {
	return &ScancodeEncoder{keymap: keymap}
}

// AppendKey appends the sequence for ch to dst. Characters the layout cannot
// type are dropped.
func (e *ScancodeEncoder) AppendKey(dst []byte, ch byte) []byte {
	switch ch {
	case '\n', '\r':
		return append(dst, scEnter, scEnter|scBreakBit)
	case 0x08, 0x7F:
		return append(dst, scBackspace, scBackspace|scBreakBit)
	}
	sc, shift, ok := e.keymap.Find(ch)
	if !ok {
		return dst
	}
	if shift {
		return append(dst, scLeftShift, sc, sc|scBreakBit, scLeftShift|scBreakBit)
	}
	return append(dst, sc, sc|scBreakBit)
}

// AppendArrow appends an extended arrow press and release.
func (e *ScancodeEncoder) AppendArrow(dst []byte, up bool) []byte {
	sc := byte(scArrowDown)
	if up {
		sc = scArrowUp
	}
	return append(dst, scExtendedPrefix, sc, scExtendedPrefix, sc|scBreakBit)
}

// Encode converts a whole string.
func (e *ScancodeEncoder) Encode(text []byte) []byte {
	out := make([]byte, 0, len(text)*2)
	for _, ch := range text {
		out = e.AppendKey(out, ch)
	}
	return out
}
