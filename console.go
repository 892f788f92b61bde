// console.go - Text console over a render surface

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

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const (
	cellWidth        = 9
	lineHeight       = 20
	marginX          = 20
	marginY          = 20
	cursorRow        = 17
	cursorHeight     = 2
	cursorWidth      = 8
	cursorBlinkTicks = 80

	colorBlack  = 0x000000
	colorWhite  = 0xFFFFFF
	colorYellow = 0xFFFF00
	colorGreen  = 0x00FF00
	colorRed    = 0xFF0000
)

// ConsoleMirror receives a copy of everything the console draws, as raw
// code points.
type ConsoleMirror interface {
	HandleCodes(codes []byte)
	HandleBackspace()
}

// Console is the text façade over a RenderSurface: a pixel cursor, colours,
// the start of the editable input line and a blinking cursor bar. Only the
// main loop calls into it.
type Console struct {
	surface  RenderSurface
	kind     SurfaceKind
	font     *Font
	codepage *charmap.Charmap
	mirror   ConsoleMirror

	cursorX       int
	cursorY       int
	fg            uint32
	bg            uint32
	lineStartX    int
	ticks         uint64
	blinkTicks    uint64
	cursorVisible bool
}

func NewConsole(surface RenderSurface, font *Font) *Console {
	return &Console{
		surface:       surface,
		kind:          surface.Kind(),
		font:          font,
		codepage:      charmap.ISO8859_1,
		cursorX:       marginX,
		cursorY:       marginY,
		fg:            colorWhite,
		bg:            colorBlack,
		lineStartX:    marginX,
		blinkTicks:    cursorBlinkTicks,
		cursorVisible: true,
	}
}

// SetCodepage selects how UTF-8 text is folded to single-byte code points.
func (c *Console) SetCodepage(cm *charmap.Charmap) {
	if cm != nil {
		c.codepage = cm
	}
}

// SetBlinkTicks changes how many timer ticks one blink phase lasts.
func (c *Console) SetBlinkTicks(n uint64) {
	if n > 0 {
		c.blinkTicks = n
	}
}

func (c *Console) SetColor(fg uint32) { c.fg = fg }

func (c *Console) SetColors(fg, bg uint32) {
	c.fg = fg
	c.bg = bg
}

func (c *Console) Colors() (fg, bg uint32) { return c.fg, c.bg }

// SetMirror copies future output to m; nil stops mirroring.
func (c *Console) SetMirror(m ConsoleMirror) { c.mirror = m }

// LockPrompt marks the current x as the left bound of the input line.
func (c *Console) LockPrompt() { c.lineStartX = c.cursorX }

func (c *Console) LineStart() int      { return c.lineStartX }
func (c *Console) Cursor() (x, y int)  { return c.cursorX, c.cursorY }
func (c *Console) CursorVisible() bool { return c.cursorVisible }
func (c *Console) Kind() SurfaceKind   { return c.kind }

// MoveTo places the cursor without drawing.
func (c *Console) MoveTo(x, y int) {
	c.cursorX, c.cursorY = x, y
}

// SetSurface re-points the console at another surface. Cursor, colours and
// line state carry over untouched.
func (c *Console) SetSurface(s RenderSurface) {
	c.surface = s
	c.kind = s.Kind()
	c.drawCursor(c.cursorColor())
	c.surface.Present()
}

func (c *Console) cursorColor() uint32 {
	if c.cursorVisible {
		return c.fg
	}
	return c.bg
}

func (c *Console) drawCursor(color uint32) {
	c.surface.FillRect(c.cursorX, c.cursorY+cursorRow, cursorWidth, cursorHeight, color)
}

// Write folds UTF-8 text through the code page and draws it. It never fails.
func (c *Console) Write(p []byte) (int, error) {
	buf := make([]byte, 0, len(p))
	for i := 0; i < len(p); {
		r, size := utf8.DecodeRune(p[i:])
		i += size
		if r == utf8.RuneError && size <= 1 {
			buf = append(buf, '?')
			continue
		}
		b, ok := c.codepage.EncodeRune(r)
		if !ok {
			b = '?'
		}
		buf = append(buf, b)
	}
	c.WriteCodes(buf)
	return len(p), nil
}

func (c *Console) WriteString(s string) (int, error) {
	return c.Write([]byte(s))
}

// Printf formats into the console.
func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c, format, args...)
}

// PutChar draws one raw code point.
func (c *Console) PutChar(ch byte) {
	c.WriteCodes([]byte{ch})
}

// WriteCodes draws raw single-byte code points. Only the rows touched are
// presented, unless the surface scrolled.
func (c *Console) WriteCodes(codes []byte) {
	if len(codes) == 0 {
		return
	}
	if c.mirror != nil {
		c.mirror.HandleCodes(codes)
	}
	startY := c.cursorY
	scrolled := false
	c.drawCursor(c.bg)
	for _, ch := range codes {
		if c.put(ch) {
			scrolled = true
		}
	}
	c.cursorVisible = true
	c.drawCursor(c.fg)
	if scrolled {
		c.surface.Present()
		return
	}
	c.surface.PresentRegion(0, startY, c.surface.Width(), c.cursorY+lineHeight-startY)
}

// put draws one code point and reports whether the surface scrolled.
func (c *Console) put(ch byte) bool {
	if ch == '\n' {
		return c.newLine()
	}
	if ch < 0x20 {
		return false
	}
	c.font.DrawOpaque(c.surface, ch, c.cursorX, c.cursorY, c.fg, c.bg)
	c.cursorX += cellWidth
	if c.cursorX+cellWidth > c.surface.Width() {
		return c.newLine()
	}
	return false
}

func (c *Console) newLine() bool {
	c.cursorX = marginX
	height := c.surface.Height()
	if c.cursorY+2*lineHeight > height {
		c.surface.Scroll(1, lineHeight, c.bg)
		c.cursorY = height - lineHeight
		return true
	}
	c.cursorY += lineHeight
	return false
}

// Backspace erases the cell left of the cursor. It does nothing at the start
// of the input line and reports whether a cell was erased.
func (c *Console) Backspace() bool {
	if c.cursorX <= c.lineStartX {
		return false
	}
	c.drawCursor(c.bg)
	c.cursorX -= cellWidth
	c.surface.FillRect(c.cursorX, c.cursorY, cellWidth, lineHeight, c.bg)
	c.cursorVisible = true
	c.drawCursor(c.fg)
	c.surface.PresentRegion(c.cursorX, c.cursorY, 2*cellWidth, lineHeight)
	if c.mirror != nil {
		c.mirror.HandleBackspace()
	}
	return true
}

// Room reports how many cells can still be drawn on the current row without
// wrapping.
func (c *Console) Room() int {
	n := (c.surface.Width() - c.cursorX - cellWidth) / cellWidth
	if n < 0 {
		return 0
	}
	return n
}

// ClearCurrentLine blanks the input line back to the locked prompt.
func (c *Console) ClearCurrentLine() {
	c.drawCursor(c.bg)
	for c.cursorX > c.lineStartX {
		c.cursorX -= cellWidth
		c.surface.FillRect(c.cursorX, c.cursorY, cellWidth, lineHeight, c.bg)
		if c.mirror != nil {
			c.mirror.HandleBackspace()
		}
	}
	c.cursorVisible = true
	c.drawCursor(c.fg)
	c.surface.PresentRegion(0, c.cursorY, c.surface.Width(), lineHeight)
}

// Tick advances the blink clock by one timer tick.
func (c *Console) Tick() {
	c.ticks++
	if c.ticks%c.blinkTicks != 0 {
		return
	}
	c.cursorVisible = !c.cursorVisible
	c.drawCursor(c.cursorColor())
	c.surface.PresentRegion(c.cursorX, c.cursorY+cursorRow, cursorWidth, cursorHeight)
}

// Clear fills the surface with color, which also becomes the background,
// and homes the cursor.
func (c *Console) Clear(color uint32) {
	c.bg = color
	c.surface.Clear(color)
	c.cursorX = marginX
	c.cursorY = marginY
	c.lineStartX = marginX
	c.cursorVisible = true
	c.drawCursor(c.fg)
	c.surface.Present()
}

// Flush presents the whole surface.
func (c *Console) Flush() { c.surface.Present() }
