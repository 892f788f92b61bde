// console_font.go - PSF1/PSF2 bitmap font decoder

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
	"bytes"
	"encoding/binary"
)

// FontFormat identifies which bitmap font layout a blob uses.
type FontFormat int

const (
	FontFormatPSF1 FontFormat = iota + 1 // 4-byte header, 8 px wide
	FontFormatPSF2                       // 32-byte header, arbitrary size
)

var (
	psf1Magic = []byte{0x36, 0x04}
	psf2Magic = []byte{0x72, 0xB5, 0x4A, 0x86}
)

const (
	psf1HeaderSize = 4
	psf1Mode512    = 0x01
	psf2HeaderSize = 32
	psf2MaxWidth   = 64
)

// Font is a decoded view over an immutable PSF1 or PSF2 blob.
type Font struct {
	data       []byte
	format     FontFormat
	headerSize int
	glyphCount int
	glyphBytes int
	width      int
	height     int
	rowBytes   int
}

// GlyphMask is one rasterised glyph: 1 bit per pixel, MSB first, RowBytes
// bytes per row.
type GlyphMask struct {
	Width    int
	Height   int
	RowBytes int
	Bits     []byte
}

// Lit reports whether pixel (x, y) of the glyph is set.
func (g GlyphMask) Lit(x, y int) bool {
	return g.Bits[y*g.RowBytes+x/8]&(0x80>>(x%8)) != 0
}

// ParseFont recognises the blob by its magic prefix. It returns nil for an
// unknown magic or a header that does not describe usable glyphs.
func ParseFont(blob []byte) *Font {
	switch {
	case bytes.HasPrefix(blob, psf2Magic):
		return parsePSF2(blob)
	case bytes.HasPrefix(blob, psf1Magic):
		return parsePSF1(blob)
	}
	return nil
}

func parsePSF1(blob []byte) *Font {
	if len(blob) < psf1HeaderSize {
		return nil
	}
	mode, size := blob[2], int(blob[3])
	if size == 0 {
		return nil
	}
	count := 256
	if mode&psf1Mode512 != 0 {
		count = 512
	}
	return &Font{
		data:       blob,
		format:     FontFormatPSF1,
		headerSize: psf1HeaderSize,
		glyphCount: count,
		glyphBytes: size,
		width:      8,
		height:     size,
		rowBytes:   1,
	}
}

func parsePSF2(blob []byte) *Font {
	if len(blob) < psf2HeaderSize {
		return nil
	}
	le := binary.LittleEndian
	headerSize := int(le.Uint32(blob[8:]))
	count := int(le.Uint32(blob[16:]))
	glyphBytes := int(le.Uint32(blob[20:]))
	height := int(le.Uint32(blob[24:]))
	width := int(le.Uint32(blob[28:]))
	rowBytes := (width + 7) / 8

	if headerSize < psf2HeaderSize || width <= 0 || width > psf2MaxWidth || height <= 0 {
		return nil
	}
	if glyphBytes < rowBytes*height {
		return nil
	}
	return &Font{
		data:       blob,
		format:     FontFormatPSF2,
		headerSize: headerSize,
		glyphCount: count,
		glyphBytes: glyphBytes,
		width:      width,
		height:     height,
		rowBytes:   rowBytes,
	}
}

func (f *Font) Format() FontFormat { return f.format }
func (f *Font) Width() int         { return f.width }
func (f *Font) Height() int        { return f.height }
func (f *Font) GlyphCount() int    { return f.glyphCount }

// Glyph returns the mask for code point ch. ok is false when the font has no
// such glyph or the blob is truncated.
func (f *Font) Glyph(ch byte) (GlyphMask, bool) {
	if f == nil || int(ch) >= f.glyphCount {
		return GlyphMask{}, false
	}
	off := f.headerSize + int(ch)*f.glyphBytes
	end := off + f.rowBytes*f.height
	if end > len(f.data) {
		return GlyphMask{}, false
	}
	return GlyphMask{
		Width:    f.width,
		Height:   f.height,
		RowBytes: f.rowBytes,
		Bits:     f.data[off:end],
	}, true
}

// Draw blits ch with a transparent background: unset bits leave dst as it
// was.
func (f *Font) Draw(dst RenderSurface, ch byte, x, y int, fg uint32) {
	if g, ok := f.Glyph(ch); ok {
		dst.DrawGlyph(g, x, y, fg, 0, false)
	}
}

// DrawOpaque blits ch painting unset bits with bg.
func (f *Font) DrawOpaque(dst RenderSurface, ch byte, x, y int, fg, bg uint32) {
	if g, ok := f.Glyph(ch); ok {
		dst.DrawGlyph(g, x, y, fg, bg, true)
	}
}
