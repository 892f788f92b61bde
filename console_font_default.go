package main

import (
	"fmt"
	"os"

	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const defaultFontHeight = 16

// buildDefaultFont rasterises basicfont's 7x13 face into an 8x16 PSF1 blob
// indexed by Latin-1 code point. C0 and C1 control codes stay blank; code
// points the face lacks get its replacement glyph.
func buildDefaultFont() []byte {
	face := basicfont.Face7x13
	blob := make([]byte, psf1HeaderSize+256*defaultFontHeight)
	copy(blob, psf1Magic)
	blob[2] = 0
	blob[3] = defaultFontHeight

	baseline := (defaultFontHeight-(face.Ascent+face.Descent))/2 + face.Ascent
	for code := range 256 {
		if code < 0x20 || (code >= 0x7F && code < 0xA0) {
			continue
		}
		dr, mask, maskp, _, ok := face.Glyph(fixed.P(0, baseline), rune(code))
		if !ok {
			continue
		}
		glyph := blob[psf1HeaderSize+code*defaultFontHeight:]
		for y := dr.Min.Y; y < dr.Max.Y; y++ {
			if y < 0 || y >= defaultFontHeight {
				continue
			}
			for x := dr.Min.X; x < dr.Max.X; x++ {
				if x < 0 || x >= 8 {
					continue
				}
				_, _, _, a := mask.At(maskp.X+x-dr.Min.X, maskp.Y+y-dr.Min.Y).RGBA()
				if a >= 0x8000 {
					glyph[y] |= 0x80 >> x
				}
			}
		}
	}
	return blob
}

// LoadFontFile reads a PSF1 or PSF2 font from disk. An empty path selects
// the built-in face.
func LoadFontFile(path string) (*Font, error) {
	if path == "" {
		return ParseFont(buildDefaultFont()), nil
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("font %s: %w", path, err)
	}
	f := ParseFont(blob)
	if f == nil {
		return nil, fmt.Errorf("font %s: not a PSF1 or PSF2 font", path)
	}
	return f, nil
}
