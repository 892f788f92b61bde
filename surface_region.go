package main

// PixelRegion is a bounds-checked view over a block of 32-bit pixels laid out
// row-major with a fixed pitch (in pixels). It stands in for the raw mapped
// framebuffer pointer: every accessor validates its coordinates before an
// offset is computed.
type PixelRegion struct {
	pix    []uint32
	width  int
	height int
	pitch  int
}

// NewPixelRegion wraps pix. It returns nil if pix cannot hold pitch*height
// pixels or the geometry is degenerate.
func NewPixelRegion(pix []uint32, width, height, pitch int) *PixelRegion {
	if width <= 0 || height <= 0 || pitch < width {
		return nil
	}
	if len(pix) < pitch*height {
		return nil
	}
	return &PixelRegion{pix: pix[:pitch*height], width: width, height: height, pitch: pitch}
}

func (r *PixelRegion) Width() int  { return r.width }
func (r *PixelRegion) Height() int { return r.height }
func (r *PixelRegion) Pitch() int  { return r.pitch }

func (r *PixelRegion) contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < r.width && y < r.height
}

// Set writes one pixel; out-of-range coordinates are ignored.
func (r *PixelRegion) Set(x, y int, color uint32) {
	if !r.contains(x, y) {
		return
	}
	r.pix[y*r.pitch+x] = color
}

// At returns the pixel at (x, y), or 0 outside the region.
func (r *PixelRegion) At(x, y int) uint32 {
	if !r.contains(x, y) {
		return 0
	}
	return r.pix[y*r.pitch+x]
}

// Row returns the visible pixels of row y, or nil.
func (r *PixelRegion) Row(y int) []uint32 {
	if y < 0 || y >= r.height {
		return nil
	}
	off := y * r.pitch
	return r.pix[off : off+r.width]
}

// Fill sets the whole addressable area, padding included, to color.
func (r *PixelRegion) Fill(color uint32) {
	for i := range r.pix {
		r.pix[i] = color
	}
}

// clip intersects the rectangle with the region. ok is false when nothing
// remains.
func (r *PixelRegion) clip(x, y, w, h int) (cx, cy, cw, ch int, ok bool) {
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, r.width), min(y+h, r.height)
	if x0 >= x1 || y0 >= y1 {
		return 0, 0, 0, 0, false
	}
	return x0, y0, x1 - x0, y1 - y0, true
}

// FillRect fills the clipped rectangle.
func (r *PixelRegion) FillRect(x, y, w, h int, color uint32) {
	x, y, w, h, ok := r.clip(x, y, w, h)
	if !ok {
		return
	}
	for row := y; row < y+h; row++ {
		line := r.pix[row*r.pitch+x : row*r.pitch+x+w]
		for i := range line {
			line[i] = color
		}
	}
}

// ScrollUp moves rows [n, height) to [0, height-n) with a single block copy
// and fills the exposed bottom n rows with bg. n == 0 or n >= height is a
// no-op.
func (r *PixelRegion) ScrollUp(n int, bg uint32) {
	if n <= 0 || n >= r.height {
		return
	}
	keep := (r.height - n) * r.pitch
	copy(r.pix[:keep], r.pix[n*r.pitch:])
	tail := r.pix[keep:]
	for i := range tail {
		tail[i] = bg
	}
}

// BlitGlyph draws a glyph mask with its top-left corner at (x, y). A glyph
// that does not fit entirely inside the region is rejected as a whole. When
// opaque is false, unset bits leave the destination untouched.
func (r *PixelRegion) BlitGlyph(g GlyphMask, x, y int, fg, bg uint32, opaque bool) {
	if g.Width <= 0 || g.Height <= 0 {
		return
	}
	if x < 0 || y < 0 || x+g.Width > r.width || y+g.Height > r.height {
		return
	}
	for gy := range g.Height {
		dst := r.pix[(y+gy)*r.pitch+x : (y+gy)*r.pitch+x+g.Width]
		for gx := range g.Width {
			if g.Lit(gx, gy) {
				dst[gx] = fg
			} else if opaque {
				dst[gx] = bg
			}
		}
	}
}

// CopyRectFrom copies the clipped rectangle from src at the same
// coordinates. Both regions must share width and height.
func (r *PixelRegion) CopyRectFrom(src *PixelRegion, x, y, w, h int) {
	if src == nil || src.width != r.width || src.height != r.height {
		return
	}
	x, y, w, h, ok := r.clip(x, y, w, h)
	if !ok {
		return
	}
	for row := y; row < y+h; row++ {
		copy(r.pix[row*r.pitch+x:row*r.pitch+x+w], src.pix[row*src.pitch+x:row*src.pitch+x+w])
	}
}
