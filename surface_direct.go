package main

// DirectSurface draws straight into display memory. Writes are visible as
// soon as they land, so Present is a no-op.
type DirectSurface struct {
	display *Display
	mode    DisplayMode
}

func NewDirectSurface(display *Display) *DirectSurface {
	return &DirectSurface{display: display, mode: display.Mode()}
}

func (s *DirectSurface) Kind() SurfaceKind { return SurfaceDirect }
func (s *DirectSurface) Width() int        { return s.mode.Width }
func (s *DirectSurface) Height() int       { return s.mode.Height }
func (s *DirectSurface) Pitch() int        { return s.mode.Pitch }

func (s *DirectSurface) DrawPixel(x, y int, color uint32) {
	if x < 0 || y < 0 || x >= s.mode.Width || y >= s.mode.Height {
		return
	}
	s.display.RenderToFrontBuffer(func(fb *PixelRegion) { fb.Set(x, y, color) })
	s.display.MarkRectDirty(x, y, 1, 1)
}

func (s *DirectSurface) DrawGlyph(g GlyphMask, x, y int, fg, bg uint32, opaque bool) {
	s.display.RenderToFrontBuffer(func(fb *PixelRegion) { fb.BlitGlyph(g, x, y, fg, bg, opaque) })
	s.display.MarkRectDirty(x, y, g.Width, g.Height)
}

func (s *DirectSurface) FillRect(x, y, w, h int, color uint32) {
	s.display.RenderToFrontBuffer(func(fb *PixelRegion) { fb.FillRect(x, y, w, h, color) })
	s.display.MarkRectDirty(x, y, w, h)
}

func (s *DirectSurface) Clear(color uint32) {
	s.display.RenderToFrontBuffer(func(fb *PixelRegion) { fb.Fill(color) })
	s.display.MarkRectDirty(0, 0, s.mode.Width, s.mode.Height)
}

func (s *DirectSurface) Scroll(lines, lineHeight int, bg uint32) {
	n := lines * lineHeight
	if n <= 0 || n >= s.mode.Height {
		return
	}
	s.display.RenderToFrontBuffer(func(fb *PixelRegion) { fb.ScrollUp(n, bg) })
	s.display.MarkRectDirty(0, 0, s.mode.Width, s.mode.Height)
}

func (s *DirectSurface) Present()                     {}
func (s *DirectSurface) PresentRegion(_, _, _, _ int) {}
