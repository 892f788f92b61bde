package main

import (
	"fmt"
)

// BufferedSurface draws into a back buffer carved out of page frames from the
// frame pool. Nothing reaches display memory until Present or PresentRegion
// copies it out.
type BufferedSurface struct {
	display *Display
	pool    *FramePool
	frames  FrameRange
	back    *PixelRegion
	mode    DisplayMode
}

// NewBufferedSurface allocates a width*height back buffer from pool. On
// failure the pool is left untouched and the error wraps ErrOutOfFrames.
func NewBufferedSurface(display *Display, pool *FramePool) (*BufferedSurface, error) {
	mode := display.Mode()
	bytesNeeded := mode.Width * mode.Height * 4
	frames, err := pool.AllocFrames(FramesFor(bytesNeeded))
	if err != nil {
		return nil, fmt.Errorf("back buffer of %d bytes: %w", bytesNeeded, err)
	}
	back := NewPixelRegion(pool.Words(frames), mode.Width, mode.Height, mode.Width)
	if back == nil {
		pool.FreeFrames(frames)
		return nil, &VideoError{Operation: "surface setup", Details: "frame range too small for back buffer"}
	}
	s := &BufferedSurface{display: display, pool: pool, frames: frames, back: back, mode: mode}
	// Start from what is on screen so a switch is seamless.
	display.RenderToFrontBuffer(func(fb *PixelRegion) {
		back.CopyRectFrom(fb, 0, 0, mode.Width, mode.Height)
	})
	return s, nil
}

func (s *BufferedSurface) Kind() SurfaceKind { return SurfaceBuffered }
func (s *BufferedSurface) Width() int        { return s.mode.Width }
func (s *BufferedSurface) Height() int       { return s.mode.Height }
func (s *BufferedSurface) Pitch() int        { return s.back.Pitch() }

func (s *BufferedSurface) DrawPixel(x, y int, color uint32) { s.back.Set(x, y, color) }

func (s *BufferedSurface) DrawGlyph(g GlyphMask, x, y int, fg, bg uint32, opaque bool) {
	s.back.BlitGlyph(g, x, y, fg, bg, opaque)
}

func (s *BufferedSurface) FillRect(x, y, w, h int, color uint32) { s.back.FillRect(x, y, w, h, color) }
func (s *BufferedSurface) Clear(color uint32)                    { s.back.Fill(color) }

func (s *BufferedSurface) Scroll(lines, lineHeight int, bg uint32) {
	s.back.ScrollUp(lines*lineHeight, bg)
}

func (s *BufferedSurface) Present() {
	s.PresentRegion(0, 0, s.mode.Width, s.mode.Height)
}

func (s *BufferedSurface) PresentRegion(x, y, w, h int) {
	s.display.RenderToFrontBuffer(func(fb *PixelRegion) {
		fb.CopyRectFrom(s.back, x, y, w, h)
	})
	s.display.MarkRectDirty(x, y, w, h)
}

// Release returns the back buffer frames to the pool. The surface must not
// be used afterwards.
func (s *BufferedSurface) Release() {
	if s.back == nil {
		return
	}
	s.pool.FreeFrames(s.frames)
	s.back = nil
}
