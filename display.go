// display.go - Linear framebuffer and scanout

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
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"
)

// DisplayMode is the fixed geometry handed over at boot. Pitch is in pixels
// and may exceed Width when scanlines are padded.
type DisplayMode struct {
	Width  int
	Height int
	Pitch  int
}

// Display models the boot-time linear framebuffer: a block of front memory
// scanned out to a VideoOutput. Writers touch front memory through
// RenderToFrontBuffer and report damage with MarkRectDirty; the refresh loop
// pushes damaged rows to the output.
type Display struct {
	mutex      sync.Mutex
	mode       DisplayMode
	front      *PixelRegion
	output     VideoOutput
	rgba       []byte
	dirty      image.Rectangle
	scale      int
	fullscreen bool
}

func NewDisplay(mode DisplayMode, output VideoOutput) (*Display, error) {
	if mode.Pitch == 0 {
		mode.Pitch = mode.Width
	}
	front := NewPixelRegion(make([]uint32, mode.Pitch*mode.Height), mode.Width, mode.Height, mode.Pitch)
	if front == nil {
		return nil, &VideoError{
			Operation: "display setup",
			Details:   fmt.Sprintf("invalid mode %dx%d pitch %d", mode.Width, mode.Height, mode.Pitch),
		}
	}
	return &Display{
		mode:   mode,
		front:  front,
		output: output,
		rgba:   make([]byte, mode.Width*mode.Height*4),
		scale:  1,
	}, nil
}

func (d *Display) Mode() DisplayMode { return d.mode }

// SetWindow records how the output should present the mode. Applied on Start.
func (d *Display) SetWindow(scale int, fullscreen bool) {
	d.mutex.Lock()
	d.scale = ClampScale(scale)
	d.fullscreen = fullscreen
	d.mutex.Unlock()
}

// Start configures and starts the output.
func (d *Display) Start() error {
	if d.output == nil {
		return nil
	}
	d.mutex.Lock()
	cfg := DisplayConfig{
		Width:       d.mode.Width,
		Height:      d.mode.Height,
		Scale:       d.scale,
		RefreshRate: 60,
		PixelFormat: PixelFormatRGBA,
		Fullscreen:  d.fullscreen,
	}
	d.mutex.Unlock()
	if err := d.output.SetDisplayConfig(cfg); err != nil {
		return &VideoError{Operation: "display setup", Details: "output rejected mode", Err: err}
	}
	return d.output.Start()
}

// RenderToFrontBuffer runs fn with exclusive access to front memory.
func (d *Display) RenderToFrontBuffer(fn func(fb *PixelRegion)) {
	d.mutex.Lock()
	fn(d.front)
	d.mutex.Unlock()
}

// MarkRectDirty adds a damaged rectangle for the next refresh.
func (d *Display) MarkRectDirty(x, y, w, h int) {
	r := image.Rect(x, y, x+w, y+h).Intersect(image.Rect(0, 0, d.mode.Width, d.mode.Height))
	if r.Empty() {
		return
	}
	d.mutex.Lock()
	d.dirty = d.dirty.Union(r)
	d.mutex.Unlock()
}

// Flush converts damaged rows to RGBA and hands the frame to the output.
func (d *Display) Flush() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.dirty.Empty() {
		return nil
	}
	r := d.dirty
	d.dirty = image.Rectangle{}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := d.front.Row(y)
		dst := d.rgba[(y*d.mode.Width+r.Min.X)*4:]
		for i, px := range row[r.Min.X:r.Max.X] {
			dst[i*4] = byte(px >> 16)
			dst[i*4+1] = byte(px >> 8)
			dst[i*4+2] = byte(px)
			dst[i*4+3] = 0xFF
		}
	}
	if d.output == nil {
		return nil
	}
	return d.output.UpdateFrame(d.rgba)
}

// Run refreshes the output at 60 Hz until ctx is cancelled.
func (d *Display) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := d.Flush(); err != nil {
				return &VideoError{Operation: "refresh", Details: "frame update", Err: err}
			}
		}
	}
}

// Snapshot copies front memory into an image.
func (d *Display) Snapshot() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, d.mode.Width, d.mode.Height))
	d.RenderToFrontBuffer(func(fb *PixelRegion) {
		for y := range d.mode.Height {
			for x, px := range fb.Row(y) {
				img.SetRGBA(x, y, color.RGBA{R: byte(px >> 16), G: byte(px >> 8), B: byte(px), A: 0xFF})
			}
		}
	})
	return img
}

// PixelAt reads one pixel of front memory.
func (d *Display) PixelAt(x, y int) uint32 {
	var px uint32
	d.RenderToFrontBuffer(func(fb *PixelRegion) { px = fb.At(x, y) })
	return px
}
