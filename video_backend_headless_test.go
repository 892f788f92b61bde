//go:build headless

package main

import (
	"testing"
	"time"
)

func TestHeadlessOutput_DisplayConfig_ScaleAndFullscreen(t *testing.T) {
	out := &HeadlessVideoOutput{}
	cfg := DisplayConfig{
		Width:      320,
		Height:     240,
		Scale:      2,
		Fullscreen: true,
	}
	if err := out.SetDisplayConfig(cfg); err != nil {
		t.Fatalf("SetDisplayConfig returned error: %v", err)
	}
	got := out.GetDisplayConfig()
	if got.Scale != 2 || !got.Fullscreen {
		t.Fatalf("expected Scale=2, Fullscreen=true; got Scale=%d, Fullscreen=%v", got.Scale, got.Fullscreen)
	}
}

func TestHeadlessOutput_CountsFrames(t *testing.T) {
	out, err := NewEbitenOutput()
	if err != nil {
		t.Fatalf("NewEbitenOutput: %v", err)
	}
	d, err := NewDisplay(DisplayMode{Width: 8, Height: 8}, out)
	if err != nil {
		t.Fatalf("NewDisplay: %v", err)
	}
	if err := d.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	NewDirectSurface(d).FillRect(0, 0, 8, 8, colorWhite)
	if err := d.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if out.GetFrameCount() != 1 || !out.IsStarted() {
		t.Fatalf("frames=%d started=%v", out.GetFrameCount(), out.IsStarted())
	}
}

func TestHeadlessOutput_NeverCloses(t *testing.T) {
	out, _ := NewEbitenOutput()
	select {
	case <-out.(Closable).Done():
		t.Fatal("headless output reported a closed window")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestHeadlessOtoPlayer_DrainsSpeaker(t *testing.T) {
	sp := NewPCSpeaker(1000)
	op, _ := NewOtoPlayer(1000)
	op.SetupPlayer(sp)
	op.Start()
	sp.Beep(100, 50*time.Millisecond)
	buf := make([]byte, 4*100)
	if n, err := op.Read(buf); err != nil || n != len(buf) {
		t.Fatalf("Read = %d,%v", n, err)
	}
	if sp.Busy() {
		t.Fatal("reading past the tone length should end it")
	}
}
