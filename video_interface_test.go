package main

import (
	"errors"
	"testing"
)

func TestNewVideoOutput_Null(t *testing.T) {
	out, err := NewVideoOutput(VIDEO_BACKEND_NULL)
	if err != nil {
		t.Fatalf("NewVideoOutput: %v", err)
	}
	if out.GetRefreshRate() != 60 {
		t.Fatalf("refresh = %d", out.GetRefreshRate())
	}
}

func TestNewVideoOutput_Unknown(t *testing.T) {
	_, err := NewVideoOutput(99)
	var verr *VideoError
	if !errors.As(err, &verr) || verr.Operation != "backend creation" {
		t.Fatalf("expected VideoError, got %v", err)
	}
}

func TestClampScale(t *testing.T) {
	for in, want := range map[int]int{-1: 1, 0: 1, 2: 2, 4: 4, 9: 4} {
		if got := ClampScale(in); got != want {
			t.Errorf("ClampScale(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestDisplay_RejectsBadMode(t *testing.T) {
	if _, err := NewDisplay(DisplayMode{Width: 10, Height: 10, Pitch: 5}, nil); err == nil {
		t.Fatal("expected error for pitch < width")
	}
}

func TestDisplay_SnapshotMatchesFrontMemory(t *testing.T) {
	d, _ := newDisplayForTest(t, 4, 4)
	NewDirectSurface(d).DrawPixel(2, 3, 0x112233)
	img := d.Snapshot()
	c := img.RGBAAt(2, 3)
	if c.R != 0x11 || c.G != 0x22 || c.B != 0x33 || c.A != 0xFF {
		t.Fatalf("snapshot pixel = %v", c)
	}
}

func TestFramePool_FirstFitAndFree(t *testing.T) {
	p := NewFramePool(8 * FrameSize)
	a, err := p.AllocFrames(3)
	if err != nil || a.Start != 0 {
		t.Fatalf("alloc a = %+v,%v", a, err)
	}
	b, _ := p.AllocFrames(3)
	if b.Start != 3 {
		t.Fatalf("b.Start = %d", b.Start)
	}
	if _, err := p.AllocFrames(3); !errors.Is(err, ErrOutOfFrames) {
		t.Fatalf("expected ErrOutOfFrames, got %v", err)
	}
	p.FreeFrames(a)
	c, err := p.AllocFrames(2)
	if err != nil || c.Start != 0 {
		t.Fatalf("freed frames not reused: %+v,%v", c, err)
	}
	if p.UsedKB() != 20 || p.TotalKB() != 32 {
		t.Fatalf("used=%d total=%d", p.UsedKB(), p.TotalKB())
	}
	if _, err := p.AllocFrames(0); err == nil {
		t.Fatal("zero-frame alloc should fail")
	}
}

func TestFramePool_AllocZeroesMemory(t *testing.T) {
	p := NewFramePool(2 * FrameSize)
	r, _ := p.AllocFrames(1)
	p.Words(r)[10] = 0xDEADBEEF
	p.FreeFrames(r)
	r, _ = p.AllocFrames(1)
	if p.Words(r)[10] != 0 {
		t.Fatal("reallocated frame not cleared")
	}
}

func TestFramesFor(t *testing.T) {
	for in, want := range map[int]int{0: 0, 1: 1, FrameSize: 1, FrameSize + 1: 2} {
		if got := FramesFor(in); got != want {
			t.Errorf("FramesFor(%d) = %d, want %d", in, got, want)
		}
	}
}
