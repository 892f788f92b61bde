package main

import (
	"errors"
	"testing"
	"time"
)

func TestPCSpeaker_SilentByDefault(t *testing.T) {
	s := NewPCSpeaker(8000)
	for range 100 {
		if v := s.ReadSample(); v != 0 {
			t.Fatalf("idle sample = %v", v)
		}
	}
	if s.Busy() {
		t.Fatal("idle speaker reports busy")
	}
}

func TestPCSpeaker_SquareWave(t *testing.T) {
	s := NewPCSpeaker(8000)
	s.Beep(1000, 10*time.Millisecond)
	if !s.Busy() {
		t.Fatal("speaker should be busy")
	}
	// 8 samples per period: four high then four low.
	var pos, neg int
	for range 80 {
		switch v := s.ReadSample(); {
		case v > 0:
			pos++
		case v < 0:
			neg++
		}
	}
	if pos+neg < 79 || pos < 35 || neg < 35 {
		t.Fatalf("pos=%d neg=%d", pos, neg)
	}
	if s.Busy() {
		t.Fatal("tone should have ended after its duration")
	}
	if v := s.ReadSample(); v != 0 {
		t.Fatalf("sample after tone = %v", v)
	}
}

func TestPCSpeaker_ZeroDurationSilences(t *testing.T) {
	s := NewPCSpeaker(8000)
	s.Beep(440, time.Second)
	s.Beep(440, 0)
	if s.Busy() {
		t.Fatal("zero-length beep should stop the tone")
	}
}

func TestAudioError_Unwrap(t *testing.T) {
	base := errors.New("device busy")
	err := &AudioError{Operation: "open", Err: base}
	if !errors.Is(err, base) || err.Error() != "audio open failed: device busy" {
		t.Fatalf("err = %v", err)
	}
}
