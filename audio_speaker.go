package main

import (
	"math"
	"sync/atomic"
	"time"
)

const (
	speakerSampleRate = 44100
	speakerVolume     = 0.2
)

// SampleSource produces mono float32 samples for an audio player.
type SampleSource interface {
	ReadSample() float32
}

// PCSpeaker is a one-voice square wave generator, the hosted stand-in for
// PIT channel 2 gating the speaker. Beep is called from the main loop and
// ReadSample from the audio callback; they share only atomics.
type PCSpeaker struct {
	sampleRate int
	freqBits   atomic.Uint64
	remaining  atomic.Int64
	phase      float64
}

func NewPCSpeaker(sampleRate int) *PCSpeaker {
	if sampleRate <= 0 {
		sampleRate = speakerSampleRate
	}
	return &PCSpeaker{sampleRate: sampleRate}
}

// Beep starts a tone, replacing whatever is sounding. It does not block.
func (s *PCSpeaker) Beep(hz float64, d time.Duration) {
	if hz <= 0 || d <= 0 {
		s.remaining.Store(0)
		return
	}
	s.freqBits.Store(math.Float64bits(hz))
	s.remaining.Store(int64(d.Seconds() * float64(s.sampleRate)))
}

// Busy reports whether a tone is still sounding.
func (s *PCSpeaker) Busy() bool { return s.remaining.Load() > 0 }

func (s *PCSpeaker) ReadSample() float32 {
	if s.remaining.Add(-1) < 0 {
		s.remaining.Store(0)
		s.phase = 0
		return 0
	}
	hz := math.Float64frombits(s.freqBits.Load())
	s.phase += hz / float64(s.sampleRate)
	if s.phase >= 1 {
		s.phase -= math.Floor(s.phase)
	}
	if s.phase < 0.5 {
		return speakerVolume
	}
	return -speakerVolume
}

// AudioError carries context for audio backend failures.
type AudioError struct {
	Operation string
	Err       error
}

func (e *AudioError) Error() string {
	return "audio " + e.Operation + " failed: " + e.Err.Error()
}

func (e *AudioError) Unwrap() error { return e.Err }
