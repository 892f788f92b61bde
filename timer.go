package main

import (
	"context"
	"sync/atomic"
	"time"
)

const (
	defaultTimerHz = 100
	minCalibrateHz = 10
)

// Timer models the programmable interval timer. Tick runs in interrupt
// context and only touches atomics.
type Timer struct {
	ticks   atomic.Uint64
	hz      atomic.Uint64
	nominal int
	onTick  func()
}

func NewTimer(hz int, onTick func()) *Timer {
	if hz <= 0 {
		hz = defaultTimerHz
	}
	t := &Timer{nominal: hz, onTick: onTick}
	t.hz.Store(uint64(hz))
	return t
}

// Tick is the timer interrupt handler.
func (t *Timer) Tick() {
	t.ticks.Add(1)
	if t.onTick != nil {
		t.onTick()
	}
}

func (t *Timer) Ticks() uint64 { return t.ticks.Load() }

// Hz is the calibrated tick rate.
func (t *Timer) Hz() uint64 { return t.hz.Load() }

// Run fires Tick at the nominal rate until ctx is cancelled.
func (t *Timer) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(t.nominal))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.Tick()
		}
	}
}

// Calibrate counts ticks across a wall-clock window and derives the real
// rate. Implausible results fall back to the nominal rate.
func (t *Timer) Calibrate(ctx context.Context, window time.Duration) uint64 {
	if window <= 0 {
		return t.Hz()
	}
	start := t.Ticks()
	select {
	case <-ctx.Done():
		return t.Hz()
	case <-time.After(window):
	}
	hz := uint64(float64(t.Ticks()-start) * float64(time.Second) / float64(window))
	if hz < minCalibrateHz {
		hz = uint64(t.nominal)
	}
	t.hz.Store(hz)
	return hz
}

// Sleep polls the tick counter until seconds worth of ticks have passed,
// idling one tick period between polls.
func (t *Timer) Sleep(ctx context.Context, seconds uint64) error {
	start := t.Ticks()
	wait := seconds * t.Hz()
	period := time.Second / time.Duration(t.nominal)
	for t.Ticks()-start < wait {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(period):
		}
	}
	return nil
}

// Uptime converts the tick count to a duration at the calibrated rate.
func (t *Timer) Uptime() time.Duration {
	hz := t.Hz()
	if hz == 0 {
		return 0
	}
	return time.Duration(t.Ticks()) * time.Second / time.Duration(hz)
}
