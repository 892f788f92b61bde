package main

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTimer_TickCallsHook(t *testing.T) {
	calls := 0
	tm := NewTimer(100, func() { calls++ })
	tm.Tick()
	tm.Tick()
	if tm.Ticks() != 2 || calls != 2 {
		t.Fatalf("ticks=%d calls=%d", tm.Ticks(), calls)
	}
}

func TestTimer_DefaultRate(t *testing.T) {
	if hz := NewTimer(0, nil).Hz(); hz != defaultTimerHz {
		t.Fatalf("Hz = %d, want %d", hz, defaultTimerHz)
	}
}

func TestTimer_Uptime(t *testing.T) {
	tm := NewTimer(100, nil)
	for range 250 {
		tm.Tick()
	}
	if got := tm.Uptime(); got != 2500*time.Millisecond {
		t.Fatalf("Uptime = %v", got)
	}
}

func TestTimer_CalibrateFallsBackWithoutTicks(t *testing.T) {
	tm := NewTimer(100, nil)
	if hz := tm.Calibrate(context.Background(), 20*time.Millisecond); hz != 100 {
		t.Fatalf("Calibrate with a stopped timer = %d, want nominal 100", hz)
	}
}

func TestTimer_CalibrateMeasuresRunningTimer(t *testing.T) {
	tm := NewTimer(200, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tm.Run(ctx)

	hz := tm.Calibrate(ctx, 300*time.Millisecond)
	if hz < 50 || hz > 400 {
		t.Fatalf("calibrated %d Hz for a 200 Hz timer", hz)
	}
}

func TestTimer_SleepWaitsForTicks(t *testing.T) {
	tm := NewTimer(100, nil)
	done := make(chan error, 1)
	go func() { done <- tm.Sleep(context.Background(), 1) }()

	select {
	case <-done:
		t.Fatal("Sleep returned before any ticks")
	case <-time.After(30 * time.Millisecond):
	}
	for range 100 {
		tm.Tick()
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Sleep: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Sleep did not return after enough ticks")
	}
}

func TestTimer_SleepCancelled(t *testing.T) {
	tm := NewTimer(100, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tm.Sleep(ctx, 10); !errors.Is(err, context.Canceled) {
		t.Fatalf("Sleep = %v, want context.Canceled", err)
	}
}
