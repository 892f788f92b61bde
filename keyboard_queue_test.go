package main

import (
	"sync"
	"testing"
)

func TestKeyQueue_FIFO(t *testing.T) {
	var q KeyQueue
	for _, ev := range []KeyEvent{'a', 'b', KeyNewline} {
		q.Push(ev)
	}
	if q.Len() != 3 {
		t.Fatalf("Len = %d, want 3", q.Len())
	}
	for _, want := range []KeyEvent{'a', 'b', KeyNewline} {
		got, ok := q.Pop()
		if !ok || got != want {
			t.Fatalf("Pop = %q,%v want %q", got, ok, want)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("Pop on empty queue returned an event")
	}
}

func TestKeyQueue_OverflowKeepsMostRecent(t *testing.T) {
	var q KeyQueue
	total := keyQueueSize + 1
	for i := range total {
		q.Push(KeyEvent(i))
	}
	if q.Len() != keyQueueSize {
		t.Fatalf("Len = %d, want %d", q.Len(), keyQueueSize)
	}
	for i := 1; i < total; i++ {
		got, ok := q.Pop()
		if !ok || got != KeyEvent(i) {
			t.Fatalf("Pop #%d = %d,%v want %d", i, got, ok, i)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("queue should be drained")
	}
	if q.Overruns() != 1 {
		t.Fatalf("Overruns = %d, want 1", q.Overruns())
	}
}

func TestKeyQueue_InterleavedWrap(t *testing.T) {
	var q KeyQueue
	for round := range 5 * keyQueueSize {
		q.Push(KeyEvent(round))
		got, ok := q.Pop()
		if !ok || got != KeyEvent(round) {
			t.Fatalf("round %d: Pop = %d,%v", round, got, ok)
		}
	}
	if q.Overruns() != 0 {
		t.Fatalf("Overruns = %d, want 0", q.Overruns())
	}
}

func TestKeyQueue_ConcurrentProducerConsumer(t *testing.T) {
	var q KeyQueue
	const n = 10000
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range n {
			q.Push(KeyEvent(i % 256))
		}
	}()

	received := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for {
		if _, ok := q.Pop(); ok {
			received++
			continue
		}
		select {
		case <-done:
			for {
				if _, ok := q.Pop(); !ok {
					break
				}
				received++
			}
			if uint64(received)+q.Overruns() != n {
				t.Fatalf("received %d + overruns %d != %d", received, q.Overruns(), n)
			}
			return
		default:
		}
	}
}

func TestKeyEvent_IsPrintable(t *testing.T) {
	tests := []struct {
		ev   KeyEvent
		want bool
	}{
		{' ', true},
		{'~', true},
		{0x7F, false},
		{0x9F, false},
		{0xA0, true},
		{0xE9, true},
		{KeyBackspace, false},
		{KeyNewline, false},
		{KeyHistoryUp, false},
		{KeyHistoryDown, false},
	}
	for _, tt := range tests {
		if got := tt.ev.IsPrintable(); got != tt.want {
			t.Errorf("KeyEvent(0x%02X).IsPrintable() = %v, want %v", byte(tt.ev), got, tt.want)
		}
	}
}
