package main

import "sync/atomic"

// KeyEvent is one decoded character. Printable values are literal Latin-1
// code points; the sentinels below are control signals sharing the type.
type KeyEvent byte

const (
	KeyBackspace   KeyEvent = 0x08
	KeyNewline     KeyEvent = 0x0A
	KeyHistoryUp   KeyEvent = 0x11
	KeyHistoryDown KeyEvent = 0x12
)

// IsPrintable reports whether ev is text rather than a control signal.
func (ev KeyEvent) IsPrintable() bool {
	return (ev >= 0x20 && ev <= 0x7E) || ev >= 0xA0
}

const keyQueueSize = 128

// KeyQueue carries key events from the keyboard interrupt to the main loop.
// It is a single-producer/single-consumer ring with free-running atomic
// cursors; neither side ever blocks or takes a lock.
//
// There is no backpressure. When the producer laps the consumer it simply
// overwrites the oldest unread slot. Each slot carries the low 32 bits of the
// cursor that wrote it, so the consumer can tell a lapped slot from a fresh
// one and skip forward to the oldest event that survived.
type KeyQueue struct {
	slots    [keyQueueSize]atomic.Uint64
	write    atomic.Uint64
	read     atomic.Uint64
	overruns atomic.Uint64
}

func packSlot(seq uint64, ev KeyEvent) uint64 { return uint64(uint32(seq))<<32 | uint64(ev) }

// Push is called from interrupt context only.
func (q *KeyQueue) Push(ev KeyEvent) {
	w := q.write.Load()
	q.slots[w%keyQueueSize].Store(packSlot(w, ev))
	q.write.Store(w + 1)
}

// Pop is called from the main loop only.
func (q *KeyQueue) Pop() (KeyEvent, bool) {
	r := q.read.Load()
	for {
		w := q.write.Load()
		if r >= w {
			q.read.Store(r)
			return 0, false
		}
		if w-r > keyQueueSize {
			q.overruns.Add(w - keyQueueSize - r)
			r = w - keyQueueSize
		}
		packed := q.slots[r%keyQueueSize].Load()
		if uint32(packed>>32) == uint32(r) {
			q.read.Store(r + 1)
			return KeyEvent(packed), true
		}
		// The producer lapped us while we were reading; resync on the next pass.
	}
}

// Len is the number of unread events, capped at the ring size.
func (q *KeyQueue) Len() int {
	n := q.write.Load() - q.read.Load()
	if n > keyQueueSize {
		n = keyQueueSize
	}
	return int(n)
}

// Overruns counts events lost to overwrites so far.
func (q *KeyQueue) Overruns() uint64 { return q.overruns.Load() }
