package main

import (
	"context"
	"sync/atomic"
)

const controllerFIFOSize = 256

// KeyboardController stands in for the 8042: host-side key sources deposit
// scancodes into its FIFO and a single goroutine delivers them one at a time
// to the keyboard interrupt handler. Funnelling every source through that
// goroutine keeps the key queue single-producer.
type KeyboardController struct {
	fifo    chan byte
	irq     func(byte)
	dropped atomic.Uint64
}

func NewKeyboardController(irq func(byte)) *KeyboardController {
	return &KeyboardController{
		fifo: make(chan byte, controllerFIFOSize),
		irq:  irq,
	}
}

// Inject queues one scancode. A full FIFO drops the byte.
func (c *KeyboardController) Inject(sc byte) bool {
	select {
	case c.fifo <- sc:
		return true
	default:
		c.dropped.Add(1)
		return false
	}
}

// InjectAll queues seq and returns how many bytes were accepted.
func (c *KeyboardController) InjectAll(seq []byte) int {
	n := 0
	for _, sc := range seq {
		if c.Inject(sc) {
			n++
		}
	}
	return n
}

// Run raises the keyboard interrupt for each queued scancode until ctx is
// cancelled.
func (c *KeyboardController) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case sc := <-c.fifo:
			c.irq(sc)
		}
	}
}

// Dropped counts scancodes lost to a full FIFO.
func (c *KeyboardController) Dropped() uint64 { return c.dropped.Load() }
