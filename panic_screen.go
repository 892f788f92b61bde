package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	panicBackground = colorRed
	panicOrigin     = 50
	panicRule       = "--------------------------------------------------------------------------"
)

// Panic draws the fatal-error screen and halts the main loop. Timer and
// keyboard interrupts keep arriving but nothing consumes them.
func (m *Machine) Panic(reason string) {
	_, file, line, _ := runtime.Caller(1)
	m.panicScreen(reason, file, line)
}

func (m *Machine) panicScreen(reason, file string, line int) {
	if !m.halted.CompareAndSwap(false, true) {
		return
	}
	fmt.Fprintf(os.Stderr, "panic: %s\n", reason)

	c := m.console
	c.SetColors(colorWhite, panicBackground)
	c.Clear(panicBackground)
	c.MoveTo(panicOrigin, panicOrigin)

	c.WriteString("A problem has been detected and FigConsole has been shut down to prevent damage\n")
	c.WriteString("to your computer.\n\n")
	c.WriteString("KERNEL_PANIC_CRITICAL_ERROR\n\n")
	c.WriteString("REASON:\n")
	c.Printf("  %s\n\n", reason)
	if file != "" {
		c.WriteString("LOCATION:\n")
		c.Printf("  File: %s\n", filepath.Base(file))
		c.Printf("  Line: %d\n\n", line)
	}
	c.WriteString(panicRule + "\n")
	c.WriteString("TECHNICAL INFORMATION:\n\n")
	c.Printf("PROCESSOR:\n  %s/%s, %d threads\n\n", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	c.Printf("*** STOP: 0x0000001E (ticks=%d, surface=%s)\n", m.timer.Ticks(), c.Kind())
	c.WriteString(panicRule + "\n")
	c.WriteString("The system has halted. Please restart your machine manually.\n")
	c.Flush()
}
