// machine.go - Boot context and main loop

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/FigConsole
License: GPLv3 or later
*/

package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Machine is the boot context: every piece of console state lives here,
// created once and shared by reference with the interrupt sources and the
// main loop.
type Machine struct {
	cfg *Config

	display  *Display
	pool     *FramePool
	direct   *DirectSurface
	buffered *BufferedSurface
	font     *Font
	console  *Console

	keymap     *Keymap
	keys       *KeyQueue
	decoder    *ScancodeDecoder
	encoder    *ScancodeEncoder
	controller *KeyboardController

	history  *History
	editor   *LineEditor
	commands *CommandSet

	timer    *Timer
	speaker  *PCSpeaker
	wake     chan struct{}
	lastTick uint64
	halted   atomic.Bool
	kind     atomic.Int32
	ctx      context.Context

	// HostLog, when set, receives a plain-text copy of the boot log.
	HostLog io.Writer
}

// NewMachine builds the machine described by cfg on top of output.
func NewMachine(cfg *Config, output VideoOutput) (*Machine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	font, err := LoadFontFile(cfg.Font)
	if err != nil {
		return nil, err
	}
	keymap, _ := KeymapByName(cfg.Keymap)
	codepage, _ := CodepageByName(cfg.Codepage)
	fg, _ := ParseColor(cfg.Foreground)
	bg, _ := ParseColor(cfg.Background)

	display, err := NewDisplay(DisplayMode{Width: cfg.Width, Height: cfg.Height}, output)
	if err != nil {
		return nil, err
	}
	display.SetWindow(ClampScale(cfg.Scale), cfg.Fullscreen)

	m := &Machine{
		cfg:      cfg,
		display:  display,
		pool:     NewFramePool(cfg.MemoryMB << 20),
		font:     font,
		keymap:   keymap,
		keys:     &KeyQueue{},
		encoder:  NewScancodeEncoder(keymap),
		history:  NewHistory(),
		commands: DefaultCommands(),
		speaker:  NewPCSpeaker(speakerSampleRate),
		wake:     make(chan struct{}, 1),
	}
	m.direct = NewDirectSurface(display)
	m.console = NewConsole(m.direct, font)
	m.console.SetCodepage(codepage)
	m.console.SetBlinkTicks(uint64(cfg.BlinkTicks))
	m.console.SetColors(fg, bg)
	m.decoder = NewScancodeDecoder(keymap, m.keys)
	m.controller = NewKeyboardController(m.KeyboardIRQ)
	m.editor = NewLineEditor(m.console, m.history, m)
	m.timer = NewTimer(cfg.TimerHz, m.TimerIRQ)
	return m, nil
}

func (m *Machine) Console() *Console               { return m.console }
func (m *Machine) Display() *Display               { return m.display }
func (m *Machine) Pool() *FramePool                { return m.pool }
func (m *Machine) Keys() *KeyQueue                 { return m.keys }
func (m *Machine) History() *History               { return m.history }
func (m *Machine) Editor() *LineEditor             { return m.editor }
func (m *Machine) Commands() *CommandSet           { return m.commands }
func (m *Machine) Timer() *Timer                   { return m.timer }
func (m *Machine) Speaker() *PCSpeaker             { return m.speaker }
func (m *Machine) Controller() *KeyboardController { return m.controller }
func (m *Machine) Encoder() *ScancodeEncoder       { return m.encoder }
func (m *Machine) Halted() bool                    { return m.halted.Load() }

// KeyboardIRQ is the keyboard interrupt handler. It runs on the controller
// goroutine only.
func (m *Machine) KeyboardIRQ(sc byte) {
	m.decoder.HandleScancode(sc)
	m.signal()
}

// TimerIRQ is the timer interrupt hook; the tick itself is already counted.
func (m *Machine) TimerIRQ() {
	m.signal()
}

func (m *Machine) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// TypeText feeds host text through the keyboard controller as if it had
// been typed on the configured layout.
func (m *Machine) TypeText(s string) int {
	var seq []byte
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\b' || r == 0x7F {
			seq = m.encoder.AppendKey(seq, byte(r))
			continue
		}
		b, ok := m.console.codepage.EncodeRune(r)
		if !ok {
			continue
		}
		seq = m.encoder.AppendKey(seq, b)
	}
	return m.controller.InjectAll(seq)
}

func (m *Machine) runContext() context.Context {
	if m.ctx != nil {
		return m.ctx
	}
	return context.Background()
}

// Run starts the devices and the main loop and blocks until ctx is done or
// one of them fails.
func (m *Machine) Run(ctx context.Context) error {
	if err := m.display.Start(); err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.timer.Run(ctx) })
	g.Go(func() error { return m.controller.Run(ctx) })
	g.Go(func() error { return m.display.Run(ctx) })
	g.Go(func() error {
		m.ctx = ctx
		m.Boot(ctx)
		return m.loop(ctx)
	})
	return g.Wait()
}

// Boot clears the screen, prints the boot log and the first prompt.
func (m *Machine) Boot(ctx context.Context) {
	_, bg := m.console.Colors()
	mode := m.display.Mode()
	m.console.Clear(bg)

	m.bootLog("OK", "FigConsole booting")
	m.bootLog("INFO", "Max Resolution set : %dx%d", mode.Width, mode.Height)
	m.bootLog("INFO", "Font %dx%d, %d glyphs", m.font.Width(), m.font.Height(), m.font.GlyphCount())
	m.bootLog("INFO", "Initializing time subsystem...")
	hz := m.timer.Calibrate(ctx, m.cfg.Calibrate)
	m.bootLog("OK", "Time subsystem ready (%d Hz)", hz)
	m.bootLog("INFO", "Initializing Memory Manager...")
	m.bootLog("OK", "Memory Manager ready (%d KB)", m.pool.TotalKB())
	if m.cfg.Buffered {
		if err := m.SwitchSurface(SurfaceBuffered); err != nil {
			m.bootLog("ERROR", "Buffered framebuffer unavailable: %v", err)
		} else {
			m.bootLog("OK", "Buffered framebuffer active")
		}
	}
	m.bootLog("OK", "Kernel ready")
	m.bootLog("OK", "Keyboard subsystem ready (%s)", m.keymap.Name())
	m.prompt()
}

func (m *Machine) prompt() {
	m.console.WriteString("> ")
	m.console.LockPrompt()
}

var bootLogColors = map[string]uint32{
	"OK":    colorGreen,
	"INFO":  colorYellow,
	"ERROR": colorRed,
}

// bootLog prints one tagged boot message on the console.
func (m *Machine) bootLog(level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fg, _ := m.console.Colors()
	m.console.SetColor(bootLogColors[level])
	m.console.Printf("[%s] ", centerTag(level, 5))
	m.console.SetColor(fg)
	m.console.WriteString(msg + "\n")
	if m.HostLog != nil {
		fmt.Fprintf(m.HostLog, "[%s] %s\n", level, msg)
	}
}

func centerTag(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}

func (m *Machine) loop(ctx context.Context) error {
	for {
		if !m.halted.Load() {
			m.Step()
		}
		select {
		case <-ctx.Done():
			return nil
		case <-m.wake:
		}
	}
}

// Step is one main-loop iteration: one blink tick per timer tick seen since
// the last call, then at most one key event. It reports whether an event was
// handled. A Go panic raised while handling it lands on the panic screen.
func (m *Machine) Step() (handled bool) {
	if m.halted.Load() {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			m.panicScreen(fmt.Sprint(r), "", 0)
		}
	}()
	for now := m.timer.Ticks(); m.lastTick < now; m.lastTick++ {
		m.console.Tick()
	}
	ev, ok := m.keys.Pop()
	if !ok {
		return false
	}
	m.editor.HandleKey(ev)
	if ev == KeyNewline && !m.halted.Load() {
		m.console.WriteString("\n")
		m.prompt()
	}
	return true
}

// Dispatch runs a submitted command line.
func (m *Machine) Dispatch(name, args string) {
	cmd, ok := m.commands.Lookup(name)
	if !ok {
		m.console.WriteString("\nUnknown command")
		return
	}
	cmd.Run(m, args)
}

// SwitchSurface re-points the console at the requested surface kind. A
// failed allocation leaves the current surface in place.
func (m *Machine) SwitchSurface(kind SurfaceKind) error {
	if m.console.Kind() == kind {
		return nil
	}
	switch kind {
	case SurfaceBuffered:
		bs, err := NewBufferedSurface(m.display, m.pool)
		if err != nil {
			return err
		}
		m.buffered = bs
		m.console.SetSurface(bs)
	case SurfaceDirect:
		old := m.buffered
		m.console.SetSurface(m.direct)
		if old != nil {
			old.Release()
			m.buffered = nil
		}
	default:
		return fmt.Errorf("unknown surface kind %d", kind)
	}
	m.kind.Store(int32(kind))
	return nil
}

// Status is the one-line summary shown in the window's status bar. It is
// called from the window goroutine and reads only atomics.
func (m *Machine) Status() string {
	mode := m.display.Mode()
	shift, caps := m.decoder.Modifiers()
	mods := ""
	if caps {
		mods += " CAPS"
	}
	if shift {
		mods += " SHIFT"
	}
	return fmt.Sprintf("%s  %dx%d  %dHz  up %s  mem %d/%dKB  lost %d%s",
		SurfaceKind(m.kind.Load()), mode.Width, mode.Height, m.timer.Hz(),
		m.timer.Uptime().Truncate(time.Second), m.pool.UsedKB(), m.pool.TotalKB(),
		m.keys.Overruns()+m.controller.Dropped(), mods)
}
