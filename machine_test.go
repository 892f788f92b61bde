package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func newMachineForTest(t *testing.T, tweak func(cfg *Config)) *Machine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Video = VideoNull
	cfg.Input = InputNone
	cfg.Audio = false
	cfg.Calibrate = 0
	if tweak != nil {
		tweak(cfg)
	}
	m, err := NewMachine(cfg, &NullVideoOutput{refreshRate: 60})
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	return m
}

// typeKeys raises keyboard interrupts for text and runs the main loop until
// the queue is drained.
func typeKeys(t *testing.T, m *Machine, text string) {
	t.Helper()
	for _, sc := range m.Encoder().Encode([]byte(text)) {
		m.KeyboardIRQ(sc)
	}
	drain(m)
}

func drain(m *Machine) {
	for m.Step() {
	}
}

func TestNewMachine_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Keymap = "klingon"
	if _, err := NewMachine(cfg, &NullVideoOutput{}); err == nil {
		t.Fatal("expected config error")
	}
}

func TestMachine_BootLocksPrompt(t *testing.T) {
	m := newMachineForTest(t, nil)
	var log bytes.Buffer
	m.HostLog = &log
	m.Boot(context.Background())

	if got := m.Console().LineStart(); got != marginX+2*cellWidth {
		t.Fatalf("line start = %d, want %d", got, marginX+2*cellWidth)
	}
	out := log.String()
	for _, want := range []string{"[OK] FigConsole booting", "[INFO] Max Resolution set : 640x480", "[OK] Kernel ready"} {
		if !strings.Contains(out, want) {
			t.Fatalf("boot log missing %q:\n%s", want, out)
		}
	}
}

func TestMachine_BufferedBoot(t *testing.T) {
	m := newMachineForTest(t, func(cfg *Config) { cfg.Buffered = true })
	m.Boot(context.Background())
	if m.Console().Kind() != SurfaceBuffered {
		t.Fatalf("kind = %v, want buffered", m.Console().Kind())
	}
}

func TestMachine_KeyboardToDispatch(t *testing.T) {
	m := newMachineForTest(t, nil)
	m.Boot(context.Background())

	var got []string
	m.Commands().Register(Command{Name: "echo", Run: func(_ *Machine, args string) {
		got = append(got, args)
	}})
	typeKeys(t, m, "echo Hi there\n")
	if len(got) != 1 || got[0] != "Hi there" {
		t.Fatalf("dispatched %q", got)
	}
	if m.Console().LineStart() != marginX+2*cellWidth {
		t.Fatalf("prompt not re-locked, line start = %d", m.Console().LineStart())
	}
}

func TestMachine_UnknownCommandAdvancesTwoLines(t *testing.T) {
	m := newMachineForTest(t, nil)
	m.Boot(context.Background())
	_, y0 := m.Console().Cursor()
	typeKeys(t, m, "bogus\n")
	x, y := m.Console().Cursor()
	if y != y0+2*lineHeight || x != marginX+2*cellWidth {
		t.Fatalf("cursor = (%d,%d), want (%d,%d)", x, y, marginX+2*cellWidth, y0+2*lineHeight)
	}
}

func TestMachine_EmptyLineReprompts(t *testing.T) {
	m := newMachineForTest(t, nil)
	m.Boot(context.Background())
	_, y0 := m.Console().Cursor()
	typeKeys(t, m, "\n")
	if _, y := m.Console().Cursor(); y != y0+lineHeight {
		t.Fatalf("y = %d, want %d", y, y0+lineHeight)
	}
	if m.History().Len() != 0 {
		t.Fatal("empty line entered history")
	}
}

func TestMachine_NarrowScreenKeepsLineInSync(t *testing.T) {
	m := newMachineForTest(t, func(cfg *Config) { cfg.Width = 320 })
	m.Boot(context.Background())
	c := m.Console()
	start := c.LineStart()
	_, row := c.Cursor()
	room := c.Room()

	typeKeys(t, m, strings.Repeat("a", 40))
	if got := len(m.Editor().Buffer()); got != room {
		t.Fatalf("buffer holds %d bytes, row has room for %d", got, room)
	}
	if _, y := c.Cursor(); y != row {
		t.Fatalf("input wrapped to y=%d", y)
	}

	typeKeys(t, m, strings.Repeat("\b", 40))
	if len(m.Editor().Buffer()) != 0 {
		t.Fatalf("buffer = %q", m.Editor().Buffer())
	}
	if x, y := c.Cursor(); x != start || y != row {
		t.Fatalf("cursor = (%d,%d), want (%d,%d)", x, y, start, row)
	}
	for y := row; y < row+cursorRow; y++ {
		for x := start; x < 320; x++ {
			if px := m.Display().PixelAt(x, y); px != colorBlack {
				t.Fatalf("pixel (%d,%d) = 0x%06X left on the prompt row", x, y, px)
			}
		}
	}
}

func TestMachine_HistoryRecallThroughKeyboard(t *testing.T) {
	m := newMachineForTest(t, nil)
	m.Boot(context.Background())
	var runs int
	m.Commands().Register(Command{Name: "x", Run: func(*Machine, string) { runs++ }})
	typeKeys(t, m, "x\n")

	var seq []byte
	seq = m.Encoder().AppendArrow(seq, true)
	seq = m.Encoder().AppendKey(seq, '\n')
	for _, sc := range seq {
		m.KeyboardIRQ(sc)
	}
	drain(m)
	if runs != 2 {
		t.Fatalf("command ran %d times, want 2", runs)
	}
}

func TestMachine_StepTicksCursor(t *testing.T) {
	m := newMachineForTest(t, func(cfg *Config) { cfg.BlinkTicks = 2 })
	m.Boot(context.Background())
	m.Timer().Tick()
	m.Timer().Tick()
	m.Step()
	if m.Console().CursorVisible() {
		t.Fatal("two ticks at blink 2 should hide the cursor")
	}
}

func TestMachine_SwitchSurfacePreservesCursor(t *testing.T) {
	m := newMachineForTest(t, nil)
	m.Boot(context.Background())
	typeKeys(t, m, "abc")
	x0, y0 := m.Console().Cursor()

	if err := m.SwitchSurface(SurfaceBuffered); err != nil {
		t.Fatalf("SwitchSurface(buffered): %v", err)
	}
	if x, y := m.Console().Cursor(); x != x0 || y != y0 {
		t.Fatalf("cursor moved to (%d,%d)", x, y)
	}
	if m.Pool().UsedKB() == 0 {
		t.Fatal("no frames allocated for the back buffer")
	}
	typeKeys(t, m, "d")
	if string(m.Editor().Buffer()) != "abcd" {
		t.Fatalf("buffer = %q", m.Editor().Buffer())
	}

	if err := m.SwitchSurface(SurfaceDirect); err != nil {
		t.Fatalf("SwitchSurface(direct): %v", err)
	}
	if m.Pool().UsedKB() != 0 {
		t.Fatalf("back buffer not released, %d KB in use", m.Pool().UsedKB())
	}
}

func TestMachine_PanicHalts(t *testing.T) {
	m := newMachineForTest(t, nil)
	m.Boot(context.Background())
	m.Panic("test crash")
	if !m.Halted() {
		t.Fatal("machine not halted")
	}
	if got := m.Display().PixelAt(1, 1); got != colorRed {
		t.Fatalf("panic background = 0x%06X, want red", got)
	}
	m.KeyboardIRQ(0x1E)
	if m.Step() {
		t.Fatal("halted machine handled a key")
	}
	if m.Keys().Len() != 1 {
		t.Fatal("interrupts should still queue keys after a halt")
	}
}

func TestMachine_GoPanicInCommandLandsOnPanicScreen(t *testing.T) {
	m := newMachineForTest(t, nil)
	m.Boot(context.Background())
	m.Commands().Register(Command{Name: "boom", Run: func(*Machine, string) {
		var s []int
		_ = s[3]
	}})
	typeKeys(t, m, "boom\n")
	if !m.Halted() {
		t.Fatal("runtime panic did not halt the machine")
	}
}

func TestMachine_TypeTextGoesThroughController(t *testing.T) {
	m := newMachineForTest(t, nil)
	m.Boot(context.Background())
	if n := m.TypeText("hé\r"); n == 0 {
		t.Fatal("nothing injected")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Controller().Run(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for m.Keys().Len() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("queue length = %d", m.Keys().Len())
		}
		time.Sleep(time.Millisecond)
	}
	ev, _ := m.Keys().Pop()
	if ev != 'h' {
		t.Fatalf("first event = %q", ev)
	}
}

func TestMachine_RunStopsOnCancel(t *testing.T) {
	m := newMachineForTest(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	m.Controller().InjectAll(m.Encoder().Encode([]byte("x")))
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestMachine_Status(t *testing.T) {
	m := newMachineForTest(t, nil)
	m.KeyboardIRQ(scCapsLock)
	s := m.Status()
	for _, want := range []string{"Direct FB", "640x480", "CAPS"} {
		if !strings.Contains(s, want) {
			t.Fatalf("status %q missing %q", s, want)
		}
	}
}

func TestCenterTag(t *testing.T) {
	tests := map[string]string{"OK": " OK  ", "INFO": "INFO ", "ERROR": "ERROR"}
	for in, want := range tests {
		if got := centerTag(in, 5); got != want {
			t.Errorf("centerTag(%q) = %q, want %q", in, got, want)
		}
	}
}
