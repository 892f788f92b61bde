// commands.go - Built-in console commands

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
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"golang.org/x/image/bmp"
)

const (
	defaultBeepHz = 880
	defaultBeepMs = 200
	maxBeepMs     = 5000
	luaTimeout    = 5 * time.Second
)

// Command is one named console action. Run receives the raw argument text
// following the first space.
type Command struct {
	Name  string
	Usage string
	Help  string
	Run   func(m *Machine, args string)
}

// CommandSet maps command names to handlers. Names are case sensitive.
type CommandSet struct {
	byName map[string]*Command
	order  []string
}

func NewCommandSet() *CommandSet {
	return &CommandSet{byName: make(map[string]*Command)}
}

// Register adds or replaces a command.
func (s *CommandSet) Register(c Command) {
	if _, ok := s.byName[c.Name]; !ok {
		s.order = append(s.order, c.Name)
	}
	s.byName[c.Name] = &c
}

func (s *CommandSet) Lookup(name string) (*Command, bool) {
	c, ok := s.byName[name]
	return c, ok
}

// Names lists commands in registration order.
func (s *CommandSet) Names() []string {
	return append([]string(nil), s.order...)
}

// DefaultCommands is the built-in command table.
func DefaultCommands() *CommandSet {
	s := NewCommandSet()
	s.Register(Command{Name: "help", Usage: "help", Help: "Show this message", Run: cmdHelp})
	s.Register(Command{Name: "clear", Usage: "clear", Help: "Clear the screen", Run: cmdClear})
	s.Register(Command{Name: "say", Usage: "say [text]", Help: "Repeat the text", Run: cmdSay})
	s.Register(Command{Name: "wait", Usage: "wait [s]", Help: "Wait for [s] seconds", Run: cmdWait})
	s.Register(Command{Name: "fetch", Usage: "fetch", Help: "Show system information", Run: cmdFetch})
	s.Register(Command{Name: "gpu", Usage: "gpu", Help: "Switch to the buffered framebuffer", Run: cmdGPU})
	s.Register(Command{Name: "fb", Usage: "fb", Help: "Switch back to the direct framebuffer", Run: cmdFB})
	s.Register(Command{Name: "history", Usage: "history", Help: "List recent commands", Run: cmdHistory})
	s.Register(Command{Name: "color", Usage: "color fg [bg]", Help: "Set text colours", Run: cmdColor})
	s.Register(Command{Name: "screenshot", Usage: "screenshot [f]", Help: "Save the screen as BMP", Run: cmdScreenshot})
	s.Register(Command{Name: "beep", Usage: "beep [hz] [ms]", Help: "Sound the PC speaker", Run: cmdBeep})
	s.Register(Command{Name: "lua", Usage: "lua [code]", Help: "Run a Lua chunk", Run: cmdLua})
	s.Register(Command{Name: "panic", Usage: "panic [why]", Help: "Force a kernel panic", Run: cmdPanic})
	return s
}

func cmdHelp(m *Machine, _ string) {
	c := m.console
	c.WriteString("\n--- FigConsole Help Menu ---")
	for _, name := range m.commands.Names() {
		cmd, _ := m.commands.Lookup(name)
		c.Printf("\n%-14s : %s", cmd.Usage, cmd.Help)
	}
	c.WriteString("\n")
}

func cmdClear(m *Machine, _ string) {
	_, bg := m.console.Colors()
	m.console.Clear(bg)
}

// cmdSay echoes typed bytes as they are: they are already code points.
func cmdSay(m *Machine, args string) {
	m.console.WriteCodes(append([]byte{'\n'}, args...))
}

// parseSeconds reads the leading decimal digits of s.
func parseSeconds(s string) uint64 {
	var n uint64
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			break
		}
		n = n*10 + uint64(s[i]-'0')
	}
	return n
}

func cmdWait(m *Machine, args string) {
	c := m.console
	if args == "" {
		c.WriteString("\nUsage: wait [seconds]")
		return
	}
	seconds := parseSeconds(args)
	if seconds == 0 {
		c.WriteString("\nInvalid duration.")
		return
	}
	c.Printf("\nWaiting for %d seconds...", seconds)
	if err := m.timer.Sleep(m.runContext(), seconds); err != nil {
		c.WriteString("\nInterrupted.")
		return
	}
	c.WriteString("\nDone!")
}

func cmdFetch(m *Machine, _ string) {
	c := m.console
	fg, _ := c.Colors()
	mode := m.display.Mode()
	now := time.Now()

	field := func(label, format string, args ...any) {
		c.SetColor(colorYellow)
		c.Printf("\n%-13s", label)
		c.SetColor(fg)
		c.Printf(format, args...)
	}

	c.SetColor(colorYellow)
	c.WriteString("\n---   ")
	c.SetColor(fg)
	c.WriteString("FigConsole")
	c.SetColor(colorYellow)
	c.WriteString("   ---")

	field("CPU:", "%s x%d (%s)", runtime.GOARCH, runtime.NumCPU(), runtime.GOOS)
	field("Backend:", "%s", c.Kind())
	field("Resolution:", "%dx%d", mode.Width, mode.Height)
	field("Memory:", "%dKB / %dKB", m.pool.UsedKB(), m.pool.TotalKB())
	field("Keymap:", "%s", m.keymap.Name())
	field("Timer:", "%d Hz", m.timer.Hz())
	field("Time:", "%02d:%02d:%02d", now.Hour(), now.Minute(), now.Second())
	field("Uptime:", "%s", m.timer.Uptime().Truncate(time.Second))

	c.SetColor(colorYellow)
	c.WriteString("\n---")
	c.SetColor(fg)
	c.WriteString("----------------")
	c.SetColor(colorYellow)
	c.WriteString("---")
	c.SetColor(fg)
}

func cmdGPU(m *Machine, _ string) {
	c := m.console
	if c.Kind() == SurfaceBuffered {
		c.WriteString(" Already active")
		return
	}
	if err := m.SwitchSurface(SurfaceBuffered); err != nil {
		if errors.Is(err, ErrOutOfFrames) {
			c.WriteString(" FAILED (Not enough memory)")
		} else {
			c.Printf(" FAILED (%v)", err)
		}
		return
	}
	fg, _ := c.Colors()
	c.WriteString(" OK!")
	c.SetColor(colorGreen)
	c.WriteString("\nGPU Backend Active")
	c.SetColor(fg)
}

func cmdFB(m *Machine, _ string) {
	if m.console.Kind() == SurfaceDirect {
		m.console.WriteString(" Already active")
		return
	}
	if err := m.SwitchSurface(SurfaceDirect); err != nil {
		m.console.Printf(" FAILED (%v)", err)
		return
	}
	m.console.WriteString(" OK!")
}

func cmdHistory(m *Machine, _ string) {
	entries := m.history.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		m.console.Printf("\n%2d  ", i+1)
		m.console.WriteCodes([]byte(entries[i]))
	}
}

func cmdColor(m *Machine, args string) {
	c := m.console
	fields := strings.Fields(args)
	if len(fields) == 0 || len(fields) > 2 {
		c.WriteString("\nUsage: color fg [bg]")
		return
	}
	fg, err := ParseColor(fields[0])
	if err != nil {
		c.Printf("\nInvalid colour: %s", fields[0])
		return
	}
	_, bg := c.Colors()
	if len(fields) == 2 {
		if bg, err = ParseColor(fields[1]); err != nil {
			c.Printf("\nInvalid colour: %s", fields[1])
			return
		}
	}
	c.SetColors(fg, bg)
}

func cmdScreenshot(m *Machine, args string) {
	path := strings.TrimSpace(args)
	if path == "" {
		path = fmt.Sprintf("figconsole-%d.bmp", time.Now().Unix())
	}
	if err := m.SaveScreenshot(path); err != nil {
		fmt.Fprintf(os.Stderr, "screenshot: %v\n", err)
		m.console.Printf("\nScreenshot failed: %v", err)
		return
	}
	m.console.Printf("\nSaved %s", path)
}

// SaveScreenshot writes the visible frame to path as a BMP.
func (m *Machine) SaveScreenshot(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := bmp.Encode(f, m.display.Snapshot()); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func cmdBeep(m *Machine, args string) {
	hz, ms := defaultBeepHz, defaultBeepMs
	fields := strings.Fields(args)
	if len(fields) > 0 {
		v, err := strconv.Atoi(fields[0])
		if err != nil || v < 20 || v > 20000 {
			m.console.WriteString("\nUsage: beep [20-20000 hz] [ms]")
			return
		}
		hz = v
	}
	if len(fields) > 1 {
		v, err := strconv.Atoi(fields[1])
		if err != nil || v <= 0 {
			m.console.WriteString("\nUsage: beep [hz] [ms]")
			return
		}
		ms = min(v, maxBeepMs)
	}
	m.speaker.Beep(float64(hz), time.Duration(ms)*time.Millisecond)
}

func cmdLua(m *Machine, args string) {
	if strings.TrimSpace(args) == "" {
		m.console.WriteString("\nUsage: lua [code]")
		return
	}
	L := newConsoleLua(m)
	defer L.Close()

	ctx, cancel := context.WithTimeout(m.runContext(), luaTimeout)
	defer cancel()
	L.SetContext(ctx)

	if err := L.DoString(args); err != nil {
		fg, _ := m.console.Colors()
		m.console.SetColor(colorRed)
		m.console.Printf("\nlua: %v", err)
		m.console.SetColor(fg)
	}
}

// newConsoleLua builds a sandboxed interpreter: no io, os or package
// libraries, and print, color, ticks and beep bound to this machine.
func newConsoleLua(m *Machine) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range []string{"dofile", "loadfile", "collectgarbage"} {
		L.SetGlobal(name, lua.LNil)
	}

	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		m.console.WriteString("\n" + strings.Join(parts, "\t"))
		return 0
	}))
	L.SetGlobal("color", L.NewFunction(func(L *lua.LState) int {
		fg, err := ParseColor(L.CheckString(1))
		if err != nil {
			L.ArgError(1, err.Error())
			return 0
		}
		_, bg := m.console.Colors()
		if L.GetTop() >= 2 {
			if bg, err = ParseColor(L.CheckString(2)); err != nil {
				L.ArgError(2, err.Error())
				return 0
			}
		}
		m.console.SetColors(fg, bg)
		return 0
	}))
	L.SetGlobal("ticks", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(m.timer.Ticks()))
		return 1
	}))
	L.SetGlobal("beep", L.NewFunction(func(L *lua.LState) int {
		hz := L.OptInt(1, defaultBeepHz)
		ms := min(L.OptInt(2, defaultBeepMs), maxBeepMs)
		m.speaker.Beep(float64(hz), time.Duration(ms)*time.Millisecond)
		return 0
	}))
	return L
}

func cmdPanic(m *Machine, args string) {
	reason := strings.TrimSpace(args)
	if reason == "" {
		reason = "manually initiated crash"
	}
	m.Panic(reason)
}
