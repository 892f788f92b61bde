package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/text/encoding/charmap"
	"gopkg.in/yaml.v3"
)

// ConfigError reports an invalid or unreadable configuration value.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("config %s=%q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

const (
	InputWindow   = "window"
	InputTerminal = "terminal"
	InputNone     = "none"

	VideoEbiten = "ebiten"
	VideoNull   = "null"

	maxMemoryMB = 1024
)

// Config is the machine description. Zero fields take their defaults.
type Config struct {
	Width      int           `yaml:"width"`
	Height     int           `yaml:"height"`
	MemoryMB   int           `yaml:"memory_mb"`
	TimerHz    int           `yaml:"timer_hz"`
	Calibrate  time.Duration `yaml:"calibrate"`
	BlinkTicks int           `yaml:"blink_ticks"`
	Keymap     string        `yaml:"keymap"`
	Codepage   string        `yaml:"codepage"`
	Font       string        `yaml:"font"`
	Foreground string        `yaml:"foreground"`
	Background string        `yaml:"background"`
	Video      string        `yaml:"video"`
	Input      string        `yaml:"input"`
	Scale      int           `yaml:"scale"`
	Fullscreen bool          `yaml:"fullscreen"`
	Audio      bool          `yaml:"audio"`
	Buffered   bool          `yaml:"buffered"`
	Mirror     bool          `yaml:"mirror"`
}

func DefaultConfig() *Config {
	return &Config{
		Width:      640,
		Height:     480,
		MemoryMB:   64,
		TimerHz:    defaultTimerHz,
		Calibrate:  250 * time.Millisecond,
		BlinkTicks: cursorBlinkTicks,
		Keymap:     "us",
		Codepage:   "latin1",
		Foreground: "#ffffff",
		Background: "#000000",
		Video:      VideoEbiten,
		Input:      InputWindow,
		Scale:      1,
		Audio:      true,
	}
}

// LoadConfig reads a YAML file over the defaults. An empty path yields the
// defaults alone.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Field: "file", Value: path, Err: err}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &ConfigError{Field: "file", Value: path, Err: err}
	}
	return cfg, cfg.Validate()
}

// Validate checks every field that boot depends on.
func (c *Config) Validate() error {
	minW := 2*marginX + cellWidth
	minH := marginY + 2*lineHeight
	if c.Width < minW || c.Height < minH {
		return &ConfigError{Field: "resolution", Value: fmt.Sprintf("%dx%d", c.Width, c.Height),
			Err: fmt.Errorf("must be at least %dx%d", minW, minH)}
	}
	if c.MemoryMB <= 0 || c.MemoryMB > maxMemoryMB {
		return &ConfigError{Field: "memory_mb", Value: fmt.Sprint(c.MemoryMB),
			Err: fmt.Errorf("must be in 1..%d", maxMemoryMB)}
	}
	if c.TimerHz <= 0 || c.TimerHz > 1000 {
		return &ConfigError{Field: "timer_hz", Value: fmt.Sprint(c.TimerHz), Err: errors.New("must be in 1..1000")}
	}
	if c.BlinkTicks <= 0 {
		return &ConfigError{Field: "blink_ticks", Value: fmt.Sprint(c.BlinkTicks), Err: errors.New("must be positive")}
	}
	if _, err := KeymapByName(c.Keymap); err != nil {
		return &ConfigError{Field: "keymap", Value: c.Keymap, Err: err}
	}
	if _, err := CodepageByName(c.Codepage); err != nil {
		return &ConfigError{Field: "codepage", Value: c.Codepage, Err: err}
	}
	if _, err := ParseColor(c.Foreground); err != nil {
		return &ConfigError{Field: "foreground", Value: c.Foreground, Err: err}
	}
	if _, err := ParseColor(c.Background); err != nil {
		return &ConfigError{Field: "background", Value: c.Background, Err: err}
	}
	switch c.Video {
	case VideoEbiten, VideoNull:
	default:
		return &ConfigError{Field: "video", Value: c.Video, Err: errors.New("want ebiten or null")}
	}
	switch c.Input {
	case InputWindow, InputTerminal, InputNone:
	default:
		return &ConfigError{Field: "input", Value: c.Input, Err: errors.New("want window, terminal or none")}
	}
	return nil
}

// MirrorToTerminal reports whether console output should be copied to
// stdout. Without a window the terminal is the only place to see it.
func (c *Config) MirrorToTerminal() bool {
	return c.Mirror || (c.Video == VideoNull && c.Input == InputTerminal)
}

// VideoBackend maps the video setting to a backend constant.
func (c *Config) VideoBackend() int {
	if c.Video == VideoNull {
		return VIDEO_BACKEND_NULL
	}
	return VIDEO_BACKEND_EBITEN
}

var namedColors = map[string]uint32{
	"black":   colorBlack,
	"white":   colorWhite,
	"red":     colorRed,
	"green":   colorGreen,
	"yellow":  colorYellow,
	"blue":    0x0000FF,
	"cyan":    0x00FFFF,
	"magenta": 0xFF00FF,
	"grey":    0xAAAAAA,
	"gray":    0xAAAAAA,
	"amber":   0xFFB000,
}

// ParseColor accepts a colour name, #rgb or #rrggbb (the # is optional) and
// returns it as 0x00RRGGBB.
func ParseColor(s string) (uint32, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if v, ok := namedColors[s]; ok {
		return v, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	col, err := colorful.Hex(s)
	if err != nil {
		return 0, err
	}
	r, g, b := col.RGB255()
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b), nil
}

var codepages = map[string]*charmap.Charmap{
	"latin1": charmap.ISO8859_1,
	"latin9": charmap.ISO8859_15,
	"cp437":  charmap.CodePage437,
	"cp850":  charmap.CodePage850,
	"cp1252": charmap.Windows1252,
}

// CodepageByName resolves the single-byte character set text is folded to.
func CodepageByName(name string) (*charmap.Charmap, error) {
	if cm, ok := codepages[strings.ToLower(name)]; ok {
		return cm, nil
	}
	return nil, fmt.Errorf("unknown codepage %q (have latin1, latin9, cp437, cp850, cp1252)", name)
}
