// main.go - FigConsole entry point

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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var version = "0.3.0"

func boilerPlate() {
	fmt.Println("\n\033[38;2;255;20;147mFigConsole\033[0m " + version)
	fmt.Println("A hosted kernel text console: keyboard interrupts in, glyphs out.")
	fmt.Println("(c) 2024 - 2026 Zayn Otley")
	fmt.Println("https://github.com/IntuitionAmiga/FigConsole")
	fmt.Println("License: GPLv3 or later")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "figconsole",
	Short: "FigConsole - interactive kernel console",
	Long: `FigConsole boots a small machine (display, keyboard controller, interval
timer, frame allocator) and runs the kernel's command console on it.

Examples:
  figconsole                              # Window, US layout
  figconsole --keymap fr --fg amber       # AZERTY, amber text
  figconsole --video null --input terminal
  figconsole --config figconsole.yaml --buffered`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConsole,
}

var (
	flagConfig     string
	flagWidth      int
	flagHeight     int
	flagMemoryMB   int
	flagTimerHz    int
	flagKeymap     string
	flagCodepage   string
	flagFont       string
	flagForeground string
	flagBackground string
	flagVideo      string
	flagInput      string
	flagScale      int
	flagFullscreen bool
	flagNoAudio    bool
	flagBuffered   bool
	flagMirror     bool
	flagBootLog    bool
	flagQuiet      bool
)

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&flagConfig, "config", "c", "", "YAML machine description")
	f.IntVar(&flagWidth, "width", 0, "Display width in pixels")
	f.IntVar(&flagHeight, "height", 0, "Display height in pixels")
	f.IntVarP(&flagMemoryMB, "memory", "m", 0, "Physical frame pool size in MB")
	f.IntVar(&flagTimerHz, "timer-hz", 0, "Interval timer frequency")
	f.StringVarP(&flagKeymap, "keymap", "k", "", "Keyboard layout (us, fr)")
	f.StringVar(&flagCodepage, "codepage", "", "Code page for text output (latin1, latin9, cp437, cp850, cp1252)")
	f.StringVar(&flagFont, "font", "", "PSF1/PSF2 font file")
	f.StringVar(&flagForeground, "fg", "", "Text colour (#rrggbb or name)")
	f.StringVar(&flagBackground, "bg", "", "Background colour (#rrggbb or name)")
	f.StringVar(&flagVideo, "video", "", "Video backend (ebiten, null)")
	f.StringVarP(&flagInput, "input", "i", "", "Keyboard source (window, terminal, none)")
	f.IntVar(&flagScale, "scale", 0, "Window scale factor (1-4)")
	f.BoolVar(&flagFullscreen, "fullscreen", false, "Start fullscreen")
	f.BoolVar(&flagNoAudio, "no-audio", false, "Disable the PC speaker")
	f.BoolVar(&flagBuffered, "buffered", false, "Boot on the buffered framebuffer")
	f.BoolVar(&flagMirror, "mirror", false, "Copy console output to stdout")
	f.BoolVar(&flagBootLog, "boot-log", false, "Copy the boot log to stderr")
	f.BoolVarP(&flagQuiet, "quiet", "q", false, "Skip the startup banner")
}

// applyFlags overrides cfg with every flag the user set explicitly.
func applyFlags(cmd *cobra.Command, cfg *Config) {
	f := cmd.Flags()
	if f.Changed("width") {
		cfg.Width = flagWidth
	}
	if f.Changed("height") {
		cfg.Height = flagHeight
	}
	if f.Changed("memory") {
		cfg.MemoryMB = flagMemoryMB
	}
	if f.Changed("timer-hz") {
		cfg.TimerHz = flagTimerHz
	}
	if f.Changed("keymap") {
		cfg.Keymap = flagKeymap
	}
	if f.Changed("codepage") {
		cfg.Codepage = flagCodepage
	}
	if f.Changed("font") {
		cfg.Font = flagFont
	}
	if f.Changed("fg") {
		cfg.Foreground = flagForeground
	}
	if f.Changed("bg") {
		cfg.Background = flagBackground
	}
	if f.Changed("video") {
		cfg.Video = flagVideo
	}
	if f.Changed("input") {
		cfg.Input = flagInput
	}
	if f.Changed("scale") {
		cfg.Scale = flagScale
	}
	if f.Changed("fullscreen") {
		cfg.Fullscreen = flagFullscreen
	}
	if f.Changed("no-audio") {
		cfg.Audio = !flagNoAudio
	}
	if f.Changed("buffered") {
		cfg.Buffered = flagBuffered
	}
	if f.Changed("mirror") {
		cfg.Mirror = flagMirror
	}
}

func runConsole(cmd *cobra.Command, _ []string) error {
	cfg, err := LoadConfig(flagConfig)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !flagQuiet {
		boilerPlate()
	}

	output, err := NewVideoOutput(cfg.VideoBackend())
	if err != nil {
		return fmt.Errorf("failed to initialize video: %w", err)
	}
	defer output.Close()

	machine, err := NewMachine(cfg, output)
	if err != nil {
		return err
	}
	if flagBootLog {
		machine.HostLog = os.Stderr
	}
	if cfg.MirrorToTerminal() {
		codepage, _ := CodepageByName(cfg.Codepage)
		machine.Console().SetMirror(NewTerminalOutput(os.Stdout, codepage))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Audio {
		player, err := NewOtoPlayer(speakerSampleRate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "audio: %v (continuing without sound)\n", err)
		} else {
			player.SetupPlayer(machine.Speaker())
			player.Start()
			defer player.Close()
		}
	}

	attachWindow(cfg, output, machine)
	if cfg.Input == InputTerminal {
		host, err := attachTerminal(cfg, machine, cancel)
		if err != nil {
			return err
		}
		defer host.Stop()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return machine.Run(ctx) })
	if closable, ok := output.(Closable); ok {
		g.Go(func() error {
			select {
			case <-closable.Done():
				cancel()
			case <-ctx.Done():
			}
			return nil
		})
	}
	return g.Wait()
}

// attachWindow hooks the window's keyboard, clipboard and status bar to
// the machine. Outputs without those capabilities are left alone.
func attachWindow(cfg *Config, output VideoOutput, m *Machine) {
	if sc, ok := output.(StatusCapable); ok {
		sc.SetStatusProvider(m.Status)
	}
	if cfg.Input != InputWindow {
		return
	}
	if src, ok := output.(ScancodeSource); ok {
		src.SetScancodeHandler(func(b byte) { m.Controller().Inject(b) })
	}
	if ps, ok := output.(PasteSource); ok {
		ps.SetPasteHandler(func(text []byte) { m.TypeText(string(text)) })
	}
}

func attachTerminal(cfg *Config, m *Machine, interrupt func()) (*TerminalHost, error) {
	codepage, err := CodepageByName(cfg.Codepage)
	if err != nil {
		return nil, err
	}
	in := NewTerminalInput(m.Encoder(), codepage, func(seq []byte) { m.Controller().InjectAll(seq) })
	in.OnInterrupt(interrupt)
	host := NewTerminalHost(in)
	if err := host.Start(); err != nil {
		return nil, err
	}
	return host, nil
}
