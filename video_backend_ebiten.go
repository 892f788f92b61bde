//go:build !headless

// video_backend_ebiten.go - Ebiten window: scanout, keyboard and status bar

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
	"fmt"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"
)

const (
	pasteLimit     = 4096
	typematicDelay = 30 // Update ticks before a held key repeats
	typematicRate  = 3  // Update ticks between repeats
	statusBarH     = 18
)

type EbitenOutput struct {
	running     atomic.Bool
	window      *ebiten.Image
	width       int
	height      int
	format      PixelFormat
	fullscreen  bool
	scale       int
	windowedW   int
	windowedH   int
	frameBuffer []byte
	bufferMutex sync.RWMutex
	frameCount  atomic.Uint64
	refreshRate int
	vsyncChan   chan struct{}
	done        chan struct{}

	scancodeHandler func(byte)
	pasteHandler    func([]byte)
	statusProvider  func() string

	clipboardOnce sync.Once
	clipboardOK   bool
	showStatusBar bool
}

func NewEbitenOutput() (VideoOutput, error) {
	return &EbitenOutput{
		width:         640,
		height:        480,
		format:        PixelFormatRGBA,
		scale:         1,
		windowedW:     640,
		windowedH:     480,
		frameBuffer:   make([]byte, 640*480*4),
		refreshRate:   60,
		vsyncChan:     make(chan struct{}, 1),
		done:          make(chan struct{}),
		showStatusBar: true,
	}, nil
}

func (eo *EbitenOutput) Start() error {
	if eo.running.Load() {
		return nil
	}
	eo.bufferMutex.Lock()
	eo.done = make(chan struct{})
	eo.bufferMutex.Unlock()
	eo.running.Store(true)
	ebiten.SetWindowSize(eo.windowedW, eo.windowedH)
	ebiten.SetWindowTitle("FigConsole")
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)
	if eo.fullscreen {
		ebiten.SetFullscreen(true)
	}

	go func() {
		defer func() {
			eo.running.Store(false)
			eo.bufferMutex.RLock()
			done := eo.done
			eo.bufferMutex.RUnlock()
			select {
			case <-done:
			default:
				close(done)
			}
		}()
		if err := ebiten.RunGame(eo); err != nil {
			fmt.Printf("Ebiten error: %v\n", err)
		}
	}()

	// Wait for first Draw call to ensure Ebiten is ready
	<-eo.vsyncChan
	return nil
}

func (eo *EbitenOutput) Stop() error {
	eo.running.Store(false)
	return nil
}

func (eo *EbitenOutput) Close() error {
	return eo.Stop()
}

func (eo *EbitenOutput) Done() <-chan struct{} {
	eo.bufferMutex.RLock()
	done := eo.done
	eo.bufferMutex.RUnlock()
	return done
}

func (eo *EbitenOutput) UpdateFrame(data []byte) error {
	eo.bufferMutex.Lock()
	copy(eo.frameBuffer, data)
	eo.bufferMutex.Unlock()
	return nil
}

func (eo *EbitenOutput) SetDisplayConfig(config DisplayConfig) error {
	eo.bufferMutex.Lock()
	defer eo.bufferMutex.Unlock()

	width := config.Width
	height := config.Height
	if width <= 0 {
		width = eo.width
	}
	if height <= 0 {
		height = eo.height
	}
	eo.width = width
	eo.height = height
	eo.format = config.PixelFormat
	eo.scale = ClampScale(config.Scale)
	newSize := eo.width * eo.height * 4

	if len(eo.frameBuffer) != newSize {
		eo.frameBuffer = make([]byte, newSize)
	}

	eo.windowedW = eo.width * eo.scale
	eo.windowedH = eo.height * eo.scale
	eo.fullscreen = config.Fullscreen
	ebiten.SetFullscreen(eo.fullscreen)
	if !eo.fullscreen {
		ebiten.SetWindowSize(eo.windowedW, eo.windowedH)
	}
	if eo.window != nil {
		eo.window.Dispose()
		eo.window = nil
	}
	return nil
}

func (eo *EbitenOutput) GetDisplayConfig() DisplayConfig {
	eo.bufferMutex.RLock()
	defer eo.bufferMutex.RUnlock()
	return DisplayConfig{
		Width:       eo.width,
		Height:      eo.height,
		Scale:       eo.scale,
		PixelFormat: eo.format,
		RefreshRate: eo.refreshRate,
		Fullscreen:  eo.fullscreen,
	}
}

func (eo *EbitenOutput) GetFrameCount() uint64 { return eo.frameCount.Load() }
func (eo *EbitenOutput) GetRefreshRate() int   { return eo.refreshRate }
func (eo *EbitenOutput) IsStarted() bool       { return eo.running.Load() }

func (eo *EbitenOutput) SetScancodeHandler(fn func(byte)) {
	eo.bufferMutex.Lock()
	eo.scancodeHandler = fn
	eo.bufferMutex.Unlock()
}

func (eo *EbitenOutput) SetPasteHandler(fn func([]byte)) {
	eo.bufferMutex.Lock()
	eo.pasteHandler = fn
	eo.bufferMutex.Unlock()
}

func (eo *EbitenOutput) SetStatusProvider(fn func() string) {
	eo.bufferMutex.Lock()
	eo.statusProvider = fn
	eo.bufferMutex.Unlock()
}

func (eo *EbitenOutput) Update() error {
	if ebiten.IsWindowBeingClosed() || !eo.running.Load() {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		eo.bufferMutex.Lock()
		eo.fullscreen = !eo.fullscreen
		ebiten.SetFullscreen(eo.fullscreen)
		if !eo.fullscreen {
			ebiten.SetWindowSize(eo.windowedW, eo.windowedH)
		}
		eo.bufferMutex.Unlock()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		eo.bufferMutex.Lock()
		eo.showStatusBar = !eo.showStatusBar
		eo.bufferMutex.Unlock()
	}
	eo.handleKeyboardInput()
	return nil
}

func (eo *EbitenOutput) emitSeq(seq []byte) {
	eo.bufferMutex.RLock()
	handler := eo.scancodeHandler
	eo.bufferMutex.RUnlock()
	if handler == nil {
		return
	}
	for _, b := range seq {
		handler(b)
	}
}

// physicalKey is the set-1 make code of a key position.
type physicalKey struct {
	code     byte
	extended bool
}

// keyScancodes maps Ebiten's physical keys to set-1 make codes. Ebiten keys
// name US positions, which is what set 1 encodes too; the layout is applied
// later by the decoder's keymap.
var keyScancodes = map[ebiten.Key]physicalKey{
	ebiten.KeyEscape:         {code: 0x01},
	ebiten.KeyDigit1:         {code: 0x02},
	ebiten.KeyDigit2:         {code: 0x03},
	ebiten.KeyDigit3:         {code: 0x04},
	ebiten.KeyDigit4:         {code: 0x05},
	ebiten.KeyDigit5:         {code: 0x06},
	ebiten.KeyDigit6:         {code: 0x07},
	ebiten.KeyDigit7:         {code: 0x08},
	ebiten.KeyDigit8:         {code: 0x09},
	ebiten.KeyDigit9:         {code: 0x0A},
	ebiten.KeyDigit0:         {code: 0x0B},
	ebiten.KeyMinus:          {code: 0x0C},
	ebiten.KeyEqual:          {code: 0x0D},
	ebiten.KeyBackspace:      {code: scBackspace},
	ebiten.KeyTab:            {code: 0x0F},
	ebiten.KeyQ:              {code: 0x10},
	ebiten.KeyW:              {code: 0x11},
	ebiten.KeyE:              {code: 0x12},
	ebiten.KeyR:              {code: 0x13},
	ebiten.KeyT:              {code: 0x14},
	ebiten.KeyY:              {code: 0x15},
	ebiten.KeyU:              {code: 0x16},
	ebiten.KeyI:              {code: 0x17},
	ebiten.KeyO:              {code: 0x18},
	ebiten.KeyP:              {code: 0x19},
	ebiten.KeyBracketLeft:    {code: 0x1A},
	ebiten.KeyBracketRight:   {code: 0x1B},
	ebiten.KeyEnter:          {code: scEnter},
	ebiten.KeyNumpadEnter:    {code: scEnter},
	ebiten.KeyA:              {code: 0x1E},
	ebiten.KeyS:              {code: 0x1F},
	ebiten.KeyD:              {code: 0x20},
	ebiten.KeyF:              {code: 0x21},
	ebiten.KeyG:              {code: 0x22},
	ebiten.KeyH:              {code: 0x23},
	ebiten.KeyJ:              {code: 0x24},
	ebiten.KeyK:              {code: 0x25},
	ebiten.KeyL:              {code: 0x26},
	ebiten.KeySemicolon:      {code: 0x27},
	ebiten.KeyQuote:          {code: 0x28},
	ebiten.KeyBackquote:      {code: 0x29},
	ebiten.KeyShiftLeft:      {code: scLeftShift},
	ebiten.KeyBackslash:      {code: 0x2B},
	ebiten.KeyZ:              {code: 0x2C},
	ebiten.KeyX:              {code: 0x2D},
	ebiten.KeyC:              {code: 0x2E},
	ebiten.KeyV:              {code: 0x2F},
	ebiten.KeyB:              {code: 0x30},
	ebiten.KeyN:              {code: 0x31},
	ebiten.KeyM:              {code: 0x32},
	ebiten.KeyComma:          {code: 0x33},
	ebiten.KeyPeriod:         {code: 0x34},
	ebiten.KeySlash:          {code: 0x35},
	ebiten.KeyShiftRight:     {code: scRightShift},
	ebiten.KeyNumpadMultiply: {code: 0x37},
	ebiten.KeySpace:          {code: 0x39},
	ebiten.KeyCapsLock:       {code: scCapsLock},
	ebiten.KeyNumpad7:        {code: 0x47},
	ebiten.KeyNumpad8:        {code: 0x48},
	ebiten.KeyNumpad9:        {code: 0x49},
	ebiten.KeyNumpadSubtract: {code: 0x4A},
	ebiten.KeyNumpad4:        {code: 0x4B},
	ebiten.KeyNumpad5:        {code: 0x4C},
	ebiten.KeyNumpad6:        {code: 0x4D},
	ebiten.KeyNumpadAdd:      {code: 0x4E},
	ebiten.KeyNumpad1:        {code: 0x4F},
	ebiten.KeyNumpad2:        {code: 0x50},
	ebiten.KeyNumpad3:        {code: 0x51},
	ebiten.KeyNumpad0:        {code: 0x52},
	ebiten.KeyNumpadDecimal:  {code: 0x53},
	ebiten.KeyIntlBackslash:  {code: 0x56},
	ebiten.KeyArrowUp:        {code: scArrowUp, extended: true},
	ebiten.KeyArrowDown:      {code: scArrowDown, extended: true},
	ebiten.KeyArrowLeft:      {code: 0x4B, extended: true},
	ebiten.KeyArrowRight:     {code: 0x4D, extended: true},
}

// appendScancode appends the make or break sequence for key.
func appendScancode(dst []byte, key ebiten.Key, release bool) ([]byte, bool) {
	pk, ok := keyScancodes[key]
	if !ok {
		return dst, false
	}
	code := pk.code
	if release {
		code |= scBreakBit
	}
	if pk.extended {
		dst = append(dst, scExtendedPrefix)
	}
	return append(dst, code), true
}

func isModifierKey(key ebiten.Key) bool {
	switch key {
	case ebiten.KeyShiftLeft, ebiten.KeyShiftRight, ebiten.KeyCapsLock:
		return true
	}
	return false
}

// typematic reports whether a key held for d update ticks repeats now.
func typematic(d int) bool {
	return d > typematicDelay && (d-typematicDelay)%typematicRate == 0
}

func (eo *EbitenOutput) handleKeyboardInput() {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)

	// Clipboard paste: Ctrl+Shift+V
	if ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		eo.handleClipboardPaste()
	}

	var seq []byte
	for key := range keyScancodes {
		switch {
		case inpututil.IsKeyJustReleased(key):
			seq, _ = appendScancode(seq, key, true)
		case ctrl && !isModifierKey(key):
			// Ctrl chords belong to the host.
		case inpututil.IsKeyJustPressed(key):
			seq, _ = appendScancode(seq, key, false)
		case !isModifierKey(key) && typematic(inpututil.KeyPressDuration(key)):
			seq, _ = appendScancode(seq, key, false)
		}
	}
	if len(seq) > 0 {
		eo.emitSeq(seq)
	}
}

func normalizePasteText(raw []byte) []byte {
	norm := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\r' {
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
			norm = append(norm, '\n')
			continue
		}
		norm = append(norm, raw[i])
	}
	return norm
}

func capPasteText(raw []byte, max int) []byte {
	if len(raw) <= max {
		return raw
	}
	return raw[:max]
}

func (eo *EbitenOutput) handleClipboardPaste() {
	eo.clipboardOnce.Do(func() {
		eo.clipboardOK = clipboard.Init() == nil
	})
	if !eo.clipboardOK {
		return
	}
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return
	}
	data = capPasteText(normalizePasteText(data), pasteLimit)

	eo.bufferMutex.RLock()
	handler := eo.pasteHandler
	eo.bufferMutex.RUnlock()
	if handler != nil {
		handler(data)
	}
}

func (eo *EbitenOutput) Draw(screen *ebiten.Image) {
	if eo.window == nil {
		eo.window = ebiten.NewImage(eo.width, eo.height)
	}

	eo.bufferMutex.RLock()
	eo.window.WritePixels(eo.frameBuffer)
	showStatusBar := eo.showStatusBar
	status := eo.statusProvider
	eo.bufferMutex.RUnlock()
	screen.DrawImage(eo.window, nil)
	if showStatusBar && status != nil {
		eo.drawStatusBar(screen, status())
	}

	eo.frameCount.Add(1)
	select {
	case eo.vsyncChan <- struct{}{}:
	default:
	}
}

func (eo *EbitenOutput) Layout(_, _ int) (int, int) {
	return eo.width, eo.height
}

func (eo *EbitenOutput) drawStatusBar(screen *ebiten.Image, status string) {
	if statusBarH >= eo.height {
		return
	}
	face := basicfont.Face7x13
	y := eo.height - statusBarH
	ebitenutil.DrawRect(screen, 0, float64(y), float64(eo.width), float64(statusBarH), color.RGBA{0, 0, 0, 180})
	text.Draw(screen, status, face, 6, y+13, color.RGBA{0, 220, 90, 255})

	legend := "F11 Fullscreen  F12 Status Bar"
	legendX := max(eo.width-text.BoundString(face, legend).Dx()-6, 6)
	text.Draw(screen, legend, face, legendX, y+13, color.RGBA{160, 160, 160, 255})
}
