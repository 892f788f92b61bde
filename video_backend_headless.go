//go:build headless

package main

import "sync/atomic"

// HeadlessVideoOutput stands in for the window in builds without a display
// server. Frames are counted and dropped.
type HeadlessVideoOutput struct {
	started     atomic.Bool
	config      DisplayConfig
	frameCount  atomic.Uint64
	refreshRate int
	done        chan struct{}
}

func NewEbitenOutput() (VideoOutput, error) {
	return &HeadlessVideoOutput{refreshRate: 60, done: make(chan struct{})}, nil
}

func (h *HeadlessVideoOutput) Start() error {
	h.started.Store(true)
	return nil
}

func (h *HeadlessVideoOutput) Stop() error {
	h.started.Store(false)
	return nil
}

func (h *HeadlessVideoOutput) Close() error {
	return h.Stop()
}

func (h *HeadlessVideoOutput) IsStarted() bool {
	return h.started.Load()
}

func (h *HeadlessVideoOutput) SetDisplayConfig(config DisplayConfig) error {
	h.config = config
	return nil
}

func (h *HeadlessVideoOutput) GetDisplayConfig() DisplayConfig {
	return h.config
}

func (h *HeadlessVideoOutput) UpdateFrame(buffer []byte) error {
	h.frameCount.Add(1)
	return nil
}

func (h *HeadlessVideoOutput) GetFrameCount() uint64 {
	return h.frameCount.Load()
}

func (h *HeadlessVideoOutput) GetRefreshRate() int {
	return h.refreshRate
}

// Done never fires: there is no window to close.
func (h *HeadlessVideoOutput) Done() <-chan struct{} {
	return h.done
}
