//go:build headless

package main

import "sync/atomic"

// OtoPlayer without a sound device. Samples are pulled and discarded by
// Drain so tones still run their course.
type OtoPlayer struct {
	started bool
	source  SampleSource
	pulled  atomic.Uint64
}

func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	return &OtoPlayer{}, nil
}

func (op *OtoPlayer) SetupPlayer(source SampleSource) {
	op.source = source
}

func (op *OtoPlayer) Read(p []byte) (n int, err error) {
	op.Drain(len(p) / 4)
	clear(p)
	return len(p), nil
}

// Drain pulls n samples from the source.
func (op *OtoPlayer) Drain(n int) {
	if op.source == nil {
		return
	}
	for range n {
		op.source.ReadSample()
	}
	op.pulled.Add(uint64(n))
}

func (op *OtoPlayer) Start() {
	op.started = true
}

func (op *OtoPlayer) Stop() {
	op.started = false
}

func (op *OtoPlayer) Close() {
	op.started = false
}

func (op *OtoPlayer) IsStarted() bool {
	return op.started
}
