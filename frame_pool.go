// frame_pool.go - Physical page frame allocator

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
	"errors"
	"fmt"
	"sync"
)

const (
	FrameSize  = 4096
	frameWords = FrameSize / 4
)

var ErrOutOfFrames = errors.New("not enough contiguous page frames")

// FrameRange names a run of contiguous frames inside a FramePool.
type FrameRange struct {
	Start int
	Count int
}

// FramesFor rounds a byte count up to whole frames.
func FramesFor(bytes int) int {
	return (bytes + FrameSize - 1) / FrameSize
}

// FramePool is a bitmap allocator over a process-owned arena of 4 KiB
// frames. One bit per frame, set when the frame is in use.
type FramePool struct {
	mutex  sync.Mutex
	arena  []uint32
	bitmap []uint64
	total  int
	used   int
}

func NewFramePool(bytes int) *FramePool {
	total := bytes / FrameSize
	return &FramePool{
		arena:  make([]uint32, total*frameWords),
		bitmap: make([]uint64, (total+63)/64),
		total:  total,
	}
}

func (p *FramePool) isUsed(i int) bool { return p.bitmap[i/64]&(1<<(i%64)) != 0 }

func (p *FramePool) setUsed(i int, used bool) {
	if used {
		p.bitmap[i/64] |= 1 << (i % 64)
	} else {
		p.bitmap[i/64] &^= 1 << (i % 64)
	}
}

// AllocFrames returns the first run of count free frames.
func (p *FramePool) AllocFrames(count int) (FrameRange, error) {
	if count <= 0 {
		return FrameRange{}, fmt.Errorf("alloc of %d frames: invalid count", count)
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()

	run, start := 0, 0
	for i := range p.total {
		if p.isUsed(i) {
			run = 0
			continue
		}
		if run == 0 {
			start = i
		}
		run++
		if run == count {
			for j := start; j < start+count; j++ {
				p.setUsed(j, true)
			}
			p.used += count
			clear(p.arena[start*frameWords : (start+count)*frameWords])
			return FrameRange{Start: start, Count: count}, nil
		}
	}
	return FrameRange{}, fmt.Errorf("alloc of %d frames (%d of %d in use): %w", count, p.used, p.total, ErrOutOfFrames)
}

// FreeFrames releases a range. Frames that are already free are skipped.
func (p *FramePool) FreeFrames(r FrameRange) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	for i := r.Start; i < r.Start+r.Count && i < p.total; i++ {
		if i >= 0 && p.isUsed(i) {
			p.setUsed(i, false)
			p.used--
		}
	}
}

// Words exposes the memory behind r as 32-bit words.
func (p *FramePool) Words(r FrameRange) []uint32 {
	if r.Start < 0 || r.Count <= 0 || r.Start+r.Count > p.total {
		return nil
	}
	return p.arena[r.Start*frameWords : (r.Start+r.Count)*frameWords]
}

func (p *FramePool) TotalKB() int { return p.total * FrameSize / 1024 }

func (p *FramePool) UsedKB() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.used * FrameSize / 1024
}
