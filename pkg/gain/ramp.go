// Package gain implements the per-block gain ramp mandated by the
// node contract: when a node's gain changes between blocks, the
// change is applied smoothly across the block rather than stepped,
// avoiding audible clicks without any locking.
package gain

import (
	"math"
	"sync/atomic"
)

// Ramp applies a linear ramp from `from` to `to` across buf, in
// place. If from == to it is a plain scalar multiply with no ramp
// overhead.
func Ramp(buf []float32, from, to float32) {
	n := len(buf)
	if n == 0 {
		return
	}
	if from == to {
		if to == 1 {
			return
		}
		for i := range buf {
			buf[i] *= to
		}
		return
	}
	step := (to - from) / float32(n)
	g := from
	for i := range buf {
		buf[i] *= g
		g += step
	}
}

// RampInto writes dst[i] = src[i] * g(i), where g ramps linearly from
// `from` to `to` across the block. dst and src may be the same slice.
func RampInto(dst, src []float32, from, to float32) {
	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}
	if n == 0 {
		return
	}
	if from == to {
		for i := 0; i < n; i++ {
			dst[i] = src[i] * to
		}
		return
	}
	step := (to - from) / float32(n)
	g := from
	for i := 0; i < n; i++ {
		dst[i] = src[i] * g
		g += step
	}
}

// State tracks a node-side (input or output) gain value across
// blocks so the engine can detect a change and ramp it. current is
// written from any control thread and read from the audio thread via
// an atomic scalar (bit-cast float32<->uint32, avoiding a lock on the
// render path); last is touched only by the audio thread between
// blocks and needs no synchronization.
type State struct {
	current atomic.Uint32
	last    float32
}

// NewState returns gain state initialized to unity gain.
func NewState() *State {
	s := &State{last: 1}
	s.current.Store(math.Float32bits(1))
	return s
}

// Set requests a new gain value, effective from the next block. Safe
// to call from any thread.
func (s *State) Set(g float32) {
	s.current.Store(math.Float32bits(g))
}

// Get returns the currently requested gain value.
func (s *State) Get() float32 {
	return math.Float32frombits(s.current.Load())
}

// BeginBlock returns (last, current) for this block's ramp and
// reports whether a ramp is needed at all. Called once per block from
// the audio thread.
func (s *State) BeginBlock() (from, to float32, ramping bool) {
	to = s.Get()
	return s.last, to, s.last != to
}

// EndBlock snapshots current into last, per "last_*_gain is updated
// to current after the block."
func (s *State) EndBlock() {
	s.last = s.Get()
}
