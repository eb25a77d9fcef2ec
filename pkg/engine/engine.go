package engine

import (
	"sync/atomic"
	"time"

	"github.com/signalpath/graphengine/pkg/midi"
)

// Engine runs a compiled Plan against a shared Pool once per audio
// callback. The audio thread only ever calls Run; a control thread
// swaps in a new Plan via SetPlan once the builder finishes a
// rebuild. Run never blocks and never allocates.
type Engine struct {
	plan    atomic.Pointer[Plan]
	pool    *Pool
	metrics *Metrics
	faults  *FaultCounter
}

// NewEngine returns an engine with an empty plan and a pool sized for
// maxFrames. Call SetPlan once the first real plan is built.
func NewEngine(maxFrames int, metrics *Metrics) *Engine {
	e := &Engine{
		pool:    NewPool(),
		metrics: metrics,
		faults:  NewFaultCounter(metrics),
	}
	empty := Empty(maxFrames)
	e.pool.Resize(empty.AudioBufferCount, empty.MidiBufferCount, maxFrames)
	e.plan.Store(empty)
	return e
}

// Faults returns the engine's fault counter, for a host that wants to
// inspect per-node failure history.
func (e *Engine) Faults() *FaultCounter {
	return e.faults
}

// SetPlan atomically swaps in a new plan and resizes the pool to
// match it. It must not be called concurrently with Run; callers
// serialize rebuilds on a single control thread.
func (e *Engine) SetPlan(p *Plan) {
	e.pool.Resize(p.AudioBufferCount, p.MidiBufferCount, p.MaxFrames)
	e.plan.Store(p)
	e.metrics.setBufferCount(p.AudioBufferCount)
	e.metrics.incRebuilds()
}

// Plan returns the plan currently in effect.
func (e *Engine) Plan() *Plan {
	return e.plan.Load()
}

// Run executes one block: it copies input into the graph's input
// buffers, clears silence, runs every op in order, and copies the
// graph's output buffers into output. input and output are indexed by
// host channel; midiIn/midiOut are indexed by host MIDI port.
//
// numFrames must not exceed the frame count the active plan was built
// for.
func (e *Engine) Run(input, output [][]float32, midiIn, midiOut []*midi.EventQueue, numFrames int) {
	start := time.Now()
	p := e.plan.Load()

	e.pool.ClearSilence(numFrames)

	for i, bufID := range p.GraphInputBufIDs {
		if i >= len(input) {
			break
		}
		copy(e.pool.Audio(bufID)[:numFrames], input[i][:numFrames])
	}
	for i, bufID := range p.GraphMidiInBufIDs {
		if i >= len(midiIn) {
			break
		}
		e.pool.Midi(bufID).CopyFrom(midiIn[i])
	}

	for _, op := range p.Ops {
		op.Perform(e.pool, numFrames)
	}

	for i, bufID := range p.GraphOutputBufIDs {
		if i >= len(output) {
			break
		}
		copy(output[i][:numFrames], e.pool.Audio(bufID)[:numFrames])
	}
	for i, bufID := range p.GraphMidiOutBufIDs {
		if i >= len(midiOut) {
			break
		}
		midiOut[i].CopyFrom(e.pool.Midi(bufID))
	}

	e.metrics.observeRender(time.Since(start).Seconds())
	e.metrics.setSuspendedCount(p.SuspendedCount())
}
