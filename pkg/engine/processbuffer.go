package engine

import (
	"github.com/signalpath/graphengine/pkg/gain"
	"github.com/signalpath/graphengine/pkg/midi"
)

// ProcessBuffer is the node render step: it assembles an AudioBlock
// view over the node's assigned buffers, pre-applies input gain
// (ramped if changed), calls the node's render method, applies output
// gain, refreshes per-channel RMS meters, and contains any fault the
// node raises.
type ProcessBuffer struct {
	NodeID uint32
	Node   Node

	inputBufIDs  []int
	outputBufIDs []int
	midiInIDs    []int
	midiOutIDs   []int

	input  [][]float32
	output [][]float32
	pipe   *midi.Pipe

	Meter *Meter

	faults *FaultCounter
}

// NewProcessBuffer builds a ProcessBuffer op for node, wired to the
// given pool buffer ids for its audio and MIDI ports.
func NewProcessBuffer(nodeID uint32, node Node, inputBufIDs, outputBufIDs, midiInIDs, midiOutIDs []int, faults *FaultCounter) *ProcessBuffer {
	return &ProcessBuffer{
		NodeID:       nodeID,
		Node:         node,
		inputBufIDs:  inputBufIDs,
		outputBufIDs: outputBufIDs,
		midiInIDs:    midiInIDs,
		midiOutIDs:   midiOutIDs,
		input:        make([][]float32, len(inputBufIDs)),
		output:       make([][]float32, len(outputBufIDs)),
		pipe:         midi.NewPipe(),
		Meter:        NewMeter(len(outputBufIDs)),
		faults:       faults,
	}
}

func (o *ProcessBuffer) Perform(pool *Pool, numFrames int) {
	for i, id := range o.inputBufIDs {
		o.input[i] = pool.Audio(id)[:numFrames]
	}
	for i, id := range o.outputBufIDs {
		o.output[i] = pool.Audio(id)[:numFrames]
	}
	for i, id := range o.midiInIDs {
		o.pipe.SetBuffer(i, pool.Midi(id))
	}
	for i, id := range o.midiOutIDs {
		o.pipe.SetBuffer(len(o.midiInIDs)+i, pool.Midi(id))
	}

	block := NewAudioBlock(o.input, o.output, numFrames)

	if !o.Node.IsEnabled() {
		block.ClearOutput()
		return
	}

	inState := o.Node.InputGainState()
	outState := o.Node.OutputGainState()

	if from, to, ramping := inState.BeginBlock(); ramping {
		for _, ch := range block.Input {
			gain.Ramp(ch, from, to)
		}
	} else if to != 1 {
		for _, ch := range block.Input {
			gain.Ramp(ch, to, to)
		}
	}

	o.renderSafely(block)

	if from, to, ramping := outState.BeginBlock(); ramping {
		for _, ch := range block.Output {
			gain.Ramp(ch, from, to)
		}
	} else if to != 1 {
		for _, ch := range block.Output {
			gain.Ramp(ch, to, to)
		}
	}

	inState.EndBlock()
	outState.EndBlock()

	o.Meter.Update(block.Output)
}

// renderSafely calls the node's render method, containing any panic
// per the failure-containment policy: the node's outputs are cleared
// for the remainder of the block and the node is marked suspended.
func (o *ProcessBuffer) renderSafely(block *AudioBlock) {
	defer func() {
		if r := recover(); r != nil {
			block.ClearOutput()
			o.Node.SetSuspended(true)
			if o.faults != nil {
				o.faults.Record(o.NodeID, r)
			}
		}
	}()

	if o.Node.IsSuspended() {
		block.ClearOutput()
		return
	}

	if o.Node.IsBypassed() {
		o.Node.RenderBypassed(block, o.pipe)
		return
	}

	o.Node.Render(block, o.pipe)
}
