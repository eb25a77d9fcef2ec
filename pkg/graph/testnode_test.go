package graph_test

import (
	"io"

	"github.com/signalpath/graphengine/pkg/engine"
	"github.com/signalpath/graphengine/pkg/graph"
	"github.com/signalpath/graphengine/pkg/midi"
	"github.com/signalpath/graphengine/pkg/port"
)

// gainNode multiplies every input sample by factor. It is used across
// graph tests as a minimal, inspectable processing node.
type gainNode struct {
	*graph.BaseNode
	factor float32
}

func newGainNode(channels int, factor float32) *gainNode {
	p := port.NewBuilder().WithAudioInputs(channels, "in", "In").WithAudioOutputs(channels, "out", "Out").MustBuild()
	return &gainNode{BaseNode: graph.NewBaseNode(p), factor: factor}
}

func (n *gainNode) Render(audio *engine.AudioBlock, mp *midi.Pipe) {
	for i := range audio.Output {
		if i >= len(audio.Input) {
			break
		}
		for f := range audio.Output[i] {
			audio.Output[i][f] = audio.Input[i][f] * n.factor
		}
	}
}

// passNode is a pass-through of any channel count with no other behavior, for
// wiring tests that don't care what the node does.
type passNode struct {
	*graph.BaseNode
}

func newPassNode(channels int) *passNode {
	p := port.NewBuilder().WithAudioInputs(channels, "in", "In").WithAudioOutputs(channels, "out", "Out").MustBuild()
	return &passNode{BaseNode: graph.NewBaseNode(p)}
}

func (n *passNode) Render(audio *engine.AudioBlock, mp *midi.Pipe) {
	audio.PassThrough()
}

// counterNode exposes its single byte of internal state through the
// Stateful contract, for exercising Graph.Capture/Restore.
type counterNode struct {
	*graph.BaseNode
	count byte
}

func newCounterNode() *counterNode {
	p := port.NewBuilder().WithAudioInputs(1, "in", "In").WithAudioOutputs(1, "out", "Out").MustBuild()
	return &counterNode{BaseNode: graph.NewBaseNode(p)}
}

func (n *counterNode) Render(audio *engine.AudioBlock, mp *midi.Pipe) {
	n.count++
	audio.PassThrough()
}

func (n *counterNode) GetState(w io.Writer) error {
	_, err := w.Write([]byte{n.count})
	return err
}

func (n *counterNode) SetState(r io.Reader) error {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	n.count = buf[0]
	return nil
}

func newStereoGraphPorts() *port.List {
	return port.NewBuilder().WithStereoInput("in").WithStereoOutput("out").MustBuild()
}

func newMidiGraphPorts() *port.List {
	return port.NewBuilder().WithStereoInput("in").WithStereoOutput("out").WithMidiInput("midiIn", "MIDI In").MustBuild()
}

// midiCaptureNode records whatever events reach its single MIDI input
// port each render, for asserting on the graph-level channel mask and
// velocity curve.
type midiCaptureNode struct {
	*graph.BaseNode
	last []midi.Event
}

func newMidiCaptureNode() *midiCaptureNode {
	p := port.NewBuilder().WithMidiInput("in", "In").WithMidiOutput("out", "Out").MustBuild()
	return &midiCaptureNode{BaseNode: graph.NewBaseNode(p)}
}

func (n *midiCaptureNode) Render(audio *engine.AudioBlock, mp *midi.Pipe) {
	n.last = append([]midi.Event(nil), mp.Buffer(0).All()...)
}
