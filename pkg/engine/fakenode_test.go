package engine_test

import (
	"github.com/signalpath/graphengine/pkg/engine"
	"github.com/signalpath/graphengine/pkg/gain"
	"github.com/signalpath/graphengine/pkg/midi"
)

// fakeNode is a minimal engine.Node double for exercising ProcessBuffer
// and the Engine run loop without depending on pkg/graph.
type fakeNode struct {
	enabled   bool
	bypassed  bool
	suspended bool
	inGain    *gain.State
	outGain   *gain.State

	renderFn func(audio *engine.AudioBlock, mp *midi.Pipe)
	panicOn  bool
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		enabled: true,
		inGain:  gain.NewState(),
		outGain: gain.NewState(),
	}
}

func (n *fakeNode) Render(audio *engine.AudioBlock, mp *midi.Pipe) {
	if n.panicOn {
		panic("boom")
	}
	if n.renderFn != nil {
		n.renderFn(audio, mp)
		return
	}
	audio.PassThrough()
}

func (n *fakeNode) RenderBypassed(audio *engine.AudioBlock, mp *midi.Pipe) {
	audio.PassThrough()
}

func (n *fakeNode) IsEnabled() bool            { return n.enabled }
func (n *fakeNode) IsBypassed() bool           { return n.bypassed }
func (n *fakeNode) IsSuspended() bool          { return n.suspended }
func (n *fakeNode) SetSuspended(v bool)        { n.suspended = v }
func (n *fakeNode) InputGainState() *gain.State  { return n.inGain }
func (n *fakeNode) OutputGainState() *gain.State { return n.outGain }
