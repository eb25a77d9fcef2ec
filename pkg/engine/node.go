package engine

import (
	"github.com/signalpath/graphengine/pkg/gain"
	"github.com/signalpath/graphengine/pkg/midi"
)

// Node is the subset of the graph node contract the render engine
// needs to execute a ProcessBuffer op. It is satisfied structurally
// by graph.Node; this package never imports graph, which would cycle
// back through graph's use of AudioBlock and Pipe.
type Node interface {
	Render(audio *AudioBlock, mp *midi.Pipe)
	RenderBypassed(audio *AudioBlock, mp *midi.Pipe)
	IsEnabled() bool
	IsBypassed() bool
	IsSuspended() bool
	SetSuspended(bool)
	InputGainState() *gain.State
	OutputGainState() *gain.State
}
