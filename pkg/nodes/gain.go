// Package nodes provides a small set of ready-to-wire node types for
// hosts that don't need to write their own: a static gain stage, a
// plain pass-through, a fixed whole-sample delay, a mono-to-stereo
// panner, a crossfader, a soft clipper, a summing mixer, and a stereo
// width/balance stage.
package nodes

import (
	"github.com/signalpath/graphengine/pkg/engine"
	"github.com/signalpath/graphengine/pkg/graph"
	"github.com/signalpath/graphengine/pkg/midi"
	"github.com/signalpath/graphengine/pkg/port"
)

// Gain applies a scalar gain to every channel. It does no work of its
// own beyond a pass-through render: the per-block ramp every node
// already carries on its BaseNode output gain state is the entire
// implementation, so a gain change here is click-free for free.
type Gain struct {
	*graph.BaseNode
}

// NewGain returns a unity-gain node over channels audio in/out ports.
func NewGain(channels int) *Gain {
	p := port.NewBuilder().
		WithAudioInputs(channels, "in", "In").
		WithAudioOutputs(channels, "out", "Out").
		MustBuild()
	return &Gain{BaseNode: graph.NewBaseNode(p)}
}

// SetGain requests a new gain value, effective (ramped) from the next block.
func (g *Gain) SetGain(v float32) {
	g.OutputGainState().Set(v)
}

func (g *Gain) Render(audio *engine.AudioBlock, mp *midi.Pipe) {
	audio.PassThrough()
}
