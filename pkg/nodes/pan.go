package nodes

import (
	"math"
	"sync/atomic"

	"github.com/signalpath/graphengine/pkg/dsp/pan"
	"github.com/signalpath/graphengine/pkg/engine"
	"github.com/signalpath/graphengine/pkg/graph"
	"github.com/signalpath/graphengine/pkg/midi"
	"github.com/signalpath/graphengine/pkg/port"
)

// Pan spreads a mono input across a stereo output using a constant
// power law. The pan position is a plain atomic scalar rather than a
// ramped gain.State: a pan move is a single angle, not a pair of
// per-channel gains, so there is nothing for BeginBlock/EndBlock to
// track between blocks.
type Pan struct {
	*graph.BaseNode
	position atomic.Uint32
}

// NewPan returns a node with one mono input port and a stereo output
// pair, centered.
func NewPan() *Pan {
	p := port.NewBuilder().
		WithAudioInputs(1, "in", "In").
		WithAudioOutputs(2, "out", "Out").
		MustBuild()
	n := &Pan{BaseNode: graph.NewBaseNode(p)}
	n.position.Store(math.Float32bits(0))
	return n
}

// SetPosition requests a new pan position, -1 (hard left) to 1 (hard
// right). Safe to call from any thread.
func (n *Pan) SetPosition(v float32) {
	n.position.Store(math.Float32bits(v))
}

func (n *Pan) Render(audio *engine.AudioBlock, mp *midi.Pipe) {
	if len(audio.Input) < 1 || len(audio.Output) < 2 {
		return
	}
	position := math.Float32frombits(n.position.Load())
	pan.Process(audio.Input[0], position, audio.Output[0], audio.Output[1])
}
