package nodes

import (
	"math"
	"sync/atomic"

	dspgain "github.com/signalpath/graphengine/pkg/dsp/gain"
	"github.com/signalpath/graphengine/pkg/engine"
	"github.com/signalpath/graphengine/pkg/graph"
	"github.com/signalpath/graphengine/pkg/midi"
	"github.com/signalpath/graphengine/pkg/port"
)

// Clip soft-clips every channel at a fixed threshold, a cheap safety
// limiter a host can drop in front of an output node without writing
// its own node type.
type Clip struct {
	*graph.BaseNode
	threshold atomic.Uint32
}

// NewClip returns a channels-wide clip node with the given threshold
// (a linear amplitude, typically <= 1).
func NewClip(channels int, threshold float32) *Clip {
	p := port.NewBuilder().
		WithAudioInputs(channels, "in", "In").
		WithAudioOutputs(channels, "out", "Out").
		MustBuild()
	n := &Clip{BaseNode: graph.NewBaseNode(p)}
	n.threshold.Store(math.Float32bits(threshold))
	return n
}

// SetThreshold requests a new clip threshold, effective immediately
// (clipping has no ramp state to smooth over). Safe to call from any
// thread.
func (n *Clip) SetThreshold(v float32) {
	n.threshold.Store(math.Float32bits(v))
}

func (n *Clip) Render(audio *engine.AudioBlock, mp *midi.Pipe) {
	threshold := math.Float32frombits(n.threshold.Load())
	count := len(audio.Input)
	if len(audio.Output) < count {
		count = len(audio.Output)
	}
	for i := 0; i < count; i++ {
		copy(audio.Output[i], audio.Input[i])
		dspgain.SoftClipBuffer(audio.Output[i], threshold)
	}
}
