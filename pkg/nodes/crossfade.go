package nodes

import (
	"math"
	"sync/atomic"

	"github.com/signalpath/graphengine/pkg/dsp/mix"
	"github.com/signalpath/graphengine/pkg/engine"
	"github.com/signalpath/graphengine/pkg/graph"
	"github.com/signalpath/graphengine/pkg/midi"
	"github.com/signalpath/graphengine/pkg/port"
)

// Crossfade blends two channels-wide inputs into one channels-wide
// output with an equal-power curve, letting a host automate a dry/wet
// send or an A/B source switch without adding a dedicated mix bus.
type Crossfade struct {
	*graph.BaseNode
	channels int
	position atomic.Uint32
}

// NewCrossfade returns a node with two channels-wide input buses (a,
// b) and one channels-wide output, positioned fully on a.
func NewCrossfade(channels int) *Crossfade {
	p := port.NewBuilder().
		WithAudioInputs(channels, "a", "A").
		WithAudioInputs(channels, "b", "B").
		WithAudioOutputs(channels, "out", "Out").
		MustBuild()
	n := &Crossfade{BaseNode: graph.NewBaseNode(p), channels: channels}
	n.position.Store(math.Float32bits(0))
	return n
}

// SetPosition requests a new blend position: 0 is 100% a, 1 is 100%
// b. Safe to call from any thread.
func (n *Crossfade) SetPosition(v float32) {
	n.position.Store(math.Float32bits(v))
}

func (n *Crossfade) Render(audio *engine.AudioBlock, mp *midi.Pipe) {
	position := math.Float32frombits(n.position.Load())
	for ch := 0; ch < n.channels; ch++ {
		a := audio.Input[ch]
		b := audio.Input[n.channels+ch]
		mix.CrossfadeBuffer(a, b, position, audio.Output[ch])
	}
}
