package nodes

import (
	"github.com/signalpath/graphengine/pkg/engine"
	"github.com/signalpath/graphengine/pkg/graph"
	"github.com/signalpath/graphengine/pkg/midi"
	"github.com/signalpath/graphengine/pkg/port"
)

// Passthrough copies its input straight to its output. It exists so a
// graph description can name a no-op node without reaching for a
// general-purpose node type, and as a minimal fixture for wiring tests.
type Passthrough struct {
	*graph.BaseNode
}

// NewPassthrough returns a passthrough node over channels audio in/out ports.
func NewPassthrough(channels int) *Passthrough {
	p := port.NewBuilder().
		WithAudioInputs(channels, "in", "In").
		WithAudioOutputs(channels, "out", "Out").
		MustBuild()
	return &Passthrough{BaseNode: graph.NewBaseNode(p)}
}

func (n *Passthrough) Render(audio *engine.AudioBlock, mp *midi.Pipe) {
	audio.PassThrough()
}
