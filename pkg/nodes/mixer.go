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

// Mixer sums numInputs channels-wide buses into one channels-wide
// output, each input scaled by its own live gain.
type Mixer struct {
	*graph.BaseNode
	channels  int
	numInputs int
	gains     []atomic.Uint32
	scratch   [][]float32
	weights   []float32
}

// NewMixer returns a node with numInputs channels-wide input buses
// ("in0", "in1", ...) summed into one channels-wide output. All input
// gains start at unity.
func NewMixer(channels, numInputs int) *Mixer {
	b := port.NewBuilder()
	for i := 0; i < numInputs; i++ {
		b = b.WithAudioInputs(channels, busName(i), busName(i))
	}
	p := b.WithAudioOutputs(channels, "out", "Out").MustBuild()

	n := &Mixer{
		BaseNode:  graph.NewBaseNode(p),
		channels:  channels,
		numInputs: numInputs,
		gains:     make([]atomic.Uint32, numInputs),
		weights:   make([]float32, numInputs),
	}
	for i := range n.gains {
		n.gains[i].Store(math.Float32bits(1))
	}
	return n
}

// SetInputGain requests a new linear gain for input bus idx. Safe to
// call from any thread.
func (n *Mixer) SetInputGain(idx int, gain float32) {
	n.gains[idx].Store(math.Float32bits(gain))
}

func (n *Mixer) Render(audio *engine.AudioBlock, mp *midi.Pipe) {
	if cap(n.scratch) < n.numInputs {
		n.scratch = make([][]float32, n.numInputs)
	}
	n.scratch = n.scratch[:n.numInputs]

	frames := audio.NumFrames()
	for i := range n.weights {
		n.weights[i] = math.Float32frombits(n.gains[i].Load())
	}

	for ch := 0; ch < n.channels; ch++ {
		for i := 0; i < n.numInputs; i++ {
			n.scratch[i] = audio.Input[i*n.channels+ch][:frames]
		}
		mix.SumWeighted(n.scratch, n.weights, audio.Output[ch][:frames])
	}
}

func busName(i int) string {
	const digits = "0123456789"
	if i < 10 {
		return "in" + string(digits[i])
	}
	return "in" + string(digits[i/10]) + string(digits[i%10])
}
