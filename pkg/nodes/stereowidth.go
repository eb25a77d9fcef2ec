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

// StereoWidth reshapes a stereo signal's mid/side balance: width
// narrows or widens the stereo image, then balance trims the result
// toward one side.
type StereoWidth struct {
	*graph.BaseNode
	width    atomic.Uint32
	balance  atomic.Uint32
	widenedL []float32
	widenedR []float32
}

// NewStereoWidth returns a node with a stereo input and output, width
// 1 (unchanged) and balance 0 (centered).
func NewStereoWidth() *StereoWidth {
	p := port.NewBuilder().WithStereoInput("in").WithStereoOutput("out").MustBuild()
	n := &StereoWidth{BaseNode: graph.NewBaseNode(p)}
	n.width.Store(math.Float32bits(1))
	n.balance.Store(math.Float32bits(0))
	return n
}

// SetWidth requests a new stereo width: 0 collapses to mono, 1 leaves
// the image unchanged, 2 is extra wide. Safe to call from any thread.
func (n *StereoWidth) SetWidth(v float32) {
	n.width.Store(math.Float32bits(v))
}

// SetBalance requests a new left/right balance, -1 (left only) to 1
// (right only). Safe to call from any thread.
func (n *StereoWidth) SetBalance(v float32) {
	n.balance.Store(math.Float32bits(v))
}

func (n *StereoWidth) Render(audio *engine.AudioBlock, mp *midi.Pipe) {
	if len(audio.Input) < 2 || len(audio.Output) < 2 {
		return
	}
	frames := audio.NumFrames()
	if cap(n.widenedL) < frames {
		n.widenedL = make([]float32, frames)
		n.widenedR = make([]float32, frames)
	}
	widenedL := n.widenedL[:frames]
	widenedR := n.widenedR[:frames]

	width := math.Float32frombits(n.width.Load())
	balance := math.Float32frombits(n.balance.Load())

	pan.Width(audio.Input[0], audio.Input[1], width, widenedL, widenedR)
	pan.Balance(widenedL, widenedR, balance, audio.Output[0], audio.Output[1])
}
