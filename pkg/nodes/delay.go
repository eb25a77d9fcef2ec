package nodes

import (
	"github.com/signalpath/graphengine/pkg/dsp/delay"
	"github.com/signalpath/graphengine/pkg/engine"
	"github.com/signalpath/graphengine/pkg/graph"
	"github.com/signalpath/graphengine/pkg/midi"
	"github.com/signalpath/graphengine/pkg/port"
)

// Delay holds every channel back by a fixed whole-sample count, built
// on the same delay line effects nodes use. It reports its delay as
// LatencySamples so the builder can compensate other paths feeding
// the same downstream mix point.
type Delay struct {
	*graph.BaseNode
	lines        []*delay.Line
	delaySamples float64
}

// NewDelay returns a channels-wide delay node holding samples of
// delay at sampleRate.
func NewDelay(channels int, sampleRate float64, samples int) *Delay {
	p := port.NewBuilder().
		WithAudioInputs(channels, "in", "In").
		WithAudioOutputs(channels, "out", "Out").
		MustBuild()

	lines := make([]*delay.Line, channels)
	maxSeconds := float64(samples+1) / sampleRate
	for i := range lines {
		lines[i] = delay.New(maxSeconds, sampleRate)
	}

	d := &Delay{
		BaseNode:     graph.NewBaseNode(p),
		lines:        lines,
		delaySamples: float64(samples),
	}
	d.SetLatencySamples(uint32(samples))
	return d
}

func (d *Delay) Render(audio *engine.AudioBlock, mp *midi.Pipe) {
	n := len(audio.Input)
	if len(audio.Output) < n {
		n = len(audio.Output)
	}
	if len(d.lines) < n {
		n = len(d.lines)
	}
	for i := 0; i < n; i++ {
		copy(audio.Output[i], audio.Input[i])
		d.lines[i].ProcessBuffer(audio.Output[i], d.delaySamples)
	}
}
