package builder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalpath/graphengine/pkg/builder"
	"github.com/signalpath/graphengine/pkg/engine"
	"github.com/signalpath/graphengine/pkg/gain"
	"github.com/signalpath/graphengine/pkg/midi"
	"github.com/signalpath/graphengine/pkg/port"
)

// passthroughNode is a minimal engine.Node double: an identity copy
// from input to output, unity gain, never bypassed or suspended. It
// exists to exercise builder.Build's ordering and buffer allocation
// without depending on any concrete pkg/nodes implementation.
type passthroughNode struct {
	inGain  *gain.State
	outGain *gain.State
}

func newPassthroughNode() *passthroughNode {
	return &passthroughNode{inGain: gain.NewState(), outGain: gain.NewState()}
}

func (n *passthroughNode) Render(audio *engine.AudioBlock, mp *midi.Pipe) {
	audio.PassThrough()
}

func (n *passthroughNode) RenderBypassed(audio *engine.AudioBlock, mp *midi.Pipe) {
	audio.PassThrough()
}

func (n *passthroughNode) IsEnabled() bool                       { return true }
func (n *passthroughNode) IsBypassed() bool                      { return false }
func (n *passthroughNode) IsSuspended() bool                     { return false }
func (n *passthroughNode) SetSuspended(bool)                     {}
func (n *passthroughNode) InputGainState() *gain.State           { return n.inGain }
func (n *passthroughNode) OutputGainState() *gain.State          { return n.outGain }

// ioOutputPorts and ioInputPorts build a port list with only outputs
// (for an audio-input IO node) or only inputs (for an audio-output IO
// node), the same way pkg/graph/ionodes.go does: directly off
// port.List, bypassing port.Builder's "must have an output" validation.
func ioOutputPorts(numChannels int) *port.List {
	l := port.NewList()
	for i := 0; i < numChannels; i++ {
		l.Add(port.Audio, port.Output, "out", "IO Out")
	}
	return l
}

func ioInputPorts(numChannels int) *port.List {
	l := port.NewList()
	for i := 0; i < numChannels; i++ {
		l.Add(port.Audio, port.Input, "in", "IO In")
	}
	return l
}

func monoInOutPorts() *port.List {
	return port.NewBuilder().WithMonoInput("in").WithMonoOutput("out").MustBuild()
}

// runPlan installs plan on a fresh engine and executes exactly one
// block, returning the per-output-channel result.
func runPlan(t *testing.T, plan *engine.Plan, maxFrames int, input [][]float32, numFrames int) [][]float32 {
	t.Helper()
	e := engine.NewEngine(maxFrames, nil)
	e.SetPlan(plan)
	output := make([][]float32, len(plan.GraphOutputBufIDs))
	for i := range output {
		output[i] = make([]float32, numFrames)
	}
	e.Run(input, output, nil, nil, numFrames)
	return output
}

// TestBuildStraightWireOrdersAndPassesThrough covers spec scenario 1:
// audio.input[0] -> audio.output[0] reproduces the input exactly, and
// the compiled order places the source before the sink.
func TestBuildStraightWireOrdersAndPassesThrough(t *testing.T) {
	const audioIn, audioOut uint32 = 1, 2
	nodes := []builder.Node{
		{ID: audioIn, Kind: builder.KindAudioInput, Ports: ioOutputPorts(1)},
		{ID: audioOut, Kind: builder.KindAudioOutput, Ports: ioInputPorts(1)},
	}
	conns := []builder.Connection{
		{SrcNode: audioIn, SrcPort: 0, DstNode: audioOut, DstPort: 0},
	}

	plan, err := builder.Build(nodes, conns, 64, nil)
	require.NoError(t, err)

	out := runPlan(t, plan, 64, [][]float32{{1.0, 0.5, -0.25, 0.0}}, 4)
	assert.Equal(t, []float32{1.0, 0.5, -0.25, 0.0}, out[0])
}

// TestBuildMixesMultipleSourcesIntoOneInputPort covers spec scenario
// 2: two connections feeding one input port sum via AddAudio.
func TestBuildMixesMultipleSourcesIntoOneInputPort(t *testing.T) {
	const audioIn, mixer, audioOut uint32 = 1, 2, 3
	nodes := []builder.Node{
		{ID: audioIn, Kind: builder.KindAudioInput, Ports: ioOutputPorts(2)},
		{ID: mixer, Kind: builder.KindNormal, Engine: newPassthroughNode(), Ports: monoInOutPorts()},
		{ID: audioOut, Kind: builder.KindAudioOutput, Ports: ioInputPorts(1)},
	}
	conns := []builder.Connection{
		{SrcNode: audioIn, SrcPort: 0, DstNode: mixer, DstPort: 0},
		{SrcNode: audioIn, SrcPort: 1, DstNode: mixer, DstPort: 0},
		{SrcNode: mixer, SrcPort: 1, DstNode: audioOut, DstPort: 0},
	}

	plan, err := builder.Build(nodes, conns, 64, nil)
	require.NoError(t, err)

	input := [][]float32{
		{1, 1, 1, 1},
		{-1, 0, 1, 2},
	}
	out := runPlan(t, plan, 64, input, 4)
	assert.Equal(t, []float32{0, 1, 2, 3}, out[0])

	// Buffer count stays within a small constant of the node count:
	// silence + 2 input channels + mixer's accumulator/output + the
	// output channel, not one buffer per connection.
	assert.LessOrEqual(t, plan.AudioBufferCount, len(nodes)+3)
}

// TestBuildDelaysFasterParallelPathToMatchLatentSibling covers spec
// scenario 3: a node with declared latency on one parallel path forces
// the builder to insert a compensating Delay on the other, faster path
// before the two are summed, so they land in phase at the sink.
func TestBuildDelaysFasterParallelPathToMatchLatentSibling(t *testing.T) {
	const audioIn, direct, latent, audioOut uint32 = 1, 2, 3, 4
	nodes := []builder.Node{
		{ID: audioIn, Kind: builder.KindAudioInput, Ports: ioOutputPorts(2)},
		{ID: direct, Kind: builder.KindNormal, Engine: newPassthroughNode(), Ports: monoInOutPorts(), Latency: 0},
		{ID: latent, Kind: builder.KindNormal, Engine: newPassthroughNode(), Ports: monoInOutPorts(), Latency: 3},
		{ID: audioOut, Kind: builder.KindAudioOutput, Ports: ioInputPorts(1)},
	}
	conns := []builder.Connection{
		{SrcNode: audioIn, SrcPort: 0, DstNode: direct, DstPort: 0},
		{SrcNode: audioIn, SrcPort: 1, DstNode: latent, DstPort: 0},
		{SrcNode: direct, SrcPort: 1, DstNode: audioOut, DstPort: 0},
		{SrcNode: latent, SrcPort: 1, DstNode: audioOut, DstPort: 0},
	}

	plan, err := builder.Build(nodes, conns, 64, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, plan.TotalLatencySamples)

	// Channel 0 feeds the zero-latency direct path; channel 1 feeds the
	// 3-sample-latent path and stays silent, isolating the direct
	// path's contribution at the summation point.
	input := [][]float32{
		{1, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0, 0},
	}
	out := runPlan(t, plan, 64, input, 8)
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 0}, out[0])
}

// TestBuildFeedbackCycleDelaysOneBlock covers spec scenario 5 and
// boundary behavior §8 ("Feedback loop A->B->A delivers silence on
// the first block and the delayed signal on subsequent blocks"). It
// also guards against the regression where an unresolved feedback
// source was wired to the constant silence buffer instead of a
// buffer pinned for the plan's lifetime: that would make the loop
// permanently silent rather than one-block-delayed.
func TestBuildFeedbackCycleDelaysOneBlock(t *testing.T) {
	const audioIn, nodeA, nodeB, audioOut uint32 = 1, 2, 3, 4
	nodes := []builder.Node{
		{ID: audioIn, Kind: builder.KindAudioInput, Ports: ioOutputPorts(1)},
		{ID: nodeA, Kind: builder.KindNormal, Engine: newPassthroughNode(), Ports: monoInOutPorts()},
		{ID: nodeB, Kind: builder.KindNormal, Engine: newPassthroughNode(), Ports: monoInOutPorts()},
		{ID: audioOut, Kind: builder.KindAudioOutput, Ports: ioInputPorts(1)},
	}
	conns := []builder.Connection{
		{SrcNode: audioIn, SrcPort: 0, DstNode: nodeA, DstPort: 0},
		{SrcNode: nodeA, SrcPort: 1, DstNode: nodeB, DstPort: 0},
		{SrcNode: nodeB, SrcPort: 1, DstNode: nodeA, DstPort: 0},
		{SrcNode: nodeA, SrcPort: 1, DstNode: audioOut, DstPort: 0},
	}

	plan, err := builder.Build(nodes, conns, 64, nil)
	require.NoError(t, err)

	e := engine.NewEngine(64, nil)
	e.SetPlan(plan)

	impulse := [][]float32{{1, 0, 0, 0}}
	block1 := make([][]float32, 1)
	block1[0] = make([]float32, 4)
	e.Run(impulse, block1, nil, nil, 4)
	assert.Equal(t, []float32{1, 0, 0, 0}, block1[0], "first block: feedback edge reads silence, so A's output is just the external impulse")

	silence := [][]float32{{0, 0, 0, 0}}
	block2 := make([][]float32, 1)
	block2[0] = make([]float32, 4)
	e.Run(silence, block2, nil, nil, 4)
	assert.Equal(t, []float32{1, 0, 0, 0}, block2[0], "second block: the impulse recirculates through B's unity feedback, delayed by exactly one block")
}
