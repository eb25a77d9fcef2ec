package engine

// Plan is the immutable output of a graph compile: a flat, ordered op
// list plus the buffer counts it requires. A Plan is safe to execute
// concurrently with the builder preparing the next one; the engine
// only ever swaps in a finished Plan between blocks.
type Plan struct {
	Ops []Op

	AudioBufferCount int
	MidiBufferCount  int
	MaxFrames        int

	// TotalLatencySamples is the reported latency of the graph's
	// output nodes, for a host that wants to report plugin delay
	// compensation upstream.
	TotalLatencySamples int

	// ProcessBuffers lists every ProcessBuffer op in the plan, in
	// execution order, for meter and fault-count introspection
	// without walking Ops and type-asserting.
	ProcessBuffers []*ProcessBuffer

	// GraphInputBufIDs[i] / GraphOutputBufIDs[i] are the pool buffer
	// ids the engine copies host channel i into or out of before and
	// after running Ops.
	GraphInputBufIDs  []int
	GraphOutputBufIDs []int

	// GraphMidiInBufIDs / GraphMidiOutBufIDs are the analogous MIDI
	// buffer ids for the graph's midi.input / midi.output nodes.
	GraphMidiInBufIDs  []int
	GraphMidiOutBufIDs []int
}

// NewPlan wraps ops and their buffer requirements into a Plan.
func NewPlan(ops []Op, audioBufferCount, midiBufferCount, maxFrames, totalLatencySamples int) *Plan {
	p := &Plan{
		Ops:                 ops,
		AudioBufferCount:    audioBufferCount,
		MidiBufferCount:     midiBufferCount,
		MaxFrames:           maxFrames,
		TotalLatencySamples: totalLatencySamples,
	}
	for _, op := range ops {
		if pb, ok := op.(*ProcessBuffer); ok {
			p.ProcessBuffers = append(p.ProcessBuffers, pb)
		}
	}
	return p
}

// Empty returns a plan with no ops and a single silence buffer of
// each kind, suitable as the engine's initial state before the first
// build completes.
func Empty(maxFrames int) *Plan {
	return NewPlan(nil, 1, 1, maxFrames, 0)
}

// SuspendedCount returns how many of the plan's nodes are currently
// suspended after a render fault.
func (p *Plan) SuspendedCount() int {
	n := 0
	for _, pb := range p.ProcessBuffers {
		if pb.Node.IsSuspended() {
			n++
		}
	}
	return n
}
