package builder

import (
	"github.com/signalpath/graphengine/pkg/engine"
	"github.com/signalpath/graphengine/pkg/port"
)

// allocate walks order and produces the flat op list plus buffer
// counts. Every node's output ports get a freshly allocated buffer
// (no in-place aliasing); a node therefore never writes through a
// buffer any other node still has open, which makes single-connection
// reuse and source sharing across multiple destinations unconditionally
// safe. This trades the absolute minimum buffer count the scheduler
// could reach with in-place aliasing for a scheduler that is simple to
// get right; it still reuses buffers via the free list once nothing
// downstream needs them.
//
// Feedback edges are the one exception to "freshly allocated, then
// freed once unused": a connection whose source is scheduled after its
// destination (order puts the consumer first, per builder.order's
// cycle-breaking) delivers last block's value, not this block's — the
// source hasn't run yet when the consumer reads it. That value has to
// live in a buffer whose identity is stable across the whole plan's
// lifetime, not one handed back to the free list and reused for
// something else the moment the consumer is done with it this block.
// See the pre-pass below.
func (b *builderState) allocate(order []Node) (*engine.Plan, error) {
	orderIndex := make(map[uint32]int, len(order))
	for i, n := range order {
		orderIndex[n.ID] = i
	}

	inputsByPort := make(map[portRef][]Connection)
	neededUntil := make(map[portRef]int)
	for _, c := range b.connections {
		dst := portRef{c.DstNode, c.DstPort}
		inputsByPort[dst] = append(inputsByPort[dst], c)
		src := portRef{c.SrcNode, c.SrcPort}
		if idx, ok := orderIndex[c.DstNode]; ok {
			if idx > neededUntil[src] {
				neededUntil[src] = idx
			}
		}
	}

	b.nodeOutBuf = make(map[portRef]int)
	b.nodeLatency = make(map[uint32]uint32)

	var freeAudio []int
	var freeMidi []int
	nextAudio := 1
	nextMidi := 1

	allocAudio := func() int {
		if n := len(freeAudio); n > 0 {
			id := freeAudio[n-1]
			freeAudio = freeAudio[:n-1]
			return id
		}
		id := nextAudio
		nextAudio++
		return id
	}
	allocMidi := func() int {
		if n := len(freeMidi); n > 0 {
			id := freeMidi[n-1]
			freeMidi = freeMidi[:n-1]
			return id
		}
		id := nextMidi
		nextMidi++
		return id
	}

	// Feedback pre-pass: a connection whose source is ordered after its
	// destination can never be resolved from the source's own
	// processing step (it hasn't happened yet this pass). Assign that
	// source port's buffer now, before anything else runs, and pin it
	// so the mark-free step below never reclaims it. When the main pass
	// later reaches the source node itself, it finds the buffer already
	// assigned and reuses it instead of allocating a second one — so
	// the same physical buffer that the consumer read from (last
	// block's value) is the one the source writes into this block,
	// ready for the consumer's next read on the following callback.
	pinnedAudio := make(map[int]bool)
	pinnedMidi := make(map[int]bool)
	for _, c := range b.connections {
		if orderIndex[c.SrcNode] <= orderIndex[c.DstNode] {
			continue // not a feedback edge
		}
		srcRef := portRef{c.SrcNode, c.SrcPort}
		if _, ok := b.nodeOutBuf[srcRef]; ok {
			continue
		}
		srcNode, ok := b.nodes[c.SrcNode]
		if !ok {
			continue
		}
		desc, ok := srcNode.Ports.ForPort(c.SrcPort)
		if !ok {
			continue
		}
		if desc.Type == port.Midi {
			buf := allocMidi()
			b.nodeOutBuf[srcRef] = buf
			pinnedMidi[buf] = true
		} else {
			buf := allocAudio()
			b.nodeOutBuf[srcRef] = buf
			pinnedAudio[buf] = true
		}
	}

	// assignOutBuf returns the buffer already pinned for ref by the
	// feedback pre-pass above, or allocates a fresh one and records it.
	assignOutBuf := func(ref portRef, alloc func() int) int {
		if buf, ok := b.nodeOutBuf[ref]; ok {
			return buf
		}
		buf := alloc()
		b.nodeOutBuf[ref] = buf
		return buf
	}

	var ops []engine.Op
	var graphInputBufs, graphOutputBufs []int
	var graphMidiInBufs, graphMidiOutBufs []int

	resolveAudioSource := func(c Connection, maxInLatency uint32, transient *[]int) int {
		srcRef := portRef{c.SrcNode, c.SrcPort}
		buf, ok := b.nodeOutBuf[srcRef]
		if !ok {
			// Unreachable for a well-formed plan: every source is either
			// already processed (forward edge) or pre-assigned by the
			// feedback pre-pass above. Fall back to silence defensively.
			return engine.SilenceBuffer
		}
		srcLatency := b.nodeLatency[c.SrcNode]
		if srcLatency >= maxInLatency {
			return buf
		}
		delaySamples := int(maxInLatency - srcLatency)
		newBuf := allocAudio()
		ops = append(ops, engine.CopyAudio{Src: buf, Dst: newBuf})
		ops = append(ops, engine.NewDelayAudio(newBuf, delaySamples))
		*transient = append(*transient, newBuf)
		return newBuf
	}

	resolveMidiSource := func(c Connection) int {
		srcRef := portRef{c.SrcNode, c.SrcPort}
		buf, ok := b.nodeOutBuf[srcRef]
		if !ok {
			return engine.SilenceBuffer // unreachable for a well-formed plan; see resolveAudioSource
		}
		return buf
	}

	// bufIsMidi reports whether ref names a MIDI port, so the mark-free
	// step below returns a buffer to the pool it actually came from
	// instead of conflating the two independently-numbered buffer
	// spaces.
	bufIsMidi := func(ref portRef) bool {
		n, ok := b.nodes[ref.node]
		if !ok {
			return false
		}
		desc, ok := n.Ports.ForPort(ref.port)
		return ok && desc.Type == port.Midi
	}

	for k, n := range order {
		var transientAudio []int
		var transientMidi []int

		// audio inputs: first pass, find the max output latency among
		// every distinct source feeding any audio input port.
		audioInCount := int(n.Ports.CountOf(port.Audio, port.Input))
		var maxInLatency uint32
		for ch := 0; ch < audioInCount; ch++ {
			desc, _ := n.Ports.ForChannel(port.Audio, int32(ch), port.Input)
			for _, c := range inputsByPort[portRef{n.ID, desc.Index}] {
				if lat := b.nodeLatency[c.SrcNode]; lat > maxInLatency {
					maxInLatency = lat
				}
			}
		}

		audioInputBufs := make([]int, audioInCount)
		for ch := 0; ch < audioInCount; ch++ {
			desc, _ := n.Ports.ForChannel(port.Audio, int32(ch), port.Input)
			conns := inputsByPort[portRef{n.ID, desc.Index}]
			audioInputBufs[ch] = b.assembleAudioInput(conns, maxInLatency, k, neededUntil, allocAudio, &ops, &transientAudio, resolveAudioSource)
		}

		midiInCount := int(n.Ports.CountOf(port.Midi, port.Input))
		midiInputBufs := make([]int, midiInCount)
		for ch := 0; ch < midiInCount; ch++ {
			desc, _ := n.Ports.ForChannel(port.Midi, int32(ch), port.Input)
			conns := inputsByPort[portRef{n.ID, desc.Index}]
			midiInputBufs[ch] = b.assembleMidiInput(conns, k, neededUntil, allocMidi, &ops, &transientMidi, resolveMidiSource)
		}

		b.nodeLatency[n.ID] = maxInLatency + n.Latency

		switch n.Kind {
		case KindAudioInput:
			outCount := int(n.Ports.CountOf(port.Audio, port.Output))
			for ch := 0; ch < outCount; ch++ {
				desc, _ := n.Ports.ForChannel(port.Audio, int32(ch), port.Output)
				buf := assignOutBuf(portRef{n.ID, desc.Index}, allocAudio)
				graphInputBufs = append(graphInputBufs, buf)
			}
		case KindMidiInput:
			outCount := int(n.Ports.CountOf(port.Midi, port.Output))
			for ch := 0; ch < outCount; ch++ {
				desc, _ := n.Ports.ForChannel(port.Midi, int32(ch), port.Output)
				buf := assignOutBuf(portRef{n.ID, desc.Index}, allocMidi)
				graphMidiInBufs = append(graphMidiInBufs, buf)
			}
		case KindAudioOutput:
			graphOutputBufs = append(graphOutputBufs, audioInputBufs...)
		case KindMidiOutput:
			graphMidiOutBufs = append(graphMidiOutBufs, midiInputBufs...)
		default:
			outAudioCount := int(n.Ports.CountOf(port.Audio, port.Output))
			outputBufs := make([]int, outAudioCount)
			for ch := 0; ch < outAudioCount; ch++ {
				desc, _ := n.Ports.ForChannel(port.Audio, int32(ch), port.Output)
				outputBufs[ch] = assignOutBuf(portRef{n.ID, desc.Index}, allocAudio)
			}
			outMidiCount := int(n.Ports.CountOf(port.Midi, port.Output))
			midiOutputBufs := make([]int, outMidiCount)
			for ch := 0; ch < outMidiCount; ch++ {
				desc, _ := n.Ports.ForChannel(port.Midi, int32(ch), port.Output)
				midiOutputBufs[ch] = assignOutBuf(portRef{n.ID, desc.Index}, allocMidi)
			}
			pb := engine.NewProcessBuffer(n.ID, n.Engine, audioInputBufs, outputBufs, midiInputBufs, midiOutputBufs, b.faults)
			ops = append(ops, pb)
		}

		for _, buf := range transientAudio {
			freeAudio = append(freeAudio, buf)
		}
		for _, buf := range transientMidi {
			freeMidi = append(freeMidi, buf)
		}

		// mark-free step: release any node output no longer needed by a
		// node later than k, except a buffer pinned by the feedback
		// pre-pass — its whole purpose is to outlive the block it was
		// last read in.
		for ref, buf := range b.nodeOutBuf {
			if neededUntil[ref] > k || orderIndex[ref.node] > k {
				continue
			}
			if bufIsMidi(ref) {
				if !pinnedMidi[buf] {
					freeMidi = append(freeMidi, buf)
					delete(b.nodeOutBuf, ref)
				}
			} else {
				if !pinnedAudio[buf] {
					freeAudio = append(freeAudio, buf)
					delete(b.nodeOutBuf, ref)
				}
			}
		}
	}

	totalLatency := uint32(0)
	for _, n := range order {
		if n.Kind == KindAudioOutput {
			if lat := b.nodeLatency[n.ID]; lat > totalLatency {
				totalLatency = lat
			}
		}
	}

	plan := engine.NewPlan(ops, nextAudio, nextMidi, b.maxFrames, int(totalLatency))
	plan.GraphInputBufIDs = graphInputBufs
	plan.GraphOutputBufIDs = graphOutputBufs
	plan.GraphMidiInBufIDs = graphMidiInBufs
	plan.GraphMidiOutBufIDs = graphMidiOutBufs
	return plan, nil
}

// assembleAudioInput resolves one audio input port's buffer per the
// zero/one/many connection rules.
func (b *builderState) assembleAudioInput(
	conns []Connection,
	maxInLatency uint32,
	currentIndex int,
	neededUntil map[portRef]int,
	allocAudio func() int,
	ops *[]engine.Op,
	transient *[]int,
	resolveSource func(Connection, uint32, *[]int) int,
) int {
	switch len(conns) {
	case 0:
		return engine.SilenceBuffer
	case 1:
		return resolveSource(conns[0], maxInLatency, transient)
	default:
		firstBuf := resolveSource(conns[0], maxInLatency, transient)
		firstRef := portRef{conns[0].SrcNode, conns[0].SrcPort}
		var accBuf int
		if isTransient(firstBuf, *transient) || neededUntil[firstRef] <= currentIndex {
			accBuf = firstBuf
		} else {
			accBuf = allocAudio()
			*ops = append(*ops, engine.CopyAudio{Src: firstBuf, Dst: accBuf})
			*transient = append(*transient, accBuf)
		}
		for _, c := range conns[1:] {
			srcBuf := resolveSource(c, maxInLatency, transient)
			*ops = append(*ops, engine.AddAudio{Src: srcBuf, Dst: accBuf})
		}
		return accBuf
	}
}

func (b *builderState) assembleMidiInput(
	conns []Connection,
	currentIndex int,
	neededUntil map[portRef]int,
	allocMidi func() int,
	ops *[]engine.Op,
	transient *[]int,
	resolveSource func(Connection) int,
) int {
	switch len(conns) {
	case 0:
		return engine.SilenceBuffer
	case 1:
		return resolveSource(conns[0])
	default:
		firstBuf := resolveSource(conns[0])
		firstRef := portRef{conns[0].SrcNode, conns[0].SrcPort}
		var accBuf int
		if neededUntil[firstRef] <= currentIndex {
			accBuf = firstBuf
		} else {
			accBuf = allocMidi()
			*ops = append(*ops, engine.CopyMidi{Src: firstBuf, Dst: accBuf})
			*transient = append(*transient, accBuf)
		}
		for _, c := range conns[1:] {
			srcBuf := resolveSource(c)
			*ops = append(*ops, engine.AddMidi{Src: srcBuf, Dst: accBuf})
		}
		return accBuf
	}
}

func isTransient(buf int, transient []int) bool {
	for _, b := range transient {
		if b == buf {
			return true
		}
	}
	return false
}
