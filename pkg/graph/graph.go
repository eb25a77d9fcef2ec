// Package graph implements the graph data model: nodes, typed ports,
// connections, and the Graph itself, which is a Node so graphs may
// nest. Structural edits coalesce into a single async rebuild via
// pkg/builder before the next audio block needs the result.
package graph

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/signalpath/graphengine/internal/logging"
	"github.com/signalpath/graphengine/pkg/builder"
	"github.com/signalpath/graphengine/pkg/engine"
	"github.com/signalpath/graphengine/pkg/midi"
	"github.com/signalpath/graphengine/pkg/port"
	"github.com/signalpath/graphengine/pkg/state"
)

// Graph is a node whose body is a set of child nodes and connections.
// Its own render drives a compiled builder.Plan; nesting a Graph as a
// child of another Graph makes the inner graph's render one op in the
// outer plan.
type Graph struct {
	*BaseNode

	mu          sync.Mutex
	children    map[uint32]Node
	connections []Connection
	lastNodeID  uint32

	audioIn  *ioNode
	audioOut *ioNode
	midiIn   *ioNode
	midiOut  *ioNode

	midiChannelMask atomic.Uint32 // low 16 bits are the live mask
	velocityCurve   atomic.Int32
	midiScratch     []*midi.EventQueue
	midiInQueues    []*midi.EventQueue
	midiOutQueues   []*midi.EventQueue

	maxFrames int
	eng       *engine.Engine
	faults    *engine.FaultCounter
	log       *logging.Logger

	rebuildCh chan struct{}
	stopCh    chan struct{}
}

// NewGraph returns a prepared-for-editing, not-yet-prepared-for-audio
// graph whose outer surface is ports. metrics may be nil.
func NewGraph(ports *port.List, maxFrames int, metrics *engine.Metrics) *Graph {
	audioInCount := int(ports.CountOf(port.Audio, port.Input))
	audioOutCount := int(ports.CountOf(port.Audio, port.Output))

	g := &Graph{
		BaseNode:  NewBaseNode(ports),
		children:  make(map[uint32]Node),
		maxFrames: maxFrames,
		faults:    engine.NewFaultCounter(metrics),
		log:       logging.Default(),
		rebuildCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
	g.eng = engine.NewEngine(maxFrames, metrics)
	g.velocityCurve.Store(0)
	g.midiChannelMask.Store(0xFFFF)

	g.audioIn = newAudioInputNode(audioInCount)
	g.audioOut = newAudioOutputNode(audioOutCount)
	g.midiIn = newMidiInputNode()
	g.midiOut = newMidiOutputNode()
	g.audioIn.setNodeID(audioInputNodeID)
	g.audioOut.setNodeID(audioOutputNodeID)
	g.midiIn.setNodeID(midiInputNodeID)
	g.midiOut.setNodeID(midiOutputNodeID)
	g.children[audioInputNodeID] = g.audioIn
	g.children[audioOutputNodeID] = g.audioOut
	g.children[midiInputNodeID] = g.midiIn
	g.children[midiOutputNodeID] = g.midiOut
	g.lastNodeID = midiOutputNodeID

	go g.rebuildLoop()
	return g
}

func (g *Graph) rebuildLoop() {
	for {
		select {
		case <-g.rebuildCh:
			g.mu.Lock()
			_ = g.rebuildLocked()
			g.mu.Unlock()
		case <-g.stopCh:
			return
		}
	}
}

// requestRebuild coalesces multiple pending edits into a single
// rebuild: the channel's buffer of 1 means a rebuild already queued
// absorbs this request.
func (g *Graph) requestRebuild() {
	select {
	case g.rebuildCh <- struct{}{}:
	default:
	}
}

// Close stops the background rebuild worker. Call it when the graph
// is permanently discarded.
func (g *Graph) Close() {
	close(g.stopCh)
}

func isReservedID(id uint32) bool {
	return id >= audioInputNodeID && id <= midiOutputNodeID
}

// AddNode adds n to the graph. If requestedID is 0, the next id is
// allocated; otherwise requestedID is used if free and not reserved.
func (g *Graph) AddNode(n Node, requestedID uint32) (uint32, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var id uint32
	if requestedID == 0 {
		g.lastNodeID++
		id = g.lastNodeID
	} else {
		if isReservedID(requestedID) {
			return 0, ErrReservedNodeID
		}
		if _, exists := g.children[requestedID]; exists {
			return 0, fmt.Errorf("%w: id %d already in use", ErrInvalidNodeID, requestedID)
		}
		id = requestedID
		if id > g.lastNodeID {
			g.lastNodeID = id
		}
	}

	n.setNodeID(id)
	g.children[id] = n
	g.requestRebuild()
	return id, nil
}

// RemoveNode removes the node and every connection touching it.
// Reserved IO node ids cannot be removed.
func (g *Graph) RemoveNode(id uint32) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if isReservedID(id) {
		return false
	}
	n, ok := g.children[id]
	if !ok {
		return false
	}

	g.connections = filterConnections(g.connections, func(c Connection) bool {
		return c.SrcNode != id && c.DstNode != id
	})
	delete(g.children, id)
	n.Unprepare()
	g.requestRebuild()
	return true
}

// CanConnect reports whether a connection from (srcNode, srcPort) to
// (dstNode, dstPort) would be accepted by AddConnection, without
// making it.
func (g *Graph) CanConnect(srcNode, srcPort, dstNode, dstPort uint32) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, err := g.validateConnection(srcNode, srcPort, dstNode, dstPort)
	return err
}

func (g *Graph) validateConnection(srcNode, srcPort, dstNode, dstPort uint32) (Connection, error) {
	if srcNode == dstNode {
		return Connection{}, ErrSelfConnection
	}
	srcN, ok := g.children[srcNode]
	if !ok {
		return Connection{}, fmt.Errorf("%w: src node %d", ErrInvalidNodeID, srcNode)
	}
	dstN, ok := g.children[dstNode]
	if !ok {
		return Connection{}, fmt.Errorf("%w: dst node %d", ErrInvalidNodeID, dstNode)
	}
	srcDesc, ok := srcN.Ports().ForPort(srcPort)
	if !ok || srcDesc.Flow != port.Output {
		return Connection{}, fmt.Errorf("%w: src port %d", ErrInvalidPort, srcPort)
	}
	dstDesc, ok := dstN.Ports().ForPort(dstPort)
	if !ok || dstDesc.Flow != port.Input {
		return Connection{}, fmt.Errorf("%w: dst port %d", ErrInvalidPort, dstPort)
	}
	if !port.Compatible(srcDesc.Type, dstDesc.Type) {
		return Connection{}, ErrTypeMismatch
	}
	c := Connection{SrcNode: srcNode, SrcPort: srcPort, DstNode: dstNode, DstPort: dstPort}
	if g.findConnection(c) >= 0 {
		return Connection{}, ErrDuplicateConnection
	}
	return c, nil
}

// AddConnection validates and inserts a new connection, keeping the
// connection set sorted by its total order.
func (g *Graph) AddConnection(srcNode, srcPort, dstNode, dstPort uint32) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, err := g.validateConnection(srcNode, srcPort, dstNode, dstPort)
	if err != nil {
		return err
	}
	idx := sort.Search(len(g.connections), func(i int) bool { return !g.connections[i].less(c) })
	g.connections = append(g.connections, Connection{})
	copy(g.connections[idx+1:], g.connections[idx:])
	g.connections[idx] = c
	g.requestRebuild()
	return nil
}

// RemoveConnection removes the matching connection, if present.
func (g *Graph) RemoveConnection(srcNode, srcPort, dstNode, dstPort uint32) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	c := Connection{SrcNode: srcNode, SrcPort: srcPort, DstNode: dstNode, DstPort: dstPort}
	idx := g.findConnection(c)
	if idx < 0 {
		return false
	}
	g.connections = append(g.connections[:idx], g.connections[idx+1:]...)
	g.requestRebuild()
	return true
}

// ConnectionBetween returns the connection matching the quadruple, if any.
func (g *Graph) ConnectionBetween(srcNode, srcPort, dstNode, dstPort uint32) (Connection, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c := Connection{SrcNode: srcNode, SrcPort: srcPort, DstNode: dstNode, DstPort: dstPort}
	idx := g.findConnection(c)
	if idx < 0 {
		return Connection{}, false
	}
	return g.connections[idx], true
}

// DisconnectOptions selects which of a node's connections DisconnectNode removes.
type DisconnectOptions struct {
	Inputs  bool
	Outputs bool
	Audio   bool
	Midi    bool
}

// DisconnectNode removes connections touching node id per opts. If
// neither Audio nor Midi is set, both types are matched; if neither
// Inputs nor Outputs is set, both directions are matched.
func (g *Graph) DisconnectNode(id uint32, opts DisconnectOptions) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.children[id]
	if !ok {
		return false
	}
	matchDir := opts.Inputs || opts.Outputs
	matchType := opts.Audio || opts.Midi

	removed := false
	g.connections = filterConnections(g.connections, func(c Connection) bool {
		isInput := c.DstNode == id
		isOutput := c.SrcNode == id
		if !isInput && !isOutput {
			return true
		}
		if matchDir && !((opts.Inputs && isInput) || (opts.Outputs && isOutput)) {
			return true
		}
		if matchType {
			var desc port.Description
			var has bool
			if isInput {
				desc, has = n.Ports().ForPort(c.DstPort)
			} else {
				desc, has = n.Ports().ForPort(c.SrcPort)
			}
			if has {
				isAudio := desc.Type == port.Audio
				isMidi := desc.Type == port.Midi
				if !((opts.Audio && isAudio) || (opts.Midi && isMidi)) {
					return true
				}
			}
		}
		removed = true
		return false
	})
	if removed {
		g.requestRebuild()
	}
	return removed
}

// RemoveIllegalConnections purges connections left dangling by a port
// layout change: a missing node, an out-of-range or wrong-direction
// port, or a type mismatch introduced since the connection was made.
func (g *Graph) RemoveIllegalConnections() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	removedAny := false
	g.connections = filterConnections(g.connections, func(c Connection) bool {
		_, err := g.validateConnectionIgnoringDuplicate(c)
		if err != nil {
			removedAny = true
			return false
		}
		return true
	})
	if removedAny {
		g.requestRebuild()
	}
	return removedAny
}

func (g *Graph) validateConnectionIgnoringDuplicate(c Connection) (Connection, error) {
	srcN, ok := g.children[c.SrcNode]
	if !ok {
		return Connection{}, ErrInvalidNodeID
	}
	dstN, ok := g.children[c.DstNode]
	if !ok {
		return Connection{}, ErrInvalidNodeID
	}
	srcDesc, ok := srcN.Ports().ForPort(c.SrcPort)
	if !ok || srcDesc.Flow != port.Output {
		return Connection{}, ErrInvalidPort
	}
	dstDesc, ok := dstN.Ports().ForPort(c.DstPort)
	if !ok || dstDesc.Flow != port.Input {
		return Connection{}, ErrInvalidPort
	}
	if !port.Compatible(srcDesc.Type, dstDesc.Type) {
		return Connection{}, ErrTypeMismatch
	}
	return c, nil
}

func (g *Graph) findConnection(c Connection) int {
	idx := sort.Search(len(g.connections), func(i int) bool { return !g.connections[i].less(c) })
	if idx < len(g.connections) && g.connections[idx].equal(c) {
		return idx
	}
	return -1
}

func filterConnections(in []Connection, keep func(Connection) bool) []Connection {
	out := in[:0]
	for _, c := range in {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// SetMidiChannelMask sets the live 16-bit channel mask; bit n (0-15)
// passes channel n+1.
func (g *Graph) SetMidiChannelMask(mask uint16) {
	g.midiChannelMask.Store(uint32(mask))
}

// MidiChannelMask returns the live channel mask.
func (g *Graph) MidiChannelMask() uint16 {
	return uint16(g.midiChannelMask.Load())
}

// SetVelocityCurve sets the live velocity curve mode, a host-defined enum.
func (g *Graph) SetVelocityCurve(mode int32) {
	g.velocityCurve.Store(mode)
}

// VelocityCurve returns the live velocity curve mode.
func (g *Graph) VelocityCurve() int32 {
	return g.velocityCurve.Load()
}

// Prepare prepares every child for (sampleRate, blockSize), then
// compiles and installs the initial plan. A child whose Prepare fails
// is left unprepared and excluded from the compiled plan; the graph
// itself still prepares successfully unless the compile step fails
// outright.
func (g *Graph) Prepare(sampleRate float64, blockSize int) error {
	if err := g.BaseNode.Prepare(sampleRate, blockSize); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, n := range g.children {
		_ = n.Prepare(sampleRate, blockSize) // PrepareFailed: excluded below, graph continues
	}
	return g.rebuildLocked()
}

// Unprepare releases every child's render resources and discards the
// compiled plan.
func (g *Graph) Unprepare() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, n := range g.children {
		n.Unprepare()
	}
	g.BaseNode.Unprepare()
	g.eng.SetPlan(engine.Empty(g.maxFrames))
}

// Release is an alias for Unprepare, matching the exposed graph API
// name for freeing render resources without discarding the model.
func (g *Graph) Release() {
	g.Unprepare()
}

// Reset re-runs Prepare with the last-known (sampleRate, blockSize),
// flushing every child's render state.
func (g *Graph) Reset() error {
	sr, bs := g.SampleRate(), g.BlockSize()
	g.Unprepare()
	return g.Prepare(sr, bs)
}

func (g *Graph) rebuildLocked() error {
	rebuildID := uuid.New().String()
	g.log.RebuildStarted(rebuildID)

	nodes := make([]builder.Node, 0, len(g.children))
	included := make(map[uint32]bool, len(g.children))
	for _, n := range g.children {
		if !n.Prepared() {
			continue
		}
		included[n.NodeID()] = true
		nodes = append(nodes, builder.Node{
			ID:      n.NodeID(),
			Kind:    nodeKind(n),
			Engine:  n,
			Ports:   n.Ports(),
			Latency: n.LatencySamples(),
		})
	}

	// A node that failed to prepare is excluded above; connections
	// touching it are treated as absent for this plan rather than as a
	// structural error, the same way a feedback edge resolves to silence.
	conns := make([]builder.Connection, 0, len(g.connections))
	for _, c := range g.connections {
		if !included[c.SrcNode] || !included[c.DstNode] {
			continue
		}
		conns = append(conns, builder.Connection{SrcNode: c.SrcNode, SrcPort: c.SrcPort, DstNode: c.DstNode, DstPort: c.DstPort})
	}

	plan, err := builder.Build(nodes, conns, g.maxFrames, g.faults)
	if err != nil {
		g.log.RebuildFailed(rebuildID, err)
		return fmt.Errorf("%w: %v", ErrPrepareFailed, err)
	}
	g.eng.SetPlan(plan)
	g.SetLatencySamples(uint32(plan.TotalLatencySamples))
	g.log.RebuildSwapped(rebuildID, len(plan.Ops), plan.AudioBufferCount, plan.MidiBufferCount)
	return nil
}

func nodeKind(n Node) builder.Kind {
	if io, ok := n.(*ioNode); ok {
		return io.kind
	}
	return builder.KindNormal
}

// Render executes the compiled plan for one block. audio and mp are
// the outer I/O this graph was prepared with; when this graph is
// itself a child of another graph, the parent's ProcessBuffer op
// supplies them. Incoming MIDI is first passed through the graph's
// live channel mask and velocity curve (spec: evaluated once per
// incoming buffer, not per connection) into a scratch buffer that
// becomes the effective MIDI input for the rest of the block.
func (g *Graph) Render(audio *engine.AudioBlock, mp *midi.Pipe) {
	numMidiIn := int(g.Ports().CountOf(port.Midi, port.Input))
	numMidiOut := int(g.Ports().CountOf(port.Midi, port.Output))

	if len(g.midiScratch) != numMidiIn {
		g.midiScratch = make([]*midi.EventQueue, numMidiIn)
		for i := range g.midiScratch {
			g.midiScratch[i] = midi.NewEventQueue()
		}
	}

	filter := midi.Filter{ChannelMask: g.MidiChannelMask(), Curve: midi.VelocityCurve(g.VelocityCurve())}

	if len(g.midiInQueues) != numMidiIn {
		g.midiInQueues = make([]*midi.EventQueue, numMidiIn)
	}
	for i := range g.midiInQueues {
		filter.Apply(mp.Buffer(i), g.midiScratch[i])
		g.midiInQueues[i] = g.midiScratch[i]
	}
	if len(g.midiOutQueues) != numMidiOut {
		g.midiOutQueues = make([]*midi.EventQueue, numMidiOut)
	}
	for i := range g.midiOutQueues {
		g.midiOutQueues[i] = mp.Buffer(numMidiIn + i)
	}

	g.eng.Run(audio.Input, audio.Output, g.midiInQueues, g.midiOutQueues, audio.NumFrames())
}

// Faults returns the render fault counter shared by every
// ProcessBuffer op in this graph's compiled plan.
func (g *Graph) Faults() *engine.FaultCounter {
	return g.faults
}

// Node looks up a child by id, including the reserved IO nodes.
func (g *Graph) Node(id uint32) (Node, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.children[id]
	return n, ok
}

// Connections returns a snapshot of the current connection set.
func (g *Graph) Connections() []Connection {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Connection, len(g.connections))
	copy(out, g.connections)
	return out
}

// Capture snapshots the state of every child node that implements
// state.Stateful, keyed by node id. Children that don't opt in are
// silently skipped.
func (g *Graph) Capture() (*state.Snapshot, error) {
	g.mu.Lock()
	stateful := g.statefulChildrenLocked()
	g.mu.Unlock()
	return state.Capture(stateful)
}

// Restore writes a previously captured snapshot back into the
// matching children, by node id. Ids in snap with no matching
// Stateful child are skipped, so a snapshot from a superset graph
// restores cleanly onto a subset.
func (g *Graph) Restore(snap *state.Snapshot) error {
	g.mu.Lock()
	stateful := g.statefulChildrenLocked()
	g.mu.Unlock()
	return state.Restore(stateful, snap)
}

func (g *Graph) statefulChildrenLocked() map[uint32]state.Stateful {
	out := make(map[uint32]state.Stateful)
	for id, n := range g.children {
		if s, ok := n.(state.Stateful); ok {
			out[id] = s
		}
	}
	return out
}
