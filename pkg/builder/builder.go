// Package builder compiles a node/connection set into a Plan: an
// ordered op list plus the shared buffer counts needed to execute it. It depends only on pkg/engine and pkg/port, never on
// pkg/graph, so pkg/graph can depend on pkg/builder without a cycle.
package builder

import (
	"fmt"
	"sort"

	"github.com/signalpath/graphengine/pkg/engine"
	"github.com/signalpath/graphengine/pkg/port"
)

// Kind distinguishes the four built-in IO node identities from every
// other node. The builder folds IO nodes into buffer routing instead
// of emitting a ProcessBuffer op for them: an audio-input node's
// "render" is simply the engine copying the host's input into its
// output buffer before Ops runs, and symmetrically for the other
// three kinds.
type Kind int

const (
	KindNormal Kind = iota
	KindAudioInput
	KindAudioOutput
	KindMidiInput
	KindMidiOutput
)

// Node is the builder's view of one graph node: enough to order it,
// allocate its buffers, and (for KindNormal) emit a ProcessBuffer op.
type Node struct {
	ID      uint32
	Kind    Kind
	Engine  engine.Node
	Ports   *port.List
	Latency uint32
}

// Connection is the builder's view of one arc.
type Connection struct {
	SrcNode, SrcPort uint32
	DstNode, DstPort uint32
}

// Build compiles nodes and connections into a Plan sized for
// maxFrames. faults receives render-fault bookkeeping for every
// ProcessBuffer op in the result; it may be nil.
func Build(nodes []Node, connections []Connection, maxFrames int, faults *engine.FaultCounter) (*engine.Plan, error) {
	b := &builderState{
		nodes:       make(map[uint32]Node, len(nodes)),
		connections: connections,
		maxFrames:   maxFrames,
		faults:      faults,
	}
	for _, n := range nodes {
		if _, dup := b.nodes[n.ID]; dup {
			return nil, fmt.Errorf("builder: duplicate node id %d", n.ID)
		}
		b.nodes[n.ID] = n
	}

	order, err := b.order(nodes)
	if err != nil {
		return nil, err
	}

	return b.allocate(order)
}

type builderState struct {
	nodes       map[uint32]Node
	connections []Connection
	maxFrames   int
	faults      *engine.FaultCounter

	// nodeOutBuf and nodeLatency are live only during allocate.
	nodeOutBuf  map[portRef]int // (node, output port) -> buffer id holding it
	nodeLatency map[uint32]uint32
}

type portRef struct {
	node uint32
	port uint32
}

// order returns nodes in an insertion order where every node appears
// after all non-cyclic predecessors that feed it, via a DFS with a
// visiting guard: a node reached while already on the current DFS
// path is a feedback edge and is simply not waited on.
func (b *builderState) order(nodes []Node) ([]Node, error) {
	predecessors := make(map[uint32][]uint32)
	for _, c := range b.connections {
		predecessors[c.DstNode] = append(predecessors[c.DstNode], c.SrcNode)
	}

	var result []Node
	visited := make(map[uint32]bool)
	visiting := make(map[uint32]bool)

	var visit func(id uint32) error
	visit = func(id uint32) error {
		if visited[id] {
			return nil
		}
		n, ok := b.nodes[id]
		if !ok {
			return fmt.Errorf("builder: connection references unknown node %d", id)
		}
		visiting[id] = true
		for _, pred := range predecessors[id] {
			if visiting[pred] {
				continue // feedback edge: break the cycle, don't wait on it
			}
			if err := visit(pred); err != nil {
				return err
			}
		}
		visiting[id] = false
		if !visited[id] {
			visited[id] = true
			result = append(result, n)
		}
		return nil
	}

	// Stable order: visit nodes in id order so output is deterministic
	// across otherwise-equivalent inputs.
	ids := make([]uint32, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return result, nil
}
