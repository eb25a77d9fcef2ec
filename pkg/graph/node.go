package graph

import (
	"sync/atomic"

	"github.com/signalpath/graphengine/pkg/engine"
	"github.com/signalpath/graphengine/pkg/gain"
	"github.com/signalpath/graphengine/pkg/midi"
	"github.com/signalpath/graphengine/pkg/port"
)

// Node is the full node contract: the render-path subset engine.Node
// needs, plus the lifecycle and identity surface the graph and
// builder need. Concrete nodes normally embed *BaseNode and override
// Render/RenderBypassed.
type Node interface {
	engine.Node

	NodeID() uint32
	setNodeID(id uint32)

	Ports() *port.List
	LatencySamples() uint32

	Prepare(sampleRate float64, blockSize int) error
	Unprepare()
	Prepared() bool
}

// BaseNode implements the bookkeeping common to every node: identity,
// ports, enable/bypass/suspend flags, gain state, and the
// prepare/unprepare lifecycle with optional hooks, in the same style
// as an embeddable base processor. Concrete node types embed
// *BaseNode and supply Render/RenderBypassed.
type BaseNode struct {
	id    uint32
	ports *port.List

	enabled   atomic.Bool
	bypassed  atomic.Bool
	suspended atomic.Bool
	prepared  atomic.Bool

	latency atomic.Uint32

	inGain  *gain.State
	outGain *gain.State

	sampleRate float64
	blockSize  int

	onPrepare   func(sampleRate float64, blockSize int) error
	onUnprepare func()
}

// NewBaseNode returns a base node over the given ports, enabled and
// not bypassed, with unity input/output gain.
func NewBaseNode(ports *port.List) *BaseNode {
	b := &BaseNode{
		ports:   ports,
		inGain:  gain.NewState(),
		outGain: gain.NewState(),
	}
	b.enabled.Store(true)
	return b
}

func (b *BaseNode) NodeID() uint32       { return b.id }
func (b *BaseNode) setNodeID(id uint32)  { b.id = id }
func (b *BaseNode) Ports() *port.List    { return b.ports }

func (b *BaseNode) IsEnabled() bool  { return b.enabled.Load() }
func (b *BaseNode) SetEnabled(v bool) { b.enabled.Store(v) }

func (b *BaseNode) IsBypassed() bool  { return b.bypassed.Load() }
func (b *BaseNode) SetBypassed(v bool) { b.bypassed.Store(v) }

func (b *BaseNode) IsSuspended() bool  { return b.suspended.Load() }
func (b *BaseNode) SetSuspended(v bool) { b.suspended.Store(v) }

func (b *BaseNode) LatencySamples() uint32      { return b.latency.Load() }
func (b *BaseNode) SetLatencySamples(n uint32) { b.latency.Store(n) }

func (b *BaseNode) InputGainState() *gain.State  { return b.inGain }
func (b *BaseNode) OutputGainState() *gain.State { return b.outGain }

func (b *BaseNode) SampleRate() float64 { return b.sampleRate }
func (b *BaseNode) BlockSize() int      { return b.blockSize }

// Prepare allocates against (sampleRate, blockSize). It is idempotent:
// calling it again after Unprepare re-runs onPrepare.
func (b *BaseNode) Prepare(sampleRate float64, blockSize int) error {
	b.sampleRate = sampleRate
	b.blockSize = blockSize
	if b.onPrepare != nil {
		if err := b.onPrepare(sampleRate, blockSize); err != nil {
			return err
		}
	}
	b.prepared.Store(true)
	b.suspended.Store(false)
	return nil
}

// Unprepare releases render resources. Safe to call when already unprepared.
func (b *BaseNode) Unprepare() {
	if !b.prepared.Load() {
		return
	}
	if b.onUnprepare != nil {
		b.onUnprepare()
	}
	b.prepared.Store(false)
}

func (b *BaseNode) Prepared() bool { return b.prepared.Load() }

// OnPrepare sets the callback Prepare invokes after recording rate/block.
func (b *BaseNode) OnPrepare(fn func(sampleRate float64, blockSize int) error) {
	b.onPrepare = fn
}

// OnUnprepare sets the callback Unprepare invokes before marking unprepared.
func (b *BaseNode) OnUnprepare(fn func()) {
	b.onUnprepare = fn
}

// RenderBypassed gives every node a sensible default: copy matching
// input channels straight to output. Nodes with asymmetric port
// layouts should override it.
func (b *BaseNode) RenderBypassed(audio *engine.AudioBlock, mp *midi.Pipe) {
	audio.PassThrough()
}

// SimpleNode pairs a *BaseNode with a plain render function, for
// small built-in nodes and tests that don't warrant their own type.
type SimpleNode struct {
	*BaseNode
	renderFn func(audio *engine.AudioBlock, mp *midi.Pipe)
}

// NewSimpleNode returns a node over ports whose Render calls fn.
func NewSimpleNode(ports *port.List, fn func(audio *engine.AudioBlock, mp *midi.Pipe)) *SimpleNode {
	return &SimpleNode{BaseNode: NewBaseNode(ports), renderFn: fn}
}

func (s *SimpleNode) Render(audio *engine.AudioBlock, mp *midi.Pipe) {
	if s.renderFn != nil {
		s.renderFn(audio, mp)
	}
}
