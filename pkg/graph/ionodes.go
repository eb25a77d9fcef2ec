package graph

import (
	"github.com/signalpath/graphengine/pkg/builder"
	"github.com/signalpath/graphengine/pkg/engine"
	"github.com/signalpath/graphengine/pkg/midi"
	"github.com/signalpath/graphengine/pkg/port"
)

// IO node identifiers: the only hardcoded node identities the core
// recognizes. A Graph creates exactly one of each at construction and
// reserves their ids.
const (
	IOAudioInput  = "audio.input"
	IOAudioOutput = "audio.output"
	IOMidiInput   = "midi.input"
	IOMidiOutput  = "midi.output"
)

const (
	audioInputNodeID  uint32 = 1
	audioOutputNodeID uint32 = 2
	midiInputNodeID   uint32 = 3
	midiOutputNodeID  uint32 = 4
)

// ioNode is the fixed-behavior node backing the four IO identifiers.
// Its render is never actually called: the builder recognizes its
// Kind and folds it into buffer routing (the Engine copies host
// buffers in before Ops runs and out after), per the IO node
// contract's "publishes the outer input" / "accumulates into the
// outer output" description. Render/RenderBypassed exist only so
// ioNode fully satisfies Node if something ever queries it directly.
type ioNode struct {
	*BaseNode
	name string
	kind builder.Kind
}

// audio.output and midi.output are legitimately output-less from the
// port model's point of view (their "output" is the outer callback
// buffer, which the port model has no port for), so they are built
// directly off port.List rather than through port.Builder, which
// requires at least one output port.

func newAudioInputNode(numChannels int) *ioNode {
	list := port.NewList()
	for i := 0; i < numChannels; i++ {
		list.Add(port.Audio, port.Output, "out", "Audio In")
	}
	return &ioNode{BaseNode: NewBaseNode(list), name: IOAudioInput, kind: builder.KindAudioInput}
}

func newAudioOutputNode(numChannels int) *ioNode {
	list := port.NewList()
	for i := 0; i < numChannels; i++ {
		list.Add(port.Audio, port.Input, "in", "Audio Out")
	}
	return &ioNode{BaseNode: NewBaseNode(list), name: IOAudioOutput, kind: builder.KindAudioOutput}
}

func newMidiInputNode() *ioNode {
	list := port.NewList()
	list.Add(port.Midi, port.Output, "out", "MIDI In")
	return &ioNode{BaseNode: NewBaseNode(list), name: IOMidiInput, kind: builder.KindMidiInput}
}

func newMidiOutputNode() *ioNode {
	list := port.NewList()
	list.Add(port.Midi, port.Input, "in", "MIDI Out")
	return &ioNode{BaseNode: NewBaseNode(list), name: IOMidiOutput, kind: builder.KindMidiOutput}
}

func (n *ioNode) Render(audio *engine.AudioBlock, mp *midi.Pipe) {
	audio.PassThrough()
}
