package engine

import "github.com/signalpath/graphengine/pkg/midi"

// SilenceBuffer is the read-only, always-zero audio buffer index and
// the always-empty MIDI buffer index. Unconnected inputs and feedback
// break points are wired to this index.
const SilenceBuffer = 0

// Pool is the shared buffer pool the render engine owns. It is
// resized only while the audio callback is not running (between plan
// swaps) and always holds exactly as many buffers as the active plan
// requires.
type Pool struct {
	audio     [][]float32
	midiBufs  []*midi.EventQueue
	maxFrames int
}

// NewPool returns an empty pool; call Resize before first use.
func NewPool() *Pool {
	return &Pool{}
}

// Resize grows or shrinks the pool to exactly audioCount audio
// buffers and midiCount MIDI buffers, each audio buffer backed by
// maxFrames samples. Buffer 0 of each type is the read-only silence
// buffer and is never handed out for writing.
func (p *Pool) Resize(audioCount, midiCount, maxFrames int) {
	if audioCount < 1 {
		audioCount = 1
	}
	if midiCount < 1 {
		midiCount = 1
	}
	p.maxFrames = maxFrames

	p.audio = make([][]float32, audioCount)
	for i := range p.audio {
		p.audio[i] = make([]float32, maxFrames)
	}

	p.midiBufs = make([]*midi.EventQueue, midiCount)
	for i := range p.midiBufs {
		p.midiBufs[i] = midi.NewEventQueue()
	}
}

// AudioBufferCount reports the number of audio buffers currently held.
func (p *Pool) AudioBufferCount() int {
	return len(p.audio)
}

// MidiBufferCount reports the number of MIDI buffers currently held.
func (p *Pool) MidiBufferCount() int {
	return len(p.midiBufs)
}

// Audio returns the full-length backing slice for audio buffer id;
// callers slice it to the current block's frame count.
func (p *Pool) Audio(id int) []float32 {
	return p.audio[id]
}

// Midi returns the MIDI event queue for buffer id.
func (p *Pool) Midi(id int) *midi.EventQueue {
	return p.midiBufs[id]
}

// ClearSilence re-zeros buffer 0 and empties MIDI buffer 0, guarding
// against a node having (incorrectly) written through the silence
// buffer in a prior block.
func (p *Pool) ClearSilence(numFrames int) {
	if len(p.audio) > SilenceBuffer {
		buf := p.audio[SilenceBuffer][:numFrames]
		for i := range buf {
			buf[i] = 0
		}
	}
	if len(p.midiBufs) > SilenceBuffer {
		p.midiBufs[SilenceBuffer].Clear()
	}
}
