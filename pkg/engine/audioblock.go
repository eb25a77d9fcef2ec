// Package engine implements the render engine: the shared buffer
// pool and the op execution that drives a compiled plan once per
// audio callback.
package engine

// AudioBlock is the per-call view a node's Render method sees: its
// input and output channels aliased from the shared buffer pool, each
// sized to NumFrames. A node reads Input and writes Output; the
// builder gives output channels their own pool buffers, so Output[i]
// never aliases Input[i].
type AudioBlock struct {
	Input     [][]float32
	Output    [][]float32
	numFrames int
}

// NewAudioBlock wraps already-sliced input/output channels into a block.
func NewAudioBlock(input, output [][]float32, numFrames int) *AudioBlock {
	return &AudioBlock{Input: input, Output: output, numFrames: numFrames}
}

// NumFrames returns the number of frames in this block.
func (b *AudioBlock) NumFrames() int {
	return b.numFrames
}

// NumInputChannels returns the number of input channels.
func (b *AudioBlock) NumInputChannels() int {
	return len(b.Input)
}

// NumOutputChannels returns the number of output channels.
func (b *AudioBlock) NumOutputChannels() int {
	return len(b.Output)
}

// PassThrough copies each input channel to the matching output
// channel, for nodes whose bypassed render is a plain copy.
func (b *AudioBlock) PassThrough() {
	n := len(b.Input)
	if len(b.Output) < n {
		n = len(b.Output)
	}
	for i := 0; i < n; i++ {
		copy(b.Output[i], b.Input[i])
	}
}

// ClearOutput zeros every output channel.
func (b *AudioBlock) ClearOutput() {
	for _, ch := range b.Output {
		for i := range ch {
			ch[i] = 0
		}
	}
}
