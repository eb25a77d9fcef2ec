package port

import "fmt"

// Builder provides a fluent API for building a node's port list.
type Builder struct {
	list   *List
	errors []error
}

// NewBuilder creates a new port list builder.
func NewBuilder() *Builder {
	return &Builder{list: NewList()}
}

// WithAudioInputs adds n audio input ports, each with the given symbol and name.
func (b *Builder) WithAudioInputs(n int, symbol, name string) *Builder {
	for i := 0; i < n; i++ {
		b.list.Add(Audio, Input, symbol, name)
	}
	return b
}

// WithAudioOutputs adds n audio output ports, each with the given symbol and name.
func (b *Builder) WithAudioOutputs(n int, symbol, name string) *Builder {
	for i := 0; i < n; i++ {
		b.list.Add(Audio, Output, symbol, name)
	}
	return b
}

// WithMidiInput adds a single MIDI input port.
func (b *Builder) WithMidiInput(symbol, name string) *Builder {
	b.list.Add(Midi, Input, symbol, name)
	return b
}

// WithMidiOutput adds a single MIDI output port.
func (b *Builder) WithMidiOutput(symbol, name string) *Builder {
	b.list.Add(Midi, Output, symbol, name)
	return b
}

// WithStereoInput is a convenience method adding two audio input ports.
func (b *Builder) WithStereoInput(symbol string) *Builder {
	return b.WithAudioInputs(2, symbol, "Stereo In")
}

// WithStereoOutput is a convenience method adding two audio output ports.
func (b *Builder) WithStereoOutput(symbol string) *Builder {
	return b.WithAudioOutputs(2, symbol, "Stereo Out")
}

// WithMonoInput is a convenience method adding one audio input port.
func (b *Builder) WithMonoInput(symbol string) *Builder {
	return b.WithAudioInputs(1, symbol, "Mono In")
}

// WithMonoOutput is a convenience method adding one audio output port.
func (b *Builder) WithMonoOutput(symbol string) *Builder {
	return b.WithAudioOutputs(1, symbol, "Mono Out")
}

// Validate checks the accumulated port list for basic consistency.
func (b *Builder) Validate() error {
	if len(b.errors) > 0 {
		return fmt.Errorf("port builder errors: %v", b.errors)
	}
	hasOutput := b.list.CountOf(Audio, Output) > 0 || b.list.CountOf(Midi, Output) > 0
	if !hasOutput {
		return fmt.Errorf("port list must declare at least one output port")
	}
	return nil
}

// Build returns the built port list, or an error if validation fails.
func (b *Builder) Build() (*List, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b.list, nil
}

// MustBuild returns the built port list or panics on error.
func (b *Builder) MustBuild() *List {
	l, err := b.Build()
	if err != nil {
		panic(err)
	}
	return l
}
