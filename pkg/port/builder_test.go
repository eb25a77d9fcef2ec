package port

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderStereoInOut(t *testing.T) {
	l, err := NewBuilder().
		WithStereoInput("in").
		WithStereoOutput("out").
		Build()
	require.NoError(t, err)
	assert.Equal(t, int32(2), l.CountOf(Audio, Input))
	assert.Equal(t, int32(2), l.CountOf(Audio, Output))
}

func TestBuilderRejectsNoOutput(t *testing.T) {
	_, err := NewBuilder().WithMonoInput("in").Build()
	assert.Error(t, err)
}

func TestBuilderMustBuildPanicsOnError(t *testing.T) {
	b := NewBuilder().WithMonoInput("in")
	assert.Panics(t, func() {
		b.MustBuild()
	})
}

func TestBuilderMidiPorts(t *testing.T) {
	l, err := NewBuilder().
		WithMidiInput("midiin", "MIDI In").
		WithMidiOutput("midiout", "MIDI Out").
		Build()
	require.NoError(t, err)
	assert.Equal(t, int32(1), l.CountOf(Midi, Input))
	assert.Equal(t, int32(1), l.CountOf(Midi, Output))
}
