package port

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAddAssignsDenseChannels(t *testing.T) {
	l := NewList()
	l.Add(Audio, Input, "in1", "Input 1")
	l.Add(Audio, Input, "in2", "Input 2")
	l.Add(Audio, Output, "out1", "Output 1")

	assert.Equal(t, int32(2), l.CountOf(Audio, Input))
	assert.Equal(t, int32(1), l.CountOf(Audio, Output))

	p, ok := l.ForChannel(Audio, 1, Input)
	require.True(t, ok)
	assert.Equal(t, "in2", p.Symbol)
	assert.Equal(t, uint32(1), p.Index)
}

func TestForChannelForPortAreInverses(t *testing.T) {
	l := NewList()
	l.Add(Audio, Input, "a", "A")
	l.Add(Audio, Input, "b", "B")
	l.Add(Midi, Input, "m", "MIDI In")
	l.Add(Audio, Output, "c", "C")

	for _, want := range l.All() {
		got, ok := l.ForChannel(want.Type, want.Channel, want.Flow)
		require.True(t, ok)
		assert.Equal(t, want.Index, got.Index)

		byIndex, ok := l.ForPort(want.Index)
		require.True(t, ok)
		assert.Equal(t, want.Channel, byIndex.Channel)
	}
}

func TestResetClearsLayout(t *testing.T) {
	l := NewList()
	l.Add(Audio, Input, "a", "A")
	require.Equal(t, 1, l.NumPorts())

	l.Reset()
	assert.Equal(t, 0, l.NumPorts())

	l.Add(Audio, Output, "b", "B")
	p, ok := l.ForChannel(Audio, 0, Output)
	require.True(t, ok)
	assert.Equal(t, uint32(0), p.Index)
}

func TestPortTypeCompatibility(t *testing.T) {
	assert.True(t, Compatible(Audio, Audio))
	assert.True(t, Compatible(Midi, Midi))
	assert.False(t, Compatible(Audio, Midi))
	assert.False(t, Compatible(Control, Control))
}
