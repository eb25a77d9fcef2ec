package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipeAllSlotsUsable(t *testing.T) {
	p := NewPipe()
	b := p.Buffer(0)
	require.NotNil(t, b)
	b.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 0}, NoteNumber: 60})
	assert.Equal(t, 1, p.Buffer(0).Len())
}

func TestPipeOutOfRange(t *testing.T) {
	p := NewPipe()
	assert.Nil(t, p.Buffer(-1))
	assert.Nil(t, p.Buffer(MaxPipeBuffers))
}

func TestSetBufferAliases(t *testing.T) {
	p := NewPipe()
	q := NewEventQueue()
	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 0}, NoteNumber: 1})
	p.SetBuffer(3, q)
	assert.Same(t, q, p.Buffer(3))
}

func TestClearAndClearAt(t *testing.T) {
	p := NewPipe()
	p.Buffer(0).Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 0}, NoteNumber: 1})
	p.Buffer(1).Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 0}, NoteNumber: 2})

	p.ClearAt(0)
	assert.True(t, p.Buffer(0).IsEmpty())
	assert.False(t, p.Buffer(1).IsEmpty())

	p.Clear()
	assert.True(t, p.Buffer(1).IsEmpty())
}
