package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransposeNoOpWhenZero(t *testing.T) {
	q := NewEventQueue()
	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 0}, NoteNumber: 60, Velocity: 100})
	NewTranspose(0).Apply(q)
	assert.Equal(t, uint8(60), q.All()[0].(NoteOnEvent).NoteNumber)
}

func TestTransposeShiftsNotesOnly(t *testing.T) {
	q := NewEventQueue()
	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 0}, NoteNumber: 60, Velocity: 100})
	q.Add(NoteOffEvent{BaseEvent: BaseEvent{Offset: 1}, NoteNumber: 60})
	q.Add(ControlChangeEvent{BaseEvent: BaseEvent{Offset: 2}, Controller: CCSustain, Value: 127})

	NewTranspose(12).Apply(q)

	events := q.All()
	assert.Equal(t, uint8(72), events[0].(NoteOnEvent).NoteNumber)
	assert.Equal(t, uint8(72), events[1].(NoteOffEvent).NoteNumber)
	assert.Equal(t, uint8(127), events[2].(ControlChangeEvent).Value)
}

func TestTransposeClampsRange(t *testing.T) {
	q := NewEventQueue()
	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 0}, NoteNumber: 120, Velocity: 100})
	NewTranspose(24).Apply(q)
	assert.Equal(t, uint8(127), q.All()[0].(NoteOnEvent).NoteNumber)
}
