package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueueAddAndSize(t *testing.T) {
	q := NewEventQueue()
	assert.True(t, q.IsEmpty())
	assert.Equal(t, 0, q.Len())

	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 100}, NoteNumber: 60, Velocity: 100})
	q.Add(NoteOffEvent{BaseEvent: BaseEvent{Offset: 200}, NoteNumber: 60})
	q.Add(ControlChangeEvent{BaseEvent: BaseEvent{Offset: 50}, Controller: CCSustain, Value: 127})

	assert.False(t, q.IsEmpty())
	assert.Equal(t, 3, q.Len())
}

func TestEventQueueSorting(t *testing.T) {
	q := NewEventQueue()
	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 300}, NoteNumber: 62})
	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 100}, NoteNumber: 60})
	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 200}, NoteNumber: 61})

	events := q.All()
	require.Len(t, events, 3)
	offsets := []int32{100, 200, 300}
	for i, e := range events {
		assert.Equal(t, offsets[i], e.SampleOffset())
	}
}

func TestEventsInRange(t *testing.T) {
	q := NewEventQueue()
	for _, off := range []int32{0, 50, 100, 150, 200} {
		q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: off}, NoteNumber: 60})
	}

	cases := []struct {
		start, end int32
		want       int
	}{
		{0, 100, 2},
		{50, 150, 2},
		{0, 200, 4},
		{200, 300, 1},
		{300, 400, 0},
	}
	for _, c := range cases {
		got := q.EventsInRange(c.start, c.end)
		assert.Lenf(t, got, c.want, "range [%d,%d)", c.start, c.end)
	}
}

func TestCopyFromAndAppendFrom(t *testing.T) {
	src := NewEventQueue()
	src.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 10}, NoteNumber: 60})

	dst := NewEventQueue()
	dst.CopyFrom(src)
	assert.Equal(t, 1, dst.Len())

	dst.AppendFrom(src)
	assert.Equal(t, 2, dst.Len())
}

func TestOffsetEvents(t *testing.T) {
	q := NewEventQueue()
	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 10}, NoteNumber: 60})
	q.OffsetEvents(5)
	require.Equal(t, 1, q.Len())
	assert.Equal(t, int32(15), q.All()[0].SampleOffset())
}

func TestClear(t *testing.T) {
	q := NewEventQueue()
	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 10}, NoteNumber: 60})
	q.Clear()
	assert.True(t, q.IsEmpty())
}
