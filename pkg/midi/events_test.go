package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoteToFrequencyRoundTrip(t *testing.T) {
	freq := NoteToFrequency(69, 440) // A4
	assert.InDelta(t, 440.0, freq, 0.001)

	note := FrequencyToNote(freq, 440)
	assert.Equal(t, uint8(69), note)
}

func TestFrequencyToNoteClamps(t *testing.T) {
	assert.Equal(t, uint8(0), FrequencyToNote(0.0001, 440))
	assert.Equal(t, uint8(127), FrequencyToNote(1e9, 440))
}

func TestNoteNumberToName(t *testing.T) {
	assert.Equal(t, "A4", NoteNumberToName(69))
	assert.Equal(t, "C-1", NoteNumberToName(0))
}

func TestEventStrings(t *testing.T) {
	var e Event = NoteOnEvent{BaseEvent: BaseEvent{EventChannel: 1, Offset: 5}, NoteNumber: 60, Velocity: 100}
	assert.Contains(t, e.String(), "NoteOn")
	assert.Equal(t, int32(5), e.SampleOffset())
	assert.Equal(t, uint8(1), e.Channel())
}
