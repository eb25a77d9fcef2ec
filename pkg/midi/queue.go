package midi

import "sort"

// EventQueue is a single MIDI buffer: a sample-ordered collection of
// events for one block. It backs one slot in the render engine's
// shared MIDI buffer pool.
type EventQueue struct {
	events []Event
	sorted bool
}

// NewEventQueue returns an empty, pre-sized event queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{
		events: make([]Event, 0, 128),
		sorted: true,
	}
}

// Add appends a single event, invalidating sort order.
func (q *EventQueue) Add(event Event) {
	q.events = append(q.events, event)
	q.sorted = false
}

// AddAll appends every event in events, invalidating sort order.
func (q *EventQueue) AddAll(events []Event) {
	if len(events) == 0 {
		return
	}
	q.events = append(q.events, events...)
	q.sorted = false
}

// EventsInRange returns the events with SampleOffset in [start, end).
// The returned slice aliases the queue's storage; callers must treat
// it as read-only.
func (q *EventQueue) EventsInRange(start, end int32) []Event {
	q.ensureSorted()
	if len(q.events) == 0 {
		return nil
	}

	startIdx := sort.Search(len(q.events), func(i int) bool {
		return q.events[i].SampleOffset() >= start
	})
	if startIdx >= len(q.events) {
		return nil
	}

	endIdx := startIdx
	for endIdx < len(q.events) && q.events[endIdx].SampleOffset() < end {
		endIdx++
	}
	if startIdx == endIdx {
		return nil
	}
	return q.events[startIdx:endIdx]
}

// All returns every event in sample order. The returned slice aliases
// the queue's storage; callers must treat it as read-only.
func (q *EventQueue) All() []Event {
	q.ensureSorted()
	return q.events
}

// Clear empties the queue without releasing its backing storage.
func (q *EventQueue) Clear() {
	q.events = q.events[:0]
	q.sorted = true
}

// CopyFrom replaces the queue's contents with a copy of src's events.
// Used by the CopyMidi op.
func (q *EventQueue) CopyFrom(src *EventQueue) {
	q.events = append(q.events[:0], src.All()...)
	q.sorted = true
}

// AppendFrom concatenates src's events onto the queue, leaving their
// offsets unchanged. Used by the AddMidi op: MIDI has no numeric
// superposition, so "adding" two MIDI buffers means merging them.
func (q *EventQueue) AppendFrom(src *EventQueue) {
	q.AddAll(src.All())
}

// Len reports the number of events currently queued.
func (q *EventQueue) Len() int {
	return len(q.events)
}

// IsEmpty reports whether the queue has no events.
func (q *EventQueue) IsEmpty() bool {
	return len(q.events) == 0
}

func (q *EventQueue) ensureSorted() {
	if q.sorted {
		return
	}
	sort.SliceStable(q.events, func(i, j int) bool {
		return q.events[i].SampleOffset() < q.events[j].SampleOffset()
	})
	q.sorted = true
}

// OffsetEvents shifts every queued event's SampleOffset by offset.
func (q *EventQueue) OffsetEvents(offset int32) {
	for i, e := range q.events {
		q.events[i] = e.WithOffset(e.SampleOffset() + offset)
	}
	q.sorted = false
}
