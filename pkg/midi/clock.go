package midi

const ticksPerQuarterNote = 24

// ClockGenerator emits MIDI clock events (24 per quarter note) at a
// configured tempo. It is a node-level utility, not part of the
// scheduler: a node that wants to drive downstream MIDI clock slaves
// embeds one and calls Advance once per block.
type ClockGenerator struct {
	sampleRate       float64
	bpm              float64
	samplesPerTick   float64
	samplesUntilTick float64
	running          bool
}

// NewClockGenerator returns a generator for the given sample rate and tempo.
func NewClockGenerator(sampleRate, bpm float64) *ClockGenerator {
	g := &ClockGenerator{sampleRate: sampleRate}
	g.SetTempo(bpm)
	return g
}

// SetTempo changes the generator's tempo; takes effect on the next tick.
func (g *ClockGenerator) SetTempo(bpm float64) {
	if bpm <= 0 {
		bpm = 120
	}
	g.bpm = bpm
	secondsPerQuarter := 60.0 / bpm
	g.samplesPerTick = (secondsPerQuarter / ticksPerQuarterNote) * g.sampleRate
	if g.samplesUntilTick <= 0 {
		g.samplesUntilTick = g.samplesPerTick
	}
}

// Start resets the tick phase and marks the generator as running,
// adding a Start event at offset 0 to q.
func (g *ClockGenerator) Start(q *EventQueue) {
	g.running = true
	g.samplesUntilTick = g.samplesPerTick
	q.Add(StartEvent{BaseEvent{Offset: 0}})
}

// Stop marks the generator as stopped, emitting a Stop event.
func (g *ClockGenerator) Stop(q *EventQueue) {
	g.running = false
	q.Add(StopEvent{BaseEvent{Offset: 0}})
}

// Advance emits every clock tick that falls within the next
// numFrames samples into q, offset-accurate within the block.
func (g *ClockGenerator) Advance(q *EventQueue, numFrames int) {
	if !g.running {
		return
	}
	frame := 0.0
	for g.samplesUntilTick < float64(numFrames) {
		offset := int32(g.samplesUntilTick)
		q.Add(ClockEvent{BaseEvent{Offset: offset}})
		g.samplesUntilTick += g.samplesPerTick
		frame = g.samplesUntilTick
	}
	_ = frame
	g.samplesUntilTick -= float64(numFrames)
}

// ClockConsumer derives tempo from an incoming stream of 24-per-quarter
// clock messages via a delay-locked loop: each tick nudges a running
// period estimate toward the just-observed inter-tick interval rather
// than replacing it outright, which rejects jitter from any single
// tick while still tracking genuine tempo changes.
type ClockConsumer struct {
	sampleRate float64

	havePrev       bool
	samplesSincePrev float64
	periodEstimate   float64 // samples per tick

	// loopGain controls how aggressively the estimate chases new
	// intervals; 0 < loopGain <= 1, smaller is steadier.
	loopGain float64

	locked bool
}

// NewClockConsumer returns a consumer for the given sample rate.
func NewClockConsumer(sampleRate float64) *ClockConsumer {
	return &ClockConsumer{
		sampleRate: sampleRate,
		loopGain:   0.25,
	}
}

// Feed processes every clock-relevant event in the queue, advancing
// the internal sample counter by numFrames for the block as a whole.
func (c *ClockConsumer) Feed(q *EventQueue, numFrames int) {
	for _, e := range q.All() {
		switch e.(type) {
		case ClockEvent:
			c.tick(float64(e.SampleOffset()))
		case StartEvent, StopEvent:
			c.havePrev = false
			c.locked = false
		}
	}
	if c.havePrev {
		c.samplesSincePrev += float64(numFrames)
	}
}

func (c *ClockConsumer) tick(offsetInBlock float64) {
	if !c.havePrev {
		c.havePrev = true
		c.samplesSincePrev = 0
		return
	}
	observed := c.samplesSincePrev + offsetInBlock
	if c.periodEstimate == 0 {
		c.periodEstimate = observed
	} else {
		c.periodEstimate += c.loopGain * (observed - c.periodEstimate)
		c.locked = true
	}
	c.samplesSincePrev = -offsetInBlock
}

// BPM returns the current derived tempo, or 0 if not yet locked.
func (c *ClockConsumer) BPM() float64 {
	if !c.locked || c.periodEstimate <= 0 {
		return 0
	}
	secondsPerTick := c.periodEstimate / c.sampleRate
	secondsPerQuarter := secondsPerTick * ticksPerQuarterNote
	return 60.0 / secondsPerQuarter
}

// Locked reports whether the DLL has observed at least two full tick
// intervals and can report a meaningful BPM.
func (c *ClockConsumer) Locked() bool {
	return c.locked
}
