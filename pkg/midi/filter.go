package midi

import "math"

// VelocityCurve selects how a Filter reshapes NoteOn velocity values
// before they reach the graph interior. It is a host-defined enum
// (the core only interprets it through ShapeVelocity); a host may
// extend it with values beyond the ones named here.
type VelocityCurve int32

const (
	// VelocityLinear passes velocities through unchanged.
	VelocityLinear VelocityCurve = iota
	// VelocitySoft compresses high velocities, expanding the low end.
	VelocitySoft
	// VelocityHard expands high velocities, compressing the low end.
	VelocityHard
	// VelocityFixed replaces every velocity with Filter.FixedVelocity.
	VelocityFixed
)

// Filter is the graph-level MIDI input stage: a 16-bit channel mask
// (bit n passes channel n, 0-indexed) and a velocity curve, evaluated
// once per incoming buffer rather than per connection, matching the
// channel mask semantics the original host test suite exercises.
type Filter struct {
	ChannelMask   uint16
	Curve         VelocityCurve
	FixedVelocity uint8
}

// PassesChannel reports whether ch (0-15) is enabled by the mask.
func (f Filter) PassesChannel(ch uint8) bool {
	if ch >= 16 {
		return false
	}
	return f.ChannelMask&(1<<ch) != 0
}

// ShapeVelocity applies the configured curve to a raw 0-127 velocity.
func (f Filter) ShapeVelocity(v uint8) uint8 {
	switch f.Curve {
	case VelocityHard:
		return uint8((uint32(v) * uint32(v)) / 127)
	case VelocitySoft:
		scaled := 127.0 * math.Sqrt(float64(v)/127.0)
		if scaled > 127 {
			scaled = 127
		}
		return uint8(scaled)
	case VelocityFixed:
		return f.FixedVelocity
	default:
		return v
	}
}

// Apply filters src's events into dst, dropping events on channels
// excluded by the mask and reshaping NoteOn velocity, preserving every
// event's SampleOffset. dst is cleared first; src and dst must not
// alias the same queue.
func (f Filter) Apply(src, dst *EventQueue) {
	dst.Clear()
	for _, e := range src.All() {
		if !f.PassesChannel(e.Channel()) {
			continue
		}
		if on, ok := e.(NoteOnEvent); ok {
			on.Velocity = f.ShapeVelocity(on.Velocity)
			dst.Add(on)
			continue
		}
		dst.Add(e)
	}
}
