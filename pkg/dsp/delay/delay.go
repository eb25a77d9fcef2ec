// Package delay provides a ring-buffer delay line for the fixed
// whole-sample latency nodes need to line up parallel graph paths.
package delay

// Line is a single-channel delay of up to its allocated capacity,
// read with linear interpolation so a delay given in fractional
// samples doesn't produce a stair-stepped signal.
type Line struct {
	buffer   []float32
	writePos int
}

// New returns a delay line able to hold up to maxDelaySeconds at
// sampleRate.
func New(maxDelaySeconds, sampleRate float64) *Line {
	size := int(maxDelaySeconds*sampleRate) + 1
	return &Line{buffer: make([]float32, size)}
}

// Write appends sample to the line, overwriting the oldest sample.
func (d *Line) Write(sample float32) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read returns the sample written delaySamples writes ago (1 is the
// most recent write), interpolating linearly between the two nearest
// integer positions.
func (d *Line) Read(delaySamples float64) float32 {
	n := len(d.buffer)
	readPos := float64(d.writePos) - delaySamples
	if readPos < 0 {
		readPos += float64(n)
	}
	i := int(readPos)
	frac := float32(readPos - float64(i))
	s1 := d.buffer[i]
	s2 := d.buffer[(i+1)%n]
	return s1*(1-frac) + s2*frac
}

// ProcessBuffer delays buffer in place by a fixed delaySamples,
// writing each input sample to the line as it reads the output for
// that position. No allocations.
func (d *Line) ProcessBuffer(buffer []float32, delaySamples float64) {
	for i, v := range buffer {
		out := d.Read(delaySamples)
		d.Write(v)
		buffer[i] = out
	}
}
