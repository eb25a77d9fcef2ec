package engine

import (
	"math"
	"sync/atomic"
)

// Meter tracks a running RMS level per channel, refreshed once per
// block by ProcessBuffer. Levels are read via atomic loads so a host
// UI thread can poll them without locking.
type Meter struct {
	levels []atomic.Uint32 // float32 bits, RMS per channel
}

// NewMeter returns a meter sized for numChannels.
func NewMeter(numChannels int) *Meter {
	return &Meter{levels: make([]atomic.Uint32, numChannels)}
}

// Update computes the RMS of each channel in block and stores it.
func (m *Meter) Update(channels [][]float32) {
	for i, ch := range channels {
		if i >= len(m.levels) {
			return
		}
		m.levels[i].Store(math.Float32bits(rms(ch)))
	}
}

// Level returns the last-computed RMS for channel i, or 0 if out of range.
func (m *Meter) Level(i int) float32 {
	if i < 0 || i >= len(m.levels) {
		return 0
	}
	return math.Float32frombits(m.levels[i].Load())
}

func rms(buf []float32) float32 {
	if len(buf) == 0 {
		return 0
	}
	var sum float64
	for _, v := range buf {
		sum += float64(v) * float64(v)
	}
	return float32(math.Sqrt(sum / float64(len(buf))))
}
