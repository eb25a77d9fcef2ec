// Package mix provides the multi-source summing and crossfading the
// node library wires into Mixer and Crossfade.
package mix

import "math"

// CrossfadeBuffer blends a and b into dst with an equal-power curve:
// position 0 is 100% a, 1 is 100% b, and the midpoint holds total
// power constant instead of dipping the way a linear blend would.
func CrossfadeBuffer(a, b []float32, position float32, dst []float32) {
	angle := position * math.Pi / 2.0
	gainA := float32(math.Cos(float64(angle)))
	gainB := float32(math.Sin(float64(angle)))

	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = a[i]*gainA + b[i]*gainB
	}
}

// SumWeighted adds buffers into dst, each scaled by its matching
// entry in gains (1.0 if gains is shorter than buffers).
func SumWeighted(buffers [][]float32, gains []float32, dst []float32) {
	for i := range dst {
		dst[i] = 0
	}
	for j, buf := range buffers {
		gain := float32(1.0)
		if j < len(gains) {
			gain = gains[j]
		}
		n := len(buf)
		if n > len(dst) {
			n = len(dst)
		}
		for i := 0; i < n; i++ {
			dst[i] += buf[i] * gain
		}
	}
}
