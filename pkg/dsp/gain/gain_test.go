package gain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSoftClipLeavesSignalBelowThresholdUnchanged(t *testing.T) {
	assert.Equal(t, float32(0.5), SoftClip(0.5, 1.0))
	assert.Equal(t, float32(-0.5), SoftClip(-0.5, 1.0))
}

func TestSoftClipBendsSignalAboveThresholdTowardIt(t *testing.T) {
	result := SoftClip(1.5, 1.0)
	assert.Less(t, result, float32(1.5))
	assert.LessOrEqual(t, result, float32(1.1)) // knee allows a small overshoot, never runaway

	negResult := SoftClip(-1.5, 1.0)
	assert.Greater(t, negResult, float32(-1.5))
}

func TestSoftClipBufferAppliesElementwise(t *testing.T) {
	buf := []float32{0.2, 1.5, -1.5, -0.2}
	SoftClipBuffer(buf, 1.0)

	assert.Equal(t, float32(0.2), buf[0])
	assert.Equal(t, float32(-0.2), buf[3])
	assert.LessOrEqual(t, buf[1], float32(1.1))
	assert.GreaterOrEqual(t, buf[2], float32(-1.1))
}

func BenchmarkSoftClip(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = SoftClip(1.5, 1.0)
	}
}
