package gain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRampUnityNoOp(t *testing.T) {
	buf := []float32{1, 2, 3}
	Ramp(buf, 1, 1)
	assert.Equal(t, []float32{1, 2, 3}, buf)
}

func TestRampConstantScalesAll(t *testing.T) {
	buf := []float32{1, 1, 1, 1}
	Ramp(buf, 0.5, 0.5)
	for _, v := range buf {
		assert.Equal(t, float32(0.5), v)
	}
}

func TestRampLinearEndpoints(t *testing.T) {
	buf := make([]float32, 4)
	for i := range buf {
		buf[i] = 1
	}
	Ramp(buf, 0, 1)
	assert.InDelta(t, 0, buf[0], 1e-6)
	assert.Greater(t, buf[3], buf[0])
}

func TestRampIntoDoesNotMutateSrc(t *testing.T) {
	src := []float32{1, 1, 1, 1}
	dst := make([]float32, 4)
	RampInto(dst, src, 0, 2)
	assert.Equal(t, []float32{1, 1, 1, 1}, src)
	assert.InDelta(t, 0, dst[0], 1e-6)
	assert.Greater(t, dst[3], dst[0])
}

func TestStateBlockLifecycle(t *testing.T) {
	s := NewState()
	from, to, ramping := s.BeginBlock()
	assert.Equal(t, float32(1), from)
	assert.Equal(t, float32(1), to)
	assert.False(t, ramping)

	s.Set(0.5)
	from, to, ramping = s.BeginBlock()
	assert.Equal(t, float32(1), from)
	assert.Equal(t, float32(0.5), to)
	assert.True(t, ramping)

	s.EndBlock()
	from, to, ramping = s.BeginBlock()
	assert.Equal(t, float32(0.5), from)
	assert.Equal(t, float32(0.5), to)
	assert.False(t, ramping)
}
