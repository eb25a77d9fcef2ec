package pan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonoToStereoIsCenteredAndConstantPowerAtZero(t *testing.T) {
	left, right := MonoToStereo(0)
	assert.InDelta(t, left, right, 0.001)
	assert.InDelta(t, 1.0, left*left+right*right, 0.01)
}

func TestMonoToStereoFavorsRequestedSide(t *testing.T) {
	left, right := MonoToStereo(-1)
	assert.Greater(t, left, right)

	left, right = MonoToStereo(1)
	assert.Greater(t, right, left)
}

func TestProcessSpreadsMonoAcrossBothChannels(t *testing.T) {
	mono := []float32{1.0, 0.5, -0.5, -1.0}
	left := make([]float32, 4)
	right := make([]float32, 4)

	Process(mono, 0, left, right)
	for i := range mono {
		assert.InDelta(t, left[i], right[i], 0.001)
	}
}

func TestWidthZeroCollapsesToMono(t *testing.T) {
	leftIn := []float32{1, 1, 1, 1}
	rightIn := []float32{-1, -1, -1, -1}
	left := make([]float32, 4)
	right := make([]float32, 4)

	Width(leftIn, rightIn, 0, left, right)
	for i := range leftIn {
		assert.Equal(t, float32(0), left[i])
		assert.Equal(t, float32(0), right[i])
	}
}

func TestWidthOneLeavesSignalUnchanged(t *testing.T) {
	leftIn := []float32{1, 1, 1, 1}
	rightIn := []float32{-1, -1, -1, -1}
	left := make([]float32, 4)
	right := make([]float32, 4)

	Width(leftIn, rightIn, 1, left, right)
	assert.Equal(t, leftIn, left)
	assert.Equal(t, rightIn, right)
}

func TestBalanceAttenuatesOppositeChannel(t *testing.T) {
	leftIn := []float32{1, 1, 1, 1}
	rightIn := []float32{1, 1, 1, 1}
	left := make([]float32, 4)
	right := make([]float32, 4)

	Balance(leftIn, rightIn, -0.5, left, right)
	assert.Equal(t, leftIn, left)
	assert.Equal(t, float32(0.5), right[0])

	Balance(leftIn, rightIn, 0.5, left, right)
	assert.Equal(t, float32(0.5), left[0])
	assert.Equal(t, rightIn, right)
}
