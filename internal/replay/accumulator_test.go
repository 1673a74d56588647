package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCarry_TruncatesTowardZero(t *testing.T) {
	var c carry
	assert.Equal(t, 2, c.step(2.7))
	assert.InDelta(t, 0.7, c.rem, 1e-9)

	c = carry{}
	assert.Equal(t, -2, c.step(-2.7))
	assert.InDelta(t, -0.7, c.rem, 1e-9)
}

func TestCarry_FractionCarriesAcrossSteps(t *testing.T) {
	var c carry
	assert.Equal(t, 0, c.step(0.6))
	assert.Equal(t, 1, c.step(0.6)) // 1.2 accumulated
	assert.InDelta(t, 0.2, c.rem, 1e-9)
}

func TestCarry_AntiStallFiresAtThreshold(t *testing.T) {
	var c carry
	assert.Equal(t, 0, c.step(0.5))
	// 1.0 would be plain truncation; 0.3 pushes to exactly 0.8.
	assert.Equal(t, 1, c.step(0.3))
	assert.InDelta(t, -0.2, c.rem, 1e-9)
}

func TestCarry_AntiStallNegative(t *testing.T) {
	var c carry
	assert.Equal(t, 0, c.step(-0.5))
	assert.Equal(t, -1, c.step(-0.4))
	assert.InDelta(t, 0.1, c.rem, 1e-9)
}

func TestCarry_NoMotionBelowThreshold(t *testing.T) {
	var c carry
	assert.Equal(t, 0, c.step(0.3))
	assert.Equal(t, 0, c.step(0.3))
	assert.InDelta(t, 0.6, c.rem, 1e-9)
}
