package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdjustChannel_NoTargetClampsToUnitRange(t *testing.T) {
	assert := assert.New(t)

	assert.InDelta(1.0, AdjustChannel(0.9, 5, 0, false), 1e-9)
	assert.InDelta(0.0, AdjustChannel(0.1, -5, 0, false), 1e-9)
}

func TestAdjustChannel_TargetInterpolatesTowardTarget(t *testing.T) {
	assert := assert.New(t)

	v := AdjustChannel(0.2, 1, 0.8, true)
	assert.InDelta(0.8, v, 1e-9)

	v = AdjustChannel(0.2, 0.5, 0.8, true)
	assert.Greater(v, 0.2)
	assert.Less(v, 0.8)
}

func TestAdjustHue_WrapsIntoRange(t *testing.T) {
	assert := assert.New(t)

	assert.InDelta(10.0, AdjustHue(350, 20, 0, false), 1e-9)
	assert.InDelta(350.0, AdjustHue(10, -20, 0, false), 1e-9)
}

func TestAdjustHue_TargetTakesShortestConfiguredDirection(t *testing.T) {
	assert := assert.New(t)

	v := AdjustHue(350, 1, 10, true)
	assert.InDelta(10.0, NormalizeHue(v), 1e-9)
}

func TestNormalizeHue(t *testing.T) {
	assert := assert.New(t)

	assert.InDelta(10.0, NormalizeHue(370), 1e-9)
	assert.InDelta(350.0, NormalizeHue(-10), 1e-9)
	assert.InDelta(0.0, NormalizeHue(360), 1e-9)
}
