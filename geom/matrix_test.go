package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatrix_IdentityIsNoOp(t *testing.T) {
	assert := assert.New(t)

	x, y := Identity().Apply(3, 4)
	assert.InDelta(3.0, x, 1e-9)
	assert.InDelta(4.0, y, 1e-9)
}

func TestMatrix_MulAppliesInnerFirst(t *testing.T) {
	assert := assert.New(t)

	m := Translate(10, 0)
	o := Scale(2, 2)
	combined := m.Mul(o)

	x, y := combined.Apply(1, 1)
	ex, ey := m.Apply(o.Apply(1, 1))
	assert.InDelta(ex, x, 1e-9)
	assert.InDelta(ey, y, 1e-9)
}

func TestMatrix_RotateNinetyDegrees(t *testing.T) {
	assert := assert.New(t)

	m := Rotate(math.Pi / 2)
	x, y := m.Apply(1, 0)
	assert.InDelta(0.0, x, 1e-9)
	assert.InDelta(1.0, y, 1e-9)
}

func TestMatrix_SizeTracksScale(t *testing.T) {
	assert := assert.New(t)

	sx, sy := Scale(2, 3).Size()
	assert.InDelta(2.0, sx, 1e-9)
	assert.InDelta(3.0, sy, 1e-9)
}
