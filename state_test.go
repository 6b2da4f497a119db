package contextfree

import (
	"testing"

	"github.com/colinw7/contextfree/geom"
	"github.com/stretchr/testify/assert"
)

func TestState_ApplyNilAdjustmentIsNoOp(t *testing.T) {
	assert := assert.New(t)

	s := State{M: geom.Translate(1, 2), Fill: geom.HSVA{H: 10, A: 1}}
	out := s.Apply(nil)
	assert.Equal(s, out)
}

func TestState_ApplyComposesTransformAndColor(t *testing.T) {
	assert := assert.New(t)

	s := State{M: geom.Identity(), Fill: geom.HSVA{A: 1}}
	adj := &Adjustment{Matrix: geom.Translate(3, 4), HasHue: true, Hue: 30}
	out := s.Apply(adj)

	x, y := out.M.Apply(0, 0)
	assert.InDelta(3.0, x, 1e-9)
	assert.InDelta(4.0, y, 1e-9)
	assert.InDelta(30.0, out.Fill.H, 1e-9)
}

func TestState_LineColorDefaultsToFillUntilSet(t *testing.T) {
	assert := assert.New(t)

	s := State{M: geom.Identity(), Fill: geom.HSVA{H: 200, A: 1}}
	adj := &Adjustment{Matrix: geom.Identity(), HasLineHue: true, LineHue: 10}
	out := s.Apply(adj)
	assert.True(out.HasLine)
	assert.InDelta(210.0, out.Line.H, 1e-9)
}
