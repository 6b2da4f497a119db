package contextfree

import (
	"testing"

	"github.com/colinw7/contextfree/geom"
	"github.com/stretchr/testify/assert"
)

func TestBuildPath_ImplicitFillWhenNeitherStrokeNorFill(t *testing.T) {
	assert := assert.New(t)

	spec := &PathSpec{Parts: []PathPart{
		MoveToPart{X: "0", Y: "0"},
		LineToPart{X: "1", Y: "0"},
		LineToPart{X: "1", Y: "1"},
		ClosePart{},
	}}
	state := State{M: geom.Identity(), Fill: geom.HSVA{H: 30, A: 1}}
	run, err := BuildPath(spec, state)
	assert.NoError(err)
	assert.True(run.HasFill)
	assert.False(run.HasLine)
	assert.Equal(30.0, run.Fill.H)
}

func TestBuildPath_ExplicitStrokeSuppressesImplicitFill(t *testing.T) {
	assert := assert.New(t)

	spec := &PathSpec{Parts: []PathPart{
		MoveToPart{X: "0", Y: "0"},
		LineToPart{X: "1", Y: "0"},
		StrokePart{},
	}}
	state := State{M: geom.Identity(), Fill: geom.HSVA{A: 1}}
	run, err := BuildPath(spec, state)
	assert.NoError(err)
	assert.True(run.HasLine)
	assert.False(run.HasFill)
}

func TestBuildPath_LoopUnrollsSingleOp(t *testing.T) {
	assert := assert.New(t)

	spec := &PathSpec{Parts: []PathPart{
		LoopPathPart{
			Count: 3,
			Inner: LineToPart{X: "1", Y: "0"},
		},
	}}
	state := State{M: geom.Identity(), Fill: geom.HSVA{A: 1}}
	run, err := BuildPath(spec, state)
	assert.NoError(err)
	assert.Len(run.Cmds, 3)
}

func TestBuildPath_LoopUnrollsPartList(t *testing.T) {
	assert := assert.New(t)

	spec := &PathSpec{Parts: []PathPart{
		LoopPathPartList{
			Count: 3,
			Parts: []PathPart{LineToPart{X: "1", Y: "0"}, LineToPart{X: "0", Y: "1"}},
		},
	}}
	state := State{M: geom.Identity(), Fill: geom.HSVA{A: 1}}
	run, err := BuildPath(spec, state)
	assert.NoError(err)
	assert.Len(run.Cmds, 6)
}

func TestBuildPath_ArcToProducesCurveCommands(t *testing.T) {
	assert := assert.New(t)

	spec := &PathSpec{Parts: []PathPart{
		MoveToPart{X: "1", Y: "0"},
		ArcToPart{X: "0", Y: "1", Rx: "1", Ry: "1", XRot: "0", LargeArc: false, Sweep: true},
	}}
	state := State{M: geom.Identity(), Fill: geom.HSVA{A: 1}}
	run, err := BuildPath(spec, state)
	assert.NoError(err)
	assert.Greater(len(run.Cmds), 1)
	for _, c := range run.Cmds[1:] {
		assert.Equal(OpCurveTo, c.Op)
	}
}
