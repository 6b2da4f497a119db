package contextfree

import (
	"context"
	"testing"

	"github.com/colinw7/contextfree/geom"
	"github.com/stretchr/testify/assert"
)

func TestRender_DrawsShapesAndPaths(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{HasBackground: true, Background: geom.HSVA{V: 0.1, A: 1}}
	shapes := []Shape{
		{Kind: RuleSquare, M: geom.Identity(), Color: geom.HSVA{A: 1}, Z: 0},
		{Kind: RuleCircle, M: geom.Scale(2, 2), Color: geom.HSVA{A: 1}, Z: 0},
	}
	paths := []PathRun{
		{
			Cmds: []PathCmd{
				{Op: OpMoveTo, X: 0, Y: 0},
				{Op: OpLineTo, X: 1, Y: 0},
				{Op: OpLineTo, X: 1, Y: 1},
				{Op: OpClose},
			},
			Fill: geom.HSVA{A: 1}, HasFill: true,
		},
	}

	back := &fakeBackend{w: 100, h: 100}
	err := Render(context.Background(), prog, shapes, paths, back)
	assert.NoError(err)
	assert.Equal(1, back.squares)
	assert.Equal(1, back.circles)
	assert.Equal(1, back.pathFills)
	assert.Equal(back.background, prog.Background)
}

func TestBuildDrawables_AreaIsProductOfScales(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{}
	shapes := []Shape{
		{Kind: RuleSquare, M: geom.Scale(1, 1), Z: 0},
		{Kind: RuleCircle, M: geom.Scale(5, 5), Z: 0},
	}
	items := buildDrawables(shapes, nil)
	assert.InDelta(1.0, items[0].area, 1e-9)
	assert.InDelta(25.0, items[1].area, 1e-9)
}

func TestZBucketOf(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(0, zBucketOf(0.001))
	assert.Equal(100, zBucketOf(1.0))
	assert.Equal(-1, zBucketOf(-0.001))
}
