package contextfree

import (
	"strings"
	"testing"

	"github.com/colinw7/contextfree/lexer"
	"github.com/stretchr/testify/assert"
)

func parseSrc(t *testing.T, src string) *Program {
	t.Helper()
	p := NewParser(lexer.New("test.cfdg", strings.NewReader(src)))
	prog, err := p.Parse()
	assert.NoError(t, err)
	assert.Empty(t, p.Errors, "%v", p.Errors)
	RegisterBuiltins(prog)
	return prog
}

func TestParser_StartShapeAndRule(t *testing.T) {
	assert := assert.New(t)

	prog := parseSrc(t, `
startshape FOO

rule FOO {
  SQUARE { size 2 }
}
`)
	assert.Equal("FOO", prog.StartShape)
	assert.Len(prog.Rules["FOO"], 1)
	assert.Len(prog.Rules["FOO"][0].Actions, 1)
}

func TestParser_RuleWeight(t *testing.T) {
	assert := assert.New(t)

	prog := parseSrc(t, `
startshape FOO
rule FOO 2 { SQUARE {} }
rule FOO 3 { CIRCLE {} }
`)
	assert.Len(prog.Rules["FOO"], 2)
	assert.Equal(2.0, prog.Rules["FOO"][0].Weight)
	assert.Equal(3.0, prog.Rules["FOO"][1].Weight)
}

func TestParser_LoopAction(t *testing.T) {
	assert := assert.New(t)

	prog := parseSrc(t, `
startshape FOO
rule FOO {
  4 * { r 90 } SQUARE { }
}
`)
	acts := prog.Rules["FOO"][0].Actions
	assert.Len(acts, 1)
	loop, ok := acts[0].(LoopAction)
	assert.True(ok)
	assert.Equal(4, loop.Count)
	assert.NotNil(loop.LoopAdj)
	assert.Equal("SQUARE", loop.Name)
}

func TestParser_ComplexLoopAction(t *testing.T) {
	assert := assert.New(t)

	prog := parseSrc(t, `
startshape FOO
rule FOO {
  5 * { x 1 } {
    SQUARE { size 0.5 }
  }
}
`)
	acts := prog.Rules["FOO"][0].Actions
	assert.Len(acts, 1)
	loop, ok := acts[0].(ComplexLoopAction)
	assert.True(ok)
	assert.Equal(5, loop.Count)
	inner, ok := loop.Inner.(SimpleAction)
	assert.True(ok)
	assert.Equal("SQUARE", inner.Name)
}

func TestParser_ComposeAdjustmentBlock(t *testing.T) {
	assert := assert.New(t)

	prog := parseSrc(t, `
startshape FOO
rule FOO {
  SQUARE [ x 1 r 90 ]
}
`)
	acts := prog.Rules["FOO"][0].Actions
	simple, ok := acts[0].(SimpleAction)
	assert.True(ok)
	assert.NotNil(simple.Adj)
	assert.True(simple.Adj.Compose)
}

func TestParser_BackgroundAccumulates(t *testing.T) {
	assert := assert.New(t)

	prog := parseSrc(t, `
startshape FOO
background { h 10 b 0.5 }
background { h 10 b 0.1 }
rule FOO { SQUARE {} }
`)
	assert.True(prog.HasBackground)
	assert.InDelta(20.0, prog.Background.H, 1e-9)
	assert.InDelta(0.6, prog.Background.V, 1e-9)
}

func TestParser_UnknownDirectiveResyncsToNextRule(t *testing.T) {
	assert := assert.New(t)

	p := NewParser(lexer.New("test.cfdg", strings.NewReader(`
bogus nonsense here
rule FOO { SQUARE {} }
`)))
	prog, err := p.Parse()
	assert.NoError(err)
	assert.NotEmpty(p.Errors)
	assert.Len(prog.Rules["FOO"], 1)
}

func TestParser_PathDirective(t *testing.T) {
	assert := assert.New(t)

	prog := parseSrc(t, `
startshape FOO
path P {
  MOVETO { x 0 y 0 }
  LINETO { x 1 y 0 }
  LINETO { x 1 y 1 }
  CLOSEPOLY { }
  FILL { }
}
rule FOO { P {} }
`)
	rule, ok := prog.Rules["P"]
	assert.True(ok)
	assert.Equal(RulePath, rule[0].Kind)
	assert.Len(rule[0].Path.Parts, 5)
	move, ok := rule[0].Path.Parts[0].(MoveToPart)
	assert.True(ok)
	assert.Equal("0", move.X)
	assert.Equal("0", move.Y)
}

func TestParser_ArcToLargeFlag(t *testing.T) {
	assert := assert.New(t)

	prog := parseSrc(t, `
startshape FOO
path P {
  MOVETO { x 0 y 0 }
  ARCTO { x 1 y 1 r 0.5 p "large" }
  FILL { }
}
rule FOO { P {} }
`)
	arc, ok := prog.Rules["P"][0].Path.Parts[1].(ArcToPart)
	assert.True(ok)
	assert.True(arc.LargeArc)
	assert.False(arc.Sweep)
	assert.Equal("0.5", arc.Rx)
	assert.Equal("0.5", arc.Ry)
}

func TestParser_StrokeWidth(t *testing.T) {
	assert := assert.New(t)

	prog := parseSrc(t, `
startshape FOO
path P {
  MOVETO { x 0 y 0 }
  LINETO { x 1 y 0 }
  STROKE { width 0.2 }
}
rule FOO { P {} }
`)
	stroke, ok := prog.Rules["P"][0].Path.Parts[2].(StrokePart)
	assert.True(ok)
	assert.Equal("0.2", stroke.Width)
}
