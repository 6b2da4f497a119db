package contextfree

import (
	"context"
	"strings"
	"testing"

	"github.com/colinw7/contextfree/lexer"
	"github.com/stretchr/testify/assert"
)

const shrinkingGrammar = `
startshape FOO

rule FOO {
  SQUARE { size 1 }
  FOO { size 0.5 x 1 rotate 10 }
}
`

func TestEngine_SizeGateStopsRecursion(t *testing.T) {
	assert := assert.New(t)

	prog := parseSrc(t, shrinkingGrammar)
	eng := NewEngine(prog, 42)
	err := eng.Expand(context.Background(), nil)
	assert.NoError(err)
	assert.NotEmpty(eng.Shapes)
	assert.Less(len(eng.Shapes), 100)
}

func TestEngine_DeterministicUnderFixedSeed(t *testing.T) {
	assert := assert.New(t)

	src := `
startshape FOO
rule FOO 1 { SQUARE { hue 0 } }
rule FOO 1 { CIRCLE { hue 120 } }
rule FOO 1 { TRIANGLE { hue 240 } }
`
	run := func(seed int64) []RuleKind {
		prog := parseSrc(t, src)
		eng := NewEngine(prog, seed)
		// A single rule invocation per run; repeat it to build a sample.
		var kinds []RuleKind
		for i := 0; i < 20; i++ {
			rules := prog.Rules["FOO"]
			r := eng.selectRule(rules)
			kinds = append(kinds, r.Kind)
		}
		return kinds
	}

	a := run(7)
	b := run(7)
	assert.Equal(a, b)

	c := run(8)
	assert.NotEqual(a, c)
}

func TestEngine_MaxShapesCap(t *testing.T) {
	assert := assert.New(t)

	src := `
startshape FOO
rule FOO {
  SQUARE { size 1 }
  FOO { size 0.99 x 0.01 }
}
`
	prog := parseSrc(t, src)
	eng := NewEngine(prog, 1)
	eng.MaxShapes = 50
	eng.MinSize = 0
	err := eng.Expand(context.Background(), nil)
	assert.NoError(err)
	assert.LessOrEqual(len(eng.Shapes), eng.MaxShapes+1)
}

func TestEngine_UndefinedRuleReference(t *testing.T) {
	assert := assert.New(t)

	p := NewParser(lexer.New("test.cfdg", strings.NewReader(`
startshape FOO
rule FOO { BOGUS {} }
`)))
	prog, err := p.Parse()
	assert.NoError(err)
	RegisterBuiltins(prog)

	eng := NewEngine(prog, 1)
	err = eng.Expand(context.Background(), nil)
	assert.NoError(err)
	assert.NotEmpty(eng.Errors)
}
