package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEval_ArithmeticPrecedence(t *testing.T) {
	assert := assert.New(t)

	v, err := Eval("2+3*4", Options{})
	assert.NoError(err)
	assert.True(v.IsInt)
	assert.Equal(int64(14), v.I)

	v, err = Eval("(2+3)*4", Options{})
	assert.NoError(err)
	assert.Equal(int64(20), v.I)
}

func TestEval_IntDividedByIntStaysInt(t *testing.T) {
	assert := assert.New(t)

	v, err := Eval("7/2", Options{})
	assert.NoError(err)
	assert.True(v.IsInt)
	assert.Equal(int64(3), v.I)
}

func TestEval_PowAlwaysPromotesToReal(t *testing.T) {
	assert := assert.New(t)

	v, err := Eval("2^3", Options{})
	assert.NoError(err)
	assert.False(v.IsInt)
	assert.InDelta(8.0, v.R, 1e-9)
}

func TestEval_ForceRealWidensIntLiterals(t *testing.T) {
	assert := assert.New(t)

	v, err := Eval("1", Options{ForceReal: true})
	assert.NoError(err)
	assert.False(v.IsInt)
	assert.InDelta(1.0, v.R, 1e-9)
}

func TestEval_BooleanAndComparisonOperators(t *testing.T) {
	assert := assert.New(t)

	v, err := Eval("1 < 2 && 3 > 2", Options{})
	assert.NoError(err)
	assert.Equal(int64(1), v.I)

	v, err = Eval("1 > 2 || 0", Options{})
	assert.NoError(err)
	assert.Equal(int64(0), v.I)
}

func TestEval_DegreesModeTrig(t *testing.T) {
	assert := assert.New(t)

	v, err := Eval("sin(90)", Options{Degrees: true})
	assert.NoError(err)
	assert.InDelta(1.0, v.R, 1e-9)
}

func TestEval_FunctionArityErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := Eval("atan2(1)", Options{})
	assert.Error(err)

	_, err = Eval("sin(1,2)", Options{})
	assert.Error(err)
}

func TestEval_UnknownFunctionErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := Eval("bogus(1)", Options{})
	assert.Error(err)
}

func TestEval_UnmatchedParenErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := Eval("(1+2", Options{})
	assert.Error(err)
}

func TestEval_NegativeAndUnaryPlus(t *testing.T) {
	assert := assert.New(t)

	v, err := Eval("-3+ +4", Options{})
	assert.NoError(err)
	assert.Equal(int64(1), v.I)
}

func TestEval_RandStaticIsDeterministic(t *testing.T) {
	assert := assert.New(t)

	a, err := Eval("rand_static(1,2)", Options{})
	assert.NoError(err)
	b, err := Eval("rand_static(1,2)", Options{})
	assert.NoError(err)
	assert.Equal(a.R, b.R)

	c, err := Eval("rand_static(1,4)", Options{})
	assert.NoError(err)
	assert.NotEqual(a.R, c.R)
}

func TestEval_RandStaticRangeLaw(t *testing.T) {
	assert := assert.New(t)

	v, err := Eval("rand_static(-5)", Options{})
	assert.NoError(err)
	assert.GreaterOrEqual(v.R, -5.0)
	assert.LessOrEqual(v.R, 0.0)

	v, err = Eval("rand_static(5)", Options{})
	assert.NoError(err)
	assert.GreaterOrEqual(v.R, 0.0)
	assert.LessOrEqual(v.R, 5.0)

	v, err = Eval("rand_static(3,1)", Options{})
	assert.NoError(err)
	assert.GreaterOrEqual(v.R, 1.0)
	assert.LessOrEqual(v.R, 3.0)

	v, err = Eval("rand_static()", Options{})
	assert.NoError(err)
	assert.GreaterOrEqual(v.R, 0.0)
	assert.LessOrEqual(v.R, 1.0)

	_, err = Eval("rand_static(1,2,3)", Options{})
	assert.Error(err)
}
