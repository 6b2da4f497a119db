package lexer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReader_SkipsCommentsAndBlankLines(t *testing.T) {
	assert := assert.New(t)

	src := "\n// a comment\nrule foo # trailing\n   \nrule bar\n"
	lx := New("test", strings.NewReader(src))

	id, err := lx.ReadIdent()
	assert.NoError(err)
	assert.Equal("rule", id)

	id, err = lx.ReadIdent()
	assert.NoError(err)
	assert.Equal("foo", id)

	assert.True(lx.AtEOL())

	id, err = lx.ReadIdent()
	assert.NoError(err)
	assert.Equal("rule", id)

	id, err = lx.ReadIdent()
	assert.NoError(err)
	assert.Equal("bar", id)
}

func TestReader_JoinsBackslashContinuations(t *testing.T) {
	assert := assert.New(t)

	src := "rule foo \\\n  bar\n"
	lx := New("test", strings.NewReader(src))

	id, err := lx.ReadIdent()
	assert.NoError(err)
	assert.Equal("rule", id)

	id, err = lx.ReadIdent()
	assert.NoError(err)
	assert.Equal("foo", id)

	id, err = lx.ReadIdent()
	assert.NoError(err)
	assert.Equal("bar", id)
}

func TestReader_ReadQuotedString(t *testing.T) {
	assert := assert.New(t)

	lx := New("test", strings.NewReader(`"hello world.cfdg"`))
	s, err := lx.ReadQuotedString()
	assert.NoError(err)
	assert.Equal("hello world.cfdg", s)
}

func TestReader_ReadQuotedString_Unterminated(t *testing.T) {
	assert := assert.New(t)

	lx := New("test", strings.NewReader(`"unterminated`))
	_, err := lx.ReadQuotedString()
	assert.Error(err)
}

func TestReader_ReadSignedReal(t *testing.T) {
	assert := assert.New(t)

	lx := New("test", strings.NewReader("-3.5 2 +1.25"))
	v, err := lx.ReadSignedReal()
	assert.NoError(err)
	assert.InDelta(-3.5, v, 1e-9)

	v, err = lx.ReadSignedReal()
	assert.NoError(err)
	assert.InDelta(2.0, v, 1e-9)

	v, err = lx.ReadSignedReal()
	assert.NoError(err)
	assert.InDelta(1.25, v, 1e-9)
}

func TestReader_ReadBalancedParen(t *testing.T) {
	assert := assert.New(t)

	lx := New("test", strings.NewReader("(1+(2*3)) rest"))
	inner, err := lx.ReadBalancedParen()
	assert.NoError(err)
	assert.Equal("1+(2*3)", inner)

	tok, err := lx.ReadToken("")
	assert.NoError(err)
	assert.Equal("rest", tok)
}

func TestReader_ReadBalancedParen_Unterminated(t *testing.T) {
	assert := assert.New(t)

	lx := New("test", strings.NewReader("(1+2"))
	_, err := lx.ReadBalancedParen()
	assert.Error(err)
}
