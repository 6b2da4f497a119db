package raster

import (
	"bytes"
	"testing"

	"github.com/colinw7/contextfree/geom"
	"github.com/stretchr/testify/assert"
)

func TestCanvas_FillBackgroundFillsEveryPixel(t *testing.T) {
	assert := assert.New(t)

	c := New(8, 8)
	err := c.FillBackground(geom.HSVA{V: 1, A: 1})
	assert.NoError(err)

	px := c.Img.NRGBAAt(0, 0)
	assert.Equal(uint8(255), px.R)
	assert.Equal(uint8(255), px.A)
}

func TestCanvas_FillSquarePaintsCenterPixel(t *testing.T) {
	assert := assert.New(t)

	c := New(20, 20)
	assert.NoError(c.FillBackground(geom.HSVA{A: 1}))
	assert.NoError(c.FillSquare(geom.Scale(1, 1), geom.HSVA{V: 1, A: 1}))

	px := c.Img.NRGBAAt(10, 10)
	assert.Equal(uint8(255), px.R)
}

func TestCanvas_PathFillClosesAndFills(t *testing.T) {
	assert := assert.New(t)

	c := New(20, 20)
	assert.NoError(c.FillBackground(geom.HSVA{A: 1}))
	assert.NoError(c.PathInit(geom.Identity()))
	assert.NoError(c.PathMoveTo(-1, -1))
	assert.NoError(c.PathLineTo(1, -1))
	assert.NoError(c.PathLineTo(1, 1))
	assert.NoError(c.PathLineTo(-1, 1))
	assert.NoError(c.PathClose())
	assert.NoError(c.PathFill(geom.HSVA{V: 1, A: 1}))
	assert.NoError(c.PathTerm())

	px := c.Img.NRGBAAt(10, 10)
	assert.Equal(uint8(255), px.R)
}

func TestCanvas_EncodePNGProducesValidHeader(t *testing.T) {
	assert := assert.New(t)

	c := New(4, 4)
	var buf bytes.Buffer
	assert.NoError(c.EncodePNG(&buf))
	assert.True(bytes.HasPrefix(buf.Bytes(), []byte{0x89, 'P', 'N', 'G'}))
}
