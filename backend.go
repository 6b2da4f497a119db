package contextfree

import "github.com/colinw7/contextfree/geom"

// Shape is a primitive (square/circle/triangle) emitted during
// expansion, carrying the transform and color it should be painted
// with.
type Shape struct {
	Kind  RuleKind // RuleSquare, RuleCircle or RuleTriangle
	M     geom.Matrix
	Color geom.HSVA
	Z     float64
}

// PathRun is a fully expanded path: a flattened sequence of drawing
// commands plus whether it should be stroked, filled, both, or neither
// (an unstroked, unfilled path is implicitly filled, matching the
// original PathAction behavior).
type PathRun struct {
	Cmds      []PathCmd
	Fill      geom.HSVA
	Line      geom.HSVA
	LineWidth float64
	HasFill   bool
	HasLine   bool
	Z         float64
}

// PathCmd is one flattened path command.
type PathCmd struct {
	Op             PathOp
	X, Y           float64
	CX1, CY1       float64
	CX2, CY2       float64
}

type PathOp int

const (
	OpMoveTo PathOp = iota
	OpLineTo
	OpCurveTo
	OpClose
)

// Backend is the external rendering collaborator (C8): the expansion
// and z-ordering engine calls it purely through this interface so a
// rasterizer, an SVG writer, or a live preview window can all drive
// the same grammar.
type Backend interface {
	// Size reports the backend's target canvas dimensions.
	Size() (w, h int)

	FillBackground(c geom.HSVA) error
	FillSquare(m geom.Matrix, c geom.HSVA) error
	FillCircle(m geom.Matrix, c geom.HSVA) error
	FillTriangle(m geom.Matrix, c geom.HSVA) error

	PathInit(m geom.Matrix) error
	PathMoveTo(x, y float64) error
	PathLineTo(x, y float64) error
	PathCurveTo(x1, y1, x2, y2, x, y float64) error
	PathClose() error
	PathStroke(c geom.HSVA, width float64) error
	PathFill(c geom.HSVA) error
	PathTerm() error

	// Tick is called once per expansion generation so a live preview
	// backend can flush what has been drawn so far; file backends may
	// no-op it.
	Tick(generation, shapeCount int) error
}
