// Package contextfree implements a context-free design grammar: a
// declarative language for generating 2D vector art through recursive
// shape substitution, in the tradition of colinw7/CContextFree. A
// Program is parsed from grammar source, then expanded into a stream of
// primitive shapes and paths that a Backend renders.
package contextfree

import "github.com/colinw7/contextfree/geom"

// Program is a fully parsed grammar: a set of named rules plus the
// top-level directives that configure expansion and rendering.
type Program struct {
	StartShape    string
	StartArgs     []float64
	Background    geom.HSVA
	HasBackground bool
	Tiled         bool
	TileMatrix    geom.Matrix
	Rules         map[string][]*Rule
	RuleOrder     []string
}

// AddRule appends rule r to its name's alternative list, tracking first
// appearance order so diagnostics and deterministic iteration match
// source order.
func (p *Program) AddRule(r *Rule) {
	if p.Rules == nil {
		p.Rules = make(map[string][]*Rule)
	}
	if _, ok := p.Rules[r.Name]; !ok {
		p.RuleOrder = append(p.RuleOrder, r.Name)
	}
	p.Rules[r.Name] = append(p.Rules[r.Name], r)
}

// RuleKind distinguishes a user-defined rule from the grammar's four
// built-in primitive shapes.
type RuleKind int

const (
	RuleUser RuleKind = iota
	RuleSquare
	RuleCircle
	RuleTriangle
	RulePath
)

// Rule is one alternative for a rule name: a weight for roulette
// selection among same-named alternatives, and either a primitive kind
// or a body of actions/path parts to expand.
type Rule struct {
	Name    string
	Kind    RuleKind
	Weight  float64
	Actions []Action  // for RuleUser
	Path    *PathSpec // for RulePath
}

// Action is one element of a rule body: a direct shape/rule/path
// reference (SimpleAction), a fixed-count loop invoking one named rule
// (LoopAction), or a fixed-count loop re-expanding one nested action
// (ComplexLoopAction).
type Action interface{ isAction() }

// SimpleAction replaces the current state with one shape or rule
// invocation, nested inside the given adjustment.
type SimpleAction struct {
	Name string
	Adj  *Adjustment
}

func (SimpleAction) isAction() {}

// LoopAction is `<int> * <loop_adjustment> <name> <adjustment>`: it
// repeats Count times, advancing the running state by LoopAdj before
// each iteration and invoking Name with Adj nested inside that
// advanced state (CContextFree.cpp's LoopAction).
type LoopAction struct {
	Count   int
	LoopAdj *Adjustment
	Name    string
	Adj     *Adjustment
}

func (LoopAction) isAction() {}

// ComplexLoopAction is `<int> * <loop_adjustment> { <action> }`: it
// repeats Count times, advancing the running state by LoopAdj before
// each iteration and re-expanding the single Inner action there
// (CContextFree.cpp's ComplexLoopAction). Inner may itself be any
// Action, including a nested loop.
type ComplexLoopAction struct {
	Count   int
	LoopAdj *Adjustment
	Inner   Action
}

func (ComplexLoopAction) isAction() {}

// Adjustment is a parsed `{ ... }` block: a set of transform/color keys
// that, applied to a State, produce the State seen by the nested
// action. Compose mode folds keys into Matrix left-to-right as written
// (SVG transform-list semantics); block mode (the default within most
// constructs) builds Matrix once from the accumulated components in a
// fixed canonical order.
type Adjustment struct {
	Compose bool
	Matrix  geom.Matrix

	HasSize, HasZ               bool
	SizeX, SizeY, Z             float64
	HasHue, HasSaturation       bool
	HasBrightness, HasAlpha     bool
	Hue, Saturation, Brightness float64
	Alpha                       float64
	HueTarget, SatTarget        float64
	BrightTarget, AlphaTarget   float64
	HueUseTarget, SatUseTarget  bool
	BrightUseTarget             bool
	AlphaUseTarget              bool

	// Line-color ("|"-prefixed) variants adjust the stroke color
	// instead of the fill color; same semantics as above.
	HasLineHue, HasLineSaturation   bool
	HasLineBrightness, HasLineAlpha bool
	LineHue, LineSaturation         float64
	LineBrightness, LineAlpha       float64
}

// PathSpec is a `path NAME { ... }` body: an ordered list of path
// operations (moveto/lineto/curveto/arcto/close/stroke/fill/loop).
type PathSpec struct {
	Parts []PathPart
}

// PathPart is one operation inside a path body.
type PathPart interface{ isPathPart() }

type MoveToPart struct{ X, Y string }
type LineToPart struct{ X, Y string }

// CurveToPart is a CURVETO part. X1,Y1 is always the first control
// point; X2,Y2/HasX2 is the optional second control point (present for
// a cubic curve, absent for a quadratic one elevated to a cubic at
// build time).
type CurveToPart struct {
	X, Y, X1, Y1, X2, Y2 string
	HasX2                bool
}

// ArcToPart is an ARCTO part. Rx/Ry/XRot follow the `rx ry r` point
// keys (r is a rotation angle when rx,ry are both given, otherwise a
// uniform radius). LargeArc/Sweep come from the `p "large"`/`p "cw"`
// flag convention.
type ArcToPart struct {
	X, Y, Rx, Ry, XRot string
	LargeArc, Sweep    bool
}
type ClosePart struct{}

// StrokePart paints the path built so far with Width (device units,
// "0" if unset) and Adj's color, falling back to the current state's
// line/fill color when Adj carries none.
type StrokePart struct {
	Width string
	Adj   *Adjustment
}

// FillPart paints the path built so far with Adj's color (falling back
// to the state's fill color). EvenOdd reflects `p "evenodd"`.
type FillPart struct {
	Adj     *Adjustment
	EvenOdd bool
}

// LoopPathPart is `<int> * <loop_adjustment> <op> { <points> }`: it
// repeats Inner Count times, advancing the state by Adj each iteration.
type LoopPathPart struct {
	Count int
	Adj   *Adjustment
	Inner PathPart
}

// LoopPathPartList is `<int> * <loop_adjustment> { <path-parts> }`: it
// repeats the whole Parts sequence Count times, advancing the state by
// Adj each iteration.
type LoopPathPartList struct {
	Count int
	Adj   *Adjustment
	Parts []PathPart
}

func (MoveToPart) isPathPart()       {}
func (LineToPart) isPathPart()       {}
func (CurveToPart) isPathPart()      {}
func (ArcToPart) isPathPart()        {}
func (ClosePart) isPathPart()        {}
func (StrokePart) isPathPart()       {}
func (FillPart) isPathPart()         {}
func (LoopPathPart) isPathPart()     {}
func (LoopPathPartList) isPathPart() {}
