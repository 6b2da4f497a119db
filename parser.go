package contextfree

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/colinw7/contextfree/eval"
	"github.com/colinw7/contextfree/geom"
	"github.com/colinw7/contextfree/lexer"
)

// ParseError reports one recoverable error found while parsing a
// grammar, with enough source position to point a user at the problem.
type ParseError struct {
	Source string
	Pos    lexer.Pos
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Source, e.Pos, e.Msg)
}

// Parser turns grammar source into a Program. Recoverable errors are
// collected in Errors rather than aborting the parse: on error, the
// parser skips to the next line beginning with a top-level directive
// keyword and continues, matching the original error()-and-resync
// policy so a single typo does not hide the rest of the grammar's
// diagnostics.
type Parser struct {
	lx     *lexer.Reader
	prog   *Program
	Errors []*ParseError

	// include resolves a nested grammar source by name or URL; nil
	// disables include support (used by tests that parse fragments).
	Include func(name string) (io.Reader, string, error)
}

// NewParser creates a parser reading from lx into a fresh Program.
func NewParser(lx *lexer.Reader) *Parser {
	return &Parser{lx: lx, prog: &Program{}}
}

var topLevelKeywords = map[string]bool{
	"startshape": true, "include": true, "background": true,
	"tile": true, "size": true, "rule": true, "path": true,
}

// Parse consumes the entire source, returning the accumulated Program.
// The returned error is always nil: every per-directive error, a failed
// include among them, is recorded in p.Errors and parsing continues.
func (p *Parser) Parse() (*Program, error) {
	for {
		p.lx.SkipSpace()
		if p.lx.AtEOF() {
			break
		}
		if p.lx.AtEOL() {
			continue
		}
		kw, err := p.lx.ReadIdent()
		if err != nil {
			p.errf("expected a top-level directive")
			p.resync()
			continue
		}
		if err := p.directive(kw); err != nil {
			p.errf("%v", err)
			p.resync()
		}
	}
	return p.prog, nil
}

func (p *Parser) errf(format string, args ...any) {
	p.Errors = append(p.Errors, &ParseError{
		Source: p.lx.Name(),
		Pos:    p.lx.Pos(),
		Msg:    fmt.Sprintf(format, args...),
	})
}

// resync discards input up to (but not including) the next line that
// starts with a recognized top-level keyword, so one malformed
// directive does not poison the rest of the file.
func (p *Parser) resync() {
	for {
		p.lx.SkipSpace()
		if p.lx.AtEOF() {
			return
		}
		save := *p.lx
		kw, err := p.lx.ReadIdent()
		if err == nil && topLevelKeywords[kw] {
			*p.lx = save
			return
		}
		*p.lx = save
		// discard the rest of this logical line.
		for !p.lx.AtEOL() {
			if _, err := p.lx.ReadByte(); err != nil {
				break
			}
		}
	}
}

func (p *Parser) directive(kw string) error {
	switch kw {
	case "startshape":
		return p.parseStartShape()
	case "include":
		return p.parseInclude()
	case "background":
		return p.parseBackground()
	case "tile":
		return p.parseTile()
	case "size":
		return p.parseSize()
	case "rule":
		return p.parseRule()
	case "path":
		return p.parsePath()
	default:
		return fmt.Errorf("unknown top-level directive %q", kw)
	}
}

func (p *Parser) parseStartShape() error {
	name, err := p.lx.ReadIdent()
	if err != nil {
		return fmt.Errorf("startshape: %w", err)
	}
	p.prog.StartShape = name
	p.lx.SkipSpace()
	if p.lx.PeekByte() == '{' {
		adj, err := p.parseAdjustmentBlock()
		if err != nil {
			return fmt.Errorf("startshape: %w", err)
		}
		p.prog.StartArgs = adjustmentSizeArgs(adj)
	}
	return nil
}

// adjustmentSizeArgs extracts the [size.x, size.y] pair a startshape
// adjustment is allowed to carry, the only keys meaningful before any
// shape state exists.
func adjustmentSizeArgs(adj *Adjustment) []float64 {
	if adj == nil || !adj.HasSize {
		return nil
	}
	return []float64{adj.SizeX, adj.SizeY}
}

func (p *Parser) parseInclude() error {
	p.lx.SkipSpace()
	var name string
	var err error
	if p.lx.PeekByte() == '"' {
		name, err = p.lx.ReadQuotedString()
	} else {
		name, err = p.lx.ReadToken("{}")
	}
	if err != nil {
		return fmt.Errorf("include: %w", err)
	}
	if p.Include == nil {
		return nil
	}
	r, srcName, err := p.Include(name)
	if err != nil {
		return fmt.Errorf("include %q: %w", name, err)
	}
	sub := NewParser(lexer.New(srcName, r))
	sub.Include = p.Include
	sub.prog = p.prog
	if _, err := sub.Parse(); err != nil {
		return err
	}
	p.Errors = append(p.Errors, sub.Errors...)
	return nil
}

// parseBackground accumulates onto any existing background color
// rather than replacing it, matching CContextFree's `bg_ += CHSVA(...)`
// behavior for repeated background directives.
func (p *Parser) parseBackground() error {
	adj, err := p.parseAdjustmentBlock()
	if err != nil {
		return fmt.Errorf("background: %w", err)
	}
	add := adjustmentToColorDelta(adj)
	if p.prog.HasBackground {
		p.prog.Background.H = geom.NormalizeHue(p.prog.Background.H + add.H)
		p.prog.Background.S += add.S
		p.prog.Background.V += add.V
		p.prog.Background.A += add.A
	} else {
		p.prog.Background = add
		p.prog.HasBackground = true
	}
	return nil
}

func adjustmentToColorDelta(adj *Adjustment) geom.HSVA {
	if adj == nil {
		return geom.HSVA{A: 1}
	}
	c := geom.HSVA{A: 1}
	if adj.HasHue {
		c.H = adj.Hue
	}
	if adj.HasSaturation {
		c.S = adj.Saturation
	}
	if adj.HasBrightness {
		c.V = adj.Brightness
	}
	if adj.HasAlpha {
		c.A = adj.Alpha
	}
	return c
}

// parseTile takes the tile matrix from an ordinary adjustment block, so
// it is composed like any other adjustment (translate . rotate . scale .
// skew . flip in `{...}` mode, written order in `[...]` mode); there is
// no separate composition order for tiles.
func (p *Parser) parseTile() error {
	adj, err := p.parseAdjustmentBlock()
	if err != nil {
		return fmt.Errorf("tile: %w", err)
	}
	p.prog.Tiled = true
	p.prog.TileMatrix = adj.Matrix
	return nil
}

// parseSize parses and discards the `size` directive: it carries no
// semantic weight in this implementation (kept for source
// compatibility with grammars that still declare a canvas size).
func (p *Parser) parseSize() error {
	_, err := p.parseAdjustmentBlock()
	if err != nil {
		return fmt.Errorf("size: %w", err)
	}
	return nil
}

func (p *Parser) parseRule() error {
	name, err := p.lx.ReadIdent()
	if err != nil {
		return fmt.Errorf("rule: %w", err)
	}
	weight := 1.0
	p.lx.SkipSpace()
	if isDigitOrSign(p.lx.PeekByte()) {
		w, err := p.lx.ReadSignedReal()
		if err != nil {
			return fmt.Errorf("rule %s: weight: %w", name, err)
		}
		weight = w
	}
	p.lx.SkipSpace()
	if err := p.lx.Expect('{'); err != nil {
		return fmt.Errorf("rule %s: %w", name, err)
	}
	actions, err := p.parseActionList()
	if err != nil {
		return fmt.Errorf("rule %s: %w", name, err)
	}
	p.prog.AddRule(&Rule{Name: name, Kind: RuleUser, Weight: weight, Actions: actions})
	return nil
}

func isDigitOrSign(b byte) bool {
	return (b >= '0' && b <= '9') || b == '+' || b == '-' || b == '.'
}

func (p *Parser) parseActionList() ([]Action, error) {
	var actions []Action
	for {
		p.lx.SkipSpace()
		for p.lx.AtEOL() && !p.lx.AtEOF() && p.lx.PeekByte() != '}' {
			p.lx.SkipSpace()
		}
		if p.lx.PeekByte() == '}' {
			p.lx.ReadByte()
			return actions, nil
		}
		if p.lx.AtEOF() {
			return nil, fmt.Errorf("unterminated action list")
		}
		act, err := p.parseAction()
		if err != nil {
			return nil, err
		}
		actions = append(actions, act)
	}
}

// parseAction parses one element of a rule body: either a bare
// `<name> <adjustment>` (SimpleAction) or, when the action opens with a
// digit, the counted-repetition form `<int> * <adjustment> ...`
// (LoopAction/ComplexLoopAction), matching CContextFree.cpp's
// parseAction (isDigit() dispatch before falling back to parseName()).
func (p *Parser) parseAction() (Action, error) {
	p.lx.SkipSpace()
	if isASCIIDigit(p.lx.PeekByte()) {
		return p.parseLoopAction()
	}
	name, err := p.lx.ReadIdent()
	if err != nil {
		return nil, fmt.Errorf("expected an action")
	}
	adj, err := p.maybeAdjustment()
	if err != nil {
		return nil, err
	}
	return SimpleAction{Name: name, Adj: adj}, nil
}

func isASCIIDigit(b byte) bool { return b >= '0' && b <= '9' }

// closeOf returns the bracket that closes open, the `{`/`}` vs `[`/`]`
// pair every block in this grammar is delimited by.
func closeOf(open byte) byte {
	if open == '[' {
		return ']'
	}
	return '}'
}

func (p *Parser) maybeAdjustment() (*Adjustment, error) {
	p.lx.SkipSpace()
	b := p.lx.PeekByte()
	if b != '{' && b != '[' {
		return nil, nil
	}
	return p.parseAdjustmentBlock()
}

// parseLoopAction parses the two counted-repetition action shapes that
// follow a leading `<int> *`:
//
//	<int> * <loop_adjustment> <name> <adjustment>        -> LoopAction
//	<int> * <loop_adjustment> { <action> }                -> ComplexLoopAction
//
// grounded directly on CContextFree.cpp's parseAction digit branch.
func (p *Parser) parseLoopAction() (Action, error) {
	n, err := p.lx.ReadInt()
	if err != nil {
		return nil, fmt.Errorf("loop: %w", err)
	}
	p.lx.SkipSpace()
	if err := p.lx.Expect('*'); err != nil {
		return nil, fmt.Errorf("loop: %w", err)
	}
	p.lx.SkipSpace()
	loopAdj, err := p.parseAdjustmentBlock()
	if err != nil {
		return nil, fmt.Errorf("loop: %w", err)
	}
	p.lx.SkipSpace()
	if b := p.lx.PeekByte(); b == '{' || b == '[' {
		end := closeOf(b)
		p.lx.ReadByte()
		p.lx.SkipSpace()
		inner, err := p.parseAction()
		if err != nil {
			return nil, fmt.Errorf("loop: %w", err)
		}
		p.lx.SkipSpace()
		if err := p.lx.Expect(end); err != nil {
			return nil, fmt.Errorf("loop: %w", err)
		}
		return ComplexLoopAction{Count: n, LoopAdj: loopAdj, Inner: inner}, nil
	}
	name, err := p.lx.ReadIdent()
	if err != nil {
		return nil, fmt.Errorf("loop: expected a rule name: %w", err)
	}
	adj, err := p.maybeAdjustment()
	if err != nil {
		return nil, fmt.Errorf("loop: %w", err)
	}
	return LoopAction{Count: n, LoopAdj: loopAdj, Name: name, Adj: adj}, nil
}

func (p *Parser) parsePath() error {
	name, err := p.lx.ReadIdent()
	if err != nil {
		return fmt.Errorf("path: %w", err)
	}
	p.lx.SkipSpace()
	if err := p.lx.Expect('{'); err != nil {
		return fmt.Errorf("path %s: %w", name, err)
	}
	parts, err := p.parsePathParts()
	if err != nil {
		return fmt.Errorf("path %s: %w", name, err)
	}
	p.prog.AddRule(&Rule{Name: name, Kind: RulePath, Weight: 1, Path: &PathSpec{Parts: parts}})
	return nil
}

func (p *Parser) parsePathParts() ([]PathPart, error) {
	return p.parsePathPartsUntil('}')
}

// parsePathPartsUntil reads path parts up to and including the closing
// delimiter end ('}' for a path body, or the matching bracket of a
// `<int> * <adj> { ... }` path-part list).
func (p *Parser) parsePathPartsUntil(end byte) ([]PathPart, error) {
	var parts []PathPart
	for {
		p.lx.SkipSpace()
		for p.lx.AtEOL() && !p.lx.AtEOF() && p.lx.PeekByte() != end {
			p.lx.SkipSpace()
		}
		if p.lx.PeekByte() == end {
			p.lx.ReadByte()
			return parts, nil
		}
		if p.lx.AtEOF() {
			return nil, fmt.Errorf("unterminated path body")
		}
		if isASCIIDigit(p.lx.PeekByte()) {
			part, err := p.parseLoopPathPart()
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
			continue
		}
		op, err := p.lx.ReadIdent()
		if err != nil {
			return nil, fmt.Errorf("expected a path operation")
		}
		part, err := p.parsePathOp(op)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
}

// parsePathOp parses one path operation. Every op name is the grammar's
// documented uppercase spelling, each followed by its own `{ key value
// ... }` point block, matching CContextFree.cpp's lookupPathOp table
// and parsePathOpPart/parsePathPoints.
func (p *Parser) parsePathOp(op string) (PathPart, error) {
	switch op {
	case "MOVETO":
		pts, err := p.parsePathPointsBlock()
		if err != nil {
			return nil, err
		}
		return MoveToPart{X: orZero(pts.X), Y: orZero(pts.Y)}, nil
	case "LINETO":
		pts, err := p.parsePathPointsBlock()
		if err != nil {
			return nil, err
		}
		return LineToPart{X: orZero(pts.X), Y: orZero(pts.Y)}, nil
	case "CURVETO":
		pts, err := p.parsePathPointsBlock()
		if err != nil {
			return nil, err
		}
		part := CurveToPart{X: orZero(pts.X), Y: orZero(pts.Y), X1: orZero(pts.X1), Y1: orZero(pts.Y1)}
		if pts.HasX2 || pts.HasY2 {
			part.X2, part.Y2, part.HasX2 = orZero(pts.X2), orZero(pts.Y2), true
		}
		return part, nil
	case "ARCTO":
		pts, err := p.parsePathPointsBlock()
		if err != nil {
			return nil, err
		}
		return arcFromPoints(pts), nil
	case "CLOSEPOLY":
		if _, err := p.parsePathPointsBlock(); err != nil {
			return nil, err
		}
		return ClosePart{}, nil
	case "STROKE":
		return p.parseStrokeOrFill(true)
	case "FILL":
		return p.parseStrokeOrFill(false)
	case "MOVEREL", "LINEREL", "ARCREL", "CURVEREL":
		// Recognized names, but relative path motion is not implemented;
		// still consume the points block so the rest of the path parses.
		if _, err := p.parsePathPointsBlock(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("path operation %q is unimplemented", op)
	default:
		return nil, fmt.Errorf("unknown path operation %q", op)
	}
}

// parseStrokeOrFill parses a STROKE or FILL block. CContextFree.cpp's
// parsePathValue tries the shared adjustment-key vocabulary (color,
// transform) before falling back to the op-specific width/p keys, so
// this does the same via adjBuilder.applyAdjustmentKey.
func (p *Parser) parseStrokeOrFill(stroke bool) (PathPart, error) {
	p.lx.SkipSpace()
	if err := p.lx.Expect('{'); err != nil {
		return nil, err
	}
	b := newAdjBuilder(false)
	var width string
	evenOdd := false
	for {
		p.lx.SkipSpace()
		for p.lx.AtEOL() && !p.lx.AtEOF() && p.lx.PeekByte() != '}' {
			p.lx.SkipSpace()
		}
		if p.lx.PeekByte() == '}' {
			p.lx.ReadByte()
			break
		}
		if p.lx.AtEOF() {
			return nil, fmt.Errorf("unterminated path block")
		}
		lineColor := false
		if p.lx.PeekByte() == '|' {
			p.lx.ReadByte()
			lineColor = true
		}
		key, err := p.lx.ReadIdent()
		if err != nil {
			return nil, fmt.Errorf("expected a key")
		}
		ok, err := b.applyAdjustmentKey(p, key, lineColor)
		if err != nil {
			return nil, err
		}
		if ok {
			continue
		}
		switch key {
		case "width":
			width, err = p.readNum()
			if err != nil {
				return nil, err
			}
		case "p", "param":
			p.lx.SkipSpace()
			s, err := p.lx.ReadQuotedString()
			if err != nil {
				return nil, err
			}
			if strings.Contains(s, "evenodd") {
				evenOdd = true
			}
		default:
			opName := "FILL"
			if stroke {
				opName = "STROKE"
			}
			return nil, fmt.Errorf("unknown %s key %q", opName, key)
		}
	}
	b.finish()
	if stroke {
		return StrokePart{Width: orZero(width), Adj: b.adj}, nil
	}
	return FillPart{Adj: b.adj, EvenOdd: evenOdd}, nil
}

// parseLoopPathPart parses the two counted-repetition path-part shapes
// that follow a leading `<int> *`, the path-level analogue of
// parseLoopAction:
//
//	<int> * <loop_adjustment> <OP> { <points> }   -> LoopPathPart (one op)
//	<int> * <loop_adjustment> { <path-parts> }    -> LoopPathPartList (many)
//
// grounded on CContextFree.cpp's parsePathPart digit branch.
func (p *Parser) parseLoopPathPart() (PathPart, error) {
	n, err := p.lx.ReadInt()
	if err != nil {
		return nil, fmt.Errorf("loop: %w", err)
	}
	p.lx.SkipSpace()
	if err := p.lx.Expect('*'); err != nil {
		return nil, fmt.Errorf("loop: %w", err)
	}
	p.lx.SkipSpace()
	loopAdj, err := p.parseAdjustmentBlock()
	if err != nil {
		return nil, fmt.Errorf("loop: %w", err)
	}
	p.lx.SkipSpace()
	if b := p.lx.PeekByte(); b == '{' || b == '[' {
		end := closeOf(b)
		p.lx.ReadByte()
		parts, err := p.parsePathPartsUntil(end)
		if err != nil {
			return nil, fmt.Errorf("loop: %w", err)
		}
		return LoopPathPartList{Count: n, Adj: loopAdj, Parts: parts}, nil
	}
	op, err := p.lx.ReadIdent()
	if err != nil {
		return nil, fmt.Errorf("loop: expected a path operation: %w", err)
	}
	inner, err := p.parsePathOp(op)
	if err != nil {
		return nil, fmt.Errorf("loop: %w", err)
	}
	return LoopPathPart{Count: n, Adj: loopAdj, Inner: inner}, nil
}

// pathPoints accumulates the point/flag keys read from a path
// operation's `{ ... }` block: the `x y x1 y1 x2 y2 rx ry r width
// p|param` vocabulary from CContextFree.cpp's parsePathPoints.
type pathPoints struct {
	X, Y, X1, Y1, X2, Y2, Rx, Ry, R string
	HasX2, HasY2                   bool
	Flags                          []string
}

func (p *Parser) parsePathPointsBlock() (*pathPoints, error) {
	p.lx.SkipSpace()
	if err := p.lx.Expect('{'); err != nil {
		return nil, err
	}
	pts := &pathPoints{}
	for {
		p.lx.SkipSpace()
		for p.lx.AtEOL() && !p.lx.AtEOF() && p.lx.PeekByte() != '}' {
			p.lx.SkipSpace()
		}
		if p.lx.PeekByte() == '}' {
			p.lx.ReadByte()
			return pts, nil
		}
		if p.lx.AtEOF() {
			return nil, fmt.Errorf("unterminated path point block")
		}
		key, err := p.lx.ReadIdent()
		if err != nil {
			return nil, fmt.Errorf("expected a path point key")
		}
		switch key {
		case "x":
			pts.X, err = p.readNum()
		case "y":
			pts.Y, err = p.readNum()
		case "x1":
			pts.X1, err = p.readNum()
		case "y1":
			pts.Y1, err = p.readNum()
		case "x2":
			pts.X2, err = p.readNum()
			pts.HasX2 = true
		case "y2":
			pts.Y2, err = p.readNum()
			pts.HasY2 = true
		case "rx":
			pts.Rx, err = p.readNum()
		case "ry":
			pts.Ry, err = p.readNum()
		case "r":
			pts.R, err = p.readNum()
		case "p", "param":
			p.lx.SkipSpace()
			var s string
			s, err = p.lx.ReadQuotedString()
			pts.Flags = append(pts.Flags, s)
		default:
			return nil, fmt.Errorf("unknown path point key %q", key)
		}
		if err != nil {
			return nil, err
		}
	}
}

// arcFromPoints builds an ArcToPart from a parsed points block,
// following ArcToPathPart's constructor in CContextFree.h: rx and ry
// given together make r an x-axis rotation angle; r alone is a uniform
// radius; neither given defaults to a unit circle.
func arcFromPoints(pts *pathPoints) ArcToPart {
	rx, ry, xrot := pts.Rx, pts.Ry, "0"
	switch {
	case pts.Rx != "" && pts.Ry != "":
		xrot = orZero(pts.R)
	case pts.R != "":
		rx, ry = pts.R, pts.R
	default:
		rx, ry = "1", "1"
	}
	return ArcToPart{
		X: orZero(pts.X), Y: orZero(pts.Y),
		Rx: orZero(rx), Ry: orZero(ry), XRot: xrot,
		LargeArc: hasFlag(pts.Flags, "large"),
		Sweep:    hasFlag(pts.Flags, "cw"),
	}
}

func hasFlag(flags []string, name string) bool {
	for _, f := range flags {
		if strings.Contains(f, name) {
			return true
		}
	}
	return false
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// readNum reads a numeric path-point value: either a signed literal or
// a parenthesized expression, kept as source text for the eval package
// to evaluate per-invocation.
func (p *Parser) readNum() (string, error) {
	p.lx.SkipSpace()
	if p.lx.PeekByte() == '(' {
		return p.lx.ReadBalancedParen()
	}
	v, err := p.lx.ReadSignedReal()
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(v, 'g', -1, 64), nil
}

// adjBuilder accumulates the pieces of an adjustment block as its keys
// are read. In block mode (the `{...}` default) translate/rotate/
// scale/skew/flip are each remembered separately and combined once, in
// that fixed order, when finish is called. In compose mode (`[...]`,
// set via newAdjBuilder) every geometric key instead right-multiplies
// directly into m as it is read, so the final matrix reflects the
// exact written order — CContextFree.cpp's parseAdjustmentValue.
type adjBuilder struct {
	adj     *Adjustment
	compose bool
	m       geom.Matrix

	haveRotate, haveScale, haveSkew, haveFlip bool
	rotateM, scaleM, skewM, flipM             geom.Matrix
}

func newAdjBuilder(compose bool) *adjBuilder {
	return &adjBuilder{adj: &Adjustment{Compose: compose}, compose: compose, m: geom.Identity()}
}

// applyAdjustmentKey recognizes one `<key> <value...>` adjustment
// entry (color or transform). ok is false for a key outside this
// vocabulary, letting callers such as parseStrokeOrFill fall back to
// their own op-specific keys.
func (b *adjBuilder) applyAdjustmentKey(p *Parser, key string, lineColor bool) (ok bool, err error) {
	switch key {
	case "x":
		v, err := p.readNumVal()
		if err != nil {
			return true, err
		}
		b.m = b.m.Mul(geom.Translate(v, 0))
	case "y":
		v, err := p.readNumVal()
		if err != nil {
			return true, err
		}
		b.m = b.m.Mul(geom.Translate(0, v))
	case "z":
		v, err := p.readNumVal()
		if err != nil {
			return true, err
		}
		b.adj.HasZ, b.adj.Z = true, v
	case "size", "s":
		sx, err := p.readNumVal()
		if err != nil {
			return true, err
		}
		sy := sx
		if isNextNumeric(p.lx) {
			if sy, err = p.readNumVal(); err != nil {
				return true, err
			}
		}
		b.adj.HasSize, b.adj.SizeX, b.adj.SizeY = true, sx, sy
		b.haveScale, b.scaleM = true, geom.Scale(sx, sy)
		if b.compose {
			b.m = b.m.Mul(b.scaleM)
		}
	case "rotate", "r":
		v, err := p.readAngle()
		if err != nil {
			return true, err
		}
		b.haveRotate, b.rotateM = true, geom.Rotate(v*math.Pi/180)
		if b.compose {
			b.m = b.m.Mul(b.rotateM)
		}
	case "flip", "f":
		v, err := p.readAngle()
		if err != nil {
			return true, err
		}
		b.haveFlip, b.flipM = true, geom.Reflect(v*math.Pi/180)
		if b.compose {
			b.m = b.m.Mul(b.flipM)
		}
	case "skew":
		sx, err := p.readAngle()
		if err != nil {
			return true, err
		}
		sy := sx
		if isNextNumeric(p.lx) {
			if sy, err = p.readAngle(); err != nil {
				return true, err
			}
		}
		b.haveSkew, b.skewM = true, geom.Skew(sx*math.Pi/180, sy*math.Pi/180)
		if b.compose {
			b.m = b.m.Mul(b.skewM)
		}
	case "hue", "h":
		delta, target, useTarget, err := p.readColorVal()
		if err != nil {
			return true, err
		}
		setHue(b.adj, lineColor, delta, target, useTarget)
	case "saturation", "sat":
		delta, target, useTarget, err := p.readColorVal()
		if err != nil {
			return true, err
		}
		setSat(b.adj, lineColor, delta, target, useTarget)
	case "brightness", "b":
		delta, target, useTarget, err := p.readColorVal()
		if err != nil {
			return true, err
		}
		setBright(b.adj, lineColor, delta, target, useTarget)
	case "alpha", "a":
		delta, target, useTarget, err := p.readColorVal()
		if err != nil {
			return true, err
		}
		setAlpha(b.adj, lineColor, delta, target, useTarget)
	default:
		return false, nil
	}
	return true, nil
}

// finish computes the adjustment's final Matrix: the accumulated
// composition in compose mode, or translate.rotate.scale.skew.flip in
// block mode.
func (b *adjBuilder) finish() {
	if b.compose {
		b.adj.Matrix = b.m
		return
	}
	final := geom.Identity().Mul(b.m)
	if b.haveRotate {
		final = final.Mul(b.rotateM)
	}
	if b.haveScale {
		final = final.Mul(b.scaleM)
	}
	if b.haveSkew {
		final = final.Mul(b.skewM)
	}
	if b.haveFlip {
		final = final.Mul(b.flipM)
	}
	b.adj.Matrix = final
}

// parseAdjustmentBlock parses a `{ ... }` (block mode) or `[ ... ]`
// (compose mode) adjustment block, per spec.md §4.3 and
// CContextFree.cpp's parseAdjustment (compose = end_char == ']').
func (p *Parser) parseAdjustmentBlock() (*Adjustment, error) {
	p.lx.SkipSpace()
	open := p.lx.PeekByte()
	if open != '{' && open != '[' {
		return nil, fmt.Errorf("expected '{' or '[' to start an adjustment block")
	}
	p.lx.ReadByte()
	end := closeOf(open)
	b := newAdjBuilder(open == '[')

	for {
		p.lx.SkipSpace()
		for p.lx.AtEOL() && !p.lx.AtEOF() && p.lx.PeekByte() != end {
			p.lx.SkipSpace()
		}
		if p.lx.PeekByte() == end {
			p.lx.ReadByte()
			break
		}
		if p.lx.AtEOF() {
			return nil, fmt.Errorf("unterminated adjustment block")
		}
		lineColor := false
		if p.lx.PeekByte() == '|' {
			p.lx.ReadByte()
			lineColor = true
		}
		key, err := p.lx.ReadIdent()
		if err != nil {
			return nil, fmt.Errorf("expected an adjustment key")
		}
		ok, err := b.applyAdjustmentKey(p, key, lineColor)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("unknown adjustment key %q", key)
		}
	}
	b.finish()
	return b.adj, nil
}

func isNextNumeric(lx *lexer.Reader) bool {
	lx.SkipSpace()
	b := lx.PeekByte()
	return isDigitOrSign(b)
}

func setHue(adj *Adjustment, line bool, delta, target float64, useTarget bool) {
	if line {
		adj.HasLineHue, adj.LineHue = true, delta
		return
	}
	adj.HasHue, adj.Hue, adj.HueTarget, adj.HueUseTarget = true, delta, target, useTarget
}

func setSat(adj *Adjustment, line bool, delta, target float64, useTarget bool) {
	if line {
		adj.HasLineSaturation, adj.LineSaturation = true, delta
		return
	}
	adj.HasSaturation, adj.Saturation, adj.SatTarget, adj.SatUseTarget = true, delta, target, useTarget
}

func setBright(adj *Adjustment, line bool, delta, target float64, useTarget bool) {
	if line {
		adj.HasLineBrightness, adj.LineBrightness = true, delta
		return
	}
	adj.HasBrightness, adj.Brightness, adj.BrightTarget, adj.BrightUseTarget = true, delta, target, useTarget
}

func setAlpha(adj *Adjustment, line bool, delta, target float64, useTarget bool) {
	if line {
		adj.HasLineAlpha, adj.LineAlpha = true, delta
		return
	}
	adj.HasAlpha, adj.Alpha, adj.AlphaTarget, adj.AlphaUseTarget = true, delta, target, useTarget
}

// readNumVal reads a numeric value, either a signed literal or a
// parenthesized expression.
func (p *Parser) readNumVal() (float64, error) {
	p.lx.SkipSpace()
	if p.lx.PeekByte() == '(' {
		text, err := p.lx.ReadBalancedParen()
		if err != nil {
			return 0, err
		}
		v, err := eval.Eval(text, eval.Options{ForceReal: true})
		if err != nil {
			return 0, err
		}
		return v.Float(), nil
	}
	return p.lx.ReadSignedReal()
}

// readAngle reads a numeric value evaluated in degrees mode so bare
// trig function calls inside rotate/skew/flip expressions behave like
// the grammar's degree-valued keys.
func (p *Parser) readAngle() (float64, error) {
	p.lx.SkipSpace()
	if p.lx.PeekByte() == '(' {
		text, err := p.lx.ReadBalancedParen()
		if err != nil {
			return 0, err
		}
		v, err := eval.Eval(text, eval.Options{ForceReal: true, Degrees: true})
		if err != nil {
			return 0, err
		}
		return v.Float(), nil
	}
	return p.lx.ReadSignedReal()
}

// readColorVal reads a color-adjustment value: a delta, and optionally
// a second value naming a target to interpolate toward.
func (p *Parser) readColorVal() (delta, target float64, useTarget bool, err error) {
	delta, err = p.readNumVal()
	if err != nil {
		return 0, 0, false, err
	}
	if isNextNumeric(p.lx) {
		target, err = p.readNumVal()
		if err != nil {
			return 0, 0, false, err
		}
		useTarget = true
	}
	return delta, target, useTarget, nil
}
