package contextfree

import (
	"context"
	"math"
	"sort"

	"github.com/colinw7/contextfree/geom"
)

// drawable is either a Shape or a PathRun, given a common z-bucket key
// and a descending-sort area so Render can interleave the two kinds
// while obeying a single z-order.
type drawable struct {
	zBucket int
	area    float64
	shape   *Shape
	path    *PathRun
}

// zBucketOf quantizes z the way the original render loop does: shapes
// within the same floor(100*z) bucket are considered coplanar and
// ordered only by area, not drawn strictly by z, so near-equal z values
// don't flicker-sort under floating point noise.
func zBucketOf(z float64) int {
	return int(math.Floor(100 * z))
}

// Render draws shapes and paths to back in ascending z-bucket order,
// and within a bucket largest-area-first (area-descending), the stable
// sort CContextFreeCmp establishes so overlapping same-z shapes layer
// big-to-small, matching §4.7/§8 invariant 6. If prog is tiled, the
// whole scene is additionally replicated across the tile matrix to
// cover the accumulated bounding box, the "extend the tile rectangle
// until it covers the overall bbox" loop from the original's render().
func Render(ctx context.Context, prog *Program, shapes []Shape, paths []PathRun, back Backend) error {
	bg := geom.HSVA{V: 1, A: 1}
	if prog.HasBackground {
		bg = prog.Background
	}
	if err := back.FillBackground(bg); err != nil {
		return err
	}

	items := buildDrawables(shapes, paths)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].zBucket != items[j].zBucket {
			return items[i].zBucket < items[j].zBucket
		}
		return items[i].area > items[j].area
	})

	if !prog.Tiled {
		return drawAll(back, items, geom.Identity())
	}

	minX, minY, maxX, maxY := boundingBox(shapes, paths)
	offsets := tileOffsets(prog.TileMatrix, minX, minY, maxX, maxY)
	for _, off := range offsets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := drawAll(back, items, off); err != nil {
			return err
		}
	}
	return nil
}

func buildDrawables(shapes []Shape, paths []PathRun) []drawable {
	items := make([]drawable, 0, len(shapes)+len(paths))
	for i := range shapes {
		s := &shapes[i]
		sx, sy := s.M.Size()
		items = append(items, drawable{zBucket: zBucketOf(s.Z), area: sx * sy, shape: s})
	}
	for i := range paths {
		p := &paths[i]
		area := pathBBoxArea(p)
		items = append(items, drawable{zBucket: zBucketOf(p.Z), area: area, path: p})
	}
	return items
}

func pathBBoxArea(p *PathRun) float64 {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	grow := func(x, y float64) {
		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
	}
	for _, c := range p.Cmds {
		switch c.Op {
		case OpMoveTo, OpLineTo:
			grow(c.X, c.Y)
		case OpCurveTo:
			grow(c.CX1, c.CY1)
			grow(c.CX2, c.CY2)
			grow(c.X, c.Y)
		}
	}
	if math.IsInf(minX, 1) {
		return 0
	}
	return (maxX - minX) * (maxY - minY)
}

func drawAll(back Backend, items []drawable, offset geom.Matrix) error {
	for _, it := range items {
		if it.shape != nil {
			m := it.shape.M
			if offset != geom.Identity() {
				m = offset.Mul(m)
			}
			var err error
			switch it.shape.Kind {
			case RuleSquare:
				err = back.FillSquare(m, it.shape.Color)
			case RuleCircle:
				err = back.FillCircle(m, it.shape.Color)
			case RuleTriangle:
				err = back.FillTriangle(m, it.shape.Color)
			}
			if err != nil {
				return err
			}
			continue
		}
		if err := drawPath(back, it.path, offset); err != nil {
			return err
		}
	}
	return nil
}

func drawPath(back Backend, p *PathRun, offset geom.Matrix) error {
	if err := back.PathInit(offset); err != nil {
		return err
	}
	for _, c := range p.Cmds {
		var err error
		switch c.Op {
		case OpMoveTo:
			err = back.PathMoveTo(c.X, c.Y)
		case OpLineTo:
			err = back.PathLineTo(c.X, c.Y)
		case OpCurveTo:
			err = back.PathCurveTo(c.CX1, c.CY1, c.CX2, c.CY2, c.X, c.Y)
		case OpClose:
			err = back.PathClose()
		}
		if err != nil {
			return err
		}
	}
	if p.HasLine {
		if err := back.PathStroke(p.Line, p.LineWidth); err != nil {
			return err
		}
	}
	if p.HasFill {
		if err := back.PathFill(p.Fill); err != nil {
			return err
		}
	}
	return back.PathTerm()
}

func boundingBox(shapes []Shape, paths []PathRun) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	grow := func(x, y float64) {
		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
	}
	for _, s := range shapes {
		for _, p := range []struct{ x, y float64 }{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			x, y := s.M.Apply(p.x, p.y)
			grow(x, y)
		}
	}
	for i := range paths {
		for _, c := range paths[i].Cmds {
			grow(c.X, c.Y)
		}
	}
	if math.IsInf(minX, 1) {
		return 0, 0, 0, 0
	}
	return
}

// tileOffsets walks the tile matrix's single repeat vector forward and
// backward from the identity, accumulating one offset per step until
// its translated origin leaves the scene's accumulated bounding box in
// both directions, matching CFDG's "extend the tile until it covers
// the bbox" rule for a one-dimensional tile pattern.
func tileOffsets(tile geom.Matrix, minX, minY, maxX, maxY float64) []geom.Matrix {
	offsets := []geom.Matrix{geom.Identity()}
	const maxSteps = 4096
	inv := invertTranslationApprox(tile)

	walk := func(step geom.Matrix) {
		m := geom.Identity()
		for n := 0; n < maxSteps; n++ {
			m = m.Mul(step)
			cx, cy := m.Apply(0, 0)
			if cx < minX-1 || cx > maxX+1 || cy < minY-1 || cy > maxY+1 {
				return
			}
			offsets = append(offsets, m)
		}
	}
	walk(tile)
	walk(inv)
	return offsets
}

// invertTranslationApprox approximates the inverse tile step for
// negative-direction replication; full matrix inversion is unnecessary
// because tile matrices are translate-dominant in practice.
func invertTranslationApprox(m geom.Matrix) geom.Matrix {
	return geom.Translate(-m.Tx, -m.Ty)
}
