// Package svg implements a textual SVG back-end: every fill/path call
// appends one SVG element to an in-memory document, emitted as a
// single <svg> tree by WriteTo.
package svg

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/colinw7/contextfree/geom"
)

// Doc accumulates SVG markup for one rendered scene.
type Doc struct {
	w, h int
	body strings.Builder
	path strings.Builder
	pm   geom.Matrix
}

// New creates a Doc targeting a w x h viewport, centered on the origin
// with one model unit spanning a quarter of the viewport's width (and
// height), matching raster.Canvas's framing
// so both back-ends render the same grammar at the same apparent scale.
func New(w, h int) *Doc {
	return &Doc{w: w, h: h}
}

func (d *Doc) Size() (int, int) { return d.w, d.h }

func (d *Doc) device(m geom.Matrix, x, y float64) (float64, float64) {
	dx, dy := m.Apply(x, y)
	cx := float64(d.w)/2 + dx*float64(d.w)/4
	cy := float64(d.h)/2 - dy*float64(d.h)/4
	return cx, cy
}

func hsvaToCSS(c geom.HSVA) string {
	return fmt.Sprintf("hsla(%.2f,%.2f%%,%.2f%%,%.4f)", geom.NormalizeHue(c.H), clamp01(c.S)*100, clamp01(c.V)*100, clamp01(c.A))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (d *Doc) FillBackground(c geom.HSVA) error {
	fmt.Fprintf(&d.body, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`+"\n", d.w, d.h, hsvaToCSS(c))
	return nil
}

func (d *Doc) polygonPoints(m geom.Matrix, pts [][2]float64) string {
	var sb strings.Builder
	for i, p := range pts {
		x, y := d.device(m, p[0], p[1])
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%.3f,%.3f", x, y)
	}
	return sb.String()
}

func (d *Doc) FillSquare(m geom.Matrix, c geom.HSVA) error {
	pts := [][2]float64{{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}}
	fmt.Fprintf(&d.body, `<polygon points="%s" fill="%s"/>`+"\n", d.polygonPoints(m, pts), hsvaToCSS(c))
	return nil
}

func (d *Doc) FillTriangle(m geom.Matrix, c geom.HSVA) error {
	pts := [][2]float64{{0, 1 / math.Sqrt(3)}, {-0.5, -0.5 / math.Sqrt(3)}, {0.5, -0.5 / math.Sqrt(3)}}
	fmt.Fprintf(&d.body, `<polygon points="%s" fill="%s"/>`+"\n", d.polygonPoints(m, pts), hsvaToCSS(c))
	return nil
}

func (d *Doc) FillCircle(m geom.Matrix, c geom.HSVA) error {
	// An axis-aligned ellipse can't always represent an arbitrarily
	// rotated/sheared unit circle, so emit it as a polygon like the
	// other primitives rather than a misleading <ellipse>.
	const segs = 48
	pts := make([][2]float64, segs)
	for i := 0; i < segs; i++ {
		a := 2 * math.Pi * float64(i) / segs
		pts[i] = [2]float64{0.5 * math.Cos(a), 0.5 * math.Sin(a)}
	}
	fmt.Fprintf(&d.body, `<polygon points="%s" fill="%s"/>`+"\n", d.polygonPoints(m, pts), hsvaToCSS(c))
	return nil
}

func (d *Doc) PathInit(m geom.Matrix) error {
	d.pm = m
	d.path.Reset()
	return nil
}

func (d *Doc) PathMoveTo(x, y float64) error {
	dx, dy := d.device(d.pm, x, y)
	fmt.Fprintf(&d.path, "M %.3f %.3f ", dx, dy)
	return nil
}

func (d *Doc) PathLineTo(x, y float64) error {
	dx, dy := d.device(d.pm, x, y)
	fmt.Fprintf(&d.path, "L %.3f %.3f ", dx, dy)
	return nil
}

func (d *Doc) PathCurveTo(x1, y1, x2, y2, x, y float64) error {
	dx1, dy1 := d.device(d.pm, x1, y1)
	dx2, dy2 := d.device(d.pm, x2, y2)
	dx, dy := d.device(d.pm, x, y)
	fmt.Fprintf(&d.path, "C %.3f %.3f %.3f %.3f %.3f %.3f ", dx1, dy1, dx2, dy2, dx, dy)
	return nil
}

func (d *Doc) PathClose() error {
	d.path.WriteString("Z ")
	return nil
}

func (d *Doc) PathStroke(c geom.HSVA, width float64) error {
	fmt.Fprintf(&d.body, `<path d="%s" fill="none" stroke="%s" stroke-width="%.3f"/>`+"\n",
		strings.TrimSpace(d.path.String()), hsvaToCSS(c), width)
	return nil
}

func (d *Doc) PathFill(c geom.HSVA) error {
	fmt.Fprintf(&d.body, `<path d="%s" fill="%s"/>`+"\n", strings.TrimSpace(d.path.String()), hsvaToCSS(c))
	return nil
}

func (d *Doc) PathTerm() error {
	return nil
}

func (d *Doc) Tick(generation, shapeCount int) error { return nil }

// WriteTo emits the complete SVG document.
func (d *Doc) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%d\" height=\"%d\" viewBox=\"0 0 %d %d\">\n%s</svg>\n",
		d.w, d.h, d.w, d.h, d.body.String())
	return int64(n), err
}
