// Package raster implements a software rasterizer back-end: it fills
// squares, circles, triangles and arbitrary flattened paths directly
// into an in-memory image.NRGBA buffer, antialiasing polygon edges
// with golang.org/x/image/vector, and can encode that buffer as a
// PNG. It is also reused, unmodified, as the pixel source behind the
// live gio preview window, so both consumers share one rasterization
// path.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/colinw7/contextfree/geom"
	"golang.org/x/image/vector"
)

// Canvas is a fixed-size NRGBA target implementing contextfree.Backend.
type Canvas struct {
	Img       *image.NRGBA
	w, h      int
	cur       *pathState
	AntiAlias bool
}

// New creates a Canvas of the given pixel dimensions with antialiasing
// enabled.
func New(w, h int) *Canvas {
	return &Canvas{Img: image.NewNRGBA(image.Rect(0, 0, w, h)), w: w, h: h, AntiAlias: true}
}

func (c *Canvas) Size() (int, int) { return c.w, c.h }

// hsvaToNRGBA converts the grammar's HSVA color into a pixel color.
// Uses the standard HSV-to-RGB hexagon conversion; alpha is applied by
// the caller at blend time, not baked in here.
func hsvaToNRGBA(col geom.HSVA) color.NRGBA {
	h := geom.NormalizeHue(col.H) / 60
	s := clamp01(col.S)
	v := clamp01(col.V)
	i := int(math.Floor(h))
	f := h - float64(i)
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return color.NRGBA{
		R: uint8(clamp01(r) * 255),
		G: uint8(clamp01(g) * 255),
		B: uint8(clamp01(b) * 255),
		A: uint8(clamp01(col.A) * 255),
	}
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

func (c *Canvas) FillBackground(col geom.HSVA) error {
	draw.Draw(c.Img, c.Img.Bounds(), &image.Uniform{C: hsvaToNRGBA(col)}, image.Point{}, draw.Src)
	return nil
}

// toDevice maps a unit-square model point through m and then into
// device pixel space, centering the origin on the canvas and flipping
// Y (model space is Y-up, image space is Y-down).
func (c *Canvas) toDevice(m geom.Matrix, x, y float64) (float64, float64) {
	dx, dy := m.Apply(x, y)
	cx := float64(c.w)/2 + dx*float64(c.w)/4
	cy := float64(c.h)/2 - dy*float64(c.h)/4
	return cx, cy
}

func (c *Canvas) FillSquare(m geom.Matrix, col geom.HSVA) error {
	pts := [][2]float64{{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}}
	return c.fillPolygon(devicePolygon(c, m, pts), hsvaToNRGBA(col))
}

func (c *Canvas) FillTriangle(m geom.Matrix, col geom.HSVA) error {
	// Matches CContextFree's TriangleRule primitive: an equilateral
	// triangle of side 1 centered on the origin, vertex up.
	pts := [][2]float64{{0, 1 / math.Sqrt(3)}, {-0.5, -0.5 / math.Sqrt(3)}, {0.5, -0.5 / math.Sqrt(3)}}
	return c.fillPolygon(devicePolygon(c, m, pts), hsvaToNRGBA(col))
}

func (c *Canvas) FillCircle(m geom.Matrix, col geom.HSVA) error {
	const segs = 48
	pts := make([][2]float64, segs)
	for i := 0; i < segs; i++ {
		a := 2 * math.Pi * float64(i) / segs
		pts[i] = [2]float64{0.5 * math.Cos(a), 0.5 * math.Sin(a)}
	}
	return c.fillPolygon(devicePolygon(c, m, pts), hsvaToNRGBA(col))
}

func devicePolygon(c *Canvas, m geom.Matrix, pts [][2]float64) [][2]float64 {
	out := make([][2]float64, len(pts))
	for i, p := range pts {
		x, y := c.toDevice(m, p[0], p[1])
		out[i] = [2]float64{x, y}
	}
	return out
}

// fillPolygon rasterizes a closed polygon, antialiasing its edges with
// an x/image/vector rasterizer when AntiAlias is set, otherwise
// falling back to a plain scanline even-odd fill.
func (c *Canvas) fillPolygon(pts [][2]float64, col color.NRGBA) error {
	if len(pts) < 3 {
		return nil
	}
	if c.AntiAlias {
		return c.fillPolygonAA(pts, col)
	}
	return c.fillPolygonScanline(pts, col)
}

// fillPolygonAA uses golang.org/x/image/vector to build an antialiased
// coverage mask for pts and composite col through it.
func (c *Canvas) fillPolygonAA(pts [][2]float64, col color.NRGBA) error {
	z := vector.NewRasterizer(c.w, c.h)
	z.MoveTo(float32(pts[0][0]), float32(pts[0][1]))
	for _, p := range pts[1:] {
		z.LineTo(float32(p[0]), float32(p[1]))
	}
	z.ClosePath()
	z.Draw(c.Img, c.Img.Bounds(), &image.Uniform{C: col}, image.Point{})
	return nil
}

func (c *Canvas) fillPolygonScanline(pts [][2]float64, col color.NRGBA) error {
	minY, maxY := pts[0][1], pts[0][1]
	for _, p := range pts {
		minY = math.Min(minY, p[1])
		maxY = math.Max(maxY, p[1])
	}
	y0 := int(math.Max(0, math.Floor(minY)))
	y1 := int(math.Min(float64(c.h-1), math.Ceil(maxY)))
	for y := y0; y <= y1; y++ {
		fy := float64(y) + 0.5
		var xs []float64
		n := len(pts)
		for i := 0; i < n; i++ {
			a, b := pts[i], pts[(i+1)%n]
			if (a[1] <= fy && b[1] > fy) || (b[1] <= fy && a[1] > fy) {
				t := (fy - a[1]) / (b[1] - a[1])
				xs = append(xs, a[0]+t*(b[0]-a[0]))
			}
		}
		if len(xs) < 2 {
			continue
		}
		sortFloats(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			blendSpan(c.Img, y, xs[i], xs[i+1], col)
		}
	}
	return nil
}

func sortFloats(xs []float64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

func blendSpan(img *image.NRGBA, y int, x0, x1 float64, col color.NRGBA) {
	start := int(math.Round(x0))
	end := int(math.Round(x1))
	if start < 0 {
		start = 0
	}
	if end > img.Bounds().Dx() {
		end = img.Bounds().Dx()
	}
	for x := start; x < end; x++ {
		blendPixel(img, x, y, col)
	}
}

func blendPixel(img *image.NRGBA, x, y int, col color.NRGBA) {
	if x < img.Bounds().Min.X || x >= img.Bounds().Max.X || y < img.Bounds().Min.Y || y >= img.Bounds().Max.Y {
		return
	}
	if col.A == 255 {
		img.SetNRGBA(x, y, col)
		return
	}
	bg := img.NRGBAAt(x, y)
	a := float64(col.A) / 255
	blend := func(s, d uint8) uint8 {
		return uint8(float64(s)*a + float64(d)*(1-a))
	}
	img.SetNRGBA(x, y, color.NRGBA{
		R: blend(col.R, bg.R), G: blend(col.G, bg.G), B: blend(col.B, bg.B),
		A: uint8(math.Min(255, float64(col.A)+float64(bg.A)*(1-a))),
	})
}

type pathState struct {
	m          geom.Matrix
	pts        [][2]float64
	curX, curY float64
}

func (c *Canvas) PathInit(m geom.Matrix) error {
	c.cur = &pathState{m: m}
	return nil
}

func (c *Canvas) PathMoveTo(x, y float64) error {
	dx, dy := c.toDevice(c.cur.m, x, y)
	c.cur.pts = append(c.cur.pts, [2]float64{dx, dy})
	c.cur.curX, c.cur.curY = x, y
	return nil
}

func (c *Canvas) PathLineTo(x, y float64) error {
	dx, dy := c.toDevice(c.cur.m, x, y)
	c.cur.pts = append(c.cur.pts, [2]float64{dx, dy})
	c.cur.curX, c.cur.curY = x, y
	return nil
}

// PathCurveTo flattens the cubic Bézier into line segments for the
// scanline filler, which only understands polygons.
func (c *Canvas) PathCurveTo(x1, y1, x2, y2, x, y float64) error {
	const steps = 16
	x0, y0 := c.cur.curX, c.cur.curY
	for i := 1; i <= steps; i++ {
		t := float64(i) / steps
		mt := 1 - t
		bx := mt*mt*mt*x0 + 3*mt*mt*t*x1 + 3*mt*t*t*x2 + t*t*t*x
		by := mt*mt*mt*y0 + 3*mt*mt*t*y1 + 3*mt*t*t*y2 + t*t*t*y
		dx, dy := c.toDevice(c.cur.m, bx, by)
		c.cur.pts = append(c.cur.pts, [2]float64{dx, dy})
	}
	c.cur.curX, c.cur.curY = x, y
	return nil
}

func (c *Canvas) PathClose() error { return nil }

func (c *Canvas) PathStroke(col geom.HSVA, width float64) error {
	pts := c.cur.pts
	nc := hsvaToNRGBA(col)
	for i := 0; i+1 < len(pts); i++ {
		strokeLine(c.Img, pts[i], pts[i+1], nc, width)
	}
	return nil
}

func (c *Canvas) PathFill(col geom.HSVA) error {
	return c.fillPolygon(c.cur.pts, hsvaToNRGBA(col))
}

func (c *Canvas) PathTerm() error {
	c.cur = nil
	return nil
}

func (c *Canvas) Tick(generation, shapeCount int) error { return nil }

// Snapshot returns a deep copy of the current pixel buffer, safe to
// hand to another goroutine (a live preview window, for instance)
// while rendering keeps mutating c.Img.
func (c *Canvas) Snapshot() *image.NRGBA {
	cp := image.NewNRGBA(c.Img.Bounds())
	copy(cp.Pix, c.Img.Pix)
	return cp
}

func strokeLine(img *image.NRGBA, a, b [2]float64, col color.NRGBA, width float64) {
	steps := int(math.Hypot(b[0]-a[0], b[1]-a[1])) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := a[0] + t*(b[0]-a[0])
		y := a[1] + t*(b[1]-a[1])
		blendPixel(img, int(x), int(y), col)
	}
}

// EncodePNG writes the canvas out as a PNG image.
func (c *Canvas) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, c.Img); err != nil {
		return fmt.Errorf("raster: encode png: %w", err)
	}
	return nil
}
