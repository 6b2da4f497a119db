package contextfree

import "github.com/colinw7/contextfree/geom"

// fakeBackend records every call it receives, for assertions in tests
// that exercise the expansion/render pipeline end to end without a
// real rasterizer or SVG writer.
type fakeBackend struct {
	w, h        int
	background  geom.HSVA
	squares     int
	circles     int
	triangles   int
	pathStarts  int
	pathFills   int
	pathStrokes int
	ticks       int
}

func (f *fakeBackend) Size() (int, int) { return f.w, f.h }

func (f *fakeBackend) FillBackground(c geom.HSVA) error { f.background = c; return nil }
func (f *fakeBackend) FillSquare(m geom.Matrix, c geom.HSVA) error { f.squares++; return nil }
func (f *fakeBackend) FillCircle(m geom.Matrix, c geom.HSVA) error { f.circles++; return nil }
func (f *fakeBackend) FillTriangle(m geom.Matrix, c geom.HSVA) error { f.triangles++; return nil }

func (f *fakeBackend) PathInit(m geom.Matrix) error { f.pathStarts++; return nil }
func (f *fakeBackend) PathMoveTo(x, y float64) error { return nil }
func (f *fakeBackend) PathLineTo(x, y float64) error { return nil }
func (f *fakeBackend) PathCurveTo(x1, y1, x2, y2, x, y float64) error { return nil }
func (f *fakeBackend) PathClose() error { return nil }
func (f *fakeBackend) PathStroke(c geom.HSVA, width float64) error { f.pathStrokes++; return nil }
func (f *fakeBackend) PathFill(c geom.HSVA) error { f.pathFills++; return nil }
func (f *fakeBackend) PathTerm() error { return nil }

func (f *fakeBackend) Tick(generation, shapeCount int) error { f.ticks++; return nil }
