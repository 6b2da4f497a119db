// Package geom provides the affine transform and HSVA color algebra
// threaded through grammar expansion (adjustment matrices, tile
// matrices, bounding boxes).
package geom

import "math"

// Matrix is a 2x3 affine transform:
//
//	| A  C  Tx |
//	| B  D  Ty |
//
// applied to a point (x, y) as:
//
//	x' = A*x + C*y + Tx
//	y' = B*x + D*y + Ty
type Matrix struct {
	A, B, C, D, Tx, Ty float64
}

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

// Translate returns a pure translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{A: 1, D: 1, Tx: x, Ty: y}
}

// Scale returns a pure scale matrix.
func Scale(sx, sy float64) Matrix {
	return Matrix{A: sx, D: sy}
}

// Rotate returns a rotation matrix for an angle in radians.
func Rotate(radians float64) Matrix {
	s, c := math.Sin(radians), math.Cos(radians)
	return Matrix{A: c, B: s, C: -s, D: c}
}

// Skew shears by the tangent of each angle (radians).
func Skew(rx, ry float64) Matrix {
	return Matrix{A: 1, D: 1, B: math.Tan(ry), C: math.Tan(rx)}
}

// Reflect mirrors about the line through the origin at angle radians.
func Reflect(radians float64) Matrix {
	a2 := 2 * radians
	return Matrix{A: math.Cos(a2), B: math.Sin(a2), C: math.Sin(a2), D: -math.Cos(a2)}
}

// Mul right-multiplies m by o: the returned matrix applies o to a point
// first and then m, i.e. result.Apply(p) == m.Apply(o.Apply(p)). This is
// the convention State.Apply uses to nest a child adjustment inside its
// parent's accumulated transform (out.M = s.M.Mul(adj.Matrix)), and
// that compose-mode blocks use to fold keys in as they are written
// (adj.m = adj.m.Mul(keyMatrix)) so a later key ends up applied closer
// to the point.
func (m Matrix) Mul(o Matrix) Matrix {
	return Matrix{
		A:  m.A*o.A + m.C*o.B,
		B:  m.B*o.A + m.D*o.B,
		C:  m.A*o.C + m.C*o.D,
		D:  m.B*o.C + m.D*o.D,
		Tx: m.A*o.Tx + m.C*o.Ty + m.Tx,
		Ty: m.B*o.Tx + m.D*o.Ty + m.Ty,
	}
}

// Apply transforms a point by the matrix.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.Tx, m.B*x + m.D*y + m.Ty
}

// Size returns the magnitude of the matrix's two basis vectors, used by
// the engine's size-limit gate (max(|sx|,|sy|)/pixel_size < min_size).
func (m Matrix) Size() (sx, sy float64) {
	sx = math.Hypot(m.A, m.B)
	sy = math.Hypot(m.C, m.D)
	return sx, sy
}
