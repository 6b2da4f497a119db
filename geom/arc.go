package geom

import "math"

// ArcToBezier converts an SVG-style elliptical arc (endpoint
// parameterization: start point, radii, x-axis rotation in degrees,
// large-arc and sweep flags, end point) into a sequence of cubic Bézier
// segments approximating it, following the standard SVG endpoint-to-
// center conversion.
func ArcToBezier(x1, y1, rx, ry, xAxisRotDeg float64, largeArc, sweep bool, x2, y2 float64) [][4][2]float64 {
	if rx == 0 || ry == 0 {
		return [][4][2]float64{{{x1, y1}, {x1, y1}, {x2, y2}, {x2, y2}}}
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	phi := xAxisRotDeg * math.Pi / 180
	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)

	dx2, dy2 := (x1-x2)/2, (y1-y2)/2
	x1p := cosPhi*dx2 + sinPhi*dy2
	y1p := -sinPhi*dx2 + cosPhi*dy2

	lambda := (x1p*x1p)/(rx*rx) + (y1p*y1p)/(ry*ry)
	if lambda > 1 {
		s := math.Sqrt(lambda)
		rx *= s
		ry *= s
	}

	sign := 1.0
	if largeArc == sweep {
		sign = -1
	}
	num := rx*rx*ry*ry - rx*rx*y1p*y1p - ry*ry*x1p*x1p
	den := rx*rx*y1p*y1p + ry*ry*x1p*x1p
	co := 0.0
	if den != 0 && num > 0 {
		co = sign * math.Sqrt(num/den)
	}
	cxp := co * (rx * y1p / ry)
	cyp := co * (-ry * x1p / rx)

	cx := cosPhi*cxp - sinPhi*cyp + (x1+x2)/2
	cy := sinPhi*cxp + cosPhi*cyp + (y1+y2)/2

	theta1 := vectorAngle(1, 0, (x1p-cxp)/rx, (y1p-cyp)/ry)
	dTheta := vectorAngle((x1p-cxp)/rx, (y1p-cyp)/ry, (-x1p-cxp)/rx, (-y1p-cyp)/ry)
	if !sweep && dTheta > 0 {
		dTheta -= 2 * math.Pi
	} else if sweep && dTheta < 0 {
		dTheta += 2 * math.Pi
	}

	numSegs := int(math.Ceil(math.Abs(dTheta) / (math.Pi / 2)))
	if numSegs < 1 {
		numSegs = 1
	}
	segTheta := dTheta / float64(numSegs)
	t := 4.0 / 3.0 * math.Tan(segTheta/4)

	segs := make([][4][2]float64, 0, numSegs)
	for i := 0; i < numSegs; i++ {
		a1 := theta1 + float64(i)*segTheta
		a2 := theta1 + float64(i+1)*segTheta

		sa1, ca1 := math.Sin(a1), math.Cos(a1)
		sa2, ca2 := math.Sin(a2), math.Cos(a2)

		p0 := ellipsePoint(cx, cy, rx, ry, cosPhi, sinPhi, ca1, sa1)
		p3 := ellipsePoint(cx, cy, rx, ry, cosPhi, sinPhi, ca2, sa2)

		d1x, d1y := ellipseTangent(rx, ry, cosPhi, sinPhi, ca1, sa1)
		d2x, d2y := ellipseTangent(rx, ry, cosPhi, sinPhi, ca2, sa2)

		p1 := [2]float64{p0[0] + t*d1x, p0[1] + t*d1y}
		p2 := [2]float64{p3[0] - t*d2x, p3[1] - t*d2y}

		segs = append(segs, [4][2]float64{p0, p1, p2, p3})
	}
	return segs
}

func ellipsePoint(cx, cy, rx, ry, cosPhi, sinPhi, cosT, sinT float64) [2]float64 {
	x := rx * cosT
	y := ry * sinT
	return [2]float64{cx + cosPhi*x - sinPhi*y, cy + sinPhi*x + cosPhi*y}
}

func ellipseTangent(rx, ry, cosPhi, sinPhi, cosT, sinT float64) (float64, float64) {
	dx := -rx * sinT
	dy := ry * cosT
	return cosPhi*dx - sinPhi*dy, sinPhi*dx + cosPhi*dy
}

func vectorAngle(ux, uy, vx, vy float64) float64 {
	dot := ux*vx + uy*vy
	lenProd := math.Hypot(ux, uy) * math.Hypot(vx, vy)
	c := dot / lenProd
	c = math.Min(1, math.Max(-1, c))
	ang := math.Acos(c)
	if ux*vy-uy*vx < 0 {
		ang = -ang
	}
	return ang
}
