package contextfree

import "github.com/colinw7/contextfree/geom"

// State is the running transform/color context threaded through
// expansion: every SimpleAction/LoopAction nests a fresh copy of its
// parent's State, composes its Adjustment into it, and passes the
// result down to the rule or primitive it names.
type State struct {
	M       geom.Matrix
	Z       float64
	Fill    geom.HSVA
	Line    geom.HSVA
	HasLine bool
	Depth   int
}

// Apply returns a copy of s with adj's transform and color deltas
// composed in. The transform nests (s.M.Mul(adj.Matrix)) so a child's
// adjustment is expressed in the parent's coordinate space; color
// deltas are applied through the same geom.AdjustChannel/geom.AdjustHue algebra
// the original grammar uses for every color key.
func (s State) Apply(adj *Adjustment) State {
	out := s
	if adj == nil {
		return out
	}
	out.M = s.M.Mul(adj.Matrix)
	if adj.HasZ {
		out.Z = s.Z + adj.Z
	}
	out.Fill = applyColorAdjustment(s.Fill, adj, false)
	if adj.HasLineHue || adj.HasLineSaturation || adj.HasLineBrightness || adj.HasLineAlpha {
		out.HasLine = true
		base := s.Line
		if !s.HasLine {
			base = s.Fill
		}
		out.Line = applyColorAdjustment(base, adj, true)
	} else if s.HasLine {
		out.Line = s.Line
		out.HasLine = true
	}
	return out
}

func applyColorAdjustment(base geom.HSVA, adj *Adjustment, line bool) geom.HSVA {
	out := base
	if !line {
		if adj.HasHue {
			out.H = geom.AdjustHue(base.H, adj.Hue, adj.HueTarget, adj.HueUseTarget)
		}
		if adj.HasSaturation {
			out.S = geom.AdjustChannel(base.S, adj.Saturation, adj.SatTarget, adj.SatUseTarget)
		}
		if adj.HasBrightness {
			out.V = geom.AdjustChannel(base.V, adj.Brightness, adj.BrightTarget, adj.BrightUseTarget)
		}
		if adj.HasAlpha {
			out.A = geom.AdjustChannel(base.A, adj.Alpha, adj.AlphaTarget, adj.AlphaUseTarget)
		}
		return out
	}
	if adj.HasLineHue {
		out.H = geom.AdjustHue(base.H, adj.LineHue, 0, false)
	}
	if adj.HasLineSaturation {
		out.S = geom.AdjustChannel(base.S, adj.LineSaturation, 0, false)
	}
	if adj.HasLineBrightness {
		out.V = geom.AdjustChannel(base.V, adj.LineBrightness, 0, false)
	}
	if adj.HasLineAlpha {
		out.A = geom.AdjustChannel(base.A, adj.LineAlpha, 0, false)
	}
	return out
}

// Size returns the state's effective scale, used against MinSize to
// decide whether a shape is too small to render or expand further.
func (s State) Size() float64 {
	sx, sy := s.M.Size()
	if sx > sy {
		return sx
	}
	return sy
}
