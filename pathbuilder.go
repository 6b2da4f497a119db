package contextfree

import (
	"fmt"

	"github.com/colinw7/contextfree/eval"
	"github.com/colinw7/contextfree/geom"
)

// pathBuilder accumulates the flattened command stream for one path
// invocation: current point tracking (with a "set" flag so the first
// command may be a lineto, which the original treats as an implicit
// moveto), a start point for close, and whether any explicit
// stroke/fill was requested.
type pathBuilder struct {
	cmds          []PathCmd
	curX, curY    float64
	startX, startY float64
	haveCur       bool
	fillRun       *PathRun
	state         State
}

// BuildPath expands spec into a PathRun under the given state. Loops
// are unrolled directly (path loops require a literal count). A stroke
// or fill part only sets the run's paint (color, and width for a
// stroke); that paint applies to the whole command list, including
// commands that come after the part, and a later STROKE or FILL
// replaces the paint of an earlier one.
func BuildPath(spec *PathSpec, state State) (*PathRun, error) {
	pb := &pathBuilder{state: state}
	run := &PathRun{Z: state.Z}
	if err := pb.walk(spec.Parts, state, run); err != nil {
		return nil, err
	}
	run.Cmds = pb.cmds
	if !run.HasFill && !run.HasLine {
		run.Fill = state.Fill
		run.HasFill = true
	}
	return run, nil
}

func (pb *pathBuilder) walk(parts []PathPart, state State, run *PathRun) error {
	for _, part := range parts {
		switch p := part.(type) {
		case MoveToPart:
			x, y, err := pb.evalXY(p.X, p.Y)
			if err != nil {
				return err
			}
			x, y = state.M.Apply(x, y)
			pb.cmds = append(pb.cmds, PathCmd{Op: OpMoveTo, X: x, Y: y})
			pb.curX, pb.curY, pb.startX, pb.startY, pb.haveCur = x, y, x, y, true
		case LineToPart:
			x, y, err := pb.evalXY(p.X, p.Y)
			if err != nil {
				return err
			}
			x, y = state.M.Apply(x, y)
			if !pb.haveCur {
				pb.cmds = append(pb.cmds, PathCmd{Op: OpMoveTo, X: x, Y: y})
				pb.startX, pb.startY = x, y
			} else {
				pb.cmds = append(pb.cmds, PathCmd{Op: OpLineTo, X: x, Y: y})
			}
			pb.curX, pb.curY, pb.haveCur = x, y, true
		case CurveToPart:
			x1, y1, err := pb.evalXY(p.X1, p.Y1)
			if err != nil {
				return err
			}
			x, y, err := pb.evalXY(p.X, p.Y)
			if err != nil {
				return err
			}
			x1, y1 = state.M.Apply(x1, y1)
			x, y = state.M.Apply(x, y)
			var x2, y2 float64
			if p.HasX2 {
				x2, y2, err = pb.evalXY(p.X2, p.Y2)
				if err != nil {
					return err
				}
				x2, y2 = state.M.Apply(x2, y2)
			} else {
				// Elevate the quadratic (cur)-(x1,y1)-(x,y) control point
				// to the equivalent cubic's pair of controls.
				x2, y2 = x+2.0/3.0*(x1-x), y+2.0/3.0*(y1-y)
				x1, y1 = pb.curX+2.0/3.0*(x1-pb.curX), pb.curY+2.0/3.0*(y1-pb.curY)
			}
			pb.cmds = append(pb.cmds, PathCmd{Op: OpCurveTo, CX1: x1, CY1: y1, CX2: x2, CY2: y2, X: x, Y: y})
			pb.curX, pb.curY, pb.haveCur = x, y, true
		case ArcToPart:
			if err := pb.arcTo(p, state); err != nil {
				return err
			}
		case ClosePart:
			pb.cmds = append(pb.cmds, PathCmd{Op: OpClose})
			pb.curX, pb.curY = pb.startX, pb.startY
		case StrokePart:
			st := state
			if p.Adj != nil {
				st = state.Apply(p.Adj)
			}
			w, err := pb.evalOne(orZero(p.Width))
			if err != nil {
				return err
			}
			run.Line = lineColorOf(st)
			run.LineWidth = w
			run.HasLine = true
		case FillPart:
			st := state
			if p.Adj != nil {
				st = state.Apply(p.Adj)
			}
			run.Fill = st.Fill
			run.HasFill = true
		case LoopPathPart:
			for i := 0; i < p.Count; i++ {
				if p.Adj != nil {
					state = state.Apply(p.Adj)
				}
				if err := pb.walk([]PathPart{p.Inner}, state, run); err != nil {
					return err
				}
			}
		case LoopPathPartList:
			for i := 0; i < p.Count; i++ {
				if p.Adj != nil {
					state = state.Apply(p.Adj)
				}
				if err := pb.walk(p.Parts, state, run); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("pathbuilder: unhandled path part %T", part)
		}
	}
	return nil
}

func lineColorOf(s State) geom.HSVA {
	if s.HasLine {
		return s.Line
	}
	return s.Fill
}

func (pb *pathBuilder) arcTo(p ArcToPart, state State) error {
	x1, y1 := pb.curX, pb.curY
	x2, y2, err := pb.evalXY(p.X, p.Y)
	if err != nil {
		return err
	}
	x2, y2 = state.M.Apply(x2, y2)
	rx, ry, err := pb.evalXY(p.Rx, p.Ry)
	if err != nil {
		return err
	}
	rot, err := pb.evalOne(p.XRot)
	if err != nil {
		return err
	}
	sx, sy := state.M.Size()
	rx *= sx
	ry *= sy
	segs := geom.ArcToBezier(x1, y1, rx, ry, rot, p.LargeArc, p.Sweep, x2, y2)
	for _, seg := range segs {
		pb.cmds = append(pb.cmds, PathCmd{
			Op:  OpCurveTo,
			CX1: seg[1][0], CY1: seg[1][1],
			CX2: seg[2][0], CY2: seg[2][1],
			X: seg[3][0], Y: seg[3][1],
		})
	}
	pb.curX, pb.curY, pb.haveCur = x2, y2, true
	return nil
}

func (pb *pathBuilder) evalXY(xs, ys string) (float64, float64, error) {
	x, err := pb.evalOne(xs)
	if err != nil {
		return 0, 0, err
	}
	y, err := pb.evalOne(ys)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func (pb *pathBuilder) evalOne(s string) (float64, error) {
	v, err := eval.Eval(s, eval.Options{ForceReal: true})
	if err != nil {
		return 0, fmt.Errorf("pathbuilder: %w", err)
	}
	return v.Float(), nil
}
