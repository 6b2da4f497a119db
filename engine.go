package contextfree

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/colinw7/contextfree/geom"
)

// Engine expands a parsed Program into shapes and paths via a
// breadth-first rewrite of the grammar: all pending invocations at one
// nesting depth are processed before any at the next, matching the
// original's two-frontier ruleStack_/zRuleStack_ swap. This keeps the
// live preview backend's Tick callback meaningful (it fires once per
// generation, showing the whole drawing thickening uniformly rather
// than one deeply recursive branch running ahead of the rest).
type Engine struct {
	Prog     *Program
	MaxShapes int
	MinSize   float64
	PixelSize float64
	Rand      *rand.Rand

	Shapes []Shape
	Paths  []PathRun
	Errors []error

	shapeCount int
}

// NewEngine creates an engine with the grammar's defaults: a 500000
// shape cap and a 0.3 minimum relative size, matching
// CContextFree's max_shapes_/min_size_ defaults. Seed 0 seeds from the
// wall clock; pass a specific seed for deterministic test runs.
func NewEngine(prog *Program, seed int64) *Engine {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		Prog:      prog,
		MaxShapes: 500000,
		MinSize:   0.3,
		PixelSize: 1.0,
		Rand:      rand.New(rand.NewSource(seed)),
	}
}

type pendingItem struct {
	Name  string
	State State
}

// Expand runs the grammar to completion (or until ctx is cancelled, the
// shape cap is hit, or the BFS frontier goes empty). tick, if non-nil,
// is called once per generation with the running shape count.
func (e *Engine) Expand(ctx context.Context, tick func(generation, shapeCount int) error) error {
	start := State{M: geom.Identity(), Fill: geom.HSVA{A: 1}}
	if len(e.Prog.StartArgs) == 2 {
		start.M = geom.Scale(e.Prog.StartArgs[0], e.Prog.StartArgs[1])
	}
	cur := []pendingItem{{Name: e.Prog.StartShape, State: start}}
	generation := 0
	for len(cur) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		var next []pendingItem
		for _, item := range cur {
			if e.shapeCount >= e.MaxShapes {
				break
			}
			if err := e.step(item, &next); err != nil {
				e.Errors = append(e.Errors, err)
			}
		}
		generation++
		if tick != nil {
			if err := tick(generation, e.shapeCount); err != nil {
				return err
			}
		}
		if e.shapeCount >= e.MaxShapes {
			break
		}
		cur = next
	}
	return nil
}

// checkSizeLimit reports whether state's effective scale is still
// above the minimum renderable size, mirroring CContextFree's
// checkSizeLimit gate (size / pixel_size < min_size culls the branch).
func (e *Engine) checkSizeLimit(s State) bool {
	px := e.PixelSize
	if px <= 0 {
		px = 1
	}
	return s.Size()/px >= e.MinSize
}

func (e *Engine) step(item pendingItem, next *[]pendingItem) error {
	rules, ok := e.Prog.Rules[item.Name]
	if !ok || len(rules) == 0 {
		return fmt.Errorf("reference to undefined rule %q", item.Name)
	}
	switch rules[0].Kind {
	case RuleSquare, RuleCircle, RuleTriangle:
		if !e.checkSizeLimit(item.State) {
			return nil
		}
		e.Shapes = append(e.Shapes, Shape{Kind: rules[0].Kind, M: item.State.M, Color: item.State.Fill, Z: item.State.Z})
		e.shapeCount++
		return nil
	case RulePath:
		if !e.checkSizeLimit(item.State) {
			return nil
		}
		run, err := BuildPath(rules[0].Path, item.State)
		if err != nil {
			return err
		}
		e.Paths = append(e.Paths, *run)
		e.shapeCount++
		return nil
	default:
		rule := e.selectRule(rules)
		return e.expandActions(rule.Actions, item.State, next)
	}
}

// selectRule performs weighted roulette selection among same-named
// rule alternatives. It preserves the original's boundary-bias bug: a
// random draw landing exactly on a bucket edge matches whichever
// bucket's comparison it satisfies first rather than exactly one, very
// slightly favoring adjacent buckets over the true proportional split.
func (e *Engine) selectRule(rules []*Rule) *Rule {
	if len(rules) == 1 {
		return rules[0]
	}
	total := 0.0
	for _, r := range rules {
		total += r.Weight
	}
	if total <= 0 {
		return rules[len(rules)-1]
	}
	r := e.Rand.Float64() * total
	t1 := 0.0
	for _, rule := range rules {
		t2 := t1 + rule.Weight
		if r < t1 || r > t2 {
			t1 = t2
			continue
		}
		return rule
	}
	return rules[len(rules)-1]
}

func (e *Engine) expandActions(actions []Action, state State, next *[]pendingItem) error {
	for _, act := range actions {
		switch a := act.(type) {
		case SimpleAction:
			child := state.Apply(a.Adj)
			if !e.checkSizeLimit(child) {
				continue
			}
			*next = append(*next, pendingItem{Name: a.Name, State: child})
		case LoopAction:
			// Each iteration advances loopState by LoopAdj, then invokes
			// Name with Adj nested inside that advanced state
			// (CContextFree.cpp's LoopAction).
			loopState := state
			for i := 0; i < a.Count; i++ {
				if a.LoopAdj != nil {
					loopState = loopState.Apply(a.LoopAdj)
				}
				if !e.checkSizeLimit(loopState) {
					break
				}
				child := loopState.Apply(a.Adj)
				if e.checkSizeLimit(child) {
					*next = append(*next, pendingItem{Name: a.Name, State: child})
				}
			}
		case ComplexLoopAction:
			// Each iteration advances loopState by LoopAdj, then
			// re-expands the single Inner action there
			// (CContextFree.cpp's ComplexLoopAction).
			loopState := state
			for i := 0; i < a.Count; i++ {
				if a.LoopAdj != nil {
					loopState = loopState.Apply(a.LoopAdj)
				}
				if !e.checkSizeLimit(loopState) {
					break
				}
				if err := e.expandActions([]Action{a.Inner}, loopState, next); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("engine: unhandled action %T", act)
		}
	}
	return nil
}
