package eval

import (
	"fmt"
	"math"
)

func pow(a, b float64) float64 { return math.Pow(a, b) }

const degToRad = math.Pi / 180
const radToDeg = 180 / math.Pi

// toRad/fromRad convert a trig function's argument/result between
// degrees and radians when the evaluator is running in degrees mode
// (the rotate/flip/skew adjustment keys evaluate their expressions this
// way).
func (o Options) toRad(v float64) float64 {
	if o.Degrees {
		return v * degToRad
	}
	return v
}

func (o Options) fromRad(v float64) float64 {
	if o.Degrees {
		return v * radToDeg
	}
	return v
}

// callFunc implements the evaluator's builtin function library. All
// functions other than rand_static take exactly the arity implied by
// their math counterpart; rand_static accepts a variable argument list
// that seeds a deterministic hash instead of drawing from the PRNG.
func callFunc(name string, args []Value, opt Options) (Value, error) {
	unary := func(f func(float64) float64) (Value, error) {
		if len(args) != 1 {
			return Value{}, fmt.Errorf("eval: %s takes exactly 1 argument, got %d", name, len(args))
		}
		return Real(f(args[0].Float())), nil
	}
	switch name {
	case "abs":
		if len(args) != 1 {
			return Value{}, fmt.Errorf("eval: abs takes exactly 1 argument, got %d", len(args))
		}
		if args[0].IsInt {
			v := args[0].I
			if v < 0 {
				v = -v
			}
			return Int(v), nil
		}
		return Real(math.Abs(args[0].R)), nil
	case "ceil":
		return unary(math.Ceil)
	case "floor":
		return unary(math.Floor)
	case "exp":
		return unary(math.Exp)
	case "log":
		return unary(math.Log)
	case "log10":
		return unary(math.Log10)
	case "sqrt":
		return unary(math.Sqrt)
	case "sin":
		return unary(func(v float64) float64 { return math.Sin(opt.toRad(v)) })
	case "cos":
		return unary(func(v float64) float64 { return math.Cos(opt.toRad(v)) })
	case "tan":
		return unary(func(v float64) float64 { return math.Tan(opt.toRad(v)) })
	case "sinh":
		return unary(math.Sinh)
	case "cosh":
		return unary(math.Cosh)
	case "tanh":
		return unary(math.Tanh)
	case "asin":
		return unary(func(v float64) float64 { return opt.fromRad(math.Asin(v)) })
	case "acos":
		return unary(func(v float64) float64 { return opt.fromRad(math.Acos(v)) })
	case "atan":
		return unary(func(v float64) float64 { return opt.fromRad(math.Atan(v)) })
	case "atan2":
		if len(args) != 2 {
			return Value{}, fmt.Errorf("eval: atan2 takes exactly 2 arguments, got %d", len(args))
		}
		return Real(opt.fromRad(math.Atan2(args[0].Float(), args[1].Float()))), nil
	case "pow":
		if len(args) != 2 {
			return Value{}, fmt.Errorf("eval: pow takes exactly 2 arguments, got %d", len(args))
		}
		return Real(pow(args[0].Float(), args[1].Float())), nil
	case "mod":
		if len(args) != 2 {
			return Value{}, fmt.Errorf("eval: mod takes exactly 2 arguments, got %d", len(args))
		}
		a, b := args[0], args[1]
		if a.IsInt && b.IsInt {
			if b.I == 0 {
				return Value{}, fmt.Errorf("eval: mod by zero")
			}
			return Int(a.I % b.I), nil
		}
		af, bf := a.Float(), b.Float()
		return Real(math.Mod(af, bf)), nil
	case "rand_static":
		v, err := randStatic(args)
		if err != nil {
			return Value{}, err
		}
		return Real(v), nil
	default:
		return Value{}, fmt.Errorf("eval: unknown function %q", name)
	}
}

// randStatic implements rand_static(), whose interval depends on its
// arity per CContextFreeEval.cpp's randStatic: no args draws from
// [0,1); one arg x draws from [0,x] (or [x,0] if x is negative); two
// args x,y draw from the interval between them in whichever order puts
// the low bound first. The draw itself is a hash of the argument bit
// patterns rather than a live PRNG, so the same arguments always yield
// the same value within one process.
func randStatic(args []Value) (float64, error) {
	if len(args) > 2 {
		return 0, fmt.Errorf("eval: rand_static takes at most 2 arguments, got %d", len(args))
	}
	var lo, hi float64
	switch len(args) {
	case 0:
		lo, hi = 0, 1
	case 1:
		x := args[0].Float()
		if x < 0 {
			lo, hi = x, 0
		} else {
			lo, hi = 0, x
		}
	case 2:
		x, y := args[0].Float(), args[1].Float()
		if y < x {
			lo, hi = y, x
		} else {
			lo, hi = x, y
		}
	}
	return lo + staticUnit(args)*(hi-lo), nil
}

// staticUnit hashes args' bit patterns into a deterministic, uniformly
// distributed fraction in [0,1).
func staticUnit(args []Value) float64 {
	var h uint64 = 1469598103934665603
	for _, a := range args {
		h ^= math.Float64bits(a.Float())
		h *= 1099511628211
	}
	return float64(h%1_000_000) / 1_000_000
}
