// Package eval implements the arithmetic expression language embedded in
// adjustment values and path parameters: a small operator-precedence
// evaluator over integers and reals, with the same function library,
// int/real promotion rules and degrees-mode conversion as the original
// CContextFreeEval.
package eval

import "fmt"

// Value is either an integer or a real; most operators follow C-style
// promotion (int op int stays int unless the operator forces real,
// e.g. '^' on two ints promotes to real via pow).
type Value struct {
	IsInt bool
	I     int64
	R     float64
}

// Int returns an integer value.
func Int(i int64) Value { return Value{IsInt: true, I: i} }

// Real returns a real value.
func Real(r float64) Value { return Value{R: r} }

// Float returns the value widened to float64 regardless of its tag.
func (v Value) Float() float64 {
	if v.IsInt {
		return float64(v.I)
	}
	return v.R
}

// Bool reports whether the value is non-zero, the convention the
// grammar's boolean operators (&&, ||, comparisons) use for both their
// operands and their results (1/0 ints).
func (v Value) Bool() bool {
	return v.Float() != 0
}

func boolValue(b bool) Value {
	if b {
		return Int(1)
	}
	return Int(0)
}

func (v Value) String() string {
	if v.IsInt {
		return fmt.Sprintf("%d", v.I)
	}
	return fmt.Sprintf("%g", v.R)
}
