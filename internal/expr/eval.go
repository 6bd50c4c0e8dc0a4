package expr

import (
	"fmt"
	"math"
)

// Scope is everything an expression can observe.
type Scope struct {
	Rank   float64
	Rand   func() float64
	Params []float64
}

// Eval evaluates e in s. $rand calls s.Rand once per occurrence; a nil Rand
// evaluates to 0.
func Eval(e Expr, s Scope) (float64, error) {
	switch n := e.(type) {
	case Const:
		return n.Value, nil
	case Rank:
		return s.Rank, nil
	case Rand:
		if s.Rand == nil {
			return 0, nil
		}
		return s.Rand(), nil
	case Param:
		if n.Index < 1 || n.Index > len(s.Params) {
			return 0, &EvalError{
				Code: ErrParamOutOfRange,
				Expr: n.String(),
				Msg:  fmt.Sprintf("%d parameter(s) bound", len(s.Params)),
			}
		}
		return s.Params[n.Index-1], nil
	case *Unary:
		x, err := Eval(n.X, s)
		if err != nil {
			return 0, err
		}
		if n.Op == OpSub {
			return -x, nil
		}
		return x, nil
	case *Binary:
		x, err := Eval(n.X, s)
		if err != nil {
			return 0, err
		}
		y, err := Eval(n.Y, s)
		if err != nil {
			return 0, err
		}
		return apply(n, x, y)
	case nil:
		return 0, fmt.Errorf("eval: nil expression")
	default:
		return 0, fmt.Errorf("eval: unsupported node %T", e)
	}
}

func apply(n *Binary, x, y float64) (float64, error) {
	switch n.Op {
	case OpAdd:
		return x + y, nil
	case OpSub:
		return x - y, nil
	case OpMul:
		return x * y, nil
	case OpDiv:
		if y == 0 {
			return 0, &EvalError{Code: ErrDivisionByZero, Expr: n.String(), Msg: "division by zero"}
		}
		return x / y, nil
	case OpMod:
		if y == 0 {
			return 0, &EvalError{Code: ErrDivisionByZero, Expr: n.String(), Msg: "modulo by zero"}
		}
		return math.Mod(x, y), nil
	default:
		return 0, fmt.Errorf("eval: unknown operator %q", n.Op)
	}
}
