package runner

import (
	"fmt"
	"math"

	"github.com/roach88/bulletml/internal/expr"
)

func (r *Runner) scope(params []float64) expr.Scope {
	return expr.Scope{Rank: r.rank, Rand: r.host.Rand, Params: params}
}

func (r *Runner) eval(f *frame, e expr.Expr) (float64, error) {
	return r.evalIn(f.label, f.params, e)
}

func (r *Runner) evalIn(label string, params []float64, e expr.Expr) (float64, error) {
	v, err := expr.Eval(e, r.scope(params))
	if err != nil {
		return 0, &RuntimeError{
			Code:    ErrExpression,
			Message: fmt.Sprintf("evaluating %s: %v", e, err),
			Label:   label,
			Err:     err,
		}
	}
	return v, nil
}

// evalInt evaluates e and truncates toward zero. NaN and negative values
// become 0; huge values saturate.
func (r *Runner) evalInt(f *frame, e expr.Expr) (int, error) {
	v, err := r.eval(f, e)
	if err != nil {
		return 0, err
	}
	return truncate(v), nil
}

func truncate(v float64) int {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	}
	return int(v)
}
