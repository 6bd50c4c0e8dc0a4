package expr

import (
	"errors"
	"fmt"
)

// SyntaxError reports malformed expression text.
type SyntaxError struct {
	Src    string
	Offset int // byte offset into Src
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("expression %q: offset %d: %s", e.Src, e.Offset, e.Msg)
}

// Evaluation error codes.
const (
	ErrDivisionByZero  = "DIVISION_BY_ZERO"
	ErrParamOutOfRange = "PARAM_OUT_OF_RANGE"
)

// EvalError is returned by Eval when an expression cannot produce a number.
type EvalError struct {
	Code string
	Expr string
	Msg  string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Expr, e.Msg)
}

// IsDivisionByZero returns true if err is an EvalError for a zero divisor.
func IsDivisionByZero(err error) bool {
	var ee *EvalError
	return errors.As(err, &ee) && ee.Code == ErrDivisionByZero
}

// IsParamOutOfRange returns true if err is an EvalError for a missing $N.
func IsParamOutOfRange(err error) bool {
	var ee *EvalError
	return errors.As(err, &ee) && ee.Code == ErrParamOutOfRange
}
