package runner

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes runtime errors.
type ErrorCode string

const (
	// ErrUndefinedReference: a ref names a label absent from the table.
	ErrUndefinedReference ErrorCode = "UNDEFINED_REFERENCE"

	// ErrExpression: division by zero or an out-of-range $N.
	ErrExpression ErrorCode = "EXPRESSION"

	// ErrInvalidParameter: a ref passes fewer params than the callee uses,
	// or more when strict params are enabled.
	ErrInvalidParameter ErrorCode = "INVALID_PARAMETER"

	// ErrStepQuota: one Step dispatched more commands than the quota allows.
	ErrStepQuota ErrorCode = "STEP_QUOTA_EXCEEDED"
)

// RuntimeError is returned by Step when a command cannot execute. The
// runner that produced it has already vanished.
type RuntimeError struct {
	Code    ErrorCode
	Message string

	// Label is the definition being executed, empty for anonymous actions.
	Label string

	Err error
}

func (e *RuntimeError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("%s: %s (in %q)", e.Code, e.Message, e.Label)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

func hasCode(err error, code ErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsUndefinedReference reports whether err is an UNDEFINED_REFERENCE error.
func IsUndefinedReference(err error) bool { return hasCode(err, ErrUndefinedReference) }

// IsExpressionError reports whether err is an EXPRESSION error.
func IsExpressionError(err error) bool { return hasCode(err, ErrExpression) }

// IsInvalidParameter reports whether err is an INVALID_PARAMETER error.
func IsInvalidParameter(err error) bool { return hasCode(err, ErrInvalidParameter) }

// IsQuotaError reports whether err is a STEP_QUOTA_EXCEEDED error.
func IsQuotaError(err error) bool { return hasCode(err, ErrStepQuota) }

// CodeOf returns the code of a RuntimeError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}
