package parser

import (
	"errors"
	"fmt"

	"github.com/roach88/bulletml/internal/ir"
)

// Lint codes (E110-E119). These describe documents that parse but will
// fail or misbehave when run.
const (
	ErrUndefinedReference = "E110" // reference names no definition of its kind
	ErrTooFewParams       = "E111" // fewer params than the callee uses
	ErrNoTopAction        = "E112" // nothing labelled top*
	ErrZeroWaitCycle      = "E113" // action recursion with no wait on the cycle
)

// ValidationError is a lint finding.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Label   string `json:"label,omitempty"`
	Line    int    `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
}

func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] %d:%d: %s", e.Code, e.Line, e.Col, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func finding(code string, pos ir.Pos, label, format string, args ...any) ValidationError {
	return ValidationError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Label:   label,
		Line:    pos.Line,
		Col:     pos.Col,
	}
}

// Validate lints doc and returns every finding. It does not fail fast.
func Validate(doc *ir.Document) []ValidationError {
	table, err := ir.NewTable(doc)
	if err != nil {
		var dup *ir.DuplicateLabelError
		if errors.As(err, &dup) {
			return []ValidationError{finding(ErrDuplicateLabel, dup.Pos, dup.Label, "%s", dup.Error())}
		}
		return []ValidationError{{Code: ErrDuplicateLabel, Message: err.Error()}}
	}
	return ValidateTable(table)
}

// ValidateTable lints an indexed document.
func ValidateTable(table *ir.Table) []ValidationError {
	var errs []ValidationError

	if len(table.TopActions()) == 0 {
		errs = append(errs, finding(ErrNoTopAction, table.Document().Pos, "",
			"no action labelled %q or %q..%q", ir.TopPrefix, ir.TopPrefix+"1", ir.TopPrefix+"N"))
	}

	ir.Inspect(table.Document(), func(n any) bool {
		r, ok := n.(*ir.Ref)
		if !ok {
			return true
		}
		def, found := table.Lookup(r.Kind, r.Label)
		if !found {
			errs = append(errs, finding(ErrUndefinedReference, r.Pos, r.Label,
				"%sRef to undefined %s %q", r.Kind, r.Kind, r.Label))
			return true
		}
		if want := table.Arity(def); len(r.Params) < want {
			errs = append(errs, finding(ErrTooFewParams, r.Pos, r.Label,
				"%sRef %q passes %d param(s), %s uses $%d", r.Kind, r.Label, len(r.Params), r.Kind, want))
		}
		return true
	})

	return append(errs, zeroWaitCycles(table)...)
}
