package parser

import (
	"errors"
	"fmt"

	"github.com/roach88/bulletml/internal/ir"
)

// Parse error codes (E200-E299).
const (
	ErrXML                  = "E200" // malformed XML
	ErrUnexpectedElement    = "E201" // element not allowed here
	ErrMissingAttribute     = "E202" // required attribute absent
	ErrUnexpectedNode       = "E203" // text or element where none is allowed
	ErrUnknownDocumentType  = "E204" // bulletml type attribute
	ErrUnknownDirectionType = "E205"
	ErrUnknownSpeedType     = "E206"
	ErrUnknownAccelType     = "E207"
	ErrExpression           = "E208" // expression text does not parse
	ErrMissingElement       = "E209" // required child absent
	ErrDuplicateElement     = "E210" // singular child given twice
	ErrDuplicateLabel       = "E211"
)

// ParseError describes why a document was rejected.
type ParseError struct {
	Code    string
	Message string
	Element string // local name of the offending element, if any
	Pos     ir.Pos
	Err     error
}

func (e *ParseError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: [%s] %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError returns true if err is a *ParseError with the given code.
// An empty code matches any ParseError.
func IsParseError(err error, code string) bool {
	var pe *ParseError
	if !errors.As(err, &pe) {
		return false
	}
	return code == "" || pe.Code == code
}

func errorf(code string, el *element, format string, args ...any) *ParseError {
	pe := &ParseError{Code: code, Message: fmt.Sprintf(format, args...)}
	if el != nil {
		pe.Element = el.name
		pe.Pos = el.pos
	}
	return pe
}
