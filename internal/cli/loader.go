package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/bulletml/internal/ir"
	"github.com/roach88/bulletml/internal/parser"
)

// Error codes for CLI errors (E001-E099). Document errors keep the parser's
// own codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeReadFailed  = "E002" // File read error
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeDatabase    = "E008" // Store open/read/write error
	ErrCodeInvalidFlag = "E009" // Flag value does not parse
	ErrCodeSimulation  = "E010" // Simulation could not start or was cut short
)

// document is a parsed and indexed BulletML file.
type document struct {
	Path   string
	Source []byte
	Doc    *ir.Document
	Table  *ir.Table
	Hash   string
}

// LoadError represents an error that occurred while loading a document.
type LoadError struct {
	Code    string
	Message string
	Path    string
	Pos     ir.Pos // document position if available
	Err     error
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%s: %s: %s", e.Path, e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the file could not be read, as opposed to being
// read and rejected.
func (e *LoadError) NotFound() bool {
	return e.Code == ErrCodeNotFound || e.Code == ErrCodeReadFailed
}

// loadDocument reads, parses and indexes a BulletML file.
func loadDocument(path string) (*document, error) {
	src, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "file not found", Err: err}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Path: path, Message: err.Error(), Err: err}
	}

	doc, err := parser.Parse(src)
	if err != nil {
		var pe *parser.ParseError
		if errors.As(err, &pe) {
			return nil, &LoadError{Code: pe.Code, Path: path, Message: pe.Message, Pos: pe.Pos, Err: err}
		}
		return nil, &LoadError{Code: ErrCodeGeneric, Path: path, Message: err.Error(), Err: err}
	}

	table, err := ir.NewTable(doc)
	if err != nil {
		var dup *ir.DuplicateLabelError
		if errors.As(err, &dup) {
			return nil, &LoadError{Code: parser.ErrDuplicateLabel, Path: path, Message: dup.Error(), Pos: dup.Pos, Err: err}
		}
		return nil, &LoadError{Code: ErrCodeGeneric, Path: path, Message: err.Error(), Err: err}
	}

	hash, err := ir.DocumentHash(doc)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Path: path, Message: err.Error(), Err: err}
	}

	return &document{Path: path, Source: src, Doc: doc, Table: table, Hash: hash}, nil
}

// loadErrorCode returns the code to report for a loadDocument failure.
func loadErrorCode(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ErrCodeGeneric
}

// loadExitCode maps a loadDocument failure to an exit code: missing files
// are command errors, rejected documents are failures.
func loadExitCode(err error) int {
	var le *LoadError
	if errors.As(err, &le) && !le.NotFound() {
		return ExitFailure
	}
	return ExitCommandError
}

// requireFile checks that path exists, so that read-only commands do not
// create empty databases.
func requireFile(path, what string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("%s not found: %s", what, path))
	}
	return nil
}
