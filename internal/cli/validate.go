package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/bulletml/internal/parser"
)

// FileValidation holds the findings for one document.
type FileValidation struct {
	File   string                   `json:"file"`
	Valid  bool                     `json:"valid"`
	Errors []parser.ValidationError `json:"errors,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Parse and lint BulletML documents",
		Long: `Parse BulletML documents and check them for problems the parser
accepts but a run would trip over: undefined references, missing
parameters, no top action, and recursion without a wait.

Exit codes:
  0 - All documents valid
  1 - One or more documents rejected
  2 - Command error (file not found, etc.)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, files []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(files))}
	for _, path := range files {
		formatter.VerboseLog("Validating %s", path)

		fv, err := validateFile(path)
		if err != nil {
			// Unreadable input is a command error, not a finding.
			return formatter.fail(ExitCommandError, loadErrorCode(err), "cannot validate", err)
		}
		if !fv.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	if result.Valid {
		return outputValidateSuccess(formatter, result)
	}
	return outputValidationErrors(formatter, result)
}

// validateFile parses and lints one document. Parse errors become a
// single finding; a missing file is returned as an error.
func validateFile(path string) (FileValidation, error) {
	fv := FileValidation{File: path, Valid: true}

	doc, err := loadDocument(path)
	if err != nil {
		var le *LoadError
		if !errors.As(err, &le) || le.NotFound() {
			return fv, err
		}
		fv.Valid = false
		fv.Errors = []parser.ValidationError{{
			Code:    le.Code,
			Message: le.Message,
			Line:    le.Pos.Line,
			Col:     le.Pos.Col,
		}}
		return fv, nil
	}

	if errs := parser.ValidateTable(doc.Table); len(errs) > 0 {
		fv.Valid = false
		fv.Errors = errs
	}
	return fv, nil
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	for _, fv := range result.Files {
		fmt.Fprintf(formatter.Writer, "✓ %s\n", fv.File)
	}
	return nil
}

// outputValidationErrors outputs the findings of every rejected document.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	var first *parser.ValidationError
	total := 0
	for _, fv := range result.Files {
		for i := range fv.Errors {
			if first == nil {
				first = &fv.Errors[i]
			}
			total++
		}
	}
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", total))

	if formatter.IsJSON() {
		if err := formatter.Failure(first.Code, first.Message, result); err != nil {
			return err
		}
		return exitErr
	}

	for _, fv := range result.Files {
		if fv.Valid {
			fmt.Fprintf(formatter.Writer, "✓ %s\n", fv.File)
			continue
		}
		fmt.Fprintf(formatter.Writer, "✗ %s\n", fv.File)
		for _, e := range fv.Errors {
			if e.Line > 0 {
				fmt.Fprintf(formatter.Writer, "  line %d:%d\n", e.Line, e.Col)
			}
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", e.Code, e.Message)
		}
	}
	return exitErr
}
