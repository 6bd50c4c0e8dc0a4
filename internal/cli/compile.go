package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/bulletml/internal/ir"
	"github.com/roach88/bulletml/internal/parser"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
	XML    bool   // emit re-serialised XML instead of canonical JSON
}

// CompilationResult summarises a compiled document.
type CompilationResult struct {
	File        string          `json:"file"`
	Hash        string          `json:"hash"`
	Orientation string          `json:"orientation"`
	Bullets     int             `json:"bullets"`
	Actions     int             `json:"actions"`
	Fires       int             `json:"fires"`
	TopActions  []string        `json:"top_actions"`
	Output      string          `json:"output,omitempty"`
	Document    json.RawMessage `json:"document,omitempty"`
	XML         string          `json:"xml,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a document to canonical JSON",
		Long: `Compile a BulletML document to its canonical JSON form and print the
document hash. Two documents with the same hash behave identically; source
formatting and positions do not contribute.

With --xml the normalised document is printed as BulletML instead.

Examples:
  bulletml compile pattern.xml
  bulletml compile pattern.xml -o pattern.json
  bulletml compile pattern.xml --xml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().BoolVar(&opts.XML, "xml", false, "emit normalised BulletML instead of JSON")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	doc, err := loadDocument(path)
	if err != nil {
		return formatter.fail(loadExitCode(err), loadErrorCode(err), "cannot compile", err)
	}
	formatter.VerboseLog("Parsed %s (%s)", path, doc.Hash)

	var body []byte
	if opts.XML {
		body, err = parser.Marshal(doc.Doc)
	} else {
		body, err = ir.DocumentJSON(doc.Doc)
	}
	if err != nil {
		return formatter.fail(ExitFailure, ErrCodeGeneric, "cannot encode document", err)
	}

	result := summarize(doc)
	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, body, 0o644); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeWriteFailed, "writing output file", err)
		}
		result.Output = opts.Output
	}

	return outputCompileSuccess(formatter, result, body, opts)
}

// summarize counts the definitions of a document.
func summarize(doc *document) CompilationResult {
	tops := doc.Table.TopActions()
	names := make([]string, len(tops))
	for i, a := range tops {
		names[i] = a.Label
	}
	return CompilationResult{
		File:        doc.Path,
		Hash:        doc.Hash,
		Orientation: doc.Table.Orientation().String(),
		Bullets:     len(doc.Doc.Bullets),
		Actions:     len(doc.Doc.Actions),
		Fires:       len(doc.Doc.Fires),
		TopActions:  names,
	}
}

// outputCompileSuccess prints the compiled document, or a summary when it
// went to a file.
func outputCompileSuccess(formatter *OutputFormatter, result CompilationResult, body []byte, opts *CompileOptions) error {
	if formatter.IsJSON() {
		if opts.Output == "" {
			if opts.XML {
				result.XML = string(body)
			} else {
				result.Document = body
			}
		}
		return formatter.Success(result)
	}

	w := formatter.Writer
	if opts.Output == "" {
		w.Write(body)
		if len(body) > 0 && body[len(body)-1] != '\n' {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(formatter.GetErrWriter(), "hash: %s\n", result.Hash)
		return nil
	}

	fmt.Fprintf(w, "✓ Compiled %s → %s\n", result.File, result.Output)
	fmt.Fprintf(w, "  hash:    %s\n", result.Hash)
	fmt.Fprintf(w, "  bullets: %d, actions: %d, fires: %d\n", result.Bullets, result.Actions, result.Fires)
	return nil
}
