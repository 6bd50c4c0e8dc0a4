package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/bulletml/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ReplayOutput holds the replay result.
type ReplayOutput struct {
	RunID         string `json:"run_id"`
	Events        int    `json:"events"`
	Deterministic bool   `json:"deterministic"`
	Divergence    string `json:"divergence,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <run-id>",
		Short: "Re-simulate a recorded run and verify determinism",
		Long: `Re-simulate a recorded run from its stored document and configuration
and compare the fresh events with the recorded ones.

Exit codes:
  0 - Replay reproduced every event
  1 - Determinism verification failed (first divergence is reported)
  2 - Command error (database or run not found, etc.)

Examples:
  bulletml replay --db ./runs.db <run-id>
  bulletml replay --db ./runs.db <run-id> --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, runID string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openExisting(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	formatter.VerboseLog("Replaying run %s", runID)
	res, err := store.Replay(ctx, st, runID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run %s not found", runID), nil)
		}
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "replay failed", err)
	}

	out := ReplayOutput{
		RunID:         runID,
		Events:        res.Events,
		Deterministic: res.Match(),
	}
	if !res.Match() {
		out.Divergence = res.Divergence.String()
	}

	if formatter.IsJSON() {
		if out.Deterministic {
			return formatter.Success(out)
		}
		if err := formatter.Failure("E_NONDETERMINISTIC", out.Divergence, out); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "replay diverged")
	}

	w := formatter.Writer
	if out.Deterministic {
		fmt.Fprintf(w, "✓ Run %s replayed deterministically (%d events)\n", runID, out.Events)
		return nil
	}
	fmt.Fprintf(w, "✗ Run %s diverged\n", runID)
	fmt.Fprintf(w, "  %s\n", out.Divergence)
	return NewExitError(ExitFailure, "replay diverged")
}
