package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/bulletml/internal/sim"
	"github.com/roach88/bulletml/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Kind     string // optional - filter to one event kind
	Bullet   string // optional - filter to one bullet and its children
}

// RunInfo is one line of the run listing.
type RunInfo struct {
	ID      string  `json:"id"`
	Seq     int64   `json:"seq"`
	DocHash string  `json:"document_hash"`
	Seed    uint64  `json:"seed"`
	Rank    float64 `json:"rank"`
	Frames  int     `json:"frames"`
}

// TraceEvent represents a single event in the trace timeline.
type TraceEvent struct {
	Frame     int     `json:"frame"`
	Kind      string  `json:"kind"`
	Bullet    string  `json:"bullet"`
	Parent    string  `json:"parent,omitempty"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Direction float64 `json:"direction"`
	Speed     float64 `json:"speed"`
	Code      string  `json:"code,omitempty"`
	Message   string  `json:"message,omitempty"`
}

// TraceResult holds the complete trace output for one run.
type TraceResult struct {
	RunID     string         `json:"run_id"`
	Timeline  []TraceEvent   `json:"timeline"`
	Counts    map[string]int `json:"counts"`
	TraceHash string         `json:"trace_hash"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [run-id]",
		Short: "List recorded runs or show the events of one",
		Long: `Query a database written by 'bulletml run --db'.

Without a run ID, lists every recorded run in creation order. With one,
prints the run's event timeline, per-kind counts and trace hash. The
hash covers the whole run even when the timeline is filtered.

Examples:
  bulletml trace --db ./runs.db
  bulletml trace --db ./runs.db 01890a5d-ac96-774b-bcce-b302099a8057
  bulletml trace --db ./runs.db <run-id> --kind fire --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runListRuns(opts, cmd)
			}
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter to one event kind (spawn|fire|vanish|cull|error)")
	cmd.Flags().StringVar(&opts.Bullet, "bullet", "", "filter to events of one bullet and the bullets it fired")

	return cmd
}

func openExisting(formatter *OutputFormatter, path string) (*store.Store, error) {
	if err := requireFile(path, "database"); err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return nil, err
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, formatter.fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	return st, nil
}

func runListRuns(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	st, err := openExisting(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(context.Background())
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeDatabase, "failed to list runs", err)
	}

	infos := make([]RunInfo, len(runs))
	for i, r := range runs {
		infos[i] = RunInfo{ID: r.ID, Seq: r.Seq, DocHash: r.DocHash, Seed: r.Seed, Rank: r.Rank, Frames: r.Frames}
	}

	if formatter.IsJSON() {
		return formatter.Success(infos)
	}

	w := formatter.Writer
	if len(infos) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, r := range infos {
		fmt.Fprintf(w, "%4d  %s  frames=%d seed=%d rank=%g doc=%s\n",
			r.Seq, r.ID, r.Frames, r.Seed, r.Rank, shortHash(r.DocHash))
	}
	return nil
}

func runTrace(opts *TraceOptions, runID string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openExisting(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if _, err := st.ReadRun(ctx, runID); err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run %s not found", runID), nil)
		}
		return formatter.fail(ExitCommandError, ErrCodeDatabase, "failed to read run", err)
	}

	events, err := st.ReadEvents(ctx, runID)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeDatabase, "failed to read events", err)
	}
	counts, err := st.CountEvents(ctx, runID)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeDatabase, "failed to count events", err)
	}
	hash, err := sim.TraceHash(events)
	if err != nil {
		return formatter.fail(ExitFailure, ErrCodeGeneric, "cannot hash trace", err)
	}

	result := TraceResult{
		RunID:     runID,
		Timeline:  buildTimeline(events, opts.Kind, opts.Bullet),
		Counts:    make(map[string]int, len(counts)),
		TraceHash: hash,
	}
	for k, n := range counts {
		result.Counts[string(k)] = n
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	return outputTraceText(formatter.Writer, result)
}

// buildTimeline converts stored events to timeline entries. A bullet filter
// keeps the bullet's own events and those of the bullets it fired.
func buildTimeline(events []sim.Event, kind, bullet string) []TraceEvent {
	timeline := []TraceEvent{}
	for _, ev := range events {
		if kind != "" && string(ev.Kind) != kind {
			continue
		}
		if bullet != "" && ev.BulletID != bullet && ev.ParentID != bullet {
			continue
		}
		timeline = append(timeline, TraceEvent{
			Frame:     ev.Frame,
			Kind:      string(ev.Kind),
			Bullet:    ev.BulletID,
			Parent:    ev.ParentID,
			X:         ev.X,
			Y:         ev.Y,
			Direction: ev.Direction,
			Speed:     ev.Speed,
			Code:      ev.Code,
			Message:   ev.Message,
		})
	}
	return timeline
}

// outputTraceText outputs the trace result as text.
func outputTraceText(w io.Writer, result TraceResult) error {
	fmt.Fprintf(w, "Trace for run: %s\n", result.RunID)
	fmt.Fprintf(w, "Hash: %s\n", result.TraceHash)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no events)")
	}
	for _, ev := range result.Timeline {
		fmt.Fprintf(w, "  [%5d] %-6s %-6s (%s, %s) dir=%s speed=%s",
			ev.Frame, ev.Kind, ev.Bullet,
			sim.FormatFloat(ev.X), sim.FormatFloat(ev.Y),
			sim.FormatFloat(ev.Direction), sim.FormatFloat(ev.Speed))
		if ev.Parent != "" {
			fmt.Fprintf(w, " from=%s", ev.Parent)
		}
		if ev.Code != "" {
			fmt.Fprintf(w, " %s: %s", ev.Code, ev.Message)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Counts ===")
	kinds := make([]string, 0, len(result.Counts))
	for k := range result.Counts {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-6s %d\n", k, result.Counts[k])
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
