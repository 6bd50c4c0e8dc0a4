package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/roach88/bulletml/internal/sim"
	"github.com/roach88/bulletml/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Frames   int
	Seed     uint64
	Rank     float64
	Target   string // "x,y"
	Origin   string // "x,y"
	Mirror   bool
	Workers  int
	Action   string
	Params   []float64
	Strict   bool
	Database string
	Metrics  bool

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to sim.UUIDv7Generator.
	RunIDs sim.IDGenerator
}

// RunSummary is the output of the run command.
type RunSummary struct {
	RunID     string `json:"run_id,omitempty"`
	Hash      string `json:"document_hash"`
	Frames    int    `json:"frames"`
	Fired     int    `json:"fired"`
	Vanished  int    `json:"vanished"`
	Culled    int    `json:"culled"`
	Errors    int    `json:"errors"`
	Alive     int    `json:"alive"`
	Events    int    `json:"events"`
	TraceHash string `json:"trace_hash"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Simulate a document",
		Long: `Simulate a BulletML document for a number of frames and print a
summary. The same document, seed and flags always produce the same trace;
the trace hash identifies it.

With --db the run and its events are recorded so they can be listed with
'bulletml trace' and checked with 'bulletml replay'.

Examples:
  bulletml run pattern.xml --frames 600 --seed 42
  bulletml run pattern.xml --target 120,300 --origin 120,40 --rank 0.8
  bulletml run pattern.xml --db ./runs.db --workers 4`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(opts, args[0], cmd)
		},
	}

	def := sim.DefaultConfig()
	cmd.Flags().IntVar(&opts.Frames, "frames", 300, "maximum number of frames to simulate")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", def.Seed, "random seed")
	cmd.Flags().Float64Var(&opts.Rank, "rank", def.Rank, "difficulty rank in [0, 1]")
	cmd.Flags().StringVar(&opts.Target, "target", "0,0", "aim target as x,y")
	cmd.Flags().StringVar(&opts.Origin, "origin", "0,0", "emitter position as x,y")
	cmd.Flags().BoolVar(&opts.Mirror, "mirror", false, "mirror the pattern horizontally")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "step bullets on this many goroutines")
	cmd.Flags().StringVar(&opts.Action, "action", "", "run this labelled action instead of the top actions")
	cmd.Flags().Float64SliceVar(&opts.Params, "param", nil, "parameters for --action")
	cmd.Flags().BoolVar(&opts.Strict, "strict-params", false, "fail refs that pass more params than the callee uses")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run to this SQLite database")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print simulation metrics to stderr")

	return cmd
}

func runSimulation(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	if opts.Frames < 0 {
		return formatter.fail(ExitCommandError, ErrCodeInvalidFlag, "--frames must be non-negative", nil)
	}
	target, err := parsePoint(opts.Target)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeInvalidFlag, "invalid --target", err)
	}
	origin, err := parsePoint(opts.Origin)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeInvalidFlag, "invalid --origin", err)
	}

	doc, err := loadDocument(path)
	if err != nil {
		return formatter.fail(loadExitCode(err), loadErrorCode(err), "cannot run", err)
	}

	reg := prometheus.NewRegistry()
	rec := &sim.MemoryRecorder{}
	simOpts := []sim.Option{
		sim.WithSeed(opts.Seed),
		sim.WithRank(opts.Rank),
		sim.WithTarget(target.X, target.Y),
		sim.WithOrigin(origin.X, origin.Y),
		sim.WithMirrored(opts.Mirror),
		sim.WithWorkers(opts.Workers),
		sim.WithStrictParams(opts.Strict),
		sim.WithLogger(logger),
		sim.WithMetrics(sim.NewMetrics(reg)),
	}
	if opts.Action != "" {
		simOpts = append(simOpts, sim.WithAction(opts.Action, opts.Params...))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	summary := RunSummary{Hash: doc.Hash}

	var (
		st       *store.Store
		recorder sim.Recorder = rec
	)
	if opts.Database != "" {
		st, err = store.Open(opts.Database)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()

		ids := opts.RunIDs
		if ids == nil {
			ids = sim.UUIDv7Generator{}
		}
		summary.RunID = ids.Generate()

		dbRec, err := st.RunRecorder(ctx, summary.RunID)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeDatabase, "failed to prepare recorder", err)
		}
		recorder = sim.MultiRecorder{rec, dbRec}
	}

	w, err := sim.New(doc.Table, append(simOpts, sim.WithRecorder(recorder))...)
	if err != nil {
		return formatter.fail(ExitFailure, ErrCodeSimulation, "cannot start simulation", err)
	}

	if st != nil {
		if _, err := st.WriteRun(ctx, store.Run{
			ID:       summary.RunID,
			DocHash:  doc.Hash,
			Document: string(doc.Source),
			Frames:   opts.Frames,
			Config:   w.Config(),
		}); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeDatabase, "failed to record run", err)
		}
		logger.Info("recording run", "run_id", summary.RunID, "db", opts.Database)
	}

	return simulate(ctx, opts, formatter, w, rec, reg, summary)
}

// simulate runs w to completion or interruption and prints the summary.
func simulate(ctx context.Context, opts *RunOptions, formatter *OutputFormatter, w *sim.World, rec *sim.MemoryRecorder, reg *prometheus.Registry, summary RunSummary) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx, opts.Frames); err != nil {
		return formatter.fail(ExitFailure, ErrCodeSimulation, fmt.Sprintf("simulation stopped at frame %d", w.Frame()), err)
	}

	stats := w.Stats()
	events := rec.Events()
	hash, err := sim.TraceHash(events)
	if err != nil {
		return formatter.fail(ExitFailure, ErrCodeGeneric, "cannot hash trace", err)
	}
	summary.Frames = stats.Frames
	summary.Fired = stats.Fired
	summary.Vanished = stats.Vanished
	summary.Culled = stats.Culled
	summary.Errors = stats.Errors
	summary.Alive = stats.Alive
	summary.Events = len(events)
	summary.TraceHash = hash

	if opts.Metrics {
		if err := writeMetrics(formatter, reg); err != nil {
			return formatter.fail(ExitFailure, ErrCodeGeneric, "cannot write metrics", err)
		}
	}

	if formatter.IsJSON() {
		return formatter.Success(summary)
	}

	out := formatter.Writer
	fmt.Fprintf(out, "Simulated %d frame(s)\n", summary.Frames)
	if summary.RunID != "" {
		fmt.Fprintf(out, "  run:      %s\n", summary.RunID)
	}
	fmt.Fprintf(out, "  fired:    %d\n", summary.Fired)
	fmt.Fprintf(out, "  vanished: %d\n", summary.Vanished)
	fmt.Fprintf(out, "  culled:   %d\n", summary.Culled)
	fmt.Fprintf(out, "  errors:   %d\n", summary.Errors)
	fmt.Fprintf(out, "  alive:    %d\n", summary.Alive)
	fmt.Fprintf(out, "  trace:    %s\n", summary.TraceHash)
	return nil
}

// writeMetrics dumps the registry in the Prometheus text format.
func writeMetrics(formatter *OutputFormatter, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	w := formatter.GetErrWriter()
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// parsePoint parses "x,y".
func parsePoint(s string) (sim.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return sim.Point{}, fmt.Errorf("%q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return sim.Point{}, fmt.Errorf("%q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return sim.Point{}, fmt.Errorf("%q: %w", s, err)
	}
	return sim.Point{X: x, Y: y}, nil
}
