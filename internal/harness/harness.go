package harness

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/bulletml/internal/ir"
	"github.com/roach88/bulletml/internal/parser"
	"github.com/roach88/bulletml/internal/sim"
	"github.com/roach88/bulletml/internal/store"
)

// scenarioRunID is the run ID every scenario is stored under. Each scenario
// gets its own in-memory store.
const scenarioRunID = "scenario"

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation. The
// returned error is for scenarios that cannot run at all (unreadable or
// invalid documents, store failures); failed assertions are reported in
// the Result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	src, err := scenario.source()
	if err != nil {
		return nil, err
	}
	doc, err := parser.ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	table, err := ir.NewTable(doc)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	rec, err := st.RunRecorder(ctx, scenarioRunID)
	if err != nil {
		return nil, err
	}
	w, err := sim.New(table, scenario.options(rec)...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	hash, err := ir.DocumentHash(doc)
	if err != nil {
		return nil, err
	}
	if _, err := st.WriteRun(ctx, store.Run{
		ID:       scenarioRunID,
		DocHash:  hash,
		Document: src,
		Frames:   scenario.Frames,
		Config:   w.Config(),
	}); err != nil {
		return nil, err
	}

	result := NewResult()
	watched := scenario.positionFrames()
	observe := func() {
		result.Alive = append(result.Alive, w.Alive())
		if !watched[w.Frame()] {
			return
		}
		pos := make(map[string]sim.Point, w.Alive())
		for _, b := range w.Bullets() {
			x, y := b.State().Position()
			pos[b.ID] = sim.Point{X: x, Y: y}
		}
		result.Positions[w.Frame()] = pos
	}

	observe()
	for w.Frame() < scenario.Frames && w.Alive() > 0 {
		if err := w.Step(ctx); err != nil {
			return nil, fmt.Errorf("scenario %s: frame %d: %w", scenario.Name, w.Frame(), err)
		}
		observe()
	}
	if err := w.Flush(ctx); err != nil {
		return nil, err
	}

	result.Stats = w.Stats()
	result.Events, err = st.ReadEvents(ctx, scenarioRunID)
	if err != nil {
		return nil, err
	}

	for i, a := range scenario.Assertions {
		if err := check(result, a); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return result, nil
}

func (s *Scenario) source() (string, error) {
	if s.Document == "" {
		return s.Source, nil
	}
	data, err := os.ReadFile(s.Document)
	if err != nil {
		return "", fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return string(data), nil
}

func (s *Scenario) options(rec sim.Recorder) []sim.Option {
	opts := []sim.Option{
		sim.WithRecorder(rec),
		sim.WithLogger(slog.New(slog.DiscardHandler)),
		sim.WithMirrored(s.Mirrored),
		sim.WithWorkers(s.Workers),
	}
	if s.Seed != nil {
		opts = append(opts, sim.WithSeed(*s.Seed))
	}
	if s.Rank != nil {
		opts = append(opts, sim.WithRank(*s.Rank))
	}
	if s.Origin != nil {
		opts = append(opts, sim.WithOrigin(s.Origin.X, s.Origin.Y))
	}
	if s.Target != nil {
		opts = append(opts, sim.WithTarget(s.Target.X, s.Target.Y))
	}
	if s.Bounds != nil {
		opts = append(opts, sim.WithBounds(*s.Bounds))
	}
	if s.Action != "" {
		opts = append(opts, sim.WithAction(s.Action, s.Params...))
	}
	return opts
}

func (s *Scenario) positionFrames() map[int]bool {
	frames := make(map[int]bool)
	for _, a := range s.Assertions {
		if a.Type == AssertPosition {
			frames[a.Frame] = true
		}
	}
	return frames
}
