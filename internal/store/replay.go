package store

import (
	"context"
	"fmt"

	"github.com/roach88/bulletml/internal/ir"
	"github.com/roach88/bulletml/internal/parser"
	"github.com/roach88/bulletml/internal/sim"
)

// Divergence is the first point where a replay disagrees with the stored
// events. One of Stored or Replayed is nil when a stream ended early.
type Divergence struct {
	Index    int
	Stored   *sim.Event
	Replayed *sim.Event
}

func (d *Divergence) String() string {
	switch {
	case d.Stored == nil:
		return fmt.Sprintf("event %d: replay produced extra %s at frame %d", d.Index, d.Replayed.Kind, d.Replayed.Frame)
	case d.Replayed == nil:
		return fmt.Sprintf("event %d: replay ended before stored %s at frame %d", d.Index, d.Stored.Kind, d.Stored.Frame)
	default:
		return fmt.Sprintf("event %d: stored %s %s at frame %d, replayed %s %s at frame %d",
			d.Index,
			d.Stored.Kind, d.Stored.BulletID, d.Stored.Frame,
			d.Replayed.Kind, d.Replayed.BulletID, d.Replayed.Frame)
	}
}

// ReplayResult reports the outcome of Replay.
type ReplayResult struct {
	RunID      string
	Events     int
	Divergence *Divergence
}

// Match reports whether the replay reproduced the stored events exactly.
func (r *ReplayResult) Match() bool { return r.Divergence == nil }

// Replay re-simulates a stored run from its document and config and
// compares the fresh events with the stored ones.
func Replay(ctx context.Context, st *Store, runID string) (*ReplayResult, error) {
	run, err := st.ReadRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	doc, err := parser.ParseString(run.Document)
	if err != nil {
		return nil, fmt.Errorf("replay %s: parse document: %w", runID, err)
	}
	hash, err := ir.DocumentHash(doc)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", runID, err)
	}
	if hash != run.DocHash {
		return nil, fmt.Errorf("replay %s: document hash %s does not match stored %s", runID, hash, run.DocHash)
	}
	table, err := ir.NewTable(doc)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", runID, err)
	}

	rec := &sim.MemoryRecorder{}
	w, err := sim.New(table, sim.WithConfig(run.Config), sim.WithRecorder(rec))
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", runID, err)
	}
	if err := w.Run(ctx, run.Frames); err != nil {
		return nil, fmt.Errorf("replay %s: %w", runID, err)
	}

	stored, err := st.ReadEvents(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", runID, err)
	}
	replayed := rec.Events()

	return &ReplayResult{
		RunID:      runID,
		Events:     len(stored),
		Divergence: firstDivergence(stored, replayed),
	}, nil
}

func firstDivergence(stored, replayed []sim.Event) *Divergence {
	n := max(len(stored), len(replayed))
	for i := 0; i < n; i++ {
		d := &Divergence{Index: i}
		if i < len(stored) {
			d.Stored = &stored[i]
		}
		if i < len(replayed) {
			d.Replayed = &replayed[i]
		}
		if d.Stored == nil || d.Replayed == nil || *d.Stored != *d.Replayed {
			return d
		}
	}
	return nil
}
