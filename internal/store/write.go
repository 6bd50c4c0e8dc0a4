package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/bulletml/internal/sim"
)

// Run describes one recorded simulation.
type Run struct {
	ID       string
	DocHash  string
	Document string
	Seed     uint64
	Rank     float64
	Frames   int
	Config   sim.Config

	// Seq is the logical creation order, assigned by WriteRun.
	Seq int64
}

// WriteRun inserts run and returns its assigned Seq. Seed and Rank are
// taken from run.Config.
func (s *Store) WriteRun(ctx context.Context, run Run) (int64, error) {
	cfgText, err := marshalConfig(run.Config)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(created_at_seq), 0) + 1 FROM runs`,
	).Scan(&seq); err != nil {
		return 0, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, doc_hash, document, seed, rank, frames, config, created_at_seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.DocHash,
		run.Document,
		seedToDB(run.Config.Seed),
		run.Config.Rank,
		run.Frames,
		cfgText,
		seq,
	)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write run: commit: %w", err)
	}
	return seq, nil
}

// Recorder appends a run's events. It implements sim.Recorder.
type Recorder struct {
	store *Store
	runID string
	next  int64
}

// RunRecorder returns a Recorder appending to runID, continuing after any
// events already stored.
func (s *Store) RunRecorder(ctx context.Context, runID string) (*Recorder, error) {
	var last sql.NullInt64
	if err := s.db.QueryRowContext(ctx,
		`SELECT MAX(seq) FROM events WHERE run_id = ?`, runID,
	).Scan(&last); err != nil {
		return nil, fmt.Errorf("run recorder: %w", err)
	}
	return &Recorder{store: s, runID: runID, next: last.Int64 + 1}, nil
}

// RecordFrame writes one frame's events in a single transaction.
func (r *Recorder) RecordFrame(ctx context.Context, frame int, events []sim.Event) error {
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record frame %d: begin tx: %w", frame, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events
		(run_id, seq, frame, kind, bullet_id, parent_id, x, y, direction, speed, code, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("record frame %d: prepare: %w", frame, err)
	}
	defer stmt.Close()

	seq := r.next
	for _, ev := range events {
		if _, err := stmt.ExecContext(ctx,
			r.runID,
			seq,
			ev.Frame,
			string(ev.Kind),
			ev.BulletID,
			ev.ParentID,
			ev.X,
			ev.Y,
			ev.Direction,
			ev.Speed,
			ev.Code,
			ev.Message,
		); err != nil {
			return fmt.Errorf("record frame %d: %w", frame, err)
		}
		seq++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record frame %d: commit: %w", frame, err)
	}
	r.next = seq
	return nil
}
