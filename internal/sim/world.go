package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/bulletml/internal/bullet"
	"github.com/roach88/bulletml/internal/ir"
	"github.com/roach88/bulletml/internal/runner"
)

// Bullet is one live bullet of a World.
type Bullet struct {
	ID       string
	ParentID string
	Born     int

	runner *runner.Runner
	rng    *rand.Rand
}

// State returns the bullet's kinematic state.
func (b *Bullet) State() *bullet.State { return b.runner.State() }

// Runner returns the bullet's runner.
func (b *Bullet) Runner() *runner.Runner { return b.runner }

// Stats counts what happened since the world was created.
type Stats struct {
	Frames   int
	Fired    int
	Vanished int
	Culled   int
	Errors   int
	Alive    int
}

// World owns a set of bullets driven by one document. Step and Run must not
// be called concurrently.
type World struct {
	table      *ir.Table
	cfg        Config
	runnerOpts []runner.Option
	recorder   Recorder
	ids        IDGenerator
	logger     *slog.Logger
	metrics    *Metrics

	frame   int
	ordinal uint64
	bullets []*Bullet
	pending []Event
	stats   Stats
}

// New creates a world with one root bullet at the origin, facing the
// target, running the document's top actions (or the configured action).
func New(table *ir.Table, opts ...Option) (*World, error) {
	w := &World{
		table:  table,
		cfg:    DefaultConfig(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.ids == nil {
		w.ids = NewSequentialGenerator("b")
	}

	base, err := w.cfg.RunnerOptions()
	if err != nil {
		return nil, err
	}
	base = append(base, runner.WithLogger(w.logger))
	w.runnerOpts = append(base, w.runnerOpts...)

	o, t := w.cfg.Origin, w.cfg.Target
	state := bullet.New(o.X, o.Y, bullet.AngleTo(o.X, o.Y, t.X, t.Y), 0, w.cfg.Mirrored)

	var r *runner.Runner
	if w.cfg.Action != "" {
		r, err = runner.NewAction(table, state, w.cfg.Action, w.cfg.Params, w.runnerOpts...)
		if err != nil {
			return nil, fmt.Errorf("root action: %w", err)
		}
	} else {
		if len(table.TopActions()) == 0 {
			return nil, fmt.Errorf("document has no top action")
		}
		r = runner.NewTop(table, state, w.runnerOpts...)
	}

	root := w.add(r, "")
	w.pending = append(w.pending, w.event(EventSpawn, root))
	w.logger.Debug("world created",
		"root", root.ID,
		"seed", w.cfg.Seed,
		"workers", w.cfg.Workers)
	return w, nil
}

// Config returns the world's serializable configuration.
func (w *World) Config() Config { return w.cfg }

// Frame returns the number of frames stepped.
func (w *World) Frame() int { return w.frame }

// Alive returns the number of live bullets.
func (w *World) Alive() int { return len(w.bullets) }

// Bullets returns the live bullets in creation order.
func (w *World) Bullets() []*Bullet { return slices.Clone(w.bullets) }

// Stats returns the running totals.
func (w *World) Stats() Stats {
	s := w.stats
	s.Frames = w.frame
	s.Alive = len(w.bullets)
	return s
}

// SetRank changes the rank seen from the next frame on.
func (w *World) SetRank(rank float64) { w.cfg.Rank = rank }

// SetTarget moves the aim target from the next frame on.
func (w *World) SetTarget(x, y float64) { w.cfg.Target = Point{X: x, Y: y} }

func (w *World) add(r *runner.Runner, parent string) *Bullet {
	w.ordinal++
	b := &Bullet{
		ID:       w.ids.Generate(),
		ParentID: parent,
		Born:     w.frame,
		runner:   r,
		rng:      rand.New(rand.NewPCG(w.cfg.Seed, w.ordinal)),
	}
	w.bullets = append(w.bullets, b)
	return b
}

func (w *World) event(kind EventKind, b *Bullet) Event {
	s := b.State()
	x, y := s.Position()
	return Event{
		Frame:     w.frame,
		Kind:      kind,
		BulletID:  b.ID,
		ParentID:  b.ParentID,
		X:         x,
		Y:         y,
		Direction: s.Direction(),
		Speed:     s.Speed(),
	}
}

type stepResult struct {
	status runner.Status
	err    error
	spawns []runner.SpawnRequest
}

// Step advances the world one frame. Runtime errors of individual runners
// are recorded as events; the returned error is for context cancellation
// and recorder failures only.
func (w *World) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	if len(w.pending) > 0 {
		if err := w.record(ctx, w.frame, w.pending); err != nil {
			return err
		}
		w.pending = nil
	}

	w.frame++
	live := w.bullets
	results := make([]stepResult, len(live))
	if err := w.stepRunners(ctx, live, results); err != nil {
		return err
	}

	var events []Event
	survivors := make([]*Bullet, 0, len(live))
	w.bullets = nil
	for i, b := range live {
		res := results[i]
		for _, req := range res.spawns {
			child := w.add(runner.NewChild(w.table, req, w.runnerOpts...), b.ID)
			events = append(events, w.event(EventFire, child))
			w.stats.Fired++
		}
		switch {
		case res.err != nil:
			ev := w.event(EventError, b)
			ev.Code = string(runner.CodeOf(res.err))
			ev.Message = res.err.Error()
			events = append(events, ev)
			w.stats.Errors++
			w.logger.Warn("runner stopped",
				"bullet", b.ID,
				"frame", w.frame,
				"code", ev.Code,
				"error", res.err)
			if w.metrics != nil {
				w.metrics.RunnerErrors.WithLabelValues(ev.Code).Inc()
			}
		case res.status == runner.Vanished:
			events = append(events, w.event(EventVanish, b))
			w.stats.Vanished++
		default:
			survivors = append(survivors, b)
		}
	}
	spawned := w.bullets

	kept := survivors[:0]
	for _, b := range survivors {
		b.State().Update()
		if w.cfg.Bounds != nil {
			x, y := b.State().Position()
			if !w.cfg.Bounds.Contains(x, y) {
				events = append(events, w.event(EventCull, b))
				w.stats.Culled++
				continue
			}
		}
		kept = append(kept, b)
	}
	w.bullets = append(kept, spawned...)

	if err := w.record(ctx, w.frame, events); err != nil {
		return err
	}
	if w.metrics != nil {
		w.metrics.BulletsAlive.Set(float64(len(w.bullets)))
		w.metrics.BulletsFired.Add(float64(len(spawned)))
		w.metrics.StepDuration.Observe(time.Since(start).Seconds())
	}
	return nil
}

func (w *World) stepRunners(ctx context.Context, live []*Bullet, results []stepResult) error {
	step := func(i int) {
		b := live[i]
		h := &host{cfg: &w.cfg, rng: b.rng}
		st, err := b.runner.Step(h)
		results[i] = stepResult{status: st, err: err, spawns: h.spawns}
	}
	if w.cfg.Workers <= 1 || len(live) < 2 {
		for i := range live {
			step(i)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.Workers)
	for i := range live {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			step(i)
			return nil
		})
	}
	return g.Wait()
}

func (w *World) record(ctx context.Context, frame int, events []Event) error {
	if w.recorder == nil || len(events) == 0 {
		return nil
	}
	if err := w.recorder.RecordFrame(ctx, frame, events); err != nil {
		return fmt.Errorf("record frame %d: %w", frame, err)
	}
	return nil
}

// Run steps up to frames frames, stopping early once no bullet is alive.
func (w *World) Run(ctx context.Context, frames int) error {
	for i := 0; i < frames && len(w.bullets) > 0; i++ {
		if err := w.Step(ctx); err != nil {
			return err
		}
	}
	return w.Flush(ctx)
}

// Flush records events still pending, such as the root spawn of a world
// that never stepped.
func (w *World) Flush(ctx context.Context) error {
	if len(w.pending) == 0 {
		return nil
	}
	err := w.record(ctx, w.frame, w.pending)
	w.pending = nil
	return err
}
