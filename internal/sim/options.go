package sim

import (
	"log/slog"

	"github.com/roach88/bulletml/internal/runner"
)

// Option configures a World.
type Option func(*World)

// WithConfig replaces the whole serializable configuration.
func WithConfig(cfg Config) Option {
	return func(w *World) { w.cfg = cfg }
}

// WithSeed seeds the per-bullet random sources.
func WithSeed(seed uint64) Option {
	return func(w *World) { w.cfg.Seed = seed }
}

// WithRank sets the initial rank.
func WithRank(rank float64) Option {
	return func(w *World) { w.cfg.Rank = rank }
}

// WithTarget sets the initial aim target.
func WithTarget(x, y float64) Option {
	return func(w *World) { w.cfg.Target = Point{X: x, Y: y} }
}

// WithOrigin places the root bullet.
func WithOrigin(x, y float64) Option {
	return func(w *World) { w.cfg.Origin = Point{X: x, Y: y} }
}

// WithMirrored mirrors the root bullet and everything it fires.
func WithMirrored(mirrored bool) Option {
	return func(w *World) { w.cfg.Mirrored = mirrored }
}

// WithBounds culls bullets that leave r.
func WithBounds(r Rect) Option {
	return func(w *World) { w.cfg.Bounds = &r }
}

// WithWorkers steps runners on n goroutines. n <= 1 steps sequentially.
func WithWorkers(n int) Option {
	return func(w *World) { w.cfg.Workers = n }
}

// WithDefaultSpeed sets the speed of a fire that names none.
func WithDefaultSpeed(speed float64) Option {
	return func(w *World) { w.cfg.DefaultSpeed = speed }
}

// WithStrictParams makes refs that pass more params than their callee uses
// fail with INVALID_PARAMETER.
func WithStrictParams(strict bool) Option {
	return func(w *World) { w.cfg.StrictParams = strict }
}

// WithAction runs the named action on the root instead of the top actions.
func WithAction(label string, params ...float64) Option {
	return func(w *World) {
		w.cfg.Action = label
		w.cfg.Params = params
	}
}

// WithRecorder receives every frame's events.
func WithRecorder(r Recorder) Option {
	return func(w *World) { w.recorder = r }
}

// WithIDGenerator names bullets. The default yields b1, b2, ...
func WithIDGenerator(g IDGenerator) Option {
	return func(w *World) { w.ids = g }
}

// WithLogger sets the logger for the world and its runners.
func WithLogger(l *slog.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithMetrics updates m every frame.
func WithMetrics(m *Metrics) Option {
	return func(w *World) { w.metrics = m }
}

// WithRunnerOptions appends options given to every runner, after those
// derived from the Config.
func WithRunnerOptions(opts ...runner.Option) Option {
	return func(w *World) { w.runnerOpts = append(w.runnerOpts, opts...) }
}
