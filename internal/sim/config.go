package sim

import (
	"fmt"

	"github.com/roach88/bulletml/internal/runner"
)

// Point is a position in screen coordinates.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Rect is an axis-aligned area. Bullets outside it are culled.
type Rect struct {
	MinX float64 `yaml:"min_x" json:"min_x"`
	MinY float64 `yaml:"min_y" json:"min_y"`
	MaxX float64 `yaml:"max_x" json:"max_x"`
	MaxY float64 `yaml:"max_y" json:"max_y"`
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Config is the serializable part of a world's setup. Two worlds built from
// the same document and Config produce the same events.
type Config struct {
	Seed         uint64    `yaml:"seed"`
	Rank         float64   `yaml:"rank"`
	Origin       Point     `yaml:"origin"`
	Target       Point     `yaml:"target"`
	Mirrored     bool      `yaml:"mirrored,omitempty"`
	Bounds       *Rect     `yaml:"bounds,omitempty"`
	Workers      int       `yaml:"workers,omitempty"`
	DefaultSpeed float64   `yaml:"default_speed"`
	Action       string    `yaml:"action,omitempty"`
	Params       []float64 `yaml:"params,omitempty"`

	SequenceFallback string `yaml:"sequence_fallback,omitempty"`
	StepQuota        int    `yaml:"step_quota,omitempty"`
	StrictParams     bool   `yaml:"strict_params,omitempty"`
}

// DefaultConfig returns the configuration New starts from.
func DefaultConfig() Config {
	return Config{
		Seed:         1,
		Rank:         0.5,
		DefaultSpeed: 1,
	}
}

// RunnerOptions translates the runner settings of c.
func (c Config) RunnerOptions() ([]runner.Option, error) {
	fallback, ok := runner.ParseSequenceFallback(c.SequenceFallback)
	if !ok {
		return nil, fmt.Errorf("unknown sequence fallback %q", c.SequenceFallback)
	}
	opts := []runner.Option{
		runner.WithSequenceFallback(fallback),
		runner.WithStrictParams(c.StrictParams),
	}
	if c.StepQuota > 0 {
		opts = append(opts, runner.WithStepQuota(c.StepQuota))
	}
	return opts, nil
}
