package runner

import "log/slog"

// DefaultStepQuota bounds the commands one Step may dispatch. It stops a
// zero-wait loop from hanging the host.
const DefaultStepQuota = 10000

// SequenceFallback picks the base of a sequence direction when no earlier
// fire or changeDirection in the thread has set one.
type SequenceFallback int

const (
	// SequenceFromCurrent uses the bullet's current direction.
	SequenceFromCurrent SequenceFallback = iota

	// SequenceFromAim uses the direction toward the host target.
	SequenceFromAim
)

func (f SequenceFallback) String() string {
	if f == SequenceFromAim {
		return "aim"
	}
	return "current"
}

// ParseSequenceFallback maps "current" or "aim" to a SequenceFallback.
func ParseSequenceFallback(s string) (SequenceFallback, bool) {
	switch s {
	case "", "current":
		return SequenceFromCurrent, true
	case "aim":
		return SequenceFromAim, true
	}
	return SequenceFromCurrent, false
}

type config struct {
	stepQuota    int
	seqFallback  SequenceFallback
	strictParams bool
	logger       *slog.Logger
}

func defaultConfig() config {
	return config{
		stepQuota: DefaultStepQuota,
		logger:    slog.New(slog.DiscardHandler),
	}
}

// Option configures a Runner.
type Option func(*config)

// WithStepQuota sets the maximum number of commands one Step may dispatch.
// Values below 1 keep the default.
func WithStepQuota(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.stepQuota = n
		}
	}
}

// WithSequenceFallback sets the base of a sequence direction with no
// predecessor.
func WithSequenceFallback(f SequenceFallback) Option {
	return func(c *config) {
		c.seqFallback = f
	}
}

// WithStrictParams makes a ref passing more params than the callee uses an
// INVALID_PARAMETER error.
func WithStrictParams(strict bool) Option {
	return func(c *config) {
		c.strictParams = strict
	}
}

// WithLogger sets the logger. Runners log nothing unless one is given.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
