package harness

import "github.com/roach88/bulletml/internal/sim"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// Events is the trace read back from the store.
	Events []sim.Event `json:"events"`

	// Alive[f] is the number of live bullets after frame f. Alive[0] is the
	// root alone.
	Alive []int `json:"alive"`

	// Positions holds bullet positions for the frames named by position
	// assertions.
	Positions map[int]map[string]sim.Point `json:"positions,omitempty"`

	Stats sim.Stats `json:"stats"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Events:    []sim.Event{},
		Positions: make(map[int]map[string]sim.Point),
		Errors:    []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AliveAt returns the live count after frame. A run that stopped early
// because every bullet was gone reports zero for the frames it skipped.
func (r *Result) AliveAt(frame int) (int, bool) {
	switch {
	case frame < 0:
		return 0, false
	case frame < len(r.Alive):
		return r.Alive[frame], true
	case len(r.Alive) > 0 && r.Alive[len(r.Alive)-1] == 0:
		return 0, true
	default:
		return 0, false
	}
}
