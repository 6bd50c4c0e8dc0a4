package testutil

import "sync"

// ScriptedRand replays a fixed list of random draws.
//
// Next returns the scripted values in order and 0 once they run out, so a
// test can state exactly which $rand values a document sees.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ScriptedRand struct {
	mu     sync.Mutex
	values []float64
	calls  int
}

// NewScriptedRand creates a ScriptedRand over values.
func NewScriptedRand(values ...float64) *ScriptedRand {
	return &ScriptedRand{values: values}
}

// Next returns the next scripted value.
func (r *ScriptedRand) Next() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.calls
	r.calls++
	if i >= len(r.values) {
		return 0
	}
	return r.values[i]
}

// Calls returns how many draws were taken, including those past the end
// of the script.
func (r *ScriptedRand) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// Reset rewinds the script.
//
// Used for test reuse. After Reset(), Next() starts from the first value.
func (r *ScriptedRand) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = 0
}
