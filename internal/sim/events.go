package sim

import (
	"context"
	"slices"
	"sync"
)

// EventKind classifies an Event.
type EventKind string

const (
	// EventSpawn: the root bullet entered the world.
	EventSpawn EventKind = "spawn"

	// EventFire: a runner fired a bullet. ParentID is the shooter.
	EventFire EventKind = "fire"

	// EventVanish: a runner executed <vanish>.
	EventVanish EventKind = "vanish"

	// EventCull: the bullet left the world bounds.
	EventCull EventKind = "cull"

	// EventError: a runtime error vanished the runner.
	EventError EventKind = "error"
)

// Event is one observable thing that happened in a frame. Position,
// direction and speed are the bullet's at that moment.
type Event struct {
	Frame     int
	Kind      EventKind
	BulletID  string
	ParentID  string
	X, Y      float64
	Direction float64
	Speed     float64

	// Code and Message are set for EventError.
	Code    string
	Message string
}

// Recorder receives the events of each frame in order. Frames without
// events are not reported.
type Recorder interface {
	RecordFrame(ctx context.Context, frame int, events []Event) error
}

// MemoryRecorder keeps every event in memory.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *MemoryRecorder) RecordFrame(_ context.Context, _ int, events []Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *MemoryRecorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Count returns how many recorded events have kind k.
func (r *MemoryRecorder) Count(k EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Kind == k {
			n++
		}
	}
	return n
}

// MultiRecorder fans events out to several recorders, stopping at the
// first error.
type MultiRecorder []Recorder

func (m MultiRecorder) RecordFrame(ctx context.Context, frame int, events []Event) error {
	for _, r := range m {
		if err := r.RecordFrame(ctx, frame, events); err != nil {
			return err
		}
	}
	return nil
}
