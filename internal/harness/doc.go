// Package harness runs BulletML scenarios and checks what they produce.
//
// # Scenario Format
//
// Scenarios are YAML (.yaml, .yml) or CUE (.cue) files:
//
//	name: aimed_burst
//	description: "Three aimed shots, then the emitter vanishes"
//	document: ../documents/aimed_burst.xml   # or source: "<bulletml>...</bulletml>"
//	frames: 30
//	seed: 7
//	rank: 0.5
//	origin: { x: 120, y: 40 }
//	target: { x: 120, y: 300 }
//	assertions:
//	  - type: fire_count
//	    count: 3
//	  - type: vanished_at
//	    frame: 10
//
// Document paths are resolved relative to the scenario file.
//
// # Assertion Types
//
//   - fire_count: number of fire events, optionally limited to frames [from, to]
//   - vanished_at: the root (or the named bullet) vanishes at frame
//   - alive_count: number of live bullets after frame
//   - no_errors: no runner stopped with a runtime error
//   - error_code: some runner stopped with the given error code
//   - position: bullet is within tolerance of (x, y) after frame
//
// # Determinism
//
// Bullets are named b1, b2, ... in creation order and random draws come
// from the scenario seed, so a scenario always yields the same trace. Run
// records every scenario into an in-memory store and reads the trace back,
// which makes the golden files a check on the store as well.
package harness
