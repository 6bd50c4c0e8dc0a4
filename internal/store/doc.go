// Package store records simulation runs in SQLite.
//
// A run is the document source, its hash and the sim.Config it ran with;
// its events are appended frame by frame through a Recorder. Because the
// simulation is deterministic, a stored run can be replayed and the fresh
// event stream compared with the recorded one.
//
// # Ordering
//
// Runs are ordered by created_at_seq, a logical counter, never by wall
// time. Events are ordered by (run_id, seq). Every query orders explicitly
// so results are identical across reads.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
