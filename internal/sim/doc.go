// Package sim is a reference host for the runner: a world of bullets
// stepped one frame at a time.
//
// Each frame the world steps every live runner, merges the bullets they
// fired and the ones that vanished, applies kinematics, culls bullets that
// left the bounds and hands the frame's events to a Recorder. Runners can be
// stepped on several goroutines; every bullet gets a private host adapter and
// random source, and the merge runs in bullet order, so the event stream is
// identical for any worker count.
package sim
