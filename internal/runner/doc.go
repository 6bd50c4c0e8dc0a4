// Package runner executes BulletML actions for one bullet.
//
// A Runner is a resumable interpreter: it keeps an explicit stack of
// execution frames per thread, so suspension on <wait> is plain data and a
// recursive action never grows the Go call stack. Each call to Step advances
// the bullet by one simulation frame.
//
// The runner never touches the world directly. Everything it needs from the
// outside (rank, random draws, the aim target, bullet creation) goes through
// the Host interface, and every runner holds only read-only references into
// the shared ir.Table, so independent runners may be stepped concurrently.
//
// Threads:
//
// A bullet program may start several actions at once (the top1, top2, ...
// actions of a document, or every action of a bullet definition). Each one
// runs as a thread with its own stack, wait counter and sequence memory, all
// driving the same bullet.State. Threads are stepped in declaration order.
package runner
