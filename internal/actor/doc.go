// Package actor runs the client state machines.
//
// A machine is a pure reducer over a state value and a context record:
//
//	Reduce(state, ctx, event) -> (state, ctx, effects)
//
// An Interpreter owns one machine instance. It processes one event at a time
// on its own goroutine, stores the resulting snapshot and executes the
// returned effects: navigation, token storage, parent notification and
// network requests. Requests run as tasks keyed by id; starting a task whose
// id is already in flight cancels the stale one and drops its result. A task
// reports back to its owner as a Done or Failed event.
package actor
