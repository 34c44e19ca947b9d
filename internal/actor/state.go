package actor

import "strings"

// State is a machine state value. Paths lists every active state node as a
// dotted path, ancestors included, e.g. "feedLoaded" and
// "feedLoaded.noArticles".
type State interface {
	comparable
	Paths() []string
}

// Flatten expands a dotted state value into itself and its ancestors.
func Flatten(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ".")
	paths := make([]string, 0, len(parts))
	for i := range parts {
		paths = append(paths, strings.Join(parts[:i+1], "."))
	}

	return paths
}

// Matches reports whether path is an active node of s.
func Matches[S State](s S, path string) bool {
	for _, p := range s.Paths() {
		if p == path {
			return true
		}
	}

	return false
}

// Reducer computes the next state, context and effects for an event. It must
// not perform side effects itself.
type Reducer[S State, C any] func(state S, ctx C, ev Event) (S, C, []Effect)

// Machine describes a state machine: its name, initial snapshot and reducer.
type Machine[S State, C any] struct {
	Name    string
	Initial S
	Context C
	Reduce  Reducer[S, C]
}

// Snapshot is the read-only view of an actor.
type Snapshot[S State, C any] struct {
	State   S
	Context C
}

// Matches reports whether path is an active node of the snapshot state.
func (s Snapshot[S, C]) Matches(path string) bool {
	return Matches(s.State, path)
}
