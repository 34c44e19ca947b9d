package actor

import "github.com/SergeyParamoshkin/conduit/internal/model"

// Event is anything a machine reacts to.
type Event interface {
	Kind() string
}

// Init is the first event every machine receives. Machines run the entry
// actions of their initial state on it.
type Init struct{}

func (Init) Kind() string { return "init" }

// Done reports a successful task. Output is the value the request decoded
// into.
type Done struct {
	ID     string
	Output any
}

func (e Done) Kind() string { return "done." + e.ID }

// Failed reports a failed task.
type Failed struct {
	ID     string
	Errors model.Errors
}

func (e Failed) Kind() string { return "error." + e.ID }

// Sender accepts events.
type Sender interface {
	Send(ev Event)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ev Event)

func (f SenderFunc) Send(ev Event) { f(ev) }

// taskResult carries a task outcome with the generation it belongs to.
type taskResult struct {
	id  string
	seq uint64
	ev  Event
}

func (r taskResult) Kind() string { return r.ev.Kind() }
