package actor

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/conduit/internal/model"
)

const defaultMailboxSize = 64

// API is the HTTP capability the tasks use.
type API interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Del(ctx context.Context, path string, out any) error
}

// Navigator is the host router.
type Navigator interface {
	Navigate(path string)
}

// TokenStore is durable storage for the auth token.
type TokenStore interface {
	Read() (string, bool)
	Write(token string) error
	Clear() error
}

// Deps are the capabilities an interpreter executes effects with.
type Deps struct {
	API       API
	Navigator Navigator
	Tokens    TokenStore
	Logger    *zap.SugaredLogger
}

// Option configures an interpreter.
type Option func(*options)

type options struct {
	parent      Sender
	mailboxSize int
}

// WithParent relays events the machine sends to its parent to p after each
// processed event. Without a parent they stay queued until Drain.
func WithParent(p Sender) Option {
	return func(o *options) {
		o.parent = p
	}
}

// WithMailboxSize sets the capacity of the event queue.
func WithMailboxSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.mailboxSize = n
		}
	}
}

// Stopper is anything with a lifetime bound to an interpreter.
type Stopper interface {
	Stop()
}

type task struct {
	seq    uint64
	cancel context.CancelFunc
}

// Interpreter runs one instance of a machine.
type Interpreter[S State, C any] struct {
	machine Machine[S, C]
	deps    Deps
	parent  Sender
	id      string
	log     *zap.SugaredLogger

	ctx     context.Context
	cancel  context.CancelFunc
	mailbox chan Event
	loop    sync.WaitGroup
	work    sync.WaitGroup

	mu       sync.RWMutex
	snap     Snapshot[S, C]
	changed  chan struct{}
	outbox   []Event
	tasks    map[string]*task
	seq      uint64
	children []Stopper
	stopOnce sync.Once
}

// Start creates an interpreter for m, applies the Init event synchronously
// and starts processing events. The interpreter stops when ctx is done or
// Stop is called.
func Start[S State, C any](ctx context.Context, m Machine[S, C], deps Deps, opts ...Option) *Interpreter[S, C] {
	o := options{mailboxSize: defaultMailboxSize}
	for _, opt := range opts {
		opt(&o)
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(ctx)
	i := &Interpreter[S, C]{
		machine: m,
		deps:    deps,
		parent:  o.parent,
		id:      id,
		log:     logger.With("machine", m.Name, "actor_id", id),
		ctx:     ctx,
		cancel:  cancel,
		mailbox: make(chan Event, o.mailboxSize),
		snap:    Snapshot[S, C]{State: m.Initial, Context: m.Context},
		changed: make(chan struct{}),
		tasks:   map[string]*task{},
	}

	i.process(Init{})

	i.loop.Add(1)
	go i.run()

	return i
}

// ID is the unique id of this instance.
func (i *Interpreter[S, C]) ID() string {
	return i.id
}

// Name is the machine name.
func (i *Interpreter[S, C]) Name() string {
	return i.machine.Name
}

// Send queues ev. It blocks while the mailbox is full and drops ev once the
// interpreter has stopped.
func (i *Interpreter[S, C]) Send(ev Event) {
	select {
	case i.mailbox <- ev:
	case <-i.ctx.Done():
		i.log.Debugw("event dropped, actor stopped", "event", ev.Kind())
	}
}

// Snapshot returns the current state and context.
func (i *Interpreter[S, C]) Snapshot() Snapshot[S, C] {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return i.snap
}

// WaitFor blocks until cond holds for the current snapshot or ctx is done.
func (i *Interpreter[S, C]) WaitFor(ctx context.Context, cond func(Snapshot[S, C]) bool) (Snapshot[S, C], error) {
	for {
		i.mu.RLock()
		snap, changed := i.snap, i.changed
		i.mu.RUnlock()

		if cond(snap) {
			return snap, nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-i.ctx.Done():
			return snap, context.Canceled
		}
	}
}

// Drain returns and clears the events queued for the parent.
func (i *Interpreter[S, C]) Drain() []Event {
	i.mu.Lock()
	defer i.mu.Unlock()

	out := i.outbox
	i.outbox = nil

	return out
}

// InFlight returns the number of running tasks.
func (i *Interpreter[S, C]) InFlight() int {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return len(i.tasks)
}

// Adopt binds the lifetime of child to this interpreter.
func (i *Interpreter[S, C]) Adopt(child Stopper) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.children = append(i.children, child)
}

// Stop cancels every task, stops adopted children and waits for all
// goroutines of this interpreter to exit.
func (i *Interpreter[S, C]) Stop() {
	i.stopOnce.Do(func() {
		i.mu.RLock()
		children := i.children
		i.mu.RUnlock()
		for _, c := range children {
			c.Stop()
		}

		i.cancel()
		i.loop.Wait()
		i.work.Wait()
	})
}

func (i *Interpreter[S, C]) run() {
	defer i.loop.Done()

	for {
		select {
		case <-i.ctx.Done():
			return
		case ev := <-i.mailbox:
			i.process(ev)
		}
	}
}

func (i *Interpreter[S, C]) process(ev Event) {
	if r, ok := ev.(taskResult); ok {
		if !i.settle(r) {
			i.log.Debugw("stale task result dropped", "task", r.id)

			return
		}
		ev = r.ev
	}

	i.mu.RLock()
	from, prev := i.snap.State, i.snap.Context
	i.mu.RUnlock()

	state, ctx, effects := i.machine.Reduce(from, prev, ev)

	if from != state {
		i.log.Debugw("transition", "event", ev.Kind(), "from", from.Paths(), "to", state.Paths())
	}
	recordEvent(i.ctx, i.machine.Name, ev.Kind())

	// effects complete before the new snapshot is observable
	var sent []Event
	for _, fx := range effects {
		sent = i.exec(fx, sent)
	}

	i.mu.Lock()
	i.snap = Snapshot[S, C]{State: state, Context: ctx}
	i.outbox = append(i.outbox, sent...)
	var relay []Event
	if i.parent != nil {
		relay = i.outbox
		i.outbox = nil
	}
	close(i.changed)
	i.changed = make(chan struct{})
	i.mu.Unlock()

	for _, e := range relay {
		i.parent.Send(e)
	}
}

// settle removes the task a result belongs to. It reports false for results
// of tasks that were cancelled or replaced.
func (i *Interpreter[S, C]) settle(r taskResult) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	t, ok := i.tasks[r.id]
	if !ok || t.seq != r.seq {
		return false
	}
	delete(i.tasks, r.id)

	return true
}

// exec runs fx and returns sent with any event for the parent appended.
func (i *Interpreter[S, C]) exec(fx Effect, sent []Event) []Event {
	switch fx := fx.(type) {
	case Navigate:
		if i.deps.Navigator == nil {
			i.log.Warnw("no navigator, navigation skipped", "path", fx.Path)

			return sent
		}
		i.deps.Navigator.Navigate(fx.Path)
	case PersistToken:
		if i.deps.Tokens == nil {
			i.log.Warnw("no token store, token not persisted")

			return sent
		}
		if err := i.deps.Tokens.Write(fx.Token); err != nil {
			i.log.Errorw("persist token", "error", err)
		}
	case ClearToken:
		if i.deps.Tokens == nil {
			return sent
		}
		if err := i.deps.Tokens.Clear(); err != nil {
			i.log.Errorw("clear token", "error", err)
		}
	case SendParent:
		sent = append(sent, fx.Event)
	case Request:
		i.spawn(fx)
	case Cancel:
		i.mu.Lock()
		if t, ok := i.tasks[fx.ID]; ok {
			t.cancel()
			delete(i.tasks, fx.ID)
		}
		i.mu.Unlock()
	default:
		i.log.Errorw("unknown effect", "effect", fx)
	}

	return sent
}

func (i *Interpreter[S, C]) spawn(r Request) {
	if i.deps.API == nil {
		i.log.Errorw("no API, request not sent", "task", r.ID, "path", r.Path)

		return
	}

	ctx, cancel := context.WithCancel(i.ctx)

	i.mu.Lock()
	if stale, ok := i.tasks[r.ID]; ok {
		stale.cancel()
		i.log.Debugw("stale task cancelled", "task", r.ID)
	}
	i.seq++
	seq := i.seq
	i.tasks[r.ID] = &task{seq: seq, cancel: cancel}
	i.mu.Unlock()

	i.work.Add(1)
	go func() {
		defer i.work.Done()
		defer cancel()

		err := i.call(ctx, r)
		if ctx.Err() != nil {
			recordTask(i.ctx, i.machine.Name, "cancelled")

			return
		}

		var ev Event = Done{ID: r.ID, Output: r.Out}
		if err != nil {
			i.log.Warnw("request failed", "task", r.ID, "method", r.Method, "path", r.Path, "error", err)
			recordTask(i.ctx, i.machine.Name, "failed")
			ev = Failed{ID: r.ID, Errors: model.ErrorsFrom(err)}
		} else {
			recordTask(i.ctx, i.machine.Name, "done")
		}

		i.Send(taskResult{id: r.ID, seq: seq, ev: ev})
	}()
}

func (i *Interpreter[S, C]) call(ctx context.Context, r Request) error {
	switch r.Method {
	case http.MethodGet:
		return i.deps.API.Get(ctx, r.Path, r.Out)
	case http.MethodPost:
		return i.deps.API.Post(ctx, r.Path, r.Body, r.Out)
	case http.MethodPut:
		return i.deps.API.Put(ctx, r.Path, r.Body, r.Out)
	case http.MethodDelete:
		return i.deps.API.Del(ctx, r.Path, r.Out)
	}

	return &unsupportedMethodError{method: r.Method}
}

type unsupportedMethodError struct {
	method string
}

func (e *unsupportedMethodError) Error() string {
	return "unsupported method " + e.method
}
