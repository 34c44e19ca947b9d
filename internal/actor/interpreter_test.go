package actor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/SergeyParamoshkin/conduit/internal/model"
)

type testState string

func (s testState) Paths() []string { return Flatten(string(s)) }

type testCtx struct {
	Items  []string
	Loads  int
	Errors model.Errors
}

type reload struct{}

func (reload) Kind() string { return "reload" }

type notify struct{ Msg string }

func (notify) Kind() string { return "notify" }

type finish struct{}

func (finish) Kind() string { return "finish" }

type forget struct{}

func (forget) Kind() string { return "forget" }

func testMachine() Machine[testState, testCtx] {
	return Machine[testState, testCtx]{
		Name:    "test",
		Initial: "idle",
		Reduce: func(s testState, c testCtx, ev Event) (testState, testCtx, []Effect) {
			switch e := ev.(type) {
			case Init, reload:
				return "loading", c, []Effect{Get("load", "items", &[]string{})}
			case Done:
				if e.ID == "load" && s == "loading" {
					c.Items = *e.Output.(*[]string)
					c.Loads++

					return "loaded", c, nil
				}
			case Failed:
				c.Errors = e.Errors

				return "failed", c, nil
			case notify:
				return s, c, []Effect{
					PersistToken{Token: e.Msg},
					SendParent{Event: e},
					Navigate{Path: "/" + e.Msg},
				}
			case finish:
				return "done", c, []Effect{
					PersistToken{Token: "final"},
					SendParent{Event: e},
					Get("load", "items", &[]string{}),
				}
			case forget:
				return s, c, []Effect{ClearToken{}, Cancel{ID: "load"}}
			}

			return s, c, nil
		},
	}
}

type fakeAPI struct {
	get func(ctx context.Context, path string, out any) error
}

func (f *fakeAPI) Get(ctx context.Context, path string, out any) error {
	return f.get(ctx, path, out)
}

func (f *fakeAPI) Post(context.Context, string, any, any) error { return nil }

func (f *fakeAPI) Put(context.Context, string, any, any) error { return nil }

func (f *fakeAPI) Del(context.Context, string, any) error { return nil }

func items(out any, v ...string) error {
	*out.(*[]string) = v

	return nil
}

type recorder struct {
	mu     sync.Mutex
	paths  []string
	token  string
	stored bool
}

func (r *recorder) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recorder) Read() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.token, r.stored
}

func (r *recorder) Write(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token, r.stored = token, true

	return nil
}

func (r *recorder) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token, r.stored = "", false

	return nil
}

func waitCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	return ctx
}

func TestInterpreterRunsInitRequest(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeAPI{get: func(_ context.Context, path string, out any) error {
		assert.Equal(t, "items", path)

		return items(out, "a", "b")
	}}
	i := Start(context.Background(), testMachine(), Deps{API: api, Logger: zaptest.NewLogger(t).Sugar()})
	defer i.Stop()

	snap, err := i.WaitFor(waitCtx(t), func(s Snapshot[testState, testCtx]) bool {
		return s.Matches("loaded")
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, snap.Context.Items)
	assert.Equal(t, 1, snap.Context.Loads)
	assert.Equal(t, 0, i.InFlight())
}

func TestInterpreterReportsFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeAPI{get: func(context.Context, string, any) error {
		return errors.New("connection refused")
	}}
	i := Start(context.Background(), testMachine(), Deps{API: api})
	defer i.Stop()

	snap, err := i.WaitFor(waitCtx(t), func(s Snapshot[testState, testCtx]) bool {
		return s.State == "failed"
	})
	require.NoError(t, err)
	assert.Equal(t, model.Errors{model.NetworkField: {"connection refused"}}, snap.Context.Errors)
}

func TestInterpreterCancelsStaleTask(t *testing.T) {
	defer goleak.VerifyNone(t)

	var (
		mu        sync.Mutex
		calls     int
		cancelled = make(chan struct{})
		started   = make(chan struct{})
	)
	api := &fakeAPI{get: func(ctx context.Context, _ string, out any) error {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()

		if n == 1 {
			close(started)
			<-ctx.Done()
			close(cancelled)

			return ctx.Err()
		}

		return items(out, "fresh")
	}}
	i := Start(context.Background(), testMachine(), Deps{API: api})
	defer i.Stop()

	<-started
	i.Send(reload{})

	snap, err := i.WaitFor(waitCtx(t), func(s Snapshot[testState, testCtx]) bool {
		return s.State == "loaded"
	})
	require.NoError(t, err)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("first request was not cancelled")
	}
	assert.Equal(t, []string{"fresh"}, snap.Context.Items)
	assert.Equal(t, 1, snap.Context.Loads)
}

func TestInterpreterCancelEffect(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	api := &fakeAPI{get: func(ctx context.Context, _ string, out any) error {
		select {
		case <-release:
			return items(out, "late")
		case <-ctx.Done():
			return ctx.Err()
		}
	}}
	store := &recorder{stored: true, token: "t"}
	i := Start(context.Background(), testMachine(), Deps{API: api, Tokens: store})
	defer i.Stop()

	i.Send(forget{})
	require.Eventually(t, func() bool { return i.InFlight() == 0 }, time.Second, 5*time.Millisecond)
	close(release)

	_, stored := store.Read()
	assert.False(t, stored)
	assert.Equal(t, testState("loading"), i.Snapshot().State)
}

func TestInterpreterEffects(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeAPI{get: func(_ context.Context, _ string, out any) error { return items(out) }}
	rec := &recorder{}
	i := Start(context.Background(), testMachine(), Deps{API: api, Navigator: rec, Tokens: rec})
	defer i.Stop()

	i.Send(notify{Msg: "home"})

	var sent []Event
	require.Eventually(t, func() bool {
		sent = append(sent, i.Drain()...)

		return len(sent) > 0
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []Event{notify{Msg: "home"}}, sent)
	assert.Empty(t, i.Drain())

	token, ok := rec.Read()
	assert.True(t, ok)
	assert.Equal(t, "home", token)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{"/home"}, rec.paths)
}

func TestInterpreterRelaysToParent(t *testing.T) {
	defer goleak.VerifyNone(t)

	var (
		mu  sync.Mutex
		got []Event
	)
	parent := SenderFunc(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, ev)
	})

	api := &fakeAPI{get: func(_ context.Context, _ string, out any) error { return items(out) }}
	i := Start(context.Background(), testMachine(), Deps{API: api}, WithParent(parent))
	defer i.Stop()

	i.Send(notify{Msg: "up"})
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(got) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, i.Drain())
}

// slowStore takes a while to persist.
type slowStore struct {
	recorder
}

func (s *slowStore) Write(token string) error {
	time.Sleep(50 * time.Millisecond)

	return s.recorder.Write(token)
}

func TestInterpreterSnapshotFollowsEffects(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	api := &fakeAPI{get: func(ctx context.Context, _ string, out any) error {
		select {
		case <-release:
			return items(out)
		case <-ctx.Done():
			return ctx.Err()
		}
	}}
	store := &slowStore{}
	i := Start(context.Background(), testMachine(), Deps{API: api, Tokens: store})
	defer i.Stop()
	defer close(release)

	i.Send(finish{})
	require.Eventually(t, func() bool {
		return i.Snapshot().State == "done"
	}, time.Second, time.Millisecond)

	token, ok := store.Read()
	assert.True(t, ok)
	assert.Equal(t, "final", token)
	assert.Equal(t, []Event{finish{}}, i.Drain())
	assert.Equal(t, 1, i.InFlight())
}

type stopRecorder struct{ stopped bool }

func (s *stopRecorder) Stop() { s.stopped = true }

func TestInterpreterStopsChildren(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeAPI{get: func(ctx context.Context, _ string, _ any) error {
		<-ctx.Done()

		return ctx.Err()
	}}
	i := Start(context.Background(), testMachine(), Deps{API: api})
	child := &stopRecorder{}
	i.Adopt(child)

	i.Stop()
	i.Stop()
	assert.True(t, child.stopped)

	_, err := i.WaitFor(context.Background(), func(s Snapshot[testState, testCtx]) bool { return false })
	assert.ErrorIs(t, err, context.Canceled)
}
