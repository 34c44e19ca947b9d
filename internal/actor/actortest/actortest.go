// Package actortest provides a scripted API and recording capabilities for
// driving actors in tests.
package actortest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/SergeyParamoshkin/conduit/internal/actor"
	"github.com/SergeyParamoshkin/conduit/internal/navigate"
	"github.com/SergeyParamoshkin/conduit/internal/storage"
)

// Call is one request seen by the API.
type Call struct {
	Method string
	Path   string
	Body   any
}

type response struct {
	body any
	err  error
	gate chan struct{}
}

// API answers requests from a script keyed by method and path. Unscripted
// requests fail.
type API struct {
	mu        sync.Mutex
	calls     []Call
	responses map[string]response
}

func NewAPI() *API {
	return &API{responses: map[string]response{}}
}

func key(method, path string) string { return method + " " + path }

// On answers method path with body, JSON encoded and decoded into the
// caller's output.
func (a *API) On(method, path string, body any) *API {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.responses[key(method, path)] = response{body: body}

	return a
}

// Fail answers method path with err.
func (a *API) Fail(method, path string, err error) *API {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.responses[key(method, path)] = response{err: err}

	return a
}

// Hold makes method path block until the returned release is called or the
// request is cancelled.
func (a *API) Hold(method, path string, body any) (release func()) {
	gate := make(chan struct{})
	a.mu.Lock()
	defer a.mu.Unlock()
	a.responses[key(method, path)] = response{body: body, gate: gate}

	var once sync.Once

	return func() { once.Do(func() { close(gate) }) }
}

// Calls returns every request seen so far.
func (a *API) Calls() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()

	return append([]Call(nil), a.calls...)
}

// Called reports whether method path was requested.
func (a *API) Called(method, path string) bool {
	for _, c := range a.Calls() {
		if c.Method == method && c.Path == path {
			return true
		}
	}

	return false
}

func (a *API) Get(ctx context.Context, path string, out any) error {
	return a.serve(ctx, http.MethodGet, path, nil, out)
}

func (a *API) Post(ctx context.Context, path string, body, out any) error {
	return a.serve(ctx, http.MethodPost, path, body, out)
}

func (a *API) Put(ctx context.Context, path string, body, out any) error {
	return a.serve(ctx, http.MethodPut, path, body, out)
}

func (a *API) Del(ctx context.Context, path string, out any) error {
	return a.serve(ctx, http.MethodDelete, path, nil, out)
}

func (a *API) serve(ctx context.Context, method, path string, body, out any) error {
	a.mu.Lock()
	a.calls = append(a.calls, Call{Method: method, Path: path, Body: body})
	resp, ok := a.responses[key(method, path)]
	a.mu.Unlock()

	if !ok {
		return fmt.Errorf("actortest: no response for %s %s", method, path)
	}
	if resp.gate != nil {
		select {
		case <-resp.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if resp.err != nil {
		return resp.err
	}
	if out == nil || resp.body == nil {
		return nil
	}
	data, err := json.Marshal(resp.body)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, out)
}

// Env is a set of recording capabilities.
type Env struct {
	API     *API
	History *navigate.History
	Tokens  *storage.MemoryTokenStore
}

// NewEnv returns an Env whose token store holds token, if not empty.
func NewEnv(token string) *Env {
	return &Env{
		API:     NewAPI(),
		History: navigate.NewHistory(nil),
		Tokens:  storage.NewMemoryTokenStore(token),
	}
}

// Deps wires the Env into actor dependencies logging to t.
func (e *Env) Deps(t testing.TB) actor.Deps {
	return actor.Deps{
		API:       e.API,
		Navigator: e.History,
		Tokens:    e.Tokens,
		Logger:    zaptest.NewLogger(t).Sugar(),
	}
}
