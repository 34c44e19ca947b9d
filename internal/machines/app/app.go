// Package app is the root actor. It owns the session and the long-lived
// auth actor, and resolves whether a user is signed in.
package app

import (
	"context"

	"github.com/SergeyParamoshkin/conduit/internal/actor"
	"github.com/SergeyParamoshkin/conduit/internal/machines/auth"
	"github.com/SergeyParamoshkin/conduit/internal/model"
	"github.com/SergeyParamoshkin/conduit/internal/navigate"
	"github.com/SergeyParamoshkin/conduit/internal/session"
)

type State string

const (
	Unauthenticated State = "user.unauthenticated"
	Authenticating  State = "user.authenticating"
	Authenticated   State = "user.authenticated"
)

func (s State) Paths() []string { return actor.Flatten(string(s)) }

type Context struct {
	Session model.Session
	// TokenRejected is set when the server refused the stored token. The
	// token stays stored but is not retried until a new login.
	TokenRejected bool
}

const userRequest = "userRequest"

// Machine starts from the stored token, if any.
func Machine(token string) actor.Machine[State, Context] {
	return actor.Machine[State, Context]{
		Name:    "app",
		Initial: Unauthenticated,
		Context: Context{Session: model.Session{Token: token}},
		Reduce:  Reduce,
	}
}

func Reduce(s State, c Context, ev actor.Event) (State, Context, []actor.Effect) {
	var fx []actor.Effect

	switch e := ev.(type) {
	case actor.Init:
	case session.LogIn:
		user := e.User
		c.Session.User = &user
		if user.Token != "" {
			c.Session.Token = user.Token
			c.TokenRejected = false
		}
		fx = leave(s, Authenticated)
		s = Authenticated
	case session.UpdateUser:
		user := e.User
		c.Session.User = &user
	case session.LogOut:
		if s != Authenticated {
			break
		}
		c.Session = model.Session{}
		c.TokenRejected = false
		fx = []actor.Effect{actor.ClearToken{}, actor.Navigate{Path: navigate.Home}}
		s = Unauthenticated
	case actor.Done:
		if s != Authenticating || e.ID != userRequest {
			break
		}
		resp, ok := e.Output.(*model.UserResponse)
		if !ok {
			break
		}
		user := resp.User
		c.Session.User = &user
		s = Authenticated
	case actor.Failed:
		if s != Authenticating || e.ID != userRequest {
			break
		}
		c.TokenRejected = true
		s = Unauthenticated
	}

	s, more := resolve(s, c)

	return s, c, append(fx, more...)
}

// resolve runs the eventless transitions of unauthenticated.
func resolve(s State, c Context) (State, []actor.Effect) {
	if s != Unauthenticated {
		return s, nil
	}
	if c.Session.User != nil {
		return Authenticated, nil
	}
	if c.Session.Token != "" && !c.TokenRejected {
		return Authenticating, []actor.Effect{actor.Get(userRequest, "user", &model.UserResponse{})}
	}

	return s, nil
}

// leave cancels the request of authenticating when moving elsewhere.
func leave(from, to State) []actor.Effect {
	if from == Authenticating && to != Authenticating {
		return []actor.Effect{actor.Cancel{ID: userRequest}}
	}

	return nil
}

// Actor is the running app with its auth child.
type Actor struct {
	*actor.Interpreter[State, Context]
	Auth *auth.Actor
}

// Start reads the stored token, starts the app actor and spawns the auth
// actor as its child. Auth's parent events are relayed to the app.
func Start(ctx context.Context, deps actor.Deps, opts ...actor.Option) *Actor {
	var token string
	if deps.Tokens != nil {
		token, _ = deps.Tokens.Read()
	}

	a := &Actor{Interpreter: actor.Start(ctx, Machine(token), deps, opts...)}
	a.Auth = auth.Start(ctx, deps, actor.WithParent(a))
	a.Adopt(a.Auth)

	return a
}

// User returns the signed-in user, if any.
func (a *Actor) User() (model.User, bool) {
	snap := a.Snapshot()
	if snap.Context.Session.User == nil {
		return model.User{}, false
	}

	return *snap.Context.Session.User, true
}

// IsAuthenticated reports whether a user is signed in. Page actors use it as
// their authentication guard.
func (a *Actor) IsAuthenticated() bool {
	return a.Snapshot().State == Authenticated
}
