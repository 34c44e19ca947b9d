// Package auth submits the login and signup forms.
//
// The same submit event serves both forms: a non-empty Name selects signup.
// On success the actor tells its parent with session.LogIn, persists the
// token and goes home. Failures land in Errors and the form may be
// resubmitted.
package auth

import (
	"context"

	"github.com/SergeyParamoshkin/conduit/internal/actor"
	"github.com/SergeyParamoshkin/conduit/internal/model"
	"github.com/SergeyParamoshkin/conduit/internal/navigate"
	"github.com/SergeyParamoshkin/conduit/internal/session"
)

type State string

const (
	Idle          State = "idle"
	Signup        State = "submitting.signup"
	Login         State = "submitting.login"
	Authenticated State = "authenticated"
	Failed        State = "failed"
)

func (s State) Paths() []string { return actor.Flatten(string(s)) }

type Form struct {
	Name     string
	Email    string
	Password string
}

type Context struct {
	Form   Form
	Errors model.Errors
	Token  string
}

// Submit sends the login or signup form.
type Submit struct {
	Form
}

func (Submit) Kind() string { return "submit" }

const (
	signupUser = "signupUser"
	loginUser  = "loginUser"
)

func Machine() actor.Machine[State, Context] {
	return actor.Machine[State, Context]{
		Name:    "auth",
		Initial: Idle,
		Reduce:  Reduce,
	}
}

func Reduce(s State, c Context, ev actor.Event) (State, Context, []actor.Effect) {
	switch e := ev.(type) {
	case Submit:
		// authenticated starts a new cycle, e.g. after the app logged out
		if s != Idle && s != Failed && s != Authenticated {
			break
		}
		if s == Failed {
			c.Errors = nil
		}
		c.Form = e.Form

		return choose(c)
	case actor.Done:
		if !awaiting(s, e.ID) {
			break
		}
		resp, ok := e.Output.(*model.UserResponse)
		if !ok {
			break
		}
		c.Token = resp.User.Token

		return Authenticated, c, []actor.Effect{
			actor.SendParent{Event: session.LogIn{User: resp.User}},
			actor.PersistToken{Token: c.Token},
			actor.Navigate{Path: navigate.Home},
		}
	case actor.Failed:
		if !awaiting(s, e.ID) {
			break
		}
		c.Errors = e.Errors

		return Failed, c, nil
	}

	return s, c, nil
}

func choose(c Context) (State, Context, []actor.Effect) {
	if c.Form.Name != "" {
		body := model.RegisterRequest{User: model.Registration{
			Username: c.Form.Name,
			Email:    c.Form.Email,
			Password: c.Form.Password,
		}}

		return Signup, c, []actor.Effect{actor.Post(signupUser, "users", body, &model.UserResponse{})}
	}

	body := model.LoginRequest{User: model.Credentials{
		Email:    c.Form.Email,
		Password: c.Form.Password,
	}}

	return Login, c, []actor.Effect{actor.Post(loginUser, "users/login", body, &model.UserResponse{})}
}

func awaiting(s State, id string) bool {
	return (s == Signup && id == signupUser) || (s == Login && id == loginUser)
}

type Actor = actor.Interpreter[State, Context]

func Start(ctx context.Context, deps actor.Deps, opts ...actor.Option) *Actor {
	return actor.Start(ctx, Machine(), deps, opts...)
}
