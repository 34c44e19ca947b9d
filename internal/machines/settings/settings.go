// Package settings submits changes to the signed-in user's account.
package settings

import (
	"context"

	"github.com/pkg/errors"

	"github.com/SergeyParamoshkin/conduit/internal/actor"
	"github.com/SergeyParamoshkin/conduit/internal/model"
	"github.com/SergeyParamoshkin/conduit/internal/navigate"
	"github.com/SergeyParamoshkin/conduit/internal/session"
)

// ErrNoParent is returned when the actor is started without a parent to
// report the updated user to.
var ErrNoParent = errors.New("settings: a parent is required to receive updateUser")

type State string

const (
	Idle       State = "idle"
	Submitting State = "submitting"
	Success    State = "success"
	Failed     State = "failed"
)

func (s State) Paths() []string { return actor.Flatten(string(s)) }

type Context struct {
	Values model.UserUpdate
	User   model.User
	Errors model.Errors
}

// Submit sends the settings form.
type Submit struct {
	Values model.UserUpdate
}

func (Submit) Kind() string { return "submit" }

const updateUser = "updateUser"

func Machine() actor.Machine[State, Context] {
	return actor.Machine[State, Context]{
		Name:    "settings",
		Initial: Idle,
		Reduce:  Reduce,
	}
}

func Reduce(s State, c Context, ev actor.Event) (State, Context, []actor.Effect) {
	switch e := ev.(type) {
	case Submit:
		if s != Idle && s != Failed {
			break
		}
		if s == Failed {
			c.Errors = nil
		}
		c.Values = e.Values
		body := model.UpdateUserRequest{User: c.Values}

		return Submitting, c, []actor.Effect{actor.Put(updateUser, "user", body, &model.UserResponse{})}
	case actor.Done:
		if s != Submitting || e.ID != updateUser {
			break
		}
		if resp, ok := e.Output.(*model.UserResponse); ok {
			c.User = resp.User
		}

		return Success, c, []actor.Effect{
			actor.SendParent{Event: session.UpdateUser{User: c.User}},
			actor.Navigate{Path: navigate.Profile(c.User.Username)},
		}
	case actor.Failed:
		if s != Submitting || e.ID != updateUser {
			break
		}
		c.Errors = e.Errors

		return Failed, c, nil
	}

	return s, c, nil
}

type Actor = actor.Interpreter[State, Context]

// Start runs a settings form whose updates are reported to parent.
func Start(ctx context.Context, deps actor.Deps, parent actor.Sender, opts ...actor.Option) (*Actor, error) {
	if parent == nil {
		return nil, ErrNoParent
	}
	opts = append(opts, actor.WithParent(parent))

	return actor.Start(ctx, Machine(), deps, opts...), nil
}
