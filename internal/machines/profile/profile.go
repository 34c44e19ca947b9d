// Package profile loads a user's profile and toggles following it.
package profile

import (
	"context"
	"net/url"

	"github.com/SergeyParamoshkin/conduit/internal/actor"
	"github.com/SergeyParamoshkin/conduit/internal/model"
	"github.com/SergeyParamoshkin/conduit/internal/navigate"
)

type State string

const (
	Loading       State = "loading"
	ProfileLoaded State = "profileLoaded"
	Errored       State = "errored"
)

func (s State) Paths() []string { return actor.Flatten(string(s)) }

type Context struct {
	Profile model.Profile
	Errors  model.Errors
}

// ToggleFollowing follows the profile, or unfollows it when already
// following.
type ToggleFollowing struct{}

func (ToggleFollowing) Kind() string { return "toggleFollowing" }

const (
	profileRequest = "profileRequest"
	followRequest  = "followRequest"
)

// Machine loads the profile of username. authenticated is the host's guard;
// nil means nobody is signed in.
func Machine(username string, authenticated func() bool) actor.Machine[State, Context] {
	return actor.Machine[State, Context]{
		Name:    "profile",
		Initial: Loading,
		Context: Context{Profile: model.Profile{Username: username}},
		Reduce:  Reducer(authenticated),
	}
}

func Reducer(authenticated func() bool) actor.Reducer[State, Context] {
	return func(s State, c Context, ev actor.Event) (State, Context, []actor.Effect) {
		switch e := ev.(type) {
		case actor.Init:
			path := "profiles/" + url.PathEscape(c.Profile.Username)

			return Loading, c, []actor.Effect{actor.Get(profileRequest, path, &model.ProfileResponse{})}
		case ToggleFollowing:
			if s != ProfileLoaded {
				break
			}
			if authenticated == nil || !authenticated() {
				return s, c, []actor.Effect{actor.Navigate{Path: navigate.Register}}
			}

			return s, c, toggle(&c)
		case actor.Done:
			resp, ok := e.Output.(*model.ProfileResponse)
			if !ok {
				break
			}
			switch {
			case s == Loading && e.ID == profileRequest:
				c.Profile = resp.Profile

				return ProfileLoaded, c, nil
			case s == ProfileLoaded && e.ID == followRequest:
				c.Profile = resp.Profile
			}
		case actor.Failed:
			switch {
			case s == Loading && e.ID == profileRequest:
				c.Errors = e.Errors

				return Errored, c, nil
			case s == ProfileLoaded && e.ID == followRequest:
				c.Errors = e.Errors
			}
		}

		return s, c, nil
	}
}

// toggle flips following optimistically and sends the matching request.
func toggle(c *Context) []actor.Effect {
	path := "profiles/" + url.PathEscape(c.Profile.Username) + "/follow"
	c.Errors = nil
	if c.Profile.Following {
		c.Profile.Following = false

		return []actor.Effect{actor.Del(followRequest, path, &model.ProfileResponse{})}
	}
	c.Profile.Following = true

	return []actor.Effect{actor.Post(followRequest, path, nil, &model.ProfileResponse{})}
}

type Actor = actor.Interpreter[State, Context]

func Start(ctx context.Context, deps actor.Deps, username string, authenticated func() bool, opts ...actor.Option) *Actor {
	return actor.Start(ctx, Machine(username, authenticated), deps, opts...)
}
