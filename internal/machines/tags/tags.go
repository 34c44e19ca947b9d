// Package tags loads the popular tag list.
package tags

import (
	"context"

	"github.com/SergeyParamoshkin/conduit/internal/actor"
	"github.com/SergeyParamoshkin/conduit/internal/model"
)

type State string

const (
	Loading    State = "loading"
	TagsLoaded State = "tagsLoaded"
	Errored    State = "errored"
)

func (s State) Paths() []string { return actor.Flatten(string(s)) }

type Context struct {
	Tags   []string
	Errors model.Errors
}

const tagsRequest = "tagsRequest"

// Machine loads the tags once.
func Machine() actor.Machine[State, Context] {
	return actor.Machine[State, Context]{
		Name:    "tags",
		Initial: Loading,
		Reduce:  Reduce,
	}
}

func Reduce(s State, c Context, ev actor.Event) (State, Context, []actor.Effect) {
	switch e := ev.(type) {
	case actor.Init:
		return Loading, c, []actor.Effect{actor.Get(tagsRequest, "tags", &model.TagListResponse{})}
	case actor.Done:
		if s != Loading || e.ID != tagsRequest {
			break
		}
		if resp, ok := e.Output.(*model.TagListResponse); ok {
			c.Tags = resp.Tags
		}

		return TagsLoaded, c, nil
	case actor.Failed:
		if s != Loading || e.ID != tagsRequest {
			break
		}
		c.Errors = e.Errors

		return Errored, c, nil
	}

	return s, c, nil
}

type Actor = actor.Interpreter[State, Context]

func Start(ctx context.Context, deps actor.Deps, opts ...actor.Option) *Actor {
	return actor.Start(ctx, Machine(), deps, opts...)
}
