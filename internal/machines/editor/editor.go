// Package editor creates new articles and edits existing ones.
package editor

import (
	"context"
	"net/url"

	"github.com/SergeyParamoshkin/conduit/internal/actor"
	"github.com/SergeyParamoshkin/conduit/internal/model"
	"github.com/SergeyParamoshkin/conduit/internal/navigate"
)

type State string

const (
	Creating           State = "idle.creating"
	Updating           State = "idle.updating"
	SubmittingCreating State = "submitting.creating"
	SubmittingUpdating State = "submitting.updating"
	Success            State = "success"
	Errored            State = "errored"
)

func (s State) Paths() []string { return actor.Flatten(string(s)) }

// Mode tells whether the editor creates a new article or updates one.
type Mode string

const (
	Create Mode = "creating"
	Update Mode = "updating"
)

type Context struct {
	Slug       string
	Mode       Mode
	FormValues model.ArticleForm
	Article    model.Article
	Errors     model.Errors
}

// Submit sends the form.
type Submit struct {
	Values model.ArticleForm
}

func (Submit) Kind() string { return "submit" }

const (
	getArticle     = "getArticle"
	articleRequest = "articleRequest"
)

// Machine edits the article with slug, or creates one when slug is empty.
func Machine(slug string) actor.Machine[State, Context] {
	return actor.Machine[State, Context]{
		Name:    "editor",
		Initial: Creating,
		Context: Context{Slug: slug, Mode: Create},
		Reduce:  Reduce,
	}
}

func Reduce(s State, c Context, ev actor.Event) (State, Context, []actor.Effect) {
	switch e := ev.(type) {
	case actor.Init:
		if c.Slug == "" {
			c.Mode = Create

			return Creating, c, nil
		}
		c.Mode = Update

		return Updating, c, []actor.Effect{actor.Get(getArticle, articlePath(c.Slug), &model.ArticleResponse{})}
	case Submit:
		var fx []actor.Effect
		switch s {
		case Updating:
			fx = append(fx, actor.Cancel{ID: getArticle})
		case Errored:
			c.Errors = nil
		case Creating:
		default:
			return s, c, nil
		}
		c.FormValues = e.Values
		next, req := submit(c)

		return next, c, append(fx, req)
	case actor.Done:
		switch {
		case s == Updating && e.ID == getArticle:
			if resp, ok := e.Output.(*model.ArticleResponse); ok {
				c.Article = resp.Article
				c.FormValues = model.FormOf(resp.Article)
			}
		case submitting(s) && e.ID == articleRequest:
			if resp, ok := e.Output.(*model.ArticleResponse); ok {
				c.Article = resp.Article
			}

			return Success, c, []actor.Effect{actor.Navigate{Path: navigate.Article(c.Article.Slug)}}
		}
	case actor.Failed:
		if submitting(s) && e.ID == articleRequest {
			c.Errors = e.Errors

			return Errored, c, nil
		}
	}

	return s, c, nil
}

// submit starts the request matching the editor mode.
func submit(c Context) (State, actor.Effect) {
	body := model.ArticleRequest{Article: c.FormValues}
	if c.Mode == Update {
		return SubmittingUpdating, actor.Put(articleRequest, articlePath(c.Slug), body, &model.ArticleResponse{})
	}

	return SubmittingCreating, actor.Post(articleRequest, "articles", body, &model.ArticleResponse{})
}

func submitting(s State) bool {
	return s == SubmittingCreating || s == SubmittingUpdating
}

func articlePath(slug string) string {
	return "articles/" + url.PathEscape(slug)
}

type Actor = actor.Interpreter[State, Context]

// Start runs an editor. An empty slug starts a new article.
func Start(ctx context.Context, deps actor.Deps, slug string, opts ...actor.Option) *Actor {
	return actor.Start(ctx, Machine(slug), deps, opts...)
}
