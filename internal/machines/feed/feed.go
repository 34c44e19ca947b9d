// Package feed pages through article lists and favorites articles in them.
package feed

import (
	"context"
	"net/url"
	"strings"

	"github.com/SergeyParamoshkin/conduit/internal/actor"
	"github.com/SergeyParamoshkin/conduit/internal/model"
	"github.com/SergeyParamoshkin/conduit/internal/navigate"
)

type State string

const (
	Loading           State = "loading"
	NoArticles        State = "feedLoaded.noArticles"
	ArticlesAvailable State = "feedLoaded.articlesAvailable"
	FailedLoadingFeed State = "failedLoadingFeed"
)

func (s State) Paths() []string { return actor.Flatten(string(s)) }

// Loaded reports whether s is inside feedLoaded.
func (s State) Loaded() bool { return s == NoArticles || s == ArticlesAvailable }

type Context struct {
	Params        model.FeedParams
	Articles      []model.Article
	ArticlesCount int
	Errors        model.Errors
}

// Refresh reloads the current page.
type Refresh struct{}

func (Refresh) Kind() string { return "refresh" }

// UpdateFeed replaces the query and reloads.
type UpdateFeed struct {
	Params model.FeedParams
}

func (UpdateFeed) Kind() string { return "updateFeed" }

// ToggleFavorite favorites the listed article with Slug, or unfavorites it.
type ToggleFavorite struct {
	Slug string
}

func (ToggleFavorite) Kind() string { return "toggleFavorite" }

// Retry reloads after a failed load.
type Retry struct{}

func (Retry) Kind() string { return "retry" }

const (
	getFeed    = "getFeed"
	favoriting = "favoriting:"
)

// Machine lists articles matching params. authenticated is the host's
// guard; nil means nobody is signed in.
func Machine(params model.FeedParams, authenticated func() bool) actor.Machine[State, Context] {
	return actor.Machine[State, Context]{
		Name:    "feed",
		Initial: Loading,
		Context: Context{Params: params},
		Reduce:  Reducer(authenticated),
	}
}

func Reducer(authenticated func() bool) actor.Reducer[State, Context] {
	return func(s State, c Context, ev actor.Event) (State, Context, []actor.Effect) {
		switch e := ev.(type) {
		case actor.Init:
			return load(c)
		case Refresh:
			if s.Loaded() {
				return load(c)
			}
		case UpdateFeed:
			if s.Loaded() {
				c.Params = e.Params

				return load(c)
			}
		case Retry:
			if s == FailedLoadingFeed {
				return load(c)
			}
		case ToggleFavorite:
			if !s.Loaded() {
				break
			}
			if authenticated == nil || !authenticated() {
				return s, c, []actor.Effect{actor.Navigate{Path: navigate.Register}}
			}

			return s, c, toggle(&c, e.Slug)
		case actor.Done:
			switch {
			case s == Loading && e.ID == getFeed:
				if resp, ok := e.Output.(*model.ArticleListResponse); ok {
					c.Articles = resp.Articles
					c.ArticlesCount = resp.ArticlesCount
				}
				c.Errors = nil

				return settle(c), c, nil
			case s.Loaded() && strings.HasPrefix(e.ID, favoriting):
				if resp, ok := e.Output.(*model.ArticleResponse); ok {
					c.Articles = replace(c.Articles, resp.Article)
				}
			}
		case actor.Failed:
			switch {
			case s == Loading && e.ID == getFeed:
				c.Errors = e.Errors

				return FailedLoadingFeed, c, nil
			case s.Loaded() && strings.HasPrefix(e.ID, favoriting):
				c.Errors = e.Errors
			}
		}

		return s, c, nil
	}
}

func load(c Context) (State, Context, []actor.Effect) {
	return Loading, c, []actor.Effect{actor.Get(getFeed, c.Params.Path(), &model.ArticleListResponse{})}
}

func settle(c Context) State {
	if len(c.Articles) == 0 {
		return NoArticles
	}

	return ArticlesAvailable
}

// toggle flips the favorite of the article with slug and requests the
// change. Unknown slugs are ignored.
func toggle(c *Context, slug string) []actor.Effect {
	idx := -1
	for n, a := range c.Articles {
		if a.Slug == slug {
			idx = n

			break
		}
	}
	if idx < 0 {
		return nil
	}

	articles := append([]model.Article(nil), c.Articles...)
	a := &articles[idx]
	c.Articles = articles

	id := favoriting + slug
	path := "articles/" + url.PathEscape(slug) + "/favorite"
	if a.Favorited {
		a.Favorited = false
		if a.FavoritesCount > 0 {
			a.FavoritesCount--
		}

		return []actor.Effect{actor.Del(id, path, &model.ArticleResponse{})}
	}
	a.Favorited = true
	a.FavoritesCount++

	return []actor.Effect{actor.Post(id, path, nil, &model.ArticleResponse{})}
}

// replace returns articles with the entry matching a.Slug swapped for a.
func replace(articles []model.Article, a model.Article) []model.Article {
	out := make([]model.Article, len(articles))
	for n, old := range articles {
		if old.Slug == a.Slug {
			old = a
		}
		out[n] = old
	}

	return out
}

type Actor = actor.Interpreter[State, Context]

func Start(ctx context.Context, deps actor.Deps, params model.FeedParams, authenticated func() bool, opts ...actor.Option) *Actor {
	return actor.Start(ctx, Machine(params, authenticated), deps, opts...)
}
