// Package article shows one article with its comments.
//
// The machine has two regions progressing independently. The article region
// fetches the article and handles follow, favorite and delete. The comments
// region fetches the comment list and handles comment create and delete.
// Follow and favorite are applied optimistically and reconciled with the
// server's answer.
package article

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/SergeyParamoshkin/conduit/internal/actor"
	"github.com/SergeyParamoshkin/conduit/internal/model"
	"github.com/SergeyParamoshkin/conduit/internal/navigate"
)

type ArticleState string

const (
	ArticleFetching   ArticleState = "fetching"
	ArticleHasContent ArticleState = "hasContent"
	ArticleErrored    ArticleState = "errored"
)

type CommentsState string

const (
	CommentsFetching   CommentsState = "fetching"
	CommentsHasContent CommentsState = "hasContent"
	CommentsNoContent  CommentsState = "noContent"
)

// State holds the state of both regions.
type State struct {
	Article  ArticleState
	Comments CommentsState
}

func (s State) Paths() []string {
	paths := actor.Flatten("article." + string(s.Article))

	return append(paths, actor.Flatten("comments."+string(s.Comments))...)
}

type Context struct {
	Slug     string
	Article  model.Article
	Comments []model.Comment
	Errors   model.Errors
	// Deleted is set once the server confirmed the article deletion.
	Deleted bool

	comments int
}

type ToggleFollow struct {
	Username string
}

func (ToggleFollow) Kind() string { return "toggleFollow" }

type ToggleFavorite struct{}

func (ToggleFavorite) Kind() string { return "toggleFavorite" }

type DeleteArticle struct{}

func (DeleteArticle) Kind() string { return "deleteArticle" }

type CreateComment struct {
	Body string
}

func (CreateComment) Kind() string { return "createComment" }

type DeleteComment struct {
	ID int
}

func (DeleteComment) Kind() string { return "deleteComment" }

const (
	getArticle      = "getArticle"
	getComments     = "getComments"
	favoriting      = "favoriting"
	following       = "following"
	deletingArticle = "deletingArticle"
	creatingComment = "creatingComment:"
	deletingComment = "deletingComment:"
)

// Machine shows the article with slug. authenticated is the host's guard;
// nil means nobody is signed in.
func Machine(slug string, authenticated func() bool) actor.Machine[State, Context] {
	return actor.Machine[State, Context]{
		Name:    "article",
		Initial: State{Article: ArticleFetching, Comments: CommentsFetching},
		Context: Context{Slug: slug},
		Reduce:  Reducer(authenticated),
	}
}

func Reducer(authenticated func() bool) actor.Reducer[State, Context] {
	signedIn := func() bool { return authenticated != nil && authenticated() }

	return func(s State, c Context, ev actor.Event) (State, Context, []actor.Effect) {
		base := "articles/" + url.PathEscape(c.Slug)

		switch e := ev.(type) {
		case actor.Init:
			return s, c, []actor.Effect{
				actor.Get(getArticle, base, &model.ArticleResponse{}),
				actor.Get(getComments, base+"/comments", &model.CommentListResponse{}),
			}
		case ToggleFollow:
			if s.Article != ArticleHasContent {
				break
			}
			if !signedIn() {
				return s, c, goToSignup()
			}

			return s, c, toggleFollow(&c, e.Username)
		case ToggleFavorite:
			if s.Article != ArticleHasContent {
				break
			}
			if !signedIn() {
				return s, c, goToSignup()
			}

			return s, c, toggleFavorite(&c, base)
		case DeleteArticle:
			if s.Article != ArticleHasContent {
				break
			}

			return s, c, []actor.Effect{actor.Del(deletingArticle, base, nil)}
		case CreateComment:
			if s.Comments != CommentsHasContent && s.Comments != CommentsNoContent {
				break
			}
			c.comments++
			id := creatingComment + strconv.Itoa(c.comments)
			body := model.CommentRequest{Comment: model.NewComment{Body: e.Body}}
			s.Comments = CommentsHasContent

			return s, c, []actor.Effect{actor.Post(id, base+"/comments", body, &model.CommentResponse{})}
		case DeleteComment:
			if s.Comments != CommentsHasContent {
				break
			}
			if len(c.Comments) == 1 && c.Comments[0].ID == e.ID {
				s.Comments = CommentsNoContent
			}
			c.Comments = without(c.Comments, e.ID)
			id := strconv.Itoa(e.ID)

			return s, c, []actor.Effect{actor.Del(deletingComment+id, base+"/comments/"+id, nil)}
		case actor.Done:
			return done(s, c, e)
		case actor.Failed:
			return failed(s, c, e)
		}

		return s, c, nil
	}
}

func done(s State, c Context, e actor.Done) (State, Context, []actor.Effect) {
	switch {
	case e.ID == getArticle && s.Article == ArticleFetching:
		if resp, ok := e.Output.(*model.ArticleResponse); ok {
			c.Article = resp.Article
		}
		s.Article = ArticleHasContent
	case e.ID == getComments && s.Comments == CommentsFetching:
		if resp, ok := e.Output.(*model.CommentListResponse); ok {
			c.Comments = resp.Comments
		}
		s.Comments = CommentsHasContent
		if len(c.Comments) == 0 {
			s.Comments = CommentsNoContent
		}
	case e.ID == favoriting && s.Article == ArticleHasContent:
		if resp, ok := e.Output.(*model.ArticleResponse); ok {
			c.Article = resp.Article
		}
	case e.ID == following && s.Article == ArticleHasContent:
		if resp, ok := e.Output.(*model.ProfileResponse); ok && resp.Profile.Username == c.Article.Author.Username {
			c.Article.Author = resp.Profile
		}
	case e.ID == deletingArticle:
		c.Deleted = true
	case strings.HasPrefix(e.ID, creatingComment) && s.Comments != CommentsFetching:
		if resp, ok := e.Output.(*model.CommentResponse); ok {
			c.Comments = append([]model.Comment{resp.Comment}, c.Comments...)
			s.Comments = CommentsHasContent
		}
	}

	return s, c, nil
}

func failed(s State, c Context, e actor.Failed) (State, Context, []actor.Effect) {
	switch {
	case e.ID == getArticle:
		if s.Article == ArticleFetching {
			s.Article = ArticleErrored
			c.Errors = e.Errors
		}
	case e.ID == getComments:
		if s.Comments == CommentsFetching {
			s.Comments = CommentsNoContent
			c.Errors = e.Errors
		}
	default:
		c.Errors = e.Errors
	}

	return s, c, nil
}

func goToSignup() []actor.Effect {
	return []actor.Effect{actor.Navigate{Path: navigate.Register}}
}

func toggleFollow(c *Context, username string) []actor.Effect {
	path := "profiles/" + url.PathEscape(username) + "/follow"
	if c.Article.Author.Following {
		c.Article.Author.Following = false

		return []actor.Effect{actor.Del(following, path, &model.ProfileResponse{})}
	}
	c.Article.Author.Following = true

	return []actor.Effect{actor.Post(following, path, nil, &model.ProfileResponse{})}
}

func toggleFavorite(c *Context, base string) []actor.Effect {
	path := base + "/favorite"
	if c.Article.Favorited {
		c.Article.Favorited = false
		if c.Article.FavoritesCount > 0 {
			c.Article.FavoritesCount--
		}

		return []actor.Effect{actor.Del(favoriting, path, &model.ArticleResponse{})}
	}
	c.Article.Favorited = true
	c.Article.FavoritesCount++

	return []actor.Effect{actor.Post(favoriting, path, nil, &model.ArticleResponse{})}
}

// without returns comments minus the one with id.
func without(comments []model.Comment, id int) []model.Comment {
	out := make([]model.Comment, 0, len(comments))
	for _, cm := range comments {
		if cm.ID != id {
			out = append(out, cm)
		}
	}

	return out
}

type Actor = actor.Interpreter[State, Context]

func Start(ctx context.Context, deps actor.Deps, slug string, authenticated func() bool, opts ...actor.Option) *Actor {
	return actor.Start(ctx, Machine(slug, authenticated), deps, opts...)
}
