package article

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/SergeyParamoshkin/conduit/internal/actor"
	"github.com/SergeyParamoshkin/conduit/internal/actor/actortest"
	"github.com/SergeyParamoshkin/conduit/internal/model"
)

func yes() bool { return true }

var post = model.Article{
	Slug:           "how-to-train-your-dragon",
	Title:          "How to train your dragon",
	FavoritesCount: 2,
	Author:         model.Profile{Username: "jake"},
}

func comment(id int) model.Comment {
	return model.Comment{ID: id, Body: "comment"}
}

// ready returns an article machine with both regions loaded.
func ready(t *testing.T, reduce actor.Reducer[State, Context], a model.Article, comments ...model.Comment) (State, Context) {
	t.Helper()
	m := Machine(a.Slug, nil)
	s, c, _ := reduce(m.Initial, m.Context, actor.Init{})
	s, c, _ = reduce(s, c, actor.Done{ID: "getArticle", Output: &model.ArticleResponse{Article: a}})
	s, c, _ = reduce(s, c, actor.Done{ID: "getComments", Output: &model.CommentListResponse{Comments: comments}})
	require.Equal(t, ArticleHasContent, s.Article)

	return s, c
}

func TestInitFetchesBothRegions(t *testing.T) {
	m := Machine("my-post", nil)
	s, _, fx := m.Reduce(m.Initial, m.Context, actor.Init{})

	assert.Equal(t, []string{"article", "article.fetching", "comments", "comments.fetching"}, s.Paths())
	assert.Equal(t, []actor.Effect{
		actor.Get("getArticle", "articles/my-post", &model.ArticleResponse{}),
		actor.Get("getComments", "articles/my-post/comments", &model.CommentListResponse{}),
	}, fx)
}

func TestCommentsBranchOnEmptyList(t *testing.T) {
	reduce := Reducer(yes)

	s, _ := ready(t, reduce, post)
	assert.Equal(t, CommentsNoContent, s.Comments)
	assert.True(t, actor.Matches(s, "comments.noContent"))

	s, c := ready(t, reduce, post, comment(1), comment(2))
	assert.Equal(t, CommentsHasContent, s.Comments)
	assert.Len(t, c.Comments, 2)
}

func TestFetchFailures(t *testing.T) {
	reduce := Reducer(yes)
	m := Machine("gone", nil)
	s, c, _ := reduce(m.Initial, m.Context, actor.Init{})

	notFound := model.Errors{"article": {"not found"}}
	s, c, _ = reduce(s, c, actor.Failed{ID: "getArticle", Errors: notFound})
	assert.Equal(t, ArticleErrored, s.Article)
	assert.Equal(t, CommentsFetching, s.Comments)
	assert.Equal(t, notFound, c.Errors)

	s, _, fx := reduce(s, c, ToggleFavorite{})
	assert.Empty(t, fx)

	s, _, _ = reduce(s, c, actor.Failed{ID: "getComments", Errors: notFound})
	assert.Equal(t, CommentsNoContent, s.Comments)
}

func TestToggleFavoriteTwiceRestoresCount(t *testing.T) {
	reduce := Reducer(yes)
	a := post
	a.Favorited = true
	s, c := ready(t, reduce, a)

	s, c, fx := reduce(s, c, ToggleFavorite{})
	assert.False(t, c.Article.Favorited)
	assert.Equal(t, 1, c.Article.FavoritesCount)
	assert.Equal(t, []actor.Effect{actor.Del("favoriting", "articles/how-to-train-your-dragon/favorite", &model.ArticleResponse{})}, fx)

	s, c, fx = reduce(s, c, ToggleFavorite{})
	assert.True(t, c.Article.Favorited)
	assert.Equal(t, 2, c.Article.FavoritesCount)
	assert.Equal(t, []actor.Effect{actor.Post("favoriting", "articles/how-to-train-your-dragon/favorite", nil, &model.ArticleResponse{})}, fx)
	assert.Equal(t, ArticleHasContent, s.Article)
}

func TestFavoriteReconciles(t *testing.T) {
	reduce := Reducer(yes)
	s, c := ready(t, reduce, post)

	s, c, _ = reduce(s, c, ToggleFavorite{})
	server := post
	server.Favorited = true
	server.FavoritesCount = 10
	_, c, _ = reduce(s, c, actor.Done{ID: "favoriting", Output: &model.ArticleResponse{Article: server}})
	assert.Equal(t, server, c.Article)
}

func TestToggleFollow(t *testing.T) {
	reduce := Reducer(yes)
	s, c := ready(t, reduce, post)

	s, c, fx := reduce(s, c, ToggleFollow{Username: "jake"})
	assert.True(t, c.Article.Author.Following)
	assert.Equal(t, []actor.Effect{actor.Post("following", "profiles/jake/follow", nil, &model.ProfileResponse{})}, fx)

	s, c, _ = reduce(s, c, actor.Done{ID: "following", Output: &model.ProfileResponse{
		Profile: model.Profile{Username: "jake", Following: true, Bio: "I work at statefarm"},
	}})
	assert.True(t, c.Article.Author.Following)
	assert.Equal(t, "I work at statefarm", c.Article.Author.Bio)

	_, c, fx = reduce(s, c, ToggleFollow{Username: "jake"})
	assert.False(t, c.Article.Author.Following)
	assert.Equal(t, []actor.Effect{actor.Del("following", "profiles/jake/follow", &model.ProfileResponse{})}, fx)
}

func TestSignupRequired(t *testing.T) {
	reduce := Reducer(nil)
	s, c := ready(t, reduce, post)

	for _, ev := range []actor.Event{ToggleFavorite{}, ToggleFollow{Username: "jake"}} {
		_, got, fx := reduce(s, c, ev)
		assert.Equal(t, []actor.Effect{actor.Navigate{Path: "/register"}}, fx, ev.Kind())
		assert.Equal(t, c, got, ev.Kind())
	}
}

func TestDeleteArticle(t *testing.T) {
	reduce := Reducer(yes)
	s, c := ready(t, reduce, post)

	s, c, fx := reduce(s, c, DeleteArticle{})
	assert.Equal(t, ArticleHasContent, s.Article)
	assert.Equal(t, []actor.Effect{actor.Del("deletingArticle", "articles/how-to-train-your-dragon", nil)}, fx)
	assert.False(t, c.Deleted)

	_, c, _ = reduce(s, c, actor.Done{ID: "deletingArticle"})
	assert.True(t, c.Deleted)
}

func TestDeleteComment(t *testing.T) {
	reduce := Reducer(yes)
	s, c := ready(t, reduce, post, comment(3), comment(2), comment(1))

	s, c, fx := reduce(s, c, DeleteComment{ID: 2})
	assert.Equal(t, CommentsHasContent, s.Comments)
	assert.Equal(t, []model.Comment{comment(3), comment(1)}, c.Comments)
	assert.Equal(t, []actor.Effect{actor.Del("deletingComment:2", "articles/how-to-train-your-dragon/comments/2", nil)}, fx)

	s, c, _ = reduce(s, c, DeleteComment{ID: 3})
	assert.Equal(t, CommentsHasContent, s.Comments)

	s, c, _ = reduce(s, c, DeleteComment{ID: 1})
	assert.Equal(t, CommentsNoContent, s.Comments)
	assert.Empty(t, c.Comments)

	_, _, fx = reduce(s, c, DeleteComment{ID: 1})
	assert.Empty(t, fx, "noContent does not accept deletes")
}

func TestCreateComment(t *testing.T) {
	reduce := Reducer(yes)
	s, c := ready(t, reduce, post)
	require.Equal(t, CommentsNoContent, s.Comments)

	s, c, fx := reduce(s, c, CreateComment{Body: "first"})
	assert.Equal(t, CommentsHasContent, s.Comments)
	assert.Empty(t, c.Comments, "nothing is shown before the server answers")
	body := model.CommentRequest{Comment: model.NewComment{Body: "first"}}
	assert.Equal(t, []actor.Effect{actor.Post("creatingComment:1", "articles/how-to-train-your-dragon/comments", body, &model.CommentResponse{})}, fx)

	s, c, fx = reduce(s, c, CreateComment{Body: "second"})
	require.Len(t, fx, 1)
	assert.Equal(t, "creatingComment:2", fx[0].(actor.Request).ID)

	s, c, _ = reduce(s, c, actor.Done{ID: "creatingComment:1", Output: &model.CommentResponse{Comment: comment(1)}})
	_, c, _ = reduce(s, c, actor.Done{ID: "creatingComment:2", Output: &model.CommentResponse{Comment: comment(2)}})
	assert.Equal(t, []model.Comment{comment(2), comment(1)}, c.Comments)

	// the sole shown comment is deleted while a new one is being created
	s, c = ready(t, reduce, post, comment(1))
	s, c, _ = reduce(s, c, CreateComment{Body: "new"})
	s, c, _ = reduce(s, c, DeleteComment{ID: 1})
	require.Equal(t, CommentsNoContent, s.Comments)

	s, c, _ = reduce(s, c, actor.Done{ID: "creatingComment:1", Output: &model.CommentResponse{Comment: comment(9)}})
	assert.Equal(t, CommentsHasContent, s.Comments)
	assert.Equal(t, []model.Comment{comment(9)}, c.Comments)
}

func TestArticleActor(t *testing.T) {
	defer goleak.VerifyNone(t)

	env := actortest.NewEnv("t1")
	env.API.
		On(http.MethodGet, "articles/how-to-train-your-dragon", model.ArticleResponse{Article: post}).
		On(http.MethodGet, "articles/how-to-train-your-dragon/comments", model.CommentListResponse{Comments: []model.Comment{comment(1)}}).
		On(http.MethodDelete, "articles/how-to-train-your-dragon/comments/1", nil).
		On(http.MethodPost, "articles/how-to-train-your-dragon/comments", model.CommentResponse{Comment: comment(2)})

	a := Start(context.Background(), env.Deps(t), post.Slug, yes)
	defer a.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	snap, err := a.WaitFor(ctx, func(s actor.Snapshot[State, Context]) bool {
		return s.Matches("article.hasContent") && s.Matches("comments.hasContent")
	})
	require.NoError(t, err)
	assert.Equal(t, post.Title, snap.Context.Article.Title)

	a.Send(DeleteComment{ID: 1})
	_, err = a.WaitFor(ctx, func(s actor.Snapshot[State, Context]) bool { return s.State.Comments == CommentsNoContent })
	require.NoError(t, err)

	a.Send(CreateComment{Body: "hi"})
	snap, err = a.WaitFor(ctx, func(s actor.Snapshot[State, Context]) bool { return len(s.Context.Comments) == 1 })
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Context.Comments[0].ID)
	assert.Equal(t, CommentsHasContent, snap.State.Comments)
	assert.True(t, env.API.Called(http.MethodDelete, "articles/how-to-train-your-dragon/comments/1"))
}
