package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/SergeyParamoshkin/conduit/client"
	"github.com/SergeyParamoshkin/conduit/internal/model"
	"github.com/SergeyParamoshkin/conduit/internal/storage"
	"github.com/SergeyParamoshkin/conduit/internal/user"
)

// newServer serves a seeded API and returns a client for it whose token
// lives in the returned store.
func newServer(t *testing.T) (*httptest.Server, *client.Client, *storage.MemoryTokenStore) {
	t.Helper()

	app, err := NewSeeded(zaptest.NewLogger(t).Sugar(), user.WithHashCost(bcrypt.MinCost))
	require.NoError(t, err)

	srv := httptest.NewServer(app.Router())
	t.Cleanup(srv.Close)

	tokens := storage.NewMemoryTokenStore("")

	return srv, client.New(srv.URL+"/api", client.WithTokens(tokens)), tokens
}

func login(t *testing.T, c *client.Client, tokens *storage.MemoryTokenStore, email string) model.User {
	t.Helper()

	var resp model.UserResponse
	body := model.LoginRequest{User: model.Credentials{Email: email, Password: user.FixturePassword}}
	require.NoError(t, c.Post(context.Background(), "users/login", body, &resp))
	require.NoError(t, tokens.Write(resp.User.Token))

	return resp.User
}

func apiErr(t *testing.T, err error) *client.APIError {
	t.Helper()

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)

	return apiErr
}

func TestPing(t *testing.T) {
	_, c, _ := newServer(t)

	s, err := c.Ping()
	require.NoError(t, err)
	assert.Equal(t, "pong", s)
}

func TestTags(t *testing.T) {
	_, c, _ := newServer(t)

	var tags model.TagListResponse
	require.NoError(t, c.Get(context.Background(), "tags", &tags))
	assert.Equal(t, []string{"chat", "french", "welcome"}, tags.Tags)
}

func TestRegisterAndLogin(t *testing.T) {
	_, c, tokens := newServer(t)
	ctx := context.Background()

	var created model.UserResponse
	reg := model.RegisterRequest{User: model.Registration{Username: "ann", Email: "Ann@Example.com", Password: "secret"}}
	require.NoError(t, c.Post(ctx, "users", reg, &created))
	assert.Equal(t, "ann", created.User.Username)
	assert.Equal(t, "ann@example.com", created.User.Email)
	assert.NotEmpty(t, created.User.Token)

	err := c.Post(ctx, "users", reg, nil)
	e := apiErr(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, e.StatusCode)
	assert.Equal(t, model.Errors{
		"username": {"has already been taken"},
		"email":    {"has already been taken"},
	}, e.Errors)

	err = c.Post(ctx, "users/login", model.LoginRequest{User: model.Credentials{Email: "ann@example.com", Password: "nope"}}, nil)
	assert.Equal(t, model.Errors{"email or password": {"is invalid"}}, apiErr(t, err).Errors)

	var me model.UserResponse
	require.NoError(t, tokens.Write(created.User.Token))
	require.NoError(t, c.Get(ctx, "user", &me))
	assert.Equal(t, "ann", me.User.Username)
	assert.Equal(t, created.User.Token, me.User.Token)
}

func TestRegisterValidation(t *testing.T) {
	_, c, _ := newServer(t)

	err := c.Post(context.Background(), "users", model.RegisterRequest{}, nil)
	assert.Equal(t, model.Errors{
		"username": {"can't be blank"},
		"email":    {"can't be blank"},
		"password": {"can't be blank"},
	}, apiErr(t, err).Errors)

	err = c.Post(context.Background(), "users", struct{}{}, nil)
	e := apiErr(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, e.StatusCode)
	assert.Contains(t, e.Errors, "body")
}

func TestAuthRequired(t *testing.T) {
	_, c, tokens := newServer(t)
	ctx := context.Background()

	err := c.Get(ctx, "user", nil)
	assert.Equal(t, http.StatusUnauthorized, apiErr(t, err).StatusCode)

	require.NoError(t, tokens.Write("not-a-token"))
	err = c.Get(ctx, "tags", nil)
	assert.Equal(t, http.StatusUnauthorized, apiErr(t, err).StatusCode)
}

func TestUpdateUser(t *testing.T) {
	_, c, tokens := newServer(t)
	login(t, c, tokens, "peter@conduit.dev")

	var resp model.UserResponse
	upd := model.UpdateUserRequest{User: model.UserUpdate{Bio: "gardener", Image: "https://img/p.png"}}
	require.NoError(t, c.Put(context.Background(), "user", upd, &resp))
	assert.Equal(t, "peter", resp.User.Username)
	assert.Equal(t, "gardener", resp.User.Bio)

	upd = model.UpdateUserRequest{User: model.UserUpdate{Username: "julia"}}
	err := c.Put(context.Background(), "user", upd, nil)
	assert.Equal(t, model.Errors{"username": {"has already been taken"}}, apiErr(t, err).Errors)
}

func TestProfiles(t *testing.T) {
	_, c, tokens := newServer(t)
	ctx := context.Background()

	var p model.ProfileResponse
	require.NoError(t, c.Get(ctx, "profiles/peter", &p))
	assert.Equal(t, "peter", p.Profile.Username)
	assert.False(t, p.Profile.Following)

	err := c.Get(ctx, "profiles/nobody", nil)
	assert.Equal(t, http.StatusNotFound, apiErr(t, err).StatusCode)

	err = c.Post(ctx, "profiles/peter/follow", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, apiErr(t, err).StatusCode)

	login(t, c, tokens, "julia@conduit.dev")
	require.NoError(t, c.Get(ctx, "profiles/peter", &p))
	assert.True(t, p.Profile.Following)

	require.NoError(t, c.Del(ctx, "profiles/peter/follow", &p))
	assert.False(t, p.Profile.Following)
	require.NoError(t, c.Post(ctx, "profiles/peter/follow", nil, &p))
	assert.True(t, p.Profile.Following)
}

func TestListArticles(t *testing.T) {
	_, c, tokens := newServer(t)
	ctx := context.Background()

	var list model.ArticleListResponse
	require.NoError(t, c.Get(ctx, model.DefaultFeedParams().Path(), &list))
	assert.Equal(t, 5, list.ArticlesCount)
	require.Len(t, list.Articles, 5)
	assert.Equal(t, "whats-up", list.Articles[0].Slug, "newest first")
	assert.Equal(t, []string{}, list.Articles[0].TagList)

	require.NoError(t, c.Get(ctx, model.FeedParams{Limit: 2, Offset: 1}.Path(), &list))
	assert.Equal(t, 5, list.ArticlesCount)
	require.Len(t, list.Articles, 2)
	assert.Equal(t, "bonjour", list.Articles[0].Slug)

	require.NoError(t, c.Get(ctx, model.FeedParams{Limit: 20, Tag: "chat"}.Path(), &list))
	assert.Equal(t, 2, list.ArticlesCount)

	require.NoError(t, c.Get(ctx, model.FeedParams{Limit: 20, Author: "julia"}.Path(), &list))
	assert.Equal(t, 2, list.ArticlesCount)

	require.NoError(t, c.Get(ctx, model.FeedParams{Limit: 20, Author: "nobody"}.Path(), &list))
	assert.Equal(t, 0, list.ArticlesCount)
	assert.Equal(t, []model.Article{}, list.Articles)

	require.NoError(t, c.Get(ctx, model.FeedParams{Limit: 20, Favorited: "julia"}.Path(), &list))
	require.Len(t, list.Articles, 1)
	assert.Equal(t, "hi", list.Articles[0].Slug)
	assert.Equal(t, 1, list.Articles[0].FavoritesCount)
	assert.False(t, list.Articles[0].Favorited)

	err := c.Get(ctx, "articles?limit=0", nil)
	assert.Contains(t, apiErr(t, err).Errors, "limit")

	err = c.Get(ctx, model.FeedParams{Limit: 20, Feed: model.PersonalFeed}.Path(), nil)
	assert.Equal(t, http.StatusUnauthorized, apiErr(t, err).StatusCode)

	login(t, c, tokens, "julia@conduit.dev")
	require.NoError(t, c.Get(ctx, model.FeedParams{Limit: 20, Feed: model.PersonalFeed}.Path(), &list))
	assert.Equal(t, 3, list.ArticlesCount)
	for _, a := range list.Articles {
		assert.Equal(t, "peter", a.Author.Username)
		assert.True(t, a.Author.Following)
	}
}

func TestArticleLifecycle(t *testing.T) {
	_, c, tokens := newServer(t)
	ctx := context.Background()
	login(t, c, tokens, "peter@conduit.dev")

	form := model.ArticleForm{Title: "Hi", Description: "again", Body: "text", TagList: []string{" go ", "go", ""}}
	var created model.ArticleResponse
	require.NoError(t, c.Post(ctx, "articles", model.ArticleRequest{Article: form}, &created))
	assert.Equal(t, "hi-2", created.Article.Slug)
	assert.Equal(t, []string{"go"}, created.Article.TagList)
	assert.Equal(t, "peter", created.Article.Author.Username)

	err := c.Post(ctx, "articles", model.ArticleRequest{}, nil)
	assert.Contains(t, apiErr(t, err).Errors, "body")

	err = c.Post(ctx, "articles", model.ArticleRequest{Article: model.ArticleForm{Title: "x"}}, nil)
	assert.Equal(t, model.Errors{
		"description": {"can't be blank"},
		"body":        {"can't be blank"},
	}, apiErr(t, err).Errors)

	var updated model.ArticleResponse
	require.NoError(t, c.Put(ctx, "articles/hi-2", model.ArticleRequest{Article: model.ArticleForm{Body: "new"}}, &updated))
	assert.Equal(t, "new", updated.Article.Body)
	assert.Equal(t, "Hi", updated.Article.Title)

	var fav model.ArticleResponse
	require.NoError(t, c.Post(ctx, "articles/hi-2/favorite", nil, &fav))
	assert.True(t, fav.Article.Favorited)
	assert.Equal(t, 1, fav.Article.FavoritesCount)
	require.NoError(t, c.Del(ctx, "articles/hi-2/favorite", &fav))
	assert.False(t, fav.Article.Favorited)
	assert.Equal(t, 0, fav.Article.FavoritesCount)

	err = c.Del(ctx, "articles/sup", nil)
	assert.Equal(t, http.StatusForbidden, apiErr(t, err).StatusCode)

	require.NoError(t, c.Del(ctx, "articles/hi-2", nil))
	err = c.Get(ctx, "articles/hi-2", nil)
	e := apiErr(t, err)
	assert.Equal(t, http.StatusNotFound, e.StatusCode)
	assert.Equal(t, model.Errors{"article": {"not found"}}, e.Errors)
}

func TestComments(t *testing.T) {
	_, c, tokens := newServer(t)
	ctx := context.Background()

	var list model.CommentListResponse
	require.NoError(t, c.Get(ctx, "articles/hi/comments", &list))
	require.Len(t, list.Comments, 1)
	assert.Equal(t, "julia", list.Comments[0].Author.Username)
	first := list.Comments[0].ID

	login(t, c, tokens, "peter@conduit.dev")
	var created model.CommentResponse
	require.NoError(t, c.Post(ctx, "articles/hi/comments", model.CommentRequest{Comment: model.NewComment{Body: "thanks"}}, &created))
	assert.Greater(t, created.Comment.ID, first)

	require.NoError(t, c.Get(ctx, "articles/hi/comments", &list))
	require.Len(t, list.Comments, 2)
	assert.Equal(t, created.Comment.ID, list.Comments[0].ID, "newest first")

	err := c.Del(ctx, "articles/hi/comments/"+strconv.Itoa(first), nil)
	assert.Equal(t, http.StatusForbidden, apiErr(t, err).StatusCode)

	require.NoError(t, c.Del(ctx, "articles/hi/comments/"+strconv.Itoa(created.Comment.ID), nil))
	err = c.Del(ctx, "articles/hi/comments/"+strconv.Itoa(created.Comment.ID), nil)
	assert.Equal(t, http.StatusNotFound, apiErr(t, err).StatusCode)

	require.NoError(t, c.Post(ctx, "articles/hi/comments", model.CommentRequest{Comment: model.NewComment{Body: "again"}}, &created))
	assert.Equal(t, first+2, created.Comment.ID, "ids are not reused")
}
