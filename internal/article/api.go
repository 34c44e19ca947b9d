// Package article serves the articles, comments and tags resources of the
// development Conduit API.
package article

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/conduit/internal/articlerequest"
	"github.com/SergeyParamoshkin/conduit/internal/articleresponse"
	"github.com/SergeyParamoshkin/conduit/internal/errresponse"
	"github.com/SergeyParamoshkin/conduit/internal/model"
	"github.com/SergeyParamoshkin/conduit/internal/user"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type API struct {
	Store  *Store
	Users  *user.Store
	Logger *zap.SugaredLogger
}

func NewAPI(s *Store, users *user.Store, logger *zap.SugaredLogger) *API {
	return &API{Store: s, Users: users, Logger: logger}
}

func (a *API) render(w http.ResponseWriter, r *http.Request, v render.Renderer) {
	if err := render.Render(w, r, v); err != nil {
		if err := render.Render(w, r, errresponse.ErrRender(err)); err != nil {
			a.Logger.Errorw(err.Error())
		}
	}
}

// fail renders a store error.
func (a *API) fail(w http.ResponseWriter, r *http.Request, resource string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		a.render(w, r, errresponse.ErrNotFound(resource))
	case errors.Is(err, ErrForbidden):
		a.render(w, r, errresponse.ErrForbidden(resource))
	default:
		a.Logger.Errorw(resource, "error", err)
		a.render(w, r, errresponse.ErrRender(err))
	}
}

func (a *API) author(ctx context.Context, id int64) model.Profile {
	u, err := a.Users.ByID(id)
	if err != nil {
		a.Logger.Warnw("article author missing", "user_id", id)

		return model.Profile{}
	}

	return a.Users.Profile(user.ViewerID(ctx), u)
}

// view is art as seen by the requesting user.
func (a *API) view(ctx context.Context, art Article) model.Article {
	viewer := user.ViewerID(ctx)

	return model.Article{
		Slug:           art.Slug,
		Title:          art.Title,
		Description:    art.Description,
		Body:           art.Body,
		TagList:        art.TagList,
		CreatedAt:      art.CreatedAt,
		UpdatedAt:      art.UpdatedAt,
		Favorited:      viewer != 0 && art.FavoritedBy[viewer],
		FavoritesCount: len(art.FavoritedBy),
		Author:         a.author(ctx, art.AuthorID),
	}
}

func (a *API) viewComment(ctx context.Context, c Comment) model.Comment {
	return model.Comment{
		ID:        c.ID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Author:    a.author(ctx, c.AuthorID),
	}
}

func (a *API) renderList(w http.ResponseWriter, r *http.Request, q Query) {
	page, total := a.Store.List(q)
	list := make([]model.Article, len(page))
	for i, art := range page {
		list[i] = a.view(r.Context(), art)
	}
	a.render(w, r, articleresponse.NewArticleListResponse(list, total))
}

// paginate reads limit and offset from the query string.
func paginate(r *http.Request) (Query, model.Errors) {
	q := Query{Limit: defaultLimit}
	var errs model.Errors
	values := r.URL.Query()
	if v := values.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			errs = errs.Add("limit", "must be between 1 and "+strconv.Itoa(maxLimit))
		}
		q.Limit = n
	}
	if v := values.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = errs.Add("offset", "must not be negative")
		}
		q.Offset = n
	}

	return q, errs
}

// ListArticles lists articles filtered by tag, author or favorited.
func (a *API) ListArticles(w http.ResponseWriter, r *http.Request) {
	q, errs := paginate(r)
	if errs != nil {
		a.render(w, r, errresponse.ErrValidation(errs))

		return
	}

	values := r.URL.Query()
	q.Tag = values.Get("tag")
	if name := values.Get("author"); name != "" {
		q.Authors = []int64{}
		if u, err := a.Users.ByUsername(name); err == nil {
			q.Authors = append(q.Authors, u.ID)
		}
	}
	if name := values.Get("favorited"); name != "" {
		u, err := a.Users.ByUsername(name)
		if err != nil {
			a.render(w, r, articleresponse.NewArticleListResponse(nil, 0))

			return
		}
		q.FavoritedBy = u.ID
	}

	a.renderList(w, r, q)
}

// Feed lists articles by authors the signed-in user follows.
func (a *API) Feed(w http.ResponseWriter, r *http.Request) {
	q, errs := paginate(r)
	if errs != nil {
		a.render(w, r, errresponse.ErrValidation(errs))

		return
	}
	q.Authors = a.Users.Followed(user.ViewerID(r.Context()))

	a.renderList(w, r, q)
}

// CreateArticle persists the posted Article and returns it
// back to the client as an acknowledgement.
func (a *API) CreateArticle(w http.ResponseWriter, r *http.Request) {
	data := &articlerequest.ArticleRequest{}
	if err := render.Bind(r, data); err != nil {
		a.render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	art, errs := a.Store.Create(user.ViewerID(r.Context()), *data.Article)
	if errs != nil {
		a.render(w, r, errresponse.ErrValidation(errs))

		return
	}

	a.Logger.Infow("article created", "slug", art.Slug)
	render.Status(r, http.StatusCreated)
	a.render(w, r, articleresponse.NewArticleResponse(a.view(r.Context(), art)))
}

// GetArticle returns the Article loaded by ArticleCtx.
func (a *API) GetArticle(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, articleresponse.NewArticleResponse(a.view(r.Context(), fromContext(r))))
}

// UpdateArticle updates an existing Article in our persistent store.
func (a *API) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	art := fromContext(r)

	data := &articlerequest.ArticleRequest{}
	if err := render.Bind(r, data); err != nil {
		a.render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	updated, err := a.Store.Update(art.Slug, user.ViewerID(r.Context()), *data.Article)
	if err != nil {
		a.fail(w, r, "article", err)

		return
	}

	a.render(w, r, articleresponse.NewArticleResponse(a.view(r.Context(), updated)))
}

// DeleteArticle removes an existing Article from our persistent store.
func (a *API) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	art := fromContext(r)

	if err := a.Store.Delete(art.Slug, user.ViewerID(r.Context())); err != nil {
		a.fail(w, r, "article", err)

		return
	}

	a.Logger.Infow("article deleted", "slug", art.Slug)
	render.NoContent(w, r)
}

func (a *API) Favorite(w http.ResponseWriter, r *http.Request) {
	a.favorite(w, r, true)
}

func (a *API) Unfavorite(w http.ResponseWriter, r *http.Request) {
	a.favorite(w, r, false)
}

func (a *API) favorite(w http.ResponseWriter, r *http.Request, on bool) {
	art, err := a.Store.Favorite(fromContext(r).Slug, user.ViewerID(r.Context()), on)
	if err != nil {
		a.fail(w, r, "article", err)

		return
	}

	a.render(w, r, articleresponse.NewArticleResponse(a.view(r.Context(), art)))
}

// ListComments lists the comments of the article, newest first.
func (a *API) ListComments(w http.ResponseWriter, r *http.Request) {
	stored, err := a.Store.Comments(fromContext(r).Slug)
	if err != nil {
		a.fail(w, r, "article", err)

		return
	}

	comments := make([]model.Comment, len(stored))
	for i, c := range stored {
		comments[i] = a.viewComment(r.Context(), c)
	}
	a.render(w, r, articleresponse.NewCommentListResponse(comments))
}

func (a *API) CreateComment(w http.ResponseWriter, r *http.Request) {
	data := &articlerequest.CommentRequest{}
	if err := render.Bind(r, data); err != nil {
		a.render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	c, errs, err := a.Store.AddComment(fromContext(r).Slug, user.ViewerID(r.Context()), data.Comment.Body)
	if err != nil {
		a.fail(w, r, "article", err)

		return
	}
	if errs != nil {
		a.render(w, r, errresponse.ErrValidation(errs))

		return
	}

	render.Status(r, http.StatusCreated)
	a.render(w, r, articleresponse.NewCommentResponse(a.viewComment(r.Context(), c)))
}

func (a *API) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "commentID"))
	if err != nil {
		a.render(w, r, errresponse.ErrNotFound("comment"))

		return
	}

	if err := a.Store.DeleteComment(fromContext(r).Slug, id, user.ViewerID(r.Context())); err != nil {
		a.fail(w, r, "comment", err)

		return
	}

	render.NoContent(w, r)
}

// ListTags lists every tag in use.
func (a *API) ListTags(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, articleresponse.NewTagListResponse(a.Store.Tags()))
}
