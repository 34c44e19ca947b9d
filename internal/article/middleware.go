package article

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SergeyParamoshkin/conduit/internal/errresponse"
)

type ctxKey int8

const ctxKeyArticle ctxKey = iota

// ArticleCtx middleware is used to load an Article object from
// the URL parameters passed through as the request. In case
// the Article could not be found, we stop here and return a 404.
func (a *API) ArticleCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		article, err := a.Store.Get(chi.URLParam(r, "articleSlug"))
		if err != nil {
			a.render(w, r, errresponse.ErrNotFound("article"))

			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyArticle, article)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// fromContext returns the article loaded by ArticleCtx. If it is missing
// due to a bug this panics and the Recoverer middleware will save us.
func fromContext(r *http.Request) Article {
	return r.Context().Value(ctxKeyArticle).(Article)
}
