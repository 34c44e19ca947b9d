package user

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/conduit/internal/errresponse"
)

type ctxKey int8

const (
	ctxKeyUser ctxKey = iota
	ctxKeyProfile
)

// NewContext returns ctx carrying the signed-in u.
func NewContext(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, u)
}

// FromContext returns the signed-in user, if any.
func FromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKeyUser).(User)

	return u, ok
}

// ViewerID is the id of the signed-in user or 0 for anonymous requests.
func ViewerID(ctx context.Context) int64 {
	u, _ := FromContext(ctx)

	return u.ID
}

// tokenFrom parses "Authorization: Token <token>".
func tokenFrom(r *http.Request) string {
	h := r.Header.Get("Authorization")
	for _, scheme := range []string{"Token ", "Bearer "} {
		if strings.HasPrefix(h, scheme) {
			return strings.TrimSpace(h[len(scheme):])
		}
	}

	return ""
}

// Identify loads the user of the request token onto the context. Requests
// without a token pass as anonymous; an unknown token is rejected.
func Identify(s *Store, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFrom(r)
			if token == "" {
				next.ServeHTTP(w, r)

				return
			}

			u, err := s.ByToken(token)
			if err != nil {
				if err := render.Render(w, r, errresponse.ErrUnauthorized); err != nil {
					log.Errorw(err.Error())
				}

				return
			}
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), u)))
		})
	}
}

// Authenticator rejects anonymous requests with 401.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			_ = render.Render(w, r, errresponse.ErrUnauthorized)

			return
		}
		next.ServeHTTP(w, r)
	})
}

// ProfileCtx middleware is used to load the User named by the URL
// parameter username. In case it could not be found, we stop here and
// return a 404.
func (a *API) ProfileCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := a.Store.ByUsername(chi.URLParam(r, "username"))
		if err != nil {
			if err := render.Render(w, r, errresponse.ErrNotFound("profile")); err != nil {
				a.Logger.Errorw(err.Error())
			}

			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyProfile, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
