// Package server routes the development Conduit API.
package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/conduit/internal/article"
	"github.com/SergeyParamoshkin/conduit/internal/user"
)

const ServiceName = "conduit"

type CtxKey int8

const (
	CtxKeyLogger CtxKey = iota
)

type App struct {
	sugarLogger *zap.SugaredLogger
	users       *user.API
	articles    *article.API
	completed   metric.Int64Counter
	// RequestLog enables chi's request logger.
	RequestLog bool
}

func New(logger *zap.SugaredLogger, users *user.Store, articles *article.Store) *App {
	return &App{
		sugarLogger: logger,
		users:       user.NewAPI(users, logger),
		articles:    article.NewAPI(articles, users, logger),
		completed: metric.Must(global.Meter(ServiceName)).NewInt64Counter(
			"http/server/completed_count",
			metric.WithDescription("Count of completed requests, by HTTP method and response status"),
		),
	}
}

// NewSeeded returns an App over stores holding the fixture data.
func NewSeeded(logger *zap.SugaredLogger, opts ...user.Option) (*App, error) {
	users := user.NewStore(opts...)
	if err := user.Seed(users); err != nil {
		return nil, err
	}
	articles := article.NewStore()
	if err := article.Seed(articles, users); err != nil {
		return nil, err
	}

	return New(logger, users, articles), nil
}

func (a *App) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(a.Logger)
	if a.RequestLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(a.Metrics)
	r.Use(middleware.URLFormat)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte("root."))
		if err != nil {
			a.sugarLogger.Errorw(err.Error())
		}
	})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		logger := r.Context().Value(CtxKeyLogger).(*zap.SugaredLogger)
		logger.Debugw("ping")
		_, err := w.Write([]byte("pong"))
		if err != nil {
			a.sugarLogger.Errorw(err.Error())
		}
	})

	r.Route("/api", a.api)

	return r
}

func (a *App) api(r chi.Router) {
	users, articles := a.users, a.articles

	r.Use(user.Identify(users.Store, a.sugarLogger))

	r.Post("/users", users.Register)
	r.Post("/users/login", users.Login)

	r.Route("/user", func(r chi.Router) {
		r.Use(user.Authenticator)
		r.Get("/", users.Current)
		r.Put("/", users.Update)
	})

	r.Route("/profiles/{username}", func(r chi.Router) {
		r.Use(users.ProfileCtx)
		r.Get("/", users.GetProfile)
		r.With(user.Authenticator).Post("/follow", users.Follow)
		r.With(user.Authenticator).Delete("/follow", users.Unfollow)
	})

	// RESTy routes for "articles" resource
	r.Route("/articles", func(r chi.Router) {
		r.Get("/", articles.ListArticles)
		r.With(user.Authenticator).Post("/", articles.CreateArticle)
		r.With(user.Authenticator).Get("/feed", articles.Feed)

		r.Route("/{articleSlug}", func(r chi.Router) {
			r.Use(articles.ArticleCtx) // Load the Article on the request context
			r.Get("/", articles.GetArticle)
			r.Get("/comments", articles.ListComments)

			r.Group(func(r chi.Router) {
				r.Use(user.Authenticator)
				r.Put("/", articles.UpdateArticle)
				r.Delete("/", articles.DeleteArticle)
				r.Post("/favorite", articles.Favorite)
				r.Delete("/favorite", articles.Unfavorite)
				r.Post("/comments", articles.CreateComment)
				r.Delete("/comments/{commentID}", articles.DeleteComment)
			})
		})
	})

	r.Get("/tags", articles.ListTags)
}

func (a *App) Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), CtxKeyLogger, a.sugarLogger)))
	})
}

// Metrics counts completed requests by method and status.
func (a *App) Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		a.completed.Add(r.Context(), 1,
			attribute.String("method", r.Method),
			attribute.String("status", strconv.Itoa(status)),
		)
	})
}
