package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/conduit/client"
	"github.com/SergeyParamoshkin/conduit/internal/actor"
	"github.com/SergeyParamoshkin/conduit/internal/config"
	"github.com/SergeyParamoshkin/conduit/internal/machines/app"
	"github.com/SergeyParamoshkin/conduit/internal/navigate"
	"github.com/SergeyParamoshkin/conduit/internal/storage"
)

// host wires the actors to the API, the token file and a recording router,
// the way a browser page would.
type host struct {
	out     io.Writer
	log     *zap.SugaredLogger
	history *navigate.History
	tokens  *storage.FileTokenStore
	deps    actor.Deps
	app     *app.Actor
	wait    time.Duration
}

func openHost(ctx context.Context, cmd *cli.Command) (*host, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if api := cmd.String("api"); api != "" {
		cfg.Client.BaseURL = api
	}
	if path := cmd.String("token-file"); path != "" {
		cfg.Storage.TokenFile = path
	}
	if d := cmd.Duration("timeout"); d > 0 {
		cfg.Client.Timeout = d
	}

	logger, err := newLogger(cmd.String("log-level"))
	if err != nil {
		return nil, err
	}
	log := logger.Sugar()

	path := cfg.Storage.TokenFile
	if path == "" {
		if path, err = storage.DefaultTokenPath(); err != nil {
			return nil, err
		}
	}

	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}

	h := &host{
		out:    out,
		log:    log,
		tokens: storage.NewFileTokenStore(path),
		wait:   cfg.Client.Timeout,
	}
	h.history = navigate.NewHistory(func(p string) {
		log.Debugw("navigate", "path", p)
	})
	h.deps = actor.Deps{
		API: client.New(cfg.Client.BaseURL,
			client.WithTokens(h.tokens),
			client.WithTimeout(cfg.Client.Timeout),
			client.WithLogger(log),
		),
		Navigator: h.history,
		Tokens:    h.tokens,
		Logger:    log,
	}

	h.app = app.Start(ctx, h.deps)

	// resolve the stored token before any page asks for the session
	wctx, cancel := h.waitCtx(ctx)
	defer cancel()
	if _, err := h.app.WaitFor(wctx, func(s actor.Snapshot[app.State, app.Context]) bool {
		return s.State != app.Authenticating
	}); err != nil {
		h.Close()

		return nil, errors.Wrap(err, "resolving session")
	}

	return h, nil
}

func (h *host) Close() {
	h.app.Stop()
	_ = h.log.Sync()
}

func (h *host) waitCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, h.wait)
}

func (h *host) print(s string) {
	if s != "" {
		fmt.Fprintln(h.out, s)
	}
}

// requireUser fails unless somebody is signed in.
func (h *host) requireUser(action string) error {
	if h.app.IsAuthenticated() {
		return nil
	}
	if h.app.Snapshot().Context.TokenRejected {
		return errors.Errorf("the stored session was rejected, log in again to %s", action)
	}

	return errors.Errorf("log in to %s", action)
}

// await waits until cond holds and i has no request in flight.
func await[S actor.State, C any](ctx context.Context, i *actor.Interpreter[S, C], cond func(actor.Snapshot[S, C]) bool) (actor.Snapshot[S, C], error) {
	if _, err := i.WaitFor(ctx, cond); err != nil {
		return i.Snapshot(), errors.Wrapf(err, "waiting for %s", i.Name())
	}

	snap, err := i.WaitFor(ctx, func(actor.Snapshot[S, C]) bool { return i.InFlight() == 0 })
	if err != nil {
		return snap, errors.Wrapf(err, "waiting for %s", i.Name())
	}

	return snap, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	cfg.DisableStacktrace = true

	return cfg.Build()
}
