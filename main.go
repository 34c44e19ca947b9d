//
// CONDUIT
// =======
// A development Conduit API with fixture data, served for the conduit
// client (see cmd/conduit) and its actors.
//
// Pass -routes to print the generated route docs, to run yourself do:
// `go run . -routes`
//
// Boot the server:
// ----------------
// $ go run main.go
//
// Client requests:
// ----------------
// $ curl http://localhost:3333/ping
// pong
//
// $ curl http://localhost:3333/api/tags
// {"tags":["chat","french","welcome"]}
//
// $ curl http://localhost:3333/api/articles?limit=1
// {"articles":[{"slug":"whats-up",...}],"articlesCount":5}
//
// $ curl -X POST -d '{"user":{"email":"peter@conduit.dev","password":"password"}}' http://localhost:3333/api/users/login
// {"user":{"username":"peter","token":"..."}}
//
// $ curl -H 'Authorization: Token <token>' http://localhost:3333/api/articles/feed
// {"articles":[],"articlesCount":0}
//
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/docgen"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric/global"
	export "go.opentelemetry.io/otel/sdk/export/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregator/histogram"
	controller "go.opentelemetry.io/otel/sdk/metric/controller/basic"
	processor "go.opentelemetry.io/otel/sdk/metric/processor/basic"
	selector "go.opentelemetry.io/otel/sdk/metric/selector/simple"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SergeyParamoshkin/conduit/internal/config"
	"github.com/SergeyParamoshkin/conduit/internal/server"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var (
		routes     = flag.Bool("routes", cfg.Server.Routes, "Generate router documentation")
		addr       = flag.String("addr", cfg.Server.Addr, "application port")
		diagPort   = flag.String("diag_addr", cfg.Server.DiagAddr, "diag port")
		requestLog = flag.Bool("request_log", false, "log every request to stdout")
	)

	flag.Parse()

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync() // flushes buffer, if any
	sugar := logger.Sugar()

	exporter, err := newExporter()
	if err != nil {
		sugar.Panicf("failed to initialize prometheus exporter %v", err)
	}
	global.SetMeterProvider(exporter.MeterProvider())

	a, err := server.NewSeeded(sugar)
	if err != nil {
		sugar.Panicf("failed to seed fixtures %v", err)
	}
	a.RequestLog = *requestLog
	r := a.Router()

	// Passing -routes to the program will generate docs for the above
	// router definition.
	if *routes {
		fmt.Println(docgen.MarkdownRoutesDoc(r, docgen.MarkdownOpts{
			ProjectPath: "github.com/SergeyParamoshkin/conduit",
			Intro:       "Routes of the development Conduit API.",
		}))

		return
	}

	diagRouter := chi.NewRouter()
	diagRouter.Get("/metrics", exporter.ServeHTTP)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, sugar, map[string]http.Handler{*addr: r, *diagPort: diagRouter}); err != nil {
		sugar.Errorw(err.Error())
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	return cfg.Build()
}

func newExporter() (*prometheus.Exporter, error) {
	config := prometheus.Config{}
	c := controller.New(
		processor.New(
			selector.NewWithHistogramDistribution(
				histogram.WithExplicitBoundaries(config.DefaultHistogramBoundaries),
			),
			export.CumulativeExportKindSelector(),
			processor.WithMemory(true),
		),
	)

	return prometheus.New(config, c)
}

// serve runs one server per address until ctx is done or one of them fails,
// then shuts all of them down.
func serve(ctx context.Context, log *zap.SugaredLogger, handlers map[string]http.Handler) error {
	g, ctx := errgroup.WithContext(ctx)

	for addr, h := range handlers {
		srv := &http.Server{Addr: addr, Handler: h}

		g.Go(func() error {
			log.Infow("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}

			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
