package client

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
)

type instruments struct {
	completed metric.Int64Counter
	latency   metric.Float64ValueRecorder
}

var (
	instrumentsOnce sync.Once
	instr           instruments
)

func meters() instruments {
	instrumentsOnce.Do(func() {
		m := metric.Must(global.Meter("github.com/SergeyParamoshkin/conduit/client"))
		instr = instruments{
			completed: m.NewInt64Counter(
				"http/client/completed_count",
				metric.WithDescription("Count of completed requests, by HTTP method and response status"),
			),
			latency: m.NewFloat64ValueRecorder(
				"http/client/roundtrip_latency",
				metric.WithDescription("Round trip latency in milliseconds, by HTTP method"),
			),
		}
	})

	return instr
}

func recordRequest(ctx context.Context, method string, status int, elapsed time.Duration) {
	labels := []attribute.KeyValue{
		attribute.String("method", method),
		attribute.String("status", strconv.Itoa(status)),
	}
	m := meters()
	m.completed.Add(ctx, 1, labels...)
	m.latency.Record(ctx, float64(elapsed)/float64(time.Millisecond), labels[0])
}
