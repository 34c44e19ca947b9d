package actor

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
)

const instrumentationName = "github.com/SergeyParamoshkin/conduit/internal/actor"

var (
	machineKey = attribute.Key("conduit.machine")
	eventKey   = attribute.Key("conduit.event")
	outcomeKey = attribute.Key("conduit.outcome")
)

type instruments struct {
	events metric.Int64Counter
	tasks  metric.Int64Counter
}

var (
	instrumentsOnce sync.Once
	instr           instruments
)

// meters lazily registers the instruments with the global meter provider so
// that a provider installed by main is picked up.
func meters() instruments {
	instrumentsOnce.Do(func() {
		m := metric.Must(global.Meter(instrumentationName))
		instr = instruments{
			events: m.NewInt64Counter(
				"actor/events_processed",
				metric.WithDescription("Count of events processed, by machine and event kind"),
			),
			tasks: m.NewInt64Counter(
				"actor/tasks_completed",
				metric.WithDescription("Count of request tasks, by machine and outcome"),
			),
		}
	})

	return instr
}

func recordEvent(ctx context.Context, machine, kind string) {
	meters().events.Add(ctx, 1, machineKey.String(machine), eventKey.String(kind))
}

func recordTask(ctx context.Context, machine, outcome string) {
	meters().tasks.Add(ctx, 1, machineKey.String(machine), outcomeKey.String(outcome))
}
