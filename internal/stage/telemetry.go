package stage

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentationName is the name used for OTEL instrumentation.
const InstrumentationName = "github.com/fyrsmithlabs/vault/internal/stage"

// Metrics records stage transitions.
type Metrics struct {
	transitionsTotal metric.Int64Counter
	transitionErrors metric.Int64Counter

	initialized bool
}

// NewMetrics creates Metrics on meter, or on the global meter provider when
// meter is nil.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(InstrumentationName)
	}

	m := &Metrics{}
	var err error

	m.transitionsTotal, err = meter.Int64Counter(
		"vault.stage.transitions.total",
		metric.WithDescription("Completed stage transitions by target stage"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	m.transitionErrors, err = meter.Int64Counter(
		"vault.stage.transition.errors.total",
		metric.WithDescription("Rejected stage transition requests by reason"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	m.initialized = true
	return m, nil
}

// RecordTransition records a completed transition to stage.
func (m *Metrics) RecordTransition(ctx context.Context, to int) {
	if m == nil || !m.initialized {
		return
	}
	m.transitionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.Int("to", to)))
}

// RecordRejected records a refused transition request.
func (m *Metrics) RecordRejected(ctx context.Context, reason string) {
	if m == nil || !m.initialized {
		return
	}
	m.transitionErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
