package catch

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentationName is the name used for OTEL instrumentation.
const InstrumentationName = "github.com/fyrsmithlabs/vault/internal/catch"

// Metrics records catch game events.
type Metrics struct {
	caughtTotal metric.Int64Counter
	missedTotal metric.Int64Counter
	finalScore  metric.Int64Histogram
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

	m.caughtTotal, err = meter.Int64Counter(
		"vault.catch.items.caught.total",
		metric.WithDescription("Items caught by the paddle, by kind"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, err
	}

	m.missedTotal, err = meter.Int64Counter(
		"vault.catch.items.missed.total",
		metric.WithDescription("Items that fell past the play area"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, err
	}

	m.finalScore, err = meter.Int64Histogram(
		"vault.catch.final_score",
		metric.WithDescription("Score at victory"),
		metric.WithUnit("{point}"),
	)
	if err != nil {
		return nil, err
	}

	m.initialized = true
	return m, nil
}

// RecordStep records the catches and misses of one frame.
func (m *Metrics) RecordStep(ctx context.Context, res StepResult) {
	if m == nil || !m.initialized {
		return
	}
	for _, k := range res.Caught {
		m.caughtTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", k.String())))
	}
	if res.Missed > 0 {
		m.missedTotal.Add(ctx, int64(res.Missed))
	}
}

// RecordVictory records the final score.
func (m *Metrics) RecordVictory(ctx context.Context, score int) {
	if m == nil || !m.initialized {
		return
	}
	m.finalScore.Record(ctx, int64(score))
}
