package consigne

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/superquinquin/consigne-desk/pkg/consigne"

func (c *Client) initTelemetry() error {
	meter := otel.Meter(
		instrumentationName,
		metric.WithInstrumentationVersion(otel.Version()),
	)

	var err error

	c.requests, err = meter.Int64Counter(
		"consigne.request_count",
		metric.WithDescription("Outgoing consigne API request count"),
		metric.WithUnit("request"),
	)
	if err != nil {
		return fmt.Errorf("creating request_count meter: %w", err)
	}

	c.duration, err = meter.Int64Histogram(
		"consigne.duration",
		metric.WithDescription("Outgoing consigne API end to end duration"),
		metric.WithUnit("milliseconds"),
	)
	if err != nil {
		return fmt.Errorf("creating duration meter: %w", err)
	}

	c.tracer = otel.Tracer(instrumentationName)

	return nil
}

func (c *Client) observe(ctx context.Context, span trace.Span, op string, status int, err error, elapsed time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("consigne.operation", op),
		attribute.Int("consigne.status", status),
	}

	span.SetAttributes(attrs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	c.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
	c.duration.Record(ctx, elapsed.Milliseconds(), metric.WithAttributes(attrs...))
}
