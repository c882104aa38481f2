package tracing_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/KasumiMercury/primind-expense-assistant/internal/observability/tracing"
)

func TestInjectAndExtractSuccess(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	ctx, span := tp.Tracer("test").Start(context.Background(), "outer")
	defer span.End()

	carrier := tracing.CarrierFor(ctx)

	assert.Contains(t, carrier, "traceparent")

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, "/", nil)
	assert.NoError(t, err)
	req.Header.Set("traceparent", carrier["traceparent"])

	extracted := tracing.ExtractFromHTTPRequest(context.Background(), req)

	assert.Equal(t,
		span.SpanContext().TraceID(),
		trace.SpanContextFromContext(extracted).TraceID(),
	)
}

func TestCarrierForWithoutSpanSuccess(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	assert.Empty(t, tracing.CarrierFor(context.Background()))
}
