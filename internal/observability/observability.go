package observability

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"

	"github.com/KasumiMercury/primind-expense-assistant/internal/observability/logging"
	"github.com/KasumiMercury/primind-expense-assistant/internal/observability/metrics"
	"github.com/KasumiMercury/primind-expense-assistant/internal/observability/tracing"
)

type Config struct {
	ServiceInfo   logging.ServiceInfo
	Environment   logging.Environment
	GCPProjectID  string
	SamplingRate  float64
	DefaultModule logging.Module
	LogLevel      slog.Level
}

type Resources struct {
	tracer *tracing.Provider
	meter  *metrics.Provider
}

// Init installs the default slog logger and the global tracer and meter
// providers.
func Init(ctx context.Context, cfg Config) (*Resources, error) {
	slog.SetDefault(slog.New(logging.NewHandler(os.Stdout, logging.HandlerConfig{
		Level:         cfg.LogLevel,
		Service:       cfg.ServiceInfo,
		Environment:   cfg.Environment,
		GCPProjectID:  cfg.GCPProjectID,
		DefaultModule: cfg.DefaultModule,
	})))

	tp, err := tracing.NewProvider(ctx, tracing.Config{
		ServiceName:    cfg.ServiceInfo.Name,
		ServiceVersion: cfg.ServiceInfo.Version,
		Environment:    string(cfg.Environment),
		SamplingRate:   cfg.SamplingRate,
	})
	if err != nil {
		return nil, err
	}

	mp, err := metrics.NewProvider(ctx, metrics.Config{
		ServiceName:    cfg.ServiceInfo.Name,
		ServiceVersion: cfg.ServiceInfo.Version,
		Environment:    string(cfg.Environment),
	})
	if err != nil {
		_ = tp.Shutdown(ctx)

		return nil, err
	}

	otel.SetTracerProvider(tp.TracerProvider())
	otel.SetMeterProvider(mp.MeterProvider())
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Resources{tracer: tp, meter: mp}, nil
}

func (r *Resources) Meter(name string) metric.Meter {
	return r.meter.MeterProvider().Meter(name)
}

func (r *Resources) Shutdown(ctx context.Context) error {
	return errors.Join(
		r.tracer.Shutdown(ctx),
		r.meter.Shutdown(ctx),
	)
}
