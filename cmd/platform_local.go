//go:build !gcloud

package main

import (
	"context"
	"log/slog"

	"github.com/KasumiMercury/primind-expense-assistant/internal/config"
	"github.com/KasumiMercury/primind-expense-assistant/internal/infra/pubsub"
	"github.com/KasumiMercury/primind-expense-assistant/internal/observability"
	"github.com/KasumiMercury/primind-expense-assistant/internal/observability/logging"
)

func initPublisher(ctx context.Context, cfg *config.Config) (pubsub.Publisher, error) {
	if cfg.PubSub.NatsURL == "" {
		slog.Warn("NATS_URL not set, notifications are logged only")
		return nil, nil
	}

	publisher, err := pubsub.NewNATSPublisherWithStream(ctx, pubsub.NATSPublisherConfig{
		URL: cfg.PubSub.NatsURL,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("NATS publisher initialized", "url", cfg.PubSub.NatsURL)
	return publisher, nil
}

func initObservability(ctx context.Context, cfg *config.Config) (*observability.Resources, error) {
	return observability.Init(ctx, observability.Config{
		ServiceInfo: logging.ServiceInfo{
			Name:    "expense-assistant",
			Version: Version,
		},
		Environment:   logging.Environment(cfg.Observability.Environment),
		SamplingRate:  cfg.Observability.SamplingRate,
		DefaultModule: logging.Module("expense"),
		LogLevel:      logging.ParseLevel(cfg.Log.Level),
	})
}
