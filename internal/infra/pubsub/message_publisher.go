package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/KasumiMercury/primind-expense-assistant/internal/app"
)

// MessagePublisher publishes notifications on any watermill backend.
type MessagePublisher struct {
	publisher message.Publisher
}

func NewMessagePublisher(publisher message.Publisher) *MessagePublisher {
	return &MessagePublisher{publisher: publisher}
}

func (p *MessagePublisher) PublishNotification(ctx context.Context, n app.Notification) error {
	msg, err := newMessage(ctx, n, time.Now())
	if err != nil {
		return err
	}

	if err := p.publisher.Publish(TopicNotificationOutbound, msg); err != nil {
		slog.Error("failed to publish notification",
			slog.String("notification_id", n.ID),
			slog.String("kind", string(n.Kind)),
			slog.String("error", err.Error()),
		)

		return fmt.Errorf("failed to publish event: %w", err)
	}

	slog.Debug("published notification",
		slog.String("notification_id", n.ID),
		slog.String("kind", string(n.Kind)),
	)

	return nil
}

func (p *MessagePublisher) Close() error {
	return p.publisher.Close()
}
