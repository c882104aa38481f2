package pubsub

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KasumiMercury/primind-expense-assistant/internal/app"
)

var ErrNoDeliveryChannel = errors.New("no delivery channel configured for documents")

// Dispatcher delivers notifications through a Publisher.
type Dispatcher struct {
	publisher Publisher
}

func NewDispatcher(publisher Publisher) *Dispatcher {
	return &Dispatcher{publisher: publisher}
}

func (d *Dispatcher) Dispatch(ctx context.Context, n app.Notification) error {
	return d.publisher.PublishNotification(ctx, n)
}

// LogDispatcher is used when no broker is configured. Text is only logged.
// Documents are refused, so a backup is never reported as delivered when it
// went nowhere.
type LogDispatcher struct{}

func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

func (LogDispatcher) Dispatch(ctx context.Context, n app.Notification) error {
	if n.Document != nil {
		slog.WarnContext(ctx, "document notification dropped",
			slog.String("notification_id", n.ID),
			slog.String("kind", string(n.Kind)),
			slog.String("filename", n.Document.Filename),
		)

		return ErrNoDeliveryChannel
	}

	slog.InfoContext(ctx, "notification",
		slog.String("event", "notification.log"),
		slog.String("notification_id", n.ID),
		slog.String("kind", string(n.Kind)),
		slog.Int64("chat_id", n.ChatID),
		slog.String("text", n.Text),
	)

	return nil
}
