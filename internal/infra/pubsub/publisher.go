package pubsub

import (
	"context"
	"io"

	"github.com/KasumiMercury/primind-expense-assistant/internal/app"
)

//go:generate mockgen -source=publisher.go -destination=publisher_mock.go -package=pubsub

const TopicNotificationOutbound = "notification.outbound"

type Publisher interface {
	PublishNotification(ctx context.Context, n app.Notification) error
	io.Closer
}
