package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/KasumiMercury/primind-expense-assistant/internal/app"
	"github.com/KasumiMercury/primind-expense-assistant/internal/observability/tracing"
)

type DocumentPayload struct {
	Filename    string `json:"filename"`
	Caption     string `json:"caption,omitempty"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}

// NotificationEvent is the wire form of an outbound notification. The chat
// gateway consumes it and talks to the chat platform.
type NotificationEvent struct {
	ID        string           `json:"id"`
	UserID    int64            `json:"user_id"`
	ChatID    int64            `json:"chat_id"`
	Kind      string           `json:"kind"`
	Text      string           `json:"text,omitempty"`
	Document  *DocumentPayload `json:"document,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

func NewNotificationEvent(n app.Notification, now time.Time) NotificationEvent {
	ev := NotificationEvent{
		ID:        n.ID,
		UserID:    n.UserID.Int64(),
		ChatID:    n.ChatID,
		Kind:      string(n.Kind),
		Text:      n.Text,
		CreatedAt: now.UTC(),
	}

	if n.Document != nil {
		ev.Document = &DocumentPayload{
			Filename:    n.Document.Filename,
			Caption:     n.Document.Caption,
			ContentType: n.Document.ContentType,
			Content:     n.Document.Content,
		}
	}

	return ev
}

// newMessage builds the watermill message for n, carrying the trace context
// of ctx in its metadata.
func newMessage(ctx context.Context, n app.Notification, now time.Time) (*message.Message, error) {
	payload, err := json.Marshal(NewNotificationEvent(n, now))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(n.ID, payload)
	msg.SetContext(ctx)

	msg.Metadata.Set("event_type", TopicNotificationOutbound)
	msg.Metadata.Set("kind", string(n.Kind))
	msg.Metadata.Set("user_id", strconv.FormatInt(n.UserID.Int64(), 10))

	for k, v := range tracing.CarrierFor(ctx) {
		msg.Metadata.Set(k, v)
	}

	return msg, nil
}
