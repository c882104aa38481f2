package app

//go:generate mockgen -source=notification.go -destination=notification_mock.go -package=app

import (
	"context"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
)

type NotificationKind string

const (
	NotificationResetCompleted NotificationKind = "reset_completed"
	NotificationResetFailed    NotificationKind = "reset_failed"
	NotificationBackup         NotificationKind = "backup"
	NotificationDailyReminder  NotificationKind = "daily_reminder"
)

// Document is a file attached to an outbound message.
type Document struct {
	Filename    string
	Caption     string
	ContentType string
	Content     []byte
}

// Notification is a message the core sends outside of a request/reply cycle.
type Notification struct {
	ID       string
	UserID   domain.UserID
	ChatID   int64
	Kind     NotificationKind
	Text     string
	Document *Document
}

// NewNotification addresses a private chat, whose id equals the user id.
func NewNotification(userID domain.UserID, kind NotificationKind, text string) Notification {
	return Notification{
		ID:     uuid.NewString(),
		UserID: userID,
		ChatID: userID.Int64(),
		Kind:   kind,
		Text:   text,
	}
}

type NotificationDispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}
