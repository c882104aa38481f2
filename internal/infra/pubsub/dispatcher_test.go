package pubsub_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-expense-assistant/internal/app"
	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
	"github.com/KasumiMercury/primind-expense-assistant/internal/infra/pubsub"
)

func TestDispatcherSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := pubsub.NewMockPublisher(ctrl)

	n := app.NewNotification(domain.MustUserID(5), app.NotificationResetCompleted, app.MessageResetCompleted)
	publisher.EXPECT().PublishNotification(gomock.Any(), n).Return(nil)

	require.NoError(t, pubsub.NewDispatcher(publisher).Dispatch(context.Background(), n))
}

func TestDispatcherError(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := pubsub.NewMockPublisher(ctrl)

	boom := errors.New("broker down")
	publisher.EXPECT().PublishNotification(gomock.Any(), gomock.Any()).Return(boom)

	n := app.NewNotification(domain.MustUserID(5), app.NotificationResetFailed, app.MessageResetFailed)
	err := pubsub.NewDispatcher(publisher).Dispatch(context.Background(), n)
	assert.ErrorIs(t, err, boom)
}

func TestLogDispatcher(t *testing.T) {
	d := pubsub.NewLogDispatcher()

	text := app.NewNotification(domain.MustUserID(3), app.NotificationDailyReminder, "hello")
	assert.NoError(t, d.Dispatch(context.Background(), text))

	doc := app.NewNotification(domain.MustUserID(3), app.NotificationBackup, "")
	doc.Document = &app.Document{Filename: app.BackupFilename}
	assert.ErrorIs(t, d.Dispatch(context.Background(), doc), pubsub.ErrNoDeliveryChannel)
}
