package export_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-expense-assistant/internal/app"
	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
	"github.com/KasumiMercury/primind-expense-assistant/internal/infra/export"
)

func TestDeliveringExporterSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dispatcher := app.NewMockNotificationDispatcher(ctrl)

	dispatcher.EXPECT().
		Dispatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n app.Notification) error {
			assert.Equal(t, app.NotificationBackup, n.Kind)
			assert.Equal(t, int64(1), n.ChatID)
			require.NotNil(t, n.Document)
			assert.Equal(t, "Hisheb_Backup.csv", n.Document.Filename)
			assert.Contains(t, string(n.Document.Content), "Amount,Category,Note,Date")

			return nil
		}).
		Times(1)

	exporter := export.NewDeliveringExporter(export.NewCSVExporter(time.UTC), dispatcher)

	backup, err := exporter.Export(context.Background(), domain.MustUserID(1), []*domain.Expense{
		expense(t, 1, "5", "food", "", time.Now()),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, backup.Rows)
}

func TestDeliveringExporterNoRowsSkipsDispatchSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dispatcher := app.NewMockNotificationDispatcher(ctrl)
	dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Times(0)

	exporter := export.NewDeliveringExporter(export.NewCSVExporter(time.UTC), dispatcher)

	backup, err := exporter.Export(context.Background(), domain.MustUserID(1), nil)

	require.NoError(t, err)
	assert.Equal(t, 0, backup.Rows)
}

func TestDeliveringExporterError(t *testing.T) {
	encodeErr := errors.New("encode failed")
	sendErr := errors.New("broker down")

	tests := []struct {
		name       string
		encoder    app.BackupExporter
		dispatches int
		dispatch   error
		want       error
	}{
		{
			name: "encoder failure is returned without dispatch",
			encoder: app.BackupExporterFunc(func(context.Context, domain.UserID, []*domain.Expense) (app.Backup, error) {
				return app.Backup{}, encodeErr
			}),
			dispatches: 0,
			want:       encodeErr,
		},
		{
			name:       "dispatch failure fails the backup",
			encoder:    export.NewCSVExporter(time.UTC),
			dispatches: 1,
			dispatch:   sendErr,
			want:       sendErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			dispatcher := app.NewMockNotificationDispatcher(ctrl)
			dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(tt.dispatch).Times(tt.dispatches)

			exporter := export.NewDeliveringExporter(tt.encoder, dispatcher)

			_, err := exporter.Export(context.Background(), domain.MustUserID(1), []*domain.Expense{
				expense(t, 1, "5", "food", "", time.Now()),
			})

			assert.ErrorIs(t, err, tt.want)
		})
	}
}
