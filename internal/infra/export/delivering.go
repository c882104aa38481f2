package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KasumiMercury/primind-expense-assistant/internal/app"
	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
)

// DeliveringExporter sends the encoded backup to the user before reporting
// success. A backup that could not be delivered is a failed backup.
type DeliveringExporter struct {
	encoder    app.BackupExporter
	dispatcher app.NotificationDispatcher
}

func NewDeliveringExporter(encoder app.BackupExporter, dispatcher app.NotificationDispatcher) *DeliveringExporter {
	return &DeliveringExporter{
		encoder:    encoder,
		dispatcher: dispatcher,
	}
}

func (e *DeliveringExporter) Export(ctx context.Context, userID domain.UserID, expenses []*domain.Expense) (app.Backup, error) {
	backup, err := e.encoder.Export(ctx, userID, expenses)
	if err != nil {
		return app.Backup{}, err
	}

	// nothing to keep, nothing to send
	if backup.Rows == 0 {
		return backup, nil
	}

	n := app.NewNotification(userID, app.NotificationBackup, "")
	n.Document = &app.Document{
		Filename:    app.BackupFilename,
		Caption:     app.MessageBackupCaption,
		ContentType: "text/csv",
		Content:     backup.Content,
	}

	if err := e.dispatcher.Dispatch(ctx, n); err != nil {
		return app.Backup{}, fmt.Errorf("deliver backup: %w", err)
	}

	slog.Debug("backup delivered",
		"user_id", userID.Int64(),
		"rows", backup.Rows,
		"notification_id", n.ID,
	)

	return backup, nil
}
