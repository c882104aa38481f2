package app

//go:generate mockgen -source=backup.go -destination=backup_mock.go -package=app

import (
	"context"

	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
)

const (
	BackupFilename = "Hisheb_Backup.csv"
	ExportFilename = "Hisheb_Export.csv"
)

type Backup struct {
	Content []byte
	Rows    int
}

// BackupExporter serializes a user's rows. A nil error means the backup is
// safe to rely on; destructive callers must not proceed otherwise.
type BackupExporter interface {
	Export(ctx context.Context, userID domain.UserID, expenses []*domain.Expense) (Backup, error)
}

type BackupExporterFunc func(ctx context.Context, userID domain.UserID, expenses []*domain.Expense) (Backup, error)

func (f BackupExporterFunc) Export(ctx context.Context, userID domain.UserID, expenses []*domain.Expense) (Backup, error) {
	return f(ctx, userID, expenses)
}
