package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/KasumiMercury/primind-expense-assistant/internal/app"
	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
)

const dateLayout = "2006-01-02"

var header = []string{"Amount", "Category", "Note", "Date"}

// CSVExporter writes one row per expense under a fixed header. Dates are
// rendered in loc.
type CSVExporter struct {
	loc *time.Location
}

func NewCSVExporter(loc *time.Location) *CSVExporter {
	return &CSVExporter{loc: loc}
}

func (e *CSVExporter) Export(_ context.Context, _ domain.UserID, expenses []*domain.Expense) (app.Backup, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return app.Backup{}, fmt.Errorf("write csv header: %w", err)
	}

	for _, expense := range expenses {
		record := []string{
			expense.Amount().StringFixed(2),
			expense.Category(),
			expense.Note(),
			expense.SpentAt().In(e.loc).Format(dateLayout),
		}

		if err := w.Write(record); err != nil {
			return app.Backup{}, fmt.Errorf("write csv row %d: %w", expense.ID(), err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return app.Backup{}, fmt.Errorf("flush csv: %w", err)
	}

	return app.Backup{
		Content: buf.Bytes(),
		Rows:    len(expenses),
	}, nil
}
