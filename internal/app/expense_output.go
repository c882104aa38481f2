package app

import (
	"time"

	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
)

type ExpenseOutput struct {
	ID       int64
	UserID   int64
	Amount   string
	Category string
	Note     string
	SpentAt  time.Time
	Text     string
}

type CategoryTotalOutput struct {
	Category string
	Total    string
}

type SummaryOutput struct {
	Period ReportPeriod
	Window domain.TimeRange
	Totals []CategoryTotalOutput
	Total  string
	Text   string
}

type ExportOutput struct {
	Rows     int
	Document *Document
}

func FromExpense(e *domain.Expense) ExpenseOutput {
	return ExpenseOutput{
		ID:       int64(e.ID()),
		UserID:   e.UserID().Int64(),
		Amount:   e.Amount().StringFixed(2),
		Category: e.Category(),
		Note:     e.Note(),
		SpentAt:  e.SpentAt(),
		Text:     FormatExpenseAdded(e),
	}
}

func FromCategoryTotals(period ReportPeriod, window domain.TimeRange, totals []domain.CategoryTotal) SummaryOutput {
	out := make([]CategoryTotalOutput, 0, len(totals))
	for _, t := range totals {
		out = append(out, CategoryTotalOutput{
			Category: t.Category,
			Total:    t.Total.StringFixed(2),
		})
	}

	return SummaryOutput{
		Period: period,
		Window: window,
		Totals: out,
		Total:  domain.SumTotals(totals).StringFixed(2),
		Text:   FormatReport(period, totals),
	}
}
