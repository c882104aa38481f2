package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
)

const (
	MessageResetWarning = "⚠️ Warning: Data Reset\n\n" +
		"Are you sure you want to reset all your data?\n" +
		"A CSV backup will be sent before deletion.\n\n" +
		"Type CONFIRM to proceed or press Cancel."
	MessageResetAlreadyPending = "⚠️ A reset is already waiting for confirmation. Type CONFIRM or press Cancel."
	MessageTypeConfirm         = "❗ Type CONFIRM or press Cancel."
	MessageResetProcessing     = "⚙️ Processing reset..."
	MessageResetCompleted      = "✅ All data cleared successfully!\n\n💡 Use /add to start again."
	MessageResetBackupFailed   = "❌ Backup failed, nothing was deleted. Please try /reset again."
	MessageResetFailed         = "❌ Reset failed after the backup was sent. Please try /reset again."
	MessageResetCancelled      = "❎ Reset canceled. Your data is safe."
	MessageNoActiveReset       = "ℹ️ No active reset found."
	MessageResetInProgress     = "⚙️ Reset is already in progress and can no longer be canceled."
	MessageBackupCaption       = "📦 Backup before reset"
	MessageExportCaption       = "📤 Your monthly data export"
	MessageNoDataToExport      = "📭 No data to export."
)

type ReportPeriod string

const (
	PeriodDaily   ReportPeriod = "daily"
	PeriodMonthly ReportPeriod = "monthly"
	PeriodAll     ReportPeriod = "all"
)

func ParseReportPeriod(s string) (ReportPeriod, error) {
	switch ReportPeriod(s) {
	case PeriodDaily, PeriodMonthly, PeriodAll:
		return ReportPeriod(s), nil
	default:
		return "", NewValidationError("period", fmt.Sprintf("unknown period %q", s))
	}
}

// Window returns the half-open range the period covers at now.
func (p ReportPeriod) Window(now time.Time) domain.TimeRange {
	switch p {
	case PeriodDaily:
		return domain.DayWindow(now)
	case PeriodMonthly:
		return domain.MonthWindow(now)
	default:
		return domain.Unbounded()
	}
}

func (p ReportPeriod) title() string {
	switch p {
	case PeriodDaily:
		return "📅 Today's Summary"
	case PeriodMonthly:
		return "🗓️ Monthly Summary"
	default:
		return "📊 Expense Summary"
	}
}

func (p ReportPeriod) emptyMessage() string {
	switch p {
	case PeriodDaily:
		return "📭 No data for today."
	case PeriodMonthly:
		return "📭 No records for this month."
	default:
		return "📭 No records found."
	}
}

// FormatReport renders category totals with a grand total. Amounts always
// carry two decimals.
func FormatReport(period ReportPeriod, totals []domain.CategoryTotal) string {
	if len(totals) == 0 {
		return period.emptyMessage()
	}

	return formatTotals(period.title(), totals)
}

func FormatDailyReminder(totals []domain.CategoryTotal) string {
	if len(totals) == 0 {
		return "⏰ Daily reminder\n\n📭 Nothing recorded today. Use /add to log an expense."
	}

	return "⏰ Daily reminder\n\n" + formatTotals(PeriodDaily.title(), totals)
}

func FormatExpenseAdded(e *domain.Expense) string {
	note := e.Note()
	if note == "" {
		note = "No note"
	}

	return fmt.Sprintf("✅ Added %s 💵 in %s\n📝 %s", e.Amount().StringFixed(2), e.Category(), note)
}

func formatTotals(title string, totals []domain.CategoryTotal) string {
	var b strings.Builder

	b.WriteString(title)
	b.WriteString(":\n\n")

	for _, t := range totals {
		fmt.Fprintf(&b, "• %s: %s 💵\n", t.Category, t.Total.StringFixed(2))
	}

	fmt.Fprintf(&b, "\n💰 Total: %s", domain.SumTotals(totals).StringFixed(2))

	return b.String()
}
