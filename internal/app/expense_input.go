package app

type AddExpenseInput struct {
	UserID   int64
	Amount   string
	Category string
	Note     string
}

type SummaryInput struct {
	UserID int64
	Period ReportPeriod
}

type ExportInput struct {
	UserID int64
}
