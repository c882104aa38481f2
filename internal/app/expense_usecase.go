package app

import "context"

type ExpenseUseCase interface {
	AddExpense(ctx context.Context, input AddExpenseInput) (ExpenseOutput, error)
	Summary(ctx context.Context, input SummaryInput) (SummaryOutput, error)
	// Export returns ErrNotFound when the current month has no rows.
	Export(ctx context.Context, input ExportInput) (ExportOutput, error)
}
