package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
)

type expenseUseCaseImpl struct {
	repo     domain.ExpenseRepository
	exporter BackupExporter
	clock    clockwork.Clock
	loc      *time.Location
}

func NewExpenseUseCase(
	repo domain.ExpenseRepository,
	exporter BackupExporter,
	clock clockwork.Clock,
	loc *time.Location,
) ExpenseUseCase {
	return &expenseUseCaseImpl{
		repo:     repo,
		exporter: exporter,
		clock:    clock,
		loc:      loc,
	}
}

func (uc *expenseUseCaseImpl) now() time.Time {
	return uc.clock.Now().In(uc.loc)
}

func (uc *expenseUseCaseImpl) AddExpense(ctx context.Context, input AddExpenseInput) (ExpenseOutput, error) {
	slog.Debug("adding expense",
		"user_id", input.UserID,
		"category", input.Category,
	)

	userID, err := domain.NewUserID(input.UserID)
	if err != nil {
		return ExpenseOutput{}, NewValidationError("user_id", err.Error())
	}

	amount, err := domain.ParseAmount(input.Amount)
	if err != nil {
		return ExpenseOutput{}, NewValidationError("amount", "amount must be a positive number")
	}

	expense, err := domain.NewExpense(userID, amount, input.Category, input.Note, uc.now())
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCategory) {
			return ExpenseOutput{}, NewValidationError("category", err.Error())
		}

		return ExpenseOutput{}, NewValidationError("expense", err.Error())
	}

	if err := uc.repo.Save(ctx, expense); err != nil {
		slog.Error("failed to save expense",
			"error", err,
			"user_id", input.UserID,
		)

		return ExpenseOutput{}, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	slog.Info("expense added",
		"expense_id", int64(expense.ID()),
		"user_id", input.UserID,
	)

	return FromExpense(expense), nil
}

func (uc *expenseUseCaseImpl) Summary(ctx context.Context, input SummaryInput) (SummaryOutput, error) {
	userID, err := domain.NewUserID(input.UserID)
	if err != nil {
		return SummaryOutput{}, NewValidationError("user_id", err.Error())
	}

	period, err := ParseReportPeriod(string(input.Period))
	if err != nil {
		return SummaryOutput{}, err
	}

	window := period.Window(uc.now())

	totals, err := uc.repo.SumByCategory(ctx, userID, window)
	if err != nil {
		slog.Error("failed to sum expenses",
			"error", err,
			"user_id", input.UserID,
			"period", string(period),
		)

		return SummaryOutput{}, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return FromCategoryTotals(period, window, totals), nil
}

func (uc *expenseUseCaseImpl) Export(ctx context.Context, input ExportInput) (ExportOutput, error) {
	userID, err := domain.NewUserID(input.UserID)
	if err != nil {
		return ExportOutput{}, NewValidationError("user_id", err.Error())
	}

	expenses, err := uc.repo.ListExpenses(ctx, userID, domain.MonthWindow(uc.now()))
	if err != nil {
		slog.Error("failed to list expenses for export",
			"error", err,
			"user_id", input.UserID,
		)

		return ExportOutput{}, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if len(expenses) == 0 {
		return ExportOutput{}, fmt.Errorf("%w: no expenses this month", ErrNotFound)
	}

	backup, err := uc.exporter.Export(ctx, userID, expenses)
	if err != nil {
		slog.Error("failed to encode export",
			"error", err,
			"user_id", input.UserID,
		)

		return ExportOutput{}, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return ExportOutput{
		Rows: backup.Rows,
		Document: &Document{
			Filename:    ExportFilename,
			Caption:     MessageExportCaption,
			ContentType: "text/csv",
			Content:     backup.Content,
		},
	}, nil
}
