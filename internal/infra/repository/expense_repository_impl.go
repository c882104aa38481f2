package repository

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
)

type expenseRepositoryImpl struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) domain.ExpenseRepository {
	return &expenseRepositoryImpl{
		db: db,
	}
}

func (r *expenseRepositoryImpl) Save(ctx context.Context, expense *domain.Expense) error {
	slog.Debug("saving expense to database",
		"user_id", expense.UserID().Int64(),
	)

	m := FromExpense(expense)

	result := r.db.WithContext(ctx).Create(m)
	if result.Error != nil {
		slog.Error("failed to save expense to database",
			"user_id", expense.UserID().Int64(),
			"error", result.Error,
		)

		return result.Error
	}

	expense.AssignID(domain.ExpenseID(m.ID))

	slog.Debug("expense saved to database",
		"expense_id", m.ID,
	)

	return nil
}

func (r *expenseRepositoryImpl) SumByCategory(ctx context.Context, userID domain.UserID, window domain.TimeRange) ([]domain.CategoryTotal, error) {
	slog.Debug("summing expenses by category",
		"user_id", userID.Int64(),
		"start", window.Start,
		"end", window.End,
	)

	var rows []categoryTotalRow

	result := r.db.WithContext(ctx).
		Model(&ExpenseModel{}).
		Select("category, SUM(amount) AS total").
		Where("user_id = ? AND spent_at >= ? AND spent_at < ?", userID.Int64(), window.Start, window.End).
		Group("category").
		Order("category ASC").
		Scan(&rows)
	if result.Error != nil {
		slog.Error("failed to sum expenses by category",
			"user_id", userID.Int64(),
			"error", result.Error,
		)

		return nil, result.Error
	}

	totals := make([]domain.CategoryTotal, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, domain.CategoryTotal{
			Category: row.Category,
			Total:    row.Total,
		})
	}

	slog.Debug("expenses summed by category",
		"user_id", userID.Int64(),
		"categories", len(totals),
	)

	return totals, nil
}

func (r *expenseRepositoryImpl) ListExpenses(ctx context.Context, userID domain.UserID, window domain.TimeRange) ([]*domain.Expense, error) {
	slog.Debug("listing expenses",
		"user_id", userID.Int64(),
		"start", window.Start,
		"end", window.End,
	)

	var models []ExpenseModel

	result := r.db.WithContext(ctx).
		Where("user_id = ? AND spent_at >= ? AND spent_at < ?", userID.Int64(), window.Start, window.End).
		Order("id ASC").
		Find(&models)
	if result.Error != nil {
		slog.Error("failed to list expenses",
			"user_id", userID.Int64(),
			"error", result.Error,
		)

		return nil, result.Error
	}

	expenses := make([]*domain.Expense, 0, len(models))
	for _, m := range models {
		expense, err := m.ToEntity()
		if err != nil {
			slog.Error("failed to convert model to entity",
				"expense_id", m.ID,
				"error", err,
			)

			return nil, err
		}

		expenses = append(expenses, expense)
	}

	slog.Debug("expenses listed",
		"user_id", userID.Int64(),
		"count", len(expenses),
	)

	return expenses, nil
}

func (r *expenseRepositoryImpl) DeleteAllForUser(ctx context.Context, userID domain.UserID, through domain.ExpenseID) (int64, error) {
	slog.Debug("deleting expenses for user",
		"user_id", userID.Int64(),
		"through_id", int64(through),
	)

	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id <= ?", userID.Int64(), int64(through)).
		Delete(&ExpenseModel{})
	if result.Error != nil {
		slog.Error("failed to delete expenses for user",
			"user_id", userID.Int64(),
			"error", result.Error,
		)

		return 0, result.Error
	}

	slog.Debug("expenses deleted for user",
		"user_id", userID.Int64(),
		"count", result.RowsAffected,
	)

	return result.RowsAffected, nil
}
