package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
)

type ExpenseModel struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64           `gorm:"column:user_id;type:bigint;not null;index:idx_expenses_user_spent_at,priority:1"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	Category  string          `gorm:"column:category;type:varchar(255);not null"`
	Note      string          `gorm:"column:note;type:text;not null;default:''"`
	SpentAt   time.Time       `gorm:"column:spent_at;type:timestamptz;not null;index:idx_expenses_user_spent_at,priority:2"`
	CreatedAt time.Time       `gorm:"column:created_at;type:timestamptz;not null;autoCreateTime"`
}

func (ExpenseModel) TableName() string {
	return "expenses"
}

func (m *ExpenseModel) ToEntity() (*domain.Expense, error) {
	userID, err := domain.NewUserID(m.UserID)
	if err != nil {
		return nil, err
	}

	return domain.ReconstituteExpense(
		domain.ExpenseID(m.ID),
		userID,
		m.Amount,
		m.Category,
		m.Note,
		m.SpentAt,
	), nil
}

func FromExpense(e *domain.Expense) *ExpenseModel {
	return &ExpenseModel{
		ID:       int64(e.ID()),
		UserID:   e.UserID().Int64(),
		Amount:   e.Amount(),
		Category: e.Category(),
		Note:     e.Note(),
		SpentAt:  e.SpentAt(),
	}
}

type categoryTotalRow struct {
	Category string
	Total    decimal.Decimal
}
