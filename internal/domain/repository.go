package domain

import (
	"context"
	"time"
)

type ExpenseRepository interface {
	Save(ctx context.Context, expense *Expense) error
	SumByCategory(ctx context.Context, userID UserID, window TimeRange) ([]CategoryTotal, error)
	ListExpenses(ctx context.Context, userID UserID, window TimeRange) ([]*Expense, error)
	// DeleteAllForUser removes the user's rows with id <= through and returns
	// the number of rows removed.
	DeleteAllForUser(ctx context.Context, userID UserID, through ExpenseID) (int64, error)
}

type ReminderScheduleRepository interface {
	Get(ctx context.Context, userID UserID) (*ReminderSchedule, error)
	Upsert(ctx context.Context, schedule *ReminderSchedule) error
	// Clear deactivates the user's schedule and stamps it with now.
	Clear(ctx context.Context, userID UserID, now time.Time) error
	ListActive(ctx context.Context) ([]*ReminderSchedule, error)
}
