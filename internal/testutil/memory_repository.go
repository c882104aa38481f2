package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
)

// MemoryExpenseRepository is an in-process domain.ExpenseRepository for
// use case tests.
type MemoryExpenseRepository struct {
	mu          sync.Mutex
	nextID      domain.ExpenseID
	rows        []*domain.Expense
	deleteCalls int
}

func NewMemoryExpenseRepository() *MemoryExpenseRepository {
	return &MemoryExpenseRepository{}
}

func (r *MemoryExpenseRepository) Save(_ context.Context, expense *domain.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	expense.AssignID(r.nextID)

	r.rows = append(r.rows, domain.ReconstituteExpense(
		expense.ID(),
		expense.UserID(),
		expense.Amount(),
		expense.Category(),
		expense.Note(),
		expense.SpentAt(),
	))

	return nil
}

func (r *MemoryExpenseRepository) SumByCategory(_ context.Context, userID domain.UserID, window domain.TimeRange) ([]domain.CategoryTotal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sums := map[string]decimal.Decimal{}

	for _, e := range r.rows {
		if e.UserID().Equals(userID) && window.Contains(e.SpentAt()) {
			sums[e.Category()] = sums[e.Category()].Add(e.Amount())
		}
	}

	totals := make([]domain.CategoryTotal, 0, len(sums))
	for category, total := range sums {
		totals = append(totals, domain.CategoryTotal{Category: category, Total: total})
	}

	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Category < totals[j].Category
	})

	return totals, nil
}

func (r *MemoryExpenseRepository) ListExpenses(_ context.Context, userID domain.UserID, window domain.TimeRange) ([]*domain.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Expense

	for _, e := range r.rows {
		if e.UserID().Equals(userID) && window.Contains(e.SpentAt()) {
			out = append(out, e)
		}
	}

	return out, nil
}

func (r *MemoryExpenseRepository) DeleteAllForUser(_ context.Context, userID domain.UserID, through domain.ExpenseID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deleteCalls++

	kept := r.rows[:0]

	var deleted int64

	for _, e := range r.rows {
		if e.UserID().Equals(userID) && e.ID() <= through {
			deleted++

			continue
		}

		kept = append(kept, e)
	}

	r.rows = kept

	return deleted, nil
}

func (r *MemoryExpenseRepository) Count(userID domain.UserID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0

	for _, e := range r.rows {
		if e.UserID().Equals(userID) {
			n++
		}
	}

	return n
}

func (r *MemoryExpenseRepository) DeleteCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.deleteCalls
}

// MemoryReminderScheduleRepository is an in-process
// domain.ReminderScheduleRepository. Err, when set, fails every call.
type MemoryReminderScheduleRepository struct {
	mu   sync.Mutex
	rows map[domain.UserID]*domain.ReminderSchedule
	err  error
}

func NewMemoryReminderScheduleRepository() *MemoryReminderScheduleRepository {
	return &MemoryReminderScheduleRepository{
		rows: map[domain.UserID]*domain.ReminderSchedule{},
	}
}

func (r *MemoryReminderScheduleRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.err = err
}

func (r *MemoryReminderScheduleRepository) Get(_ context.Context, userID domain.UserID) (*domain.ReminderSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}

	s, ok := r.rows[userID]
	if !ok {
		return nil, domain.ErrReminderNotFound
	}

	return s, nil
}

func (r *MemoryReminderScheduleRepository) Upsert(_ context.Context, schedule *domain.ReminderSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}

	r.rows[schedule.UserID()] = schedule

	return nil
}

func (r *MemoryReminderScheduleRepository) Clear(_ context.Context, userID domain.UserID, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}

	s, ok := r.rows[userID]
	if !ok {
		return nil
	}

	cleared, err := domain.ReconstituteReminderSchedule(userID, s.Hour(), s.Minute(), false, now)
	if err != nil {
		return err
	}

	r.rows[userID] = cleared

	return nil
}

func (r *MemoryReminderScheduleRepository) ListActive(_ context.Context) ([]*domain.ReminderSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}

	var out []*domain.ReminderSchedule

	for _, s := range r.rows {
		if s.IsActive() {
			out = append(out, s)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].UserID().Int64() < out[j].UserID().Int64()
	})

	return out, nil
}
