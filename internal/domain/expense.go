package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ExpenseID int64

// maxAmount is the first value that no longer fits numeric(14,2).
var maxAmount = decimal.New(1, 12)

type Expense struct {
	id       ExpenseID
	userID   UserID
	amount   decimal.Decimal
	category string
	note     string
	spentAt  time.Time
}

func NewExpense(
	userID UserID,
	amount decimal.Decimal,
	category string,
	note string,
	spentAt time.Time,
) (*Expense, error) {
	if userID.IsZero() {
		return nil, ErrInvalidUserID
	}

	amount, err := normalizeAmount(amount)
	if err != nil {
		return nil, err
	}

	category = strings.TrimSpace(category)
	if category == "" {
		return nil, ErrEmptyCategory
	}

	return &Expense{
		userID:   userID,
		amount:   amount,
		category: category,
		note:     strings.TrimSpace(note),
		spentAt:  spentAt,
	}, nil
}

// ParseAmount accepts the textual amount a user typed ("150", "12.5").
func ParseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}

	return normalizeAmount(amount)
}

// normalizeAmount rounds to cents before checking the range, so a sub-cent
// value never turns into a stored zero.
func normalizeAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() || amount.GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, ErrInvalidAmount
	}

	return amount, nil
}

func ReconstituteExpense(
	id ExpenseID,
	userID UserID,
	amount decimal.Decimal,
	category string,
	note string,
	spentAt time.Time,
) *Expense {
	return &Expense{
		id:       id,
		userID:   userID,
		amount:   amount,
		category: category,
		note:     note,
		spentAt:  spentAt,
	}
}

// AssignID is called by the repository once the row has been inserted.
func (e *Expense) AssignID(id ExpenseID) {
	e.id = id
}

func (e *Expense) ID() ExpenseID {
	return e.id
}

func (e *Expense) UserID() UserID {
	return e.userID
}

func (e *Expense) Amount() decimal.Decimal {
	return e.amount
}

func (e *Expense) Category() string {
	return e.category
}

func (e *Expense) Note() string {
	return e.note
}

func (e *Expense) SpentAt() time.Time {
	return e.spentAt
}

type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

func SumTotals(totals []CategoryTotal) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(t.Total)
	}

	return sum
}

// MaxExpenseID returns the highest id in the slice, or zero when it is empty.
func MaxExpenseID(expenses []*Expense) ExpenseID {
	var highest ExpenseID
	for _, e := range expenses {
		if e.ID() > highest {
			highest = e.ID()
		}
	}

	return highest
}
