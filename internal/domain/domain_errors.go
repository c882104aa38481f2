package domain

import "errors"

var (
	ErrExpenseNotFound  = errors.New("expense not found")
	ErrReminderNotFound = errors.New("reminder schedule not found")

	ErrInvalidTimeRange = errors.New("invalid time range: start must be before end")

	ErrInvalidAmount    = errors.New("amount must be a positive number")
	ErrEmptyCategory    = errors.New("category cannot be empty")
	ErrInvalidExpenseID = errors.New("invalid expense ID")

	ErrInvalidReminderHour   = errors.New("hour must be between 0 and 23")
	ErrInvalidReminderMinute = errors.New("minute must be between 0 and 59")
	ErrInvalidReminderTime   = errors.New("reminder time must be HH:MM")

	ErrInvalidActionKind       = errors.New("invalid action kind")
	ErrPendingActionExists     = errors.New("a confirmation is already pending")
	ErrPendingActionNotFound   = errors.New("no pending action")
	ErrPendingActionInProgress = errors.New("pending action is already being processed")
)
