package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
	"github.com/KasumiMercury/primind-expense-assistant/internal/observability/logging"
	"github.com/KasumiMercury/primind-expense-assistant/internal/observability/metrics"
	"github.com/KasumiMercury/primind-expense-assistant/internal/slotmap"
)

type ReminderOutput struct {
	UserID     int64
	Hour       int
	Minute     int
	TimeOfDay  string
	Active     bool
	NextFireAt time.Time
}

// ReminderScheduler keeps the persisted daily reminders and the armed timers
// in agreement. The database row is written first; a timer is only armed or
// cancelled after the write succeeded.
type ReminderScheduler struct {
	schedules  domain.ReminderScheduleRepository
	expenses   domain.ExpenseRepository
	dispatcher NotificationDispatcher
	registry   *ReminderRegistry
	clock      clockwork.Clock
	loc        *time.Location
	recorder   *metrics.Recorder

	// serializes SetReminder and RemoveReminder per user
	ops *slotmap.Map[domain.UserID, struct{}]
}

func NewReminderScheduler(
	schedules domain.ReminderScheduleRepository,
	expenses domain.ExpenseRepository,
	dispatcher NotificationDispatcher,
	clock clockwork.Clock,
	loc *time.Location,
	recorder *metrics.Recorder,
) *ReminderScheduler {
	s := &ReminderScheduler{
		schedules:  schedules,
		expenses:   expenses,
		dispatcher: dispatcher,
		clock:      clock,
		loc:        loc,
		recorder:   recorder,
		ops:        slotmap.New[domain.UserID, struct{}](),
	}
	s.registry = NewReminderRegistry(clock, loc, s.fire, recorder)

	return s
}

func reminderValidationError(err error) *ValidationError {
	switch {
	case errors.Is(err, domain.ErrInvalidReminderHour):
		return NewValidationError("hour", err.Error())
	case errors.Is(err, domain.ErrInvalidReminderMinute):
		return NewValidationError("minute", err.Error())
	case errors.Is(err, domain.ErrInvalidUserID):
		return NewValidationError("user_id", err.Error())
	default:
		return NewValidationError("time", err.Error())
	}
}

func (s *ReminderScheduler) SetReminder(ctx context.Context, userID domain.UserID, hour, minute int) (ReminderOutput, error) {
	schedule, err := domain.NewReminderSchedule(userID, hour, minute, s.clock.Now())
	if err != nil {
		return ReminderOutput{}, reminderValidationError(err)
	}

	unlock := s.ops.Lock(userID)
	defer unlock()

	if err := s.schedules.Upsert(ctx, schedule); err != nil {
		slog.Error("failed to persist reminder schedule",
			"error", err,
			"user_id", userID.Int64(),
		)

		return ReminderOutput{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	next, ok := s.registry.Arm(userID, schedule)
	if !ok {
		return ReminderOutput{}, fmt.Errorf("%w: scheduler is closed", ErrInternalError)
	}

	slog.Info("reminder set",
		"user_id", userID.Int64(),
		"time", schedule.TimeOfDay(),
		"next_fire_at", next,
	)

	return ReminderOutput{
		UserID:     userID.Int64(),
		Hour:       schedule.Hour(),
		Minute:     schedule.Minute(),
		TimeOfDay:  schedule.TimeOfDay(),
		Active:     true,
		NextFireAt: next,
	}, nil
}

// SetReminderFromText accepts "HH:MM" as typed after /setreminder.
func (s *ReminderScheduler) SetReminderFromText(ctx context.Context, userID domain.UserID, text string) (ReminderOutput, error) {
	hour, minute, err := domain.ParseTimeOfDay(text)
	if err != nil {
		return ReminderOutput{}, reminderValidationError(err)
	}

	return s.SetReminder(ctx, userID, hour, minute)
}

// RemoveReminder is idempotent. When the row cannot be cleared the armed job
// keeps running.
func (s *ReminderScheduler) RemoveReminder(ctx context.Context, userID domain.UserID) error {
	unlock := s.ops.Lock(userID)
	defer unlock()

	if err := s.schedules.Clear(ctx, userID, s.clock.Now()); err != nil {
		slog.Error("failed to clear reminder schedule",
			"error", err,
			"user_id", userID.Int64(),
		)

		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	cancelled := s.registry.Cancel(userID)

	slog.Info("reminder removed",
		"user_id", userID.Int64(),
		"was_armed", cancelled,
	)

	return nil
}

func (s *ReminderScheduler) GetReminder(ctx context.Context, userID domain.UserID) (ReminderOutput, error) {
	schedule, err := s.schedules.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrReminderNotFound) {
			return ReminderOutput{}, fmt.Errorf("%w: %v", ErrNotFound, err)
		}

		return ReminderOutput{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if !schedule.IsActive() {
		return ReminderOutput{}, fmt.Errorf("%w: %v", ErrNotFound, domain.ErrReminderNotFound)
	}

	out := ReminderOutput{
		UserID:    userID.Int64(),
		Hour:      schedule.Hour(),
		Minute:    schedule.Minute(),
		TimeOfDay: schedule.TimeOfDay(),
		Active:    true,
	}

	if next, ok := s.registry.NextFireAt(userID); ok {
		out.NextFireAt = next
	}

	return out, nil
}

// RestoreAll arms one job per active persisted schedule. It is meant to run
// once at startup, before inbound events are accepted.
func (s *ReminderScheduler) RestoreAll(ctx context.Context) (int, error) {
	schedules, err := s.schedules.ListActive(ctx)
	if err != nil {
		slog.Error("failed to list active reminder schedules",
			"error", err,
		)

		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	restored := 0

	for _, schedule := range schedules {
		next, ok := s.registry.Arm(schedule.UserID(), schedule)
		if !ok {
			return restored, fmt.Errorf("%w: scheduler is closed", ErrInternalError)
		}

		slog.Debug("reminder restored",
			"user_id", schedule.UserID().Int64(),
			"next_fire_at", next,
		)

		restored++
	}

	slog.Info("reminders restored",
		"count", restored,
	)

	return restored, nil
}

func (s *ReminderScheduler) NextFireAt(userID domain.UserID) (time.Time, bool) {
	return s.registry.NextFireAt(userID)
}

// Close stops all timers and waits for reminders being delivered.
func (s *ReminderScheduler) Close() {
	s.registry.Close()
}

func (s *ReminderScheduler) fire(userID domain.UserID, due time.Time) {
	ctx := logging.WithModule(context.Background(), logging.Module("reminder"))

	totals, err := s.expenses.SumByCategory(ctx, userID, domain.DayWindow(due.In(s.loc)))
	if err != nil {
		slog.ErrorContext(ctx, "failed to build daily reminder",
			"error", err,
			"user_id", userID.Int64(),
		)
		s.recorder.ReminderFired(ctx, metrics.ResultFailure)

		return
	}

	n := NewNotification(userID, NotificationDailyReminder, FormatDailyReminder(totals))

	if err := s.dispatcher.Dispatch(ctx, n); err != nil {
		slog.ErrorContext(ctx, "failed to dispatch daily reminder",
			"error", err,
			"user_id", userID.Int64(),
			"notification_id", n.ID,
		)
		s.recorder.ReminderFired(ctx, metrics.ResultFailure)

		return
	}

	slog.InfoContext(ctx, "daily reminder sent",
		"user_id", userID.Int64(),
		"due", due,
	)
	s.recorder.ReminderFired(ctx, metrics.ResultSuccess)
}
