package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
)

type reminderScheduleRepositoryImpl struct {
	db *gorm.DB
}

func NewReminderScheduleRepository(db *gorm.DB) domain.ReminderScheduleRepository {
	return &reminderScheduleRepositoryImpl{
		db: db,
	}
}

func (r *reminderScheduleRepositoryImpl) Get(ctx context.Context, userID domain.UserID) (*domain.ReminderSchedule, error) {
	slog.Debug("finding reminder schedule",
		"user_id", userID.Int64(),
	)

	var m ReminderScheduleModel

	result := r.db.WithContext(ctx).Where("user_id = ?", userID.Int64()).First(&m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			slog.Debug("reminder schedule not found",
				"user_id", userID.Int64(),
			)

			return nil, domain.ErrReminderNotFound
		}

		slog.Error("failed to find reminder schedule",
			"user_id", userID.Int64(),
			"error", result.Error,
		)

		return nil, result.Error
	}

	return m.ToEntity()
}

// Upsert writes the schedule in one statement; the row is keyed by user.
func (r *reminderScheduleRepositoryImpl) Upsert(ctx context.Context, schedule *domain.ReminderSchedule) error {
	slog.Debug("upserting reminder schedule",
		"user_id", schedule.UserID().Int64(),
		"time", schedule.TimeOfDay(),
	)

	m := FromReminderSchedule(schedule)

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"hour", "minute", "active", "updated_at"}),
		}).
		Create(m)
	if result.Error != nil {
		slog.Error("failed to upsert reminder schedule",
			"user_id", schedule.UserID().Int64(),
			"error", result.Error,
		)

		return result.Error
	}

	return nil
}

// Clear deactivates the schedule. Clearing a missing row is not an error.
func (r *reminderScheduleRepositoryImpl) Clear(ctx context.Context, userID domain.UserID, now time.Time) error {
	slog.Debug("clearing reminder schedule",
		"user_id", userID.Int64(),
	)

	result := r.db.WithContext(ctx).
		Model(&ReminderScheduleModel{}).
		Where("user_id = ?", userID.Int64()).
		Updates(map[string]any{
			"active":     false,
			"updated_at": now,
		})
	if result.Error != nil {
		slog.Error("failed to clear reminder schedule",
			"user_id", userID.Int64(),
			"error", result.Error,
		)

		return result.Error
	}

	slog.Debug("reminder schedule cleared",
		"user_id", userID.Int64(),
		"rows", result.RowsAffected,
	)

	return nil
}

func (r *reminderScheduleRepositoryImpl) ListActive(ctx context.Context) ([]*domain.ReminderSchedule, error) {
	slog.Debug("listing active reminder schedules")

	var models []ReminderScheduleModel

	result := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("user_id ASC").
		Find(&models)
	if result.Error != nil {
		slog.Error("failed to list active reminder schedules",
			"error", result.Error,
		)

		return nil, result.Error
	}

	schedules := make([]*domain.ReminderSchedule, 0, len(models))
	for _, m := range models {
		schedule, err := m.ToEntity()
		if err != nil {
			slog.Error("failed to convert model to entity",
				"user_id", m.UserID,
				"error", err,
			)

			return nil, err
		}

		schedules = append(schedules, schedule)
	}

	slog.Debug("active reminder schedules listed",
		"count", len(schedules),
	)

	return schedules, nil
}
