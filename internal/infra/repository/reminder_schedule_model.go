package repository

import (
	"time"

	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
)

type ReminderScheduleModel struct {
	UserID    int64     `gorm:"column:user_id;type:bigint;primaryKey;autoIncrement:false"`
	Hour      int       `gorm:"column:hour;type:smallint;not null"`
	Minute    int       `gorm:"column:minute;type:smallint;not null"`
	Active    bool      `gorm:"column:active;type:boolean;not null;default:true;index:idx_reminder_schedules_active"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;not null"`
}

func (ReminderScheduleModel) TableName() string {
	return "reminder_schedules"
}

func (m *ReminderScheduleModel) ToEntity() (*domain.ReminderSchedule, error) {
	userID, err := domain.NewUserID(m.UserID)
	if err != nil {
		return nil, err
	}

	return domain.ReconstituteReminderSchedule(
		userID,
		m.Hour,
		m.Minute,
		m.Active,
		m.UpdatedAt,
	)
}

func FromReminderSchedule(s *domain.ReminderSchedule) *ReminderScheduleModel {
	return &ReminderScheduleModel{
		UserID:    s.UserID().Int64(),
		Hour:      s.Hour(),
		Minute:    s.Minute(),
		Active:    s.IsActive(),
		UpdatedAt: s.UpdatedAt(),
	}
}
