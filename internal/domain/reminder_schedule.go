package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

type ReminderSchedule struct {
	userID    UserID
	hour      int
	minute    int
	active    bool
	updatedAt time.Time
	spec      cron.Schedule
}

func NewReminderSchedule(userID UserID, hour, minute int, now time.Time) (*ReminderSchedule, error) {
	if userID.IsZero() {
		return nil, ErrInvalidUserID
	}

	spec, err := dailySpec(hour, minute)
	if err != nil {
		return nil, err
	}

	return &ReminderSchedule{
		userID:    userID,
		hour:      hour,
		minute:    minute,
		active:    true,
		updatedAt: now,
		spec:      spec,
	}, nil
}

func ReconstituteReminderSchedule(
	userID UserID,
	hour int,
	minute int,
	active bool,
	updatedAt time.Time,
) (*ReminderSchedule, error) {
	spec, err := dailySpec(hour, minute)
	if err != nil {
		return nil, err
	}

	return &ReminderSchedule{
		userID:    userID,
		hour:      hour,
		minute:    minute,
		active:    active,
		updatedAt: updatedAt,
		spec:      spec,
	}, nil
}

// ParseTimeOfDay parses "HH:MM" (also "H:MM") into hour and minute. Each
// side is one or two ASCII digits; signs and inner spaces are rejected.
func ParseTimeOfDay(s string) (int, int, error) {
	hourPart, minutePart, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, ErrInvalidReminderTime
	}

	hour, ok := clockField(hourPart)
	if !ok {
		return 0, 0, ErrInvalidReminderTime
	}

	minute, ok := clockField(minutePart)
	if !ok {
		return 0, 0, ErrInvalidReminderTime
	}

	return hour, minute, nil
}

func clockField(s string) (int, bool) {
	if len(s) == 0 || len(s) > 2 {
		return 0, false
	}

	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}

		n = n*10 + int(s[i]-'0')
	}

	return n, true
}

func dailySpec(hour, minute int) (cron.Schedule, error) {
	if hour < 0 || hour > 23 {
		return nil, ErrInvalidReminderHour
	}

	if minute < 0 || minute > 59 {
		return nil, ErrInvalidReminderMinute
	}

	spec, err := cron.ParseStandard(fmt.Sprintf("%d %d * * *", minute, hour))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReminderTime, err)
	}

	return spec, nil
}

// NextOccurrence returns the first wall-clock occurrence of the schedule's
// time of day strictly after t, evaluated in t's location.
func (r *ReminderSchedule) NextOccurrence(t time.Time) time.Time {
	return r.spec.Next(t)
}

func (r *ReminderSchedule) Deactivate(now time.Time) {
	r.active = false
	r.updatedAt = now
}

func (r *ReminderSchedule) UserID() UserID {
	return r.userID
}

func (r *ReminderSchedule) Hour() int {
	return r.hour
}

func (r *ReminderSchedule) Minute() int {
	return r.minute
}

func (r *ReminderSchedule) IsActive() bool {
	return r.active
}

func (r *ReminderSchedule) UpdatedAt() time.Time {
	return r.updatedAt
}

func (r *ReminderSchedule) TimeOfDay() string {
	return fmt.Sprintf("%02d:%02d", r.hour, r.minute)
}
