package domain

import "time"

// TimeRange is the half-open window [Start, End). Every report, manual or
// scheduled, filters rows with Start <= t < End.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if !start.Before(end) {
		return TimeRange{}, ErrInvalidTimeRange
	}

	return TimeRange{Start: start, End: end}, nil
}

// DayWindow returns [startOfDay, startOfNextDay) in t's location.
func DayWindow(t time.Time) TimeRange {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())

	return TimeRange{
		Start: start,
		End:   start.AddDate(0, 0, 1),
	}
}

// MonthWindow returns [firstOfMonth, firstOfNextMonth) in t's location.
func MonthWindow(t time.Time) TimeRange {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())

	return TimeRange{
		Start: start,
		End:   start.AddDate(0, 1, 0),
	}
}

var (
	unboundedStart = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	unboundedEnd   = time.Date(9999, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// Unbounded covers every row a user could have recorded.
func Unbounded() TimeRange {
	return TimeRange{Start: unboundedStart, End: unboundedEnd}
}

func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}
