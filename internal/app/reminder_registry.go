package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
	"github.com/KasumiMercury/primind-expense-assistant/internal/observability/metrics"
	"github.com/KasumiMercury/primind-expense-assistant/internal/slotmap"
)

// ScheduledJob is the armed in-memory timer for one user. It is never
// persisted; the ReminderSchedule row is the source of truth.
type ScheduledJob struct {
	UserID     domain.UserID
	Schedule   *domain.ReminderSchedule
	NextFireAt time.Time

	gen   uint64
	timer clockwork.Timer
}

// DueFunc receives a fire that the registry already claimed and re-armed.
// It runs outside every registry lock and must not call back into the
// registry.
type DueFunc func(userID domain.UserID, due time.Time)

// ReminderRegistry owns at most one ScheduledJob per user.
type ReminderRegistry struct {
	jobs     *slotmap.Map[domain.UserID, *ScheduledJob]
	clock    clockwork.Clock
	loc      *time.Location
	onDue    DueFunc
	recorder *metrics.Recorder

	gen atomic.Uint64

	// closeMu is held for reading by every arm and every fire, and for
	// writing by Close, which therefore waits for fires in flight.
	closeMu sync.RWMutex
	closed  bool
}

func NewReminderRegistry(clock clockwork.Clock, loc *time.Location, onDue DueFunc, recorder *metrics.Recorder) *ReminderRegistry {
	return &ReminderRegistry{
		jobs:     slotmap.New[domain.UserID, *ScheduledJob](),
		clock:    clock,
		loc:      loc,
		onDue:    onDue,
		recorder: recorder,
	}
}

// must be called with the user's slot locked
func (r *ReminderRegistry) newJob(userID domain.UserID, schedule *domain.ReminderSchedule, next time.Time) *ScheduledJob {
	gen := r.gen.Add(1)

	return &ScheduledJob{
		UserID:     userID,
		Schedule:   schedule,
		NextFireAt: next,
		gen:        gen,
		timer: r.clock.AfterFunc(next.Sub(r.clock.Now()), func() {
			r.expire(userID, gen)
		}),
	}
}

// Arm cancels the user's job, if any, and arms a new one at the schedule's
// next occurrence strictly after now. It reports false once the registry is
// closed.
func (r *ReminderRegistry) Arm(userID domain.UserID, schedule *domain.ReminderSchedule) (time.Time, bool) {
	r.closeMu.RLock()
	defer r.closeMu.RUnlock()

	if r.closed {
		return time.Time{}, false
	}

	var next time.Time

	r.jobs.Do(userID, func(job **ScheduledJob) {
		if *job != nil {
			(*job).timer.Stop()
		} else {
			r.recorder.JobsArmed(context.Background(), 1)
		}

		next = schedule.NextOccurrence(r.clock.Now().In(r.loc))
		*job = r.newJob(userID, schedule, next)
	})

	return next, true
}

// Cancel stops the user's timer. A fire that already claimed its job is not
// undone. It reports whether a job was armed.
func (r *ReminderRegistry) Cancel(userID domain.UserID) bool {
	var cancelled bool

	r.jobs.Do(userID, func(job **ScheduledJob) {
		if *job == nil {
			return
		}

		(*job).timer.Stop()
		*job = nil
		cancelled = true
	})

	if cancelled {
		r.recorder.JobsArmed(context.Background(), -1)
	}

	return cancelled
}

func (r *ReminderRegistry) NextFireAt(userID domain.UserID) (time.Time, bool) {
	job := r.jobs.Load(userID)
	if job == nil {
		return time.Time{}, false
	}

	return job.NextFireAt, true
}

func (r *ReminderRegistry) Len() int {
	n := 0

	r.jobs.Range(func(_ domain.UserID, job **ScheduledJob) {
		if *job != nil {
			n++
		}
	})

	return n
}

func (r *ReminderRegistry) expire(userID domain.UserID, gen uint64) {
	r.closeMu.RLock()
	defer r.closeMu.RUnlock()

	if r.closed {
		return
	}

	var (
		due     time.Time
		claimed bool
	)

	r.jobs.Do(userID, func(job **ScheduledJob) {
		current := *job
		if current == nil || current.gen != gen {
			return
		}

		due = current.NextFireAt
		from := r.clock.Now()
		if from.Before(due) {
			from = due
		}

		*job = r.newJob(userID, current.Schedule, current.Schedule.NextOccurrence(from.In(r.loc)))
		claimed = true
	})

	if claimed {
		r.onDue(userID, due)
	}
}

// Close stops every timer and waits for fires in flight. Later arms are
// refused.
func (r *ReminderRegistry) Close() {
	r.closeMu.Lock()
	defer r.closeMu.Unlock()

	if r.closed {
		return
	}

	r.closed = true

	var stopped int64

	r.jobs.Range(func(_ domain.UserID, job **ScheduledJob) {
		if *job == nil {
			return
		}

		(*job).timer.Stop()
		*job = nil
		stopped++
	})

	r.recorder.JobsArmed(context.Background(), -stopped)
}
