package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultAborted = "aborted"
)

// Recorder counts the events of the confirmation and reminder flows.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	reminderFires metric.Int64Counter
	resets        metric.Int64Counter
	armedJobs     metric.Int64UpDownCounter
}

func NewRecorder(meter metric.Meter) (*Recorder, error) {
	reminderFires, err := meter.Int64Counter("expense.reminder.fires",
		metric.WithDescription("Daily reminders fired, by result"),
	)
	if err != nil {
		return nil, err
	}

	resets, err := meter.Int64Counter("expense.reset.finished",
		metric.WithDescription("Confirmed resets that finished, by result"),
	)
	if err != nil {
		return nil, err
	}

	armedJobs, err := meter.Int64UpDownCounter("expense.reminder.armed",
		metric.WithDescription("Reminder timers currently armed"),
	)
	if err != nil {
		return nil, err
	}

	return &Recorder{
		reminderFires: reminderFires,
		resets:        resets,
		armedJobs:     armedJobs,
	}, nil
}

func (r *Recorder) ReminderFired(ctx context.Context, result string) {
	if r == nil {
		return
	}

	r.reminderFires.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (r *Recorder) ResetFinished(ctx context.Context, result string) {
	if r == nil {
		return
	}

	r.resets.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (r *Recorder) JobsArmed(ctx context.Context, delta int64) {
	if r == nil || delta == 0 {
		return
	}

	r.armedJobs.Add(ctx, delta)
}
