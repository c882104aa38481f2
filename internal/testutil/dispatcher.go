package testutil

import (
	"context"
	"sync"

	"github.com/KasumiMercury/primind-expense-assistant/internal/app"
)

// RecordingDispatcher keeps every notification it is given. Delivered is
// signalled once per notification.
type RecordingDispatcher struct {
	mu   sync.Mutex
	sent []app.Notification
	err  error

	Delivered chan app.Notification
}

func NewRecordingDispatcher() *RecordingDispatcher {
	return &RecordingDispatcher{Delivered: make(chan app.Notification, 64)}
}

// FailWith makes every subsequent dispatch fail with err.
func (d *RecordingDispatcher) FailWith(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.err = err
}

func (d *RecordingDispatcher) Dispatch(_ context.Context, n app.Notification) error {
	d.mu.Lock()
	err := d.err
	if err == nil {
		d.sent = append(d.sent, n)
	}
	d.mu.Unlock()

	if err != nil {
		return err
	}

	select {
	case d.Delivered <- n:
	default:
	}

	return nil
}

func (d *RecordingDispatcher) Sent() []app.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]app.Notification, len(d.sent))
	copy(out, d.sent)

	return out
}
