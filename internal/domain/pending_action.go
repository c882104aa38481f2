package domain

import (
	"fmt"
	"time"
)

type ActionKind string

const (
	ActionReset ActionKind = "reset"
)

func NewActionKind(s string) (ActionKind, error) {
	switch s {
	case string(ActionReset):
		return ActionKind(s), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidActionKind, s)
	}
}

type PendingState string

const (
	StatePendingConfirm PendingState = "pending_confirm"
	StateProcessing     PendingState = "processing"
)

// PendingAction is a destructive request waiting for the user to confirm it.
// Only a PendingActionStore mutates it.
type PendingAction struct {
	UserID    UserID
	Kind      ActionKind
	CreatedAt time.Time
	State     PendingState
}

// SameAction reports whether other is the action a was created as.
func (a PendingAction) SameAction(other PendingAction) bool {
	return a.UserID == other.UserID &&
		a.Kind == other.Kind &&
		a.CreatedAt.UnixMilli() == other.CreatedAt.UnixMilli()
}

func NewPendingAction(userID UserID, kind ActionKind, now time.Time) PendingAction {
	return PendingAction{
		UserID:    userID,
		Kind:      kind,
		CreatedAt: now,
		State:     StatePendingConfirm,
	}
}

// IsExpired reports whether an unclaimed action outlived ttl. Claimed actions
// never expire lazily; the claimant always releases them.
func (a PendingAction) IsExpired(now time.Time, ttl time.Duration) bool {
	if a.State != StatePendingConfirm || ttl <= 0 {
		return false
	}

	return !now.Before(a.CreatedAt.Add(ttl))
}
