package domain

import "context"

// PendingActionStore holds at most one PendingAction per user. Every method
// is linearizable per user; different users never contend.
type PendingActionStore interface {
	// Create fails with ErrPendingActionExists when a live action exists.
	Create(ctx context.Context, action PendingAction) error
	// Get fails with ErrPendingActionNotFound when nothing live exists.
	Get(ctx context.Context, userID UserID) (PendingAction, error)
	// Claim moves a live PendingConfirm action to Processing in one step.
	Claim(ctx context.Context, userID UserID) (PendingAction, error)
	// Cancel removes a PendingConfirm action. A Processing action is left in
	// place and ErrPendingActionInProgress is returned.
	Cancel(ctx context.Context, userID UserID) error
	// Release removes the claimed action only while it is still the same
	// Processing action. Anything else stored for the user is left alone and
	// no error is returned.
	Release(ctx context.Context, claimed PendingAction) error
}
