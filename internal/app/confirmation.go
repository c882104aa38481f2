package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
	"github.com/KasumiMercury/primind-expense-assistant/internal/observability/metrics"
)

const ConfirmToken = "CONFIRM"

type ConfirmOutcome int

const (
	// ConfirmNothingPending means the text was not addressed to a reset and
	// must produce no reply.
	ConfirmNothingPending ConfirmOutcome = iota
	ConfirmTokenMismatch
	ConfirmClaimed
)

type CancelOutcome int

const (
	CancelCancelled CancelOutcome = iota
	CancelNothingPending
	CancelInProgress
)

type ResetResult struct {
	BackedUp int
	Deleted  int64
}

// ConfirmationStateMachine guards the destructive reset. Per user the states
// are Idle, PendingConfirm and Processing; the store is the only owner of
// that state.
type ConfirmationStateMachine struct {
	store    domain.PendingActionStore
	expenses domain.ExpenseRepository
	exporter BackupExporter
	clock    clockwork.Clock
	// processingTimeout bounds one Execute; zero means no bound.
	processingTimeout time.Duration
	recorder          *metrics.Recorder
}

func NewConfirmationStateMachine(
	store domain.PendingActionStore,
	expenses domain.ExpenseRepository,
	exporter BackupExporter,
	clock clockwork.Clock,
	processingTimeout time.Duration,
	recorder *metrics.Recorder,
) *ConfirmationStateMachine {
	return &ConfirmationStateMachine{
		store:             store,
		expenses:          expenses,
		exporter:          exporter,
		clock:             clock,
		processingTimeout: processingTimeout,
		recorder:          recorder,
	}
}

func (m *ConfirmationStateMachine) RequestConfirmation(ctx context.Context, userID domain.UserID, kind string) error {
	actionKind, err := domain.NewActionKind(kind)
	if err != nil {
		return NewValidationError("kind", err.Error())
	}

	err = m.store.Create(ctx, domain.NewPendingAction(userID, actionKind, m.clock.Now()))
	if err != nil {
		if errors.Is(err, domain.ErrPendingActionExists) {
			slog.Info("confirmation already pending",
				"user_id", userID.Int64(),
				"kind", kind,
			)

			return fmt.Errorf("%w: %v", ErrConflict, err)
		}

		slog.Error("failed to create pending action",
			"error", err,
			"user_id", userID.Int64(),
		)

		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	slog.Info("confirmation requested",
		"user_id", userID.Int64(),
		"kind", kind,
	)

	return nil
}

func matchesToken(raw string) bool {
	return strings.ToUpper(strings.TrimSpace(raw)) == ConfirmToken
}

// Begin checks the token and claims the pending action. Only the caller that
// gets ConfirmClaimed holds a claim, and it must call Execute exactly once.
func (m *ConfirmationStateMachine) Begin(ctx context.Context, userID domain.UserID, raw string) (ConfirmOutcome, *ResetClaim, error) {
	action, err := m.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrPendingActionNotFound) {
			return ConfirmNothingPending, nil, nil
		}

		return ConfirmNothingPending, nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if action.State != domain.StatePendingConfirm {
		return ConfirmNothingPending, nil, nil
	}

	if !matchesToken(raw) {
		return ConfirmTokenMismatch, nil, nil
	}

	claimed, err := m.store.Claim(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrPendingActionNotFound) || errors.Is(err, domain.ErrPendingActionInProgress) {
			slog.Debug("lost confirmation claim",
				"user_id", userID.Int64(),
			)

			return ConfirmNothingPending, nil, nil
		}

		return ConfirmNothingPending, nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	slog.Info("reset claimed",
		"user_id", userID.Int64(),
		"pending_since", claimed.CreatedAt,
	)

	return ConfirmClaimed, &ResetClaim{machine: m, action: claimed}, nil
}

// Confirm runs Begin and, when the claim is won, Execute.
func (m *ConfirmationStateMachine) Confirm(ctx context.Context, userID domain.UserID, raw string) (ConfirmOutcome, ResetResult, error) {
	outcome, claim, err := m.Begin(ctx, userID, raw)
	if err != nil || claim == nil {
		return outcome, ResetResult{}, err
	}

	result, err := claim.Execute(ctx)

	return outcome, result, err
}

func (m *ConfirmationStateMachine) Cancel(ctx context.Context, userID domain.UserID) (CancelOutcome, error) {
	err := m.store.Cancel(ctx, userID)

	switch {
	case err == nil:
		slog.Info("reset cancelled",
			"user_id", userID.Int64(),
		)

		return CancelCancelled, nil
	case errors.Is(err, domain.ErrPendingActionNotFound):
		return CancelNothingPending, nil
	case errors.Is(err, domain.ErrPendingActionInProgress):
		return CancelInProgress, nil
	default:
		slog.Error("failed to cancel pending action",
			"error", err,
			"user_id", userID.Int64(),
		)

		return CancelNothingPending, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
}

// ResetClaim is the right to run one backup-then-delete for a user.
type ResetClaim struct {
	machine  *ConfirmationStateMachine
	action   domain.PendingAction
	executed atomic.Bool
}

func (c *ResetClaim) UserID() domain.UserID {
	return c.action.UserID
}

// Execute lists the user's rows, backs them up and deletes them only when
// the backup succeeded. The work runs under the processing timeout and the
// pending action is released on every path.
func (c *ResetClaim) Execute(ctx context.Context) (ResetResult, error) {
	if !c.executed.CompareAndSwap(false, true) {
		return ResetResult{}, fmt.Errorf("%w: reset claim already executed", ErrConflict)
	}

	m := c.machine
	userID := c.action.UserID

	defer func() {
		if err := m.store.Release(context.WithoutCancel(ctx), c.action); err != nil {
			slog.Error("failed to release pending action",
				"error", err,
				"user_id", userID.Int64(),
			)
		}
	}()

	if m.processingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.processingTimeout)
		defer cancel()
	}

	expenses, err := m.expenses.ListExpenses(ctx, userID, domain.Unbounded())
	if err != nil {
		slog.Error("failed to read rows for backup",
			"error", err,
			"user_id", userID.Int64(),
		)
		m.recorder.ResetFinished(ctx, metrics.ResultAborted)

		return ResetResult{}, fmt.Errorf("%w: %v", ErrBackupFailure, err)
	}

	backup, err := m.exporter.Export(ctx, userID, expenses)
	if err != nil {
		slog.Warn("backup failed, reset aborted",
			"error", err,
			"user_id", userID.Int64(),
			"rows", len(expenses),
		)
		m.recorder.ResetFinished(ctx, metrics.ResultAborted)

		return ResetResult{}, fmt.Errorf("%w: %v", ErrBackupFailure, err)
	}

	result := ResetResult{BackedUp: backup.Rows}

	if len(expenses) > 0 {
		deleted, err := m.expenses.DeleteAllForUser(ctx, userID, domain.MaxExpenseID(expenses))
		if err != nil {
			slog.Error("failed to delete rows after backup",
				"error", err,
				"user_id", userID.Int64(),
			)
			m.recorder.ResetFinished(ctx, metrics.ResultFailure)

			return result, fmt.Errorf("%w: %v", ErrInternalError, err)
		}

		result.Deleted = deleted
	}

	slog.Info("reset completed",
		"user_id", userID.Int64(),
		"backed_up", result.BackedUp,
		"deleted", result.Deleted,
	)
	m.recorder.ResetFinished(ctx, metrics.ResultSuccess)

	return result, nil
}
