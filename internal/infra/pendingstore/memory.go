package pendingstore

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
	"github.com/KasumiMercury/primind-expense-assistant/internal/slotmap"
)

// MemoryStore keeps pending actions in process memory. Unclaimed actions
// older than ttl are dropped the next time they are touched.
type MemoryStore struct {
	slots *slotmap.Map[domain.UserID, *domain.PendingAction]
	clock clockwork.Clock
	ttl   time.Duration
}

func NewMemoryStore(clock clockwork.Clock, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		slots: slotmap.New[domain.UserID, *domain.PendingAction](),
		clock: clock,
		ttl:   ttl,
	}
}

// must be called with the slot locked
func (s *MemoryStore) live(slot **domain.PendingAction) *domain.PendingAction {
	if *slot != nil && (*slot).IsExpired(s.clock.Now(), s.ttl) {
		*slot = nil
	}

	return *slot
}

func (s *MemoryStore) Create(_ context.Context, action domain.PendingAction) error {
	var err error

	s.slots.Do(action.UserID, func(slot **domain.PendingAction) {
		if s.live(slot) != nil {
			err = domain.ErrPendingActionExists

			return
		}

		stored := action
		*slot = &stored
	})

	return err
}

func (s *MemoryStore) Get(_ context.Context, userID domain.UserID) (domain.PendingAction, error) {
	var (
		out domain.PendingAction
		err error
	)

	s.slots.Do(userID, func(slot **domain.PendingAction) {
		current := s.live(slot)
		if current == nil {
			err = domain.ErrPendingActionNotFound

			return
		}

		out = *current
	})

	return out, err
}

func (s *MemoryStore) Claim(_ context.Context, userID domain.UserID) (domain.PendingAction, error) {
	var (
		out domain.PendingAction
		err error
	)

	s.slots.Do(userID, func(slot **domain.PendingAction) {
		current := s.live(slot)

		switch {
		case current == nil:
			err = domain.ErrPendingActionNotFound
		case current.State != domain.StatePendingConfirm:
			err = domain.ErrPendingActionInProgress
		default:
			current.State = domain.StateProcessing
			out = *current
		}
	})

	return out, err
}

func (s *MemoryStore) Cancel(_ context.Context, userID domain.UserID) error {
	var err error

	s.slots.Do(userID, func(slot **domain.PendingAction) {
		current := s.live(slot)

		switch {
		case current == nil:
			err = domain.ErrPendingActionNotFound
		case current.State != domain.StatePendingConfirm:
			err = domain.ErrPendingActionInProgress
		default:
			*slot = nil
		}
	})

	return err
}

func (s *MemoryStore) Release(_ context.Context, claimed domain.PendingAction) error {
	s.slots.Do(claimed.UserID, func(slot **domain.PendingAction) {
		current := *slot
		if current == nil || current.State != domain.StateProcessing || !current.SameAction(claimed) {
			return
		}

		*slot = nil
	})

	return nil
}
