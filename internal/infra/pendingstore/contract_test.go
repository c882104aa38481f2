package pendingstore_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
)

// runStoreContract exercises the behavior every domain.PendingActionStore
// must share.
func runStoreContract(t *testing.T, store domain.PendingActionStore, clock clockwork.Clock) {
	t.Helper()

	ctx := context.Background()

	t.Run("get on empty store", func(t *testing.T) {
		_, err := store.Get(ctx, domain.MustUserID(100))
		assert.ErrorIs(t, err, domain.ErrPendingActionNotFound)
	})

	t.Run("create then get", func(t *testing.T) {
		userID := domain.MustUserID(101)
		now := clock.Now()
		require.NoError(t, store.Create(ctx, domain.NewPendingAction(userID, domain.ActionReset, now)))

		got, err := store.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, userID, got.UserID)
		assert.Equal(t, domain.ActionReset, got.Kind)
		assert.Equal(t, domain.StatePendingConfirm, got.State)
		assert.Equal(t, now.UnixMilli(), got.CreatedAt.UnixMilli())
	})

	t.Run("second create conflicts and keeps the first", func(t *testing.T) {
		userID := domain.MustUserID(102)
		first := domain.NewPendingAction(userID, domain.ActionReset, clock.Now())
		require.NoError(t, store.Create(ctx, first))

		err := store.Create(ctx, domain.NewPendingAction(userID, domain.ActionReset, clock.Now().Add(time.Second)))
		assert.ErrorIs(t, err, domain.ErrPendingActionExists)

		got, err := store.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, first.CreatedAt.UnixMilli(), got.CreatedAt.UnixMilli())
	})

	t.Run("claim twice", func(t *testing.T) {
		userID := domain.MustUserID(103)
		require.NoError(t, store.Create(ctx, domain.NewPendingAction(userID, domain.ActionReset, clock.Now())))

		claimed, err := store.Claim(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateProcessing, claimed.State)

		_, err = store.Claim(ctx, userID)
		assert.ErrorIs(t, err, domain.ErrPendingActionInProgress)
	})

	t.Run("claim with nothing pending", func(t *testing.T) {
		_, err := store.Claim(ctx, domain.MustUserID(104))
		assert.ErrorIs(t, err, domain.ErrPendingActionNotFound)
	})

	t.Run("cancel pending", func(t *testing.T) {
		userID := domain.MustUserID(105)
		require.NoError(t, store.Create(ctx, domain.NewPendingAction(userID, domain.ActionReset, clock.Now())))

		require.NoError(t, store.Cancel(ctx, userID))

		_, err := store.Get(ctx, userID)
		assert.ErrorIs(t, err, domain.ErrPendingActionNotFound)
		assert.ErrorIs(t, store.Cancel(ctx, userID), domain.ErrPendingActionNotFound)
	})

	t.Run("cancel after claim is refused", func(t *testing.T) {
		userID := domain.MustUserID(106)
		require.NoError(t, store.Create(ctx, domain.NewPendingAction(userID, domain.ActionReset, clock.Now())))
		_, err := store.Claim(ctx, userID)
		require.NoError(t, err)

		assert.ErrorIs(t, store.Cancel(ctx, userID), domain.ErrPendingActionInProgress)

		got, err := store.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateProcessing, got.State)
	})

	t.Run("concurrent create has one winner", func(t *testing.T) {
		userID := domain.MustUserID(110)

		const workers = 32

		var (
			wg        sync.WaitGroup
			created   atomic.Int32
			conflicts atomic.Int32
			start     = make(chan struct{})
		)

		for i := range workers {
			wg.Add(1)

			go func() {
				defer wg.Done()

				<-start

				err := store.Create(ctx, domain.NewPendingAction(userID, domain.ActionReset, clock.Now().Add(time.Duration(i)*time.Millisecond)))

				switch {
				case err == nil:
					created.Add(1)
				case errors.Is(err, domain.ErrPendingActionExists):
					conflicts.Add(1)
				default:
					assert.NoError(t, err)
				}
			}()
		}

		close(start)
		wg.Wait()

		assert.Equal(t, int32(1), created.Load())
		assert.Equal(t, int32(workers-1), conflicts.Load())

		_, err := store.Get(ctx, userID)
		assert.NoError(t, err)
	})

	t.Run("release clears the claimed action", func(t *testing.T) {
		userID := domain.MustUserID(107)
		require.NoError(t, store.Create(ctx, domain.NewPendingAction(userID, domain.ActionReset, clock.Now())))
		claimed, err := store.Claim(ctx, userID)
		require.NoError(t, err)

		require.NoError(t, store.Release(ctx, claimed))
		require.NoError(t, store.Release(ctx, claimed))

		_, err = store.Get(ctx, userID)
		assert.ErrorIs(t, err, domain.ErrPendingActionNotFound)
		assert.NoError(t, store.Create(ctx, domain.NewPendingAction(userID, domain.ActionReset, clock.Now())))
	})

	t.Run("stale release keeps a newer request", func(t *testing.T) {
		userID := domain.MustUserID(111)
		require.NoError(t, store.Create(ctx, domain.NewPendingAction(userID, domain.ActionReset, clock.Now())))
		stale, err := store.Claim(ctx, userID)
		require.NoError(t, err)
		require.NoError(t, store.Release(ctx, stale))

		newer := domain.NewPendingAction(userID, domain.ActionReset, clock.Now().Add(time.Second))
		require.NoError(t, store.Create(ctx, newer))

		require.NoError(t, store.Release(ctx, stale))

		got, err := store.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatePendingConfirm, got.State)
		assert.Equal(t, newer.CreatedAt.UnixMilli(), got.CreatedAt.UnixMilli())

		reclaimed, err := store.Claim(ctx, userID)
		require.NoError(t, err)
		require.NoError(t, store.Release(ctx, stale))

		got, err = store.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateProcessing, got.State)

		require.NoError(t, store.Release(ctx, reclaimed))
		_, err = store.Get(ctx, userID)
		assert.ErrorIs(t, err, domain.ErrPendingActionNotFound)
	})

	t.Run("release leaves an unclaimed action", func(t *testing.T) {
		userID := domain.MustUserID(112)
		pending := domain.NewPendingAction(userID, domain.ActionReset, clock.Now())
		require.NoError(t, store.Create(ctx, pending))

		require.NoError(t, store.Release(ctx, pending))

		got, err := store.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatePendingConfirm, got.State)
	})

	t.Run("users are independent", func(t *testing.T) {
		a, b := domain.MustUserID(108), domain.MustUserID(109)
		require.NoError(t, store.Create(ctx, domain.NewPendingAction(a, domain.ActionReset, clock.Now())))
		require.NoError(t, store.Create(ctx, domain.NewPendingAction(b, domain.ActionReset, clock.Now())))

		require.NoError(t, store.Cancel(ctx, a))

		_, err := store.Get(ctx, b)
		assert.NoError(t, err)
	})
}
