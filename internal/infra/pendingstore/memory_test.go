package pendingstore_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
	"github.com/KasumiMercury/primind-expense-assistant/internal/infra/pendingstore"
)

var testStart = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func TestMemoryStoreContractSuccess(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testStart)
	runStoreContract(t, pendingstore.NewMemoryStore(clock, 5*time.Minute), clock)
}

func TestMemoryStoreExpirySuccess(t *testing.T) {
	tests := []struct {
		name      string
		advance   time.Duration
		wantFound bool
	}{
		{name: "just before ttl", advance: 5*time.Minute - time.Second, wantFound: true},
		{name: "at ttl", advance: 5 * time.Minute, wantFound: false},
		{name: "long after ttl", advance: time.Hour, wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := clockwork.NewFakeClockAt(testStart)
			store := pendingstore.NewMemoryStore(clock, 5*time.Minute)
			ctx := context.Background()
			userID := domain.MustUserID(1)

			require.NoError(t, store.Create(ctx, domain.NewPendingAction(userID, domain.ActionReset, clock.Now())))

			clock.Advance(tt.advance)

			_, err := store.Get(ctx, userID)
			if tt.wantFound {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrPendingActionNotFound)
				assert.NoError(t, store.Create(ctx, domain.NewPendingAction(userID, domain.ActionReset, clock.Now())))
			}
		})
	}
}

func TestMemoryStoreProcessingNeverExpiresSuccess(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testStart)
	store := pendingstore.NewMemoryStore(clock, time.Minute)
	ctx := context.Background()
	userID := domain.MustUserID(1)

	require.NoError(t, store.Create(ctx, domain.NewPendingAction(userID, domain.ActionReset, clock.Now())))
	_, err := store.Claim(ctx, userID)
	require.NoError(t, err)

	clock.Advance(time.Hour)

	got, err := store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateProcessing, got.State)
	assert.ErrorIs(t, store.Create(ctx, domain.NewPendingAction(userID, domain.ActionReset, clock.Now())), domain.ErrPendingActionExists)
}

func TestMemoryStoreConcurrentClaimSuccess(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testStart)
	store := pendingstore.NewMemoryStore(clock, 5*time.Minute)
	ctx := context.Background()
	userID := domain.MustUserID(7)

	require.NoError(t, store.Create(ctx, domain.NewPendingAction(userID, domain.ActionReset, clock.Now())))

	const workers = 32

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)

	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if _, err := store.Claim(ctx, userID); err == nil {
				wins.Add(1)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}
