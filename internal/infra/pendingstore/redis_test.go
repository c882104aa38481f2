package pendingstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
	"github.com/KasumiMercury/primind-expense-assistant/internal/infra/pendingstore"
	"github.com/KasumiMercury/primind-expense-assistant/internal/testutil"
)

func TestRedisStoreContractSuccess(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	tr := testutil.SetupTestRedis(t)
	defer tr.TeardownTestRedis(t)

	store := pendingstore.NewRedisStore(tr.Client, 5*time.Minute, 10*time.Minute)
	runStoreContract(t, store, clockwork.NewRealClock())
}

func TestRedisStoreTTLSuccess(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	tr := testutil.SetupTestRedis(t)
	defer tr.TeardownTestRedis(t)

	ctx := context.Background()
	store := pendingstore.NewRedisStore(tr.Client, 5*time.Minute, 10*time.Minute)
	userID := domain.MustUserID(42)

	require.NoError(t, store.Create(ctx, domain.NewPendingAction(userID, domain.ActionReset, time.Now())))

	ttl, err := tr.Client.PTTL(ctx, "pending_action:42").Result()
	require.NoError(t, err)
	assert.InDelta(t, (5 * time.Minute).Seconds(), ttl.Seconds(), 5)

	_, err = store.Claim(ctx, userID)
	require.NoError(t, err)

	ttl, err = tr.Client.PTTL(ctx, "pending_action:42").Result()
	require.NoError(t, err)
	assert.InDelta(t, (10 * time.Minute).Seconds(), ttl.Seconds(), 5)
}

func TestRedisStoreExpiredIsAbsentSuccess(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	tr := testutil.SetupTestRedis(t)
	defer tr.TeardownTestRedis(t)

	ctx := context.Background()
	store := pendingstore.NewRedisStore(tr.Client, 200*time.Millisecond, time.Minute)
	userID := domain.MustUserID(43)

	require.NoError(t, store.Create(ctx, domain.NewPendingAction(userID, domain.ActionReset, time.Now())))

	assert.Eventually(t, func() bool {
		_, err := store.Get(ctx, userID)

		return err != nil
	}, 5*time.Second, 50*time.Millisecond)

	assert.NoError(t, store.Create(ctx, domain.NewPendingAction(userID, domain.ActionReset, time.Now())))
}

func TestRedisStoreReleaseAfterProcessingExpirySuccess(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	tr := testutil.SetupTestRedis(t)
	defer tr.TeardownTestRedis(t)

	ctx := context.Background()
	store := pendingstore.NewRedisStore(tr.Client, 5*time.Minute, 200*time.Millisecond)
	userID := domain.MustUserID(44)

	require.NoError(t, store.Create(ctx, domain.NewPendingAction(userID, domain.ActionReset, time.Now())))
	stale, err := store.Claim(ctx, userID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := store.Get(ctx, userID)

		return err != nil
	}, 5*time.Second, 50*time.Millisecond)

	newer := domain.NewPendingAction(userID, domain.ActionReset, time.Now().Add(time.Second))
	require.NoError(t, store.Create(ctx, newer))

	require.NoError(t, store.Release(ctx, stale))

	got, err := store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatePendingConfirm, got.State)
	assert.Equal(t, newer.CreatedAt.UnixMilli(), got.CreatedAt.UnixMilli())
}
