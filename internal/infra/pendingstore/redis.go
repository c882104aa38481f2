package pendingstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
)

const keyPrefix = "pending_action:"

const (
	statusNotFound   = 0
	statusOK         = 1
	statusInProgress = -1
)

var createScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1], 'kind', ARGV[1], 'created_at', ARGV[2], 'state', ARGV[3])
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return 1
`)

var claimScript = redis.NewScript(`
local state = redis.call('HGET', KEYS[1], 'state')
if not state then
	return {0}
end
if state ~= ARGV[1] then
	return {-1}
end
redis.call('HSET', KEYS[1], 'state', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return {1, redis.call('HGET', KEYS[1], 'kind'), redis.call('HGET', KEYS[1], 'created_at')}
`)

var cancelScript = redis.NewScript(`
local state = redis.call('HGET', KEYS[1], 'state')
if not state then
	return 0
end
if state ~= ARGV[1] then
	return -1
end
redis.call('DEL', KEYS[1])
return 1
`)

var releaseScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'state') ~= ARGV[1] then
	return 0
end
if redis.call('HGET', KEYS[1], 'created_at') ~= ARGV[2] then
	return 0
end
redis.call('DEL', KEYS[1])
return 1
`)

// RedisStore shares pending actions between instances. Every transition is
// a single Lua script, so it is atomic on the server. Expiry is native: an
// unclaimed action lives for ttl, a claimed one for processingTTL.
type RedisStore struct {
	client        redis.UniversalClient
	ttl           time.Duration
	processingTTL time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl, processingTTL time.Duration) *RedisStore {
	return &RedisStore{
		client:        client,
		ttl:           ttl,
		processingTTL: processingTTL,
	}
}

func key(userID domain.UserID) string {
	return keyPrefix + userID.String()
}

func (s *RedisStore) Create(ctx context.Context, action domain.PendingAction) error {
	slog.Debug("creating pending action",
		"user_id", action.UserID.Int64(),
		"kind", string(action.Kind),
	)

	created, err := createScript.Run(ctx, s.client, []string{key(action.UserID)},
		string(action.Kind),
		action.CreatedAt.UnixMilli(),
		string(domain.StatePendingConfirm),
		s.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("create pending action: %w", err)
	}

	if created == 0 {
		return domain.ErrPendingActionExists
	}

	return nil
}

func (s *RedisStore) Get(ctx context.Context, userID domain.UserID) (domain.PendingAction, error) {
	fields, err := s.client.HGetAll(ctx, key(userID)).Result()
	if err != nil {
		return domain.PendingAction{}, fmt.Errorf("get pending action: %w", err)
	}

	if len(fields) == 0 {
		return domain.PendingAction{}, domain.ErrPendingActionNotFound
	}

	return toAction(userID, fields["kind"], fields["created_at"], fields["state"])
}

func (s *RedisStore) Claim(ctx context.Context, userID domain.UserID) (domain.PendingAction, error) {
	res, err := claimScript.Run(ctx, s.client, []string{key(userID)},
		string(domain.StatePendingConfirm),
		string(domain.StateProcessing),
		s.processingTTL.Milliseconds(),
	).Slice()
	if err != nil {
		return domain.PendingAction{}, fmt.Errorf("claim pending action: %w", err)
	}

	status, _ := res[0].(int64)

	switch status {
	case statusNotFound:
		return domain.PendingAction{}, domain.ErrPendingActionNotFound
	case statusInProgress:
		return domain.PendingAction{}, domain.ErrPendingActionInProgress
	}

	if len(res) != 3 {
		return domain.PendingAction{}, fmt.Errorf("claim pending action: unexpected reply %v", res)
	}

	kind, _ := res[1].(string)
	createdAt, _ := res[2].(string)

	return toAction(userID, kind, createdAt, string(domain.StateProcessing))
}

func (s *RedisStore) Cancel(ctx context.Context, userID domain.UserID) error {
	status, err := cancelScript.Run(ctx, s.client, []string{key(userID)},
		string(domain.StatePendingConfirm),
	).Int()
	if err != nil {
		return fmt.Errorf("cancel pending action: %w", err)
	}

	switch status {
	case statusNotFound:
		return domain.ErrPendingActionNotFound
	case statusInProgress:
		return domain.ErrPendingActionInProgress
	}

	return nil
}

// Release deletes the key only while it still holds the claimed action. A
// claim that outlived processingTTL must not remove a newer request.
func (s *RedisStore) Release(ctx context.Context, claimed domain.PendingAction) error {
	released, err := releaseScript.Run(ctx, s.client, []string{key(claimed.UserID)},
		string(domain.StateProcessing),
		strconv.FormatInt(claimed.CreatedAt.UnixMilli(), 10),
	).Int()
	if err != nil {
		return fmt.Errorf("release pending action: %w", err)
	}

	if released == 0 {
		slog.Warn("pending action changed before release",
			"user_id", claimed.UserID.Int64(),
			"claimed_at", claimed.CreatedAt,
		)
	}

	return nil
}

func toAction(userID domain.UserID, kind, createdAt, state string) (domain.PendingAction, error) {
	actionKind, err := domain.NewActionKind(kind)
	if err != nil {
		return domain.PendingAction{}, err
	}

	ms, err := strconv.ParseInt(createdAt, 10, 64)
	if err != nil {
		return domain.PendingAction{}, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}

	pendingState := domain.PendingState(state)
	if pendingState != domain.StatePendingConfirm && pendingState != domain.StateProcessing {
		return domain.PendingAction{}, errors.New("invalid pending action state " + strconv.Quote(state))
	}

	return domain.PendingAction{
		UserID:    userID,
		Kind:      actionKind,
		CreatedAt: time.UnixMilli(ms),
		State:     pendingState,
	}, nil
}
