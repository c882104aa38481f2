package testutil

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type TestRedis struct {
	Container *tcredis.RedisContainer
	Client    *redis.Client
}

func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get redis connection string: %v", err)
	}

	opts, err := redis.ParseURL(uri)
	if err != nil {
		t.Fatalf("failed to parse redis url: %v", err)
	}

	return &TestRedis{
		Container: container,
		Client:    redis.NewClient(opts),
	}
}

func (tr *TestRedis) Flush(t *testing.T) {
	t.Helper()

	if err := tr.Client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}
}

func (tr *TestRedis) TeardownTestRedis(t *testing.T) {
	t.Helper()

	_ = tr.Client.Close()

	if err := tr.Container.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}
