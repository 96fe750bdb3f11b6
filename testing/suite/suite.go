package suite

import (
	"context"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
)

const (
	containerTTL = 120
	startTimeout = 120 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"
)

// Suite holds a clean redis database owned by one test.
type Suite struct {
	*testing.T

	Storage *redis.Client
}

// New - starts a throwaway redis container. The test is skipped when docker is unreachable.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	t.Cleanup(cancel)

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("could not construct docker pool: %v", err)
	}

	if err = pool.Client.Ping(); err != nil {
		t.Skipf("could not connect to docker: %v", err)
	}

	client := startRedis(ctx, t, pool)

	if err = client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("could not flush database: %v", err)
	}

	return ctx, &Suite{T: t, Storage: client}
}

// Seed - writes a raw value under key, bypassing any repository.
func (that *Suite) Seed(ctx context.Context, key, value string) {
	that.Helper()

	if err := that.Storage.Set(ctx, key, value, 0).Err(); err != nil {
		that.Fatalf("could not seed %q: %v", key, err)
	}
}

func startRedis(ctx context.Context, t *testing.T, pool *dockertest.Pool) *redis.Client {
	t.Helper()

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start redis container: %v", err)
	}

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("could not purge redis container: %v", err)
		}
	})

	// hard kill if the cleanup never runs
	_ = resource.Expire(containerTTL)

	client := redis.NewClient(&redis.Options{Addr: resource.GetHostPort(redisPort)})
	t.Cleanup(func() { _ = client.Close() })

	pool.MaxWait = startTimeout
	if err = pool.Retry(func() error {
		return client.Ping(ctx).Err()
	}); err != nil {
		t.Fatalf("could not connect to redis: %v", err)
	}

	return client
}
