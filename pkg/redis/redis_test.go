package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/forgemvc/pkg/redis"
)

func TestOpen_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	_, err := redis.Open(ctx, "")
	require.ErrorIs(t, err, redis.ErrEmptyConnectionURL)

	for _, url := range []string{"http://localhost:6379", "localhost:6379", "tcp://localhost"} {
		_, err := redis.Open(ctx, url)
		require.ErrorIs(t, err, redis.ErrFailedToParseURL, url)
	}
}

func TestOpen_Unreachable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := redis.Open(ctx, "redis://127.0.0.1:1/0",
		redis.WithRetry(1, 10*time.Millisecond),
		redis.WithTimeout(100*time.Millisecond),
	)
	require.ErrorIs(t, err, redis.ErrConnectionFailed)
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()

	err := redis.Healthcheck(nil)(context.Background())
	require.ErrorIs(t, err, redis.ErrHealthcheckFailed)
	require.ErrorIs(t, err, redis.ErrNilClient)
}

type closer struct{ err error }

func (c closer) Close() error { return c.err }

func TestShutdown(t *testing.T) {
	t.Parallel()

	require.NoError(t, redis.Shutdown(closer{})(context.Background()))

	boom := errors.New("boom")
	require.ErrorIs(t, redis.Shutdown(closer{err: boom})(context.Background()), boom)
}
