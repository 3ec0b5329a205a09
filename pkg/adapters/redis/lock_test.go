package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisadapter "github.com/mbruna/espalier/pkg/adapters/redis"
)

func newTestLocker(t *testing.T) (*redisadapter.Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return redisadapter.NewLocker(client, "espalier:"), mr
}

func TestLocker_AcquireAndRelease(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "s1", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("espalier:lock:s1"))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("espalier:lock:s1"))
}

func TestLocker_SecondAcquirerBlocksUntilRelease(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "s1", time.Minute)
	require.NoError(t, err)

	acquired := make(chan error, 1)
	go func() {
		u, err := locker.Lock(ctx, "s1", time.Minute)
		if err == nil {
			_ = u(ctx)
		}
		acquired <- err
	}()

	select {
	case <-acquired:
		t.Fatal("second acquirer got the lock while it was held")
	case <-time.After(150 * time.Millisecond):
	}

	require.NoError(t, unlock(ctx))

	select {
	case err := <-acquired:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("second acquirer never got the lock after release")
	}
}

func TestLocker_RespectsContextCancellation(t *testing.T) {
	locker, _ := newTestLocker(t)

	unlock, err := locker.Lock(context.Background(), "s1", time.Minute)
	require.NoError(t, err)
	defer func() { _ = unlock(context.Background()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err = locker.Lock(ctx, "s1", time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLocker_UnlockIgnoresSuccessorLock(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "s1", time.Minute)
	require.NoError(t, err)

	// A new owner takes over after the first holder's lock expires.
	mr.Del("espalier:lock:s1")
	unlock2, err := locker.Lock(ctx, "s1", time.Minute)
	require.NoError(t, err)

	// The stale unlock must not delete the new owner's lock.
	require.NoError(t, unlock(ctx))
	assert.True(t, mr.Exists("espalier:lock:s1"))

	require.NoError(t, unlock2(ctx))
}
