package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupLocker(t *testing.T, opts Options) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, opts, zap.NewNop()), mr
}

func TestWithLockReleases(t *testing.T) {
	locker, mr := setupLocker(t, DefaultOptions())

	called := false
	err := locker.WithLock(context.Background(), "escrow:1", func(ctx context.Context) error {
		called = true
		assert.True(t, mr.Exists("escrow:1"))
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.False(t, mr.Exists("escrow:1"))
}

func TestWithLockReturnsFnError(t *testing.T) {
	locker, mr := setupLocker(t, DefaultOptions())

	boom := errors.New("boom")
	err := locker.WithLock(context.Background(), "escrow:2", func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("escrow:2"))
}

func TestWithLockBusy(t *testing.T) {
	locker, _ := setupLocker(t, Options{Expiry: 5 * time.Second, Tries: 2, RetryDelay: 10 * time.Millisecond})

	held := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = locker.WithLock(context.Background(), "escrow:3", func(ctx context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()

	<-held
	err := locker.WithLock(context.Background(), "escrow:3", func(ctx context.Context) error {
		t.Fatal("must not run while the lock is held")
		return nil
	})
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	wg.Wait()
}

func TestNoop(t *testing.T) {
	called := false
	err := Noop{}.WithLock(context.Background(), "k", func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}
