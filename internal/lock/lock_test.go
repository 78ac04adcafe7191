package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseMutualExclusion(t *testing.T, l Locker) {
	t.Helper()
	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "game:portal 2")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxSeen)
}

func TestLocalLockerMutualExclusion(t *testing.T) {
	l := NewLocalLocker()
	exerciseMutualExclusion(t, l)
	assert.Zero(t, l.size(), "idle keys are released")
}

func TestLocalLockerIndependentKeys(t *testing.T) {
	l := NewLocalLocker()
	unlockA, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := l.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
	unlockB() // 重复释放无副作用
}

func TestLocalLockerContextCancel(t *testing.T) {
	l := NewLocalLocker()
	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "k")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	assert.Zero(t, l.size())
}

func newRedisLocker(t *testing.T, ttl, wait time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	logger, _ := test.NewNullLogger()
	return NewRedisLocker(rdb, ttl, wait, logger), mr
}

func TestRedisLockerMutualExclusion(t *testing.T) {
	l, _ := newRedisLocker(t, 5*time.Second, 5*time.Second)
	exerciseMutualExclusion(t, l)
}

func TestRedisLockerReleaseOnlyOwnToken(t *testing.T) {
	l, mr := newRedisLocker(t, 5*time.Second, 50*time.Millisecond)

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, mr.Exists("trophysync:lock:k"))

	// 模拟锁过期后被他人持有
	mr.Set("trophysync:lock:k", "someone-else")
	unlock()
	got, err := mr.Get("trophysync:lock:k")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)

	_, err = l.Lock(context.Background(), "k")
	assert.True(t, errors.Is(err, ErrLockTimeout))
}
