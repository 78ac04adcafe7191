package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// releaseScript 只删除自己持有的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ErrLockTimeout 等待超过 wait 仍未拿到锁
var ErrLockTimeout = errors.New("获取锁超时")

// RedisLocker 跨进程的自然键锁：SET NX PX + 令牌校验释放
type RedisLocker struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
	wait   time.Duration
	poll   time.Duration
	logger *logrus.Logger
}

func NewRedisLocker(rdb redis.UniversalClient, ttl, wait time.Duration, logger *logrus.Logger) *RedisLocker {
	return &RedisLocker{
		rdb:    rdb,
		prefix: "trophysync:lock:",
		ttl:    ttl,
		wait:   wait,
		poll:   25 * time.Millisecond,
		logger: logger,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	fullKey := l.prefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.rdb.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("获取锁%s失败: %w", key, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.poll):
		}
	}

	return func() {
		// 调用方的 ctx 可能已取消，释放用独立的短超时
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.rdb, []string{fullKey}, token).Err(); err != nil {
			l.logger.WithError(err).WithField("key", key).Warn("释放Redis锁失败，等待过期")
		}
	}, nil
}
