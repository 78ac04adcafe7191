package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

type redisStream struct {
	rdb    redis.UniversalClient
	stream string
	maxLen int64
}

// NewRedisStream 以单字段 data 存 JSON，客户端由调用方持有和关闭
func NewRedisStream(rdb redis.UniversalClient, stream string, maxLen int64) Publisher {
	if stream == "" {
		stream = "trophysync:imports"
	}
	return &redisStream{rdb: rdb, stream: stream, maxLen: maxLen}
}

func (q *redisStream) PublishImportCompleted(ctx context.Context, evt ImportEvent) error {
	b, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("序列化导入事件失败: %w", err)
	}
	args := &redis.XAddArgs{Stream: q.stream, Values: map[string]any{"data": string(b)}}
	if q.maxLen > 0 {
		args.MaxLen = q.maxLen
		args.Approx = true
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return q.rdb.XAdd(ctx, args).Err()
}

func (q *redisStream) Close() error { return nil }
