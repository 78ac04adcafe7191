package feed

import (
	"context"
	"testing"
	"time"

	"TrophySync/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectsImplementation(t *testing.T) {
	logger, _ := test.NewNullLogger()

	assert.IsType(t, &Noop{}, New(config.FeedConfig{}, nil, logger))
	assert.IsType(t, &Noop{}, New(config.FeedConfig{Type: "kafka"}, nil, logger))
	assert.IsType(t, &Noop{}, New(config.FeedConfig{Type: "redis"}, nil, logger))
	assert.IsType(t, &Noop{}, New(config.FeedConfig{Type: "carrier-pigeon"}, nil, logger))

	k := New(config.FeedConfig{Type: "kafka", Brokers: []string{"localhost:9092"}}, nil, logger)
	assert.IsType(t, &kafkaPublisher{}, k)
	require.NoError(t, k.Close())
}

func TestRedisStreamPublish(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	logger, _ := test.NewNullLogger()
	p := New(config.FeedConfig{Type: "redis", Topic: "imports", MaxLen: 100}, rdb, logger)

	evt := ImportEvent{
		RunID:          "run-1",
		UserID:         "user-1",
		Platform:       "steam",
		Status:         "completed",
		GamesTotal:     3,
		GamesSucceeded: 2,
		GamesFailed:    1,
		FinishedAt:     time.Unix(1700000000, 0).UTC(),
	}
	require.NoError(t, p.PublishImportCompleted(context.Background(), evt))

	msgs, err := rdb.XRange(context.Background(), "imports", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	var got ImportEvent
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["data"].(string)), &got))
	assert.Equal(t, evt, got)
	require.NoError(t, p.Close())
}
