// Package feed 把导入完成事件投递到变更流，供前端实时刷新等下游消费。
package feed

import (
	"context"
	"time"

	"TrophySync/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ImportEvent 一次导入完成后的通知
type ImportEvent struct {
	RunID          string    `json:"run_id"`
	UserID         string    `json:"user_id"`
	Platform       string    `json:"platform"`
	Status         string    `json:"status"`
	GamesTotal     int       `json:"games_total"`
	GamesSucceeded int       `json:"games_succeeded"`
	GamesFailed    int       `json:"games_failed"`
	GamesSkipped   int       `json:"games_skipped"`
	FinishedAt     time.Time `json:"finished_at"`
}

// Publisher 导入事件投递接口，Kafka / Redis Stream / noop 三种实现
type Publisher interface {
	PublishImportCompleted(ctx context.Context, evt ImportEvent) error
	Close() error
}

// New 按 feed.type 选择实现；redis 类型复用传入的客户端
func New(cfg config.FeedConfig, rdb redis.UniversalClient, logger *logrus.Logger) Publisher {
	switch cfg.Type {
	case "kafka":
		if len(cfg.Brokers) == 0 {
			logger.Warn("feed.type=kafka 但未配置 brokers，使用 noop")
			return NewNoop()
		}
		logger.WithFields(logrus.Fields{"brokers": cfg.Brokers, "topic": cfg.Topic}).Info("导入事件投递到Kafka")
		return NewKafka(cfg.Brokers, cfg.Topic)
	case "redis":
		if rdb == nil {
			logger.Warn("feed.type=redis 但未配置 redis.address，使用 noop")
			return NewNoop()
		}
		logger.WithField("stream", cfg.Topic).Info("导入事件投递到Redis Stream")
		return NewRedisStream(rdb, cfg.Topic, cfg.MaxLen)
	case "", "noop":
		return NewNoop()
	default:
		logger.WithField("type", cfg.Type).Warn("不支持的feed类型，使用 noop")
		return NewNoop()
	}
}

type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) PublishImportCompleted(context.Context, ImportEvent) error { return nil }
func (n *Noop) Close() error                                              { return nil }
