package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	kafka "github.com/segmentio/kafka-go"
)

type kafkaPublisher struct {
	w *kafka.Writer
}

// NewKafka Writer 可并发使用；以 user_id 作为消息键保证同一用户有序
func NewKafka(brokers []string, topic string) Publisher {
	if topic == "" {
		topic = "trophysync.imports"
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireOne,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &kafkaPublisher{w: w}
}

func (p *kafkaPublisher) PublishImportCompleted(ctx context.Context, evt ImportEvent) error {
	b, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("序列化导入事件失败: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.w.WriteMessages(ctx, kafka.Message{Key: []byte(evt.UserID), Value: b})
}

func (p *kafkaPublisher) Close() error { return p.w.Close() }
