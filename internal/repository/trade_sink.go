package repository

import (
	"context"

	"github.com/anishesg/a-rusty-kalshi-bot/internal/domain/models"
	"github.com/anishesg/a-rusty-kalshi-bot/internal/domain/repository"
	pkgkafka "github.com/anishesg/a-rusty-kalshi-bot/pkg/kafka"
)

// KafkaTradeSink publishes closed trades to a Kafka topic, keyed by model
// so per-model consumers read in order.
type KafkaTradeSink struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaTradeSink creates a Kafka-backed trade sink.
func NewKafkaTradeSink(producer *pkgkafka.Producer, topic string) repository.TradeSink {
	return &KafkaTradeSink{producer: producer, topic: topic}
}

func (s *KafkaTradeSink) Publish(ctx context.Context, t *models.TradeRecord) error {
	return s.producer.Publish(ctx, s.topic, []byte(t.Model), t)
}

func (s *KafkaTradeSink) Close() error {
	return s.producer.Close()
}
