package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// BootstrapConsumer makes sure the topic exists before the reader joins its group.
func BootstrapConsumer(ctx context.Context, cfg *ConsumerConfig, logger *zap.Logger) *Consumer {
	_ = EnsureTopic(ctx, cfg.Brokers, TopicSpec{
		Name:    cfg.Topic,
		MaxWait: 5 * time.Second,
	}, logger)

	cfg.Logger = logger
	return NewConsumer(cfg)
}

// BootstrapProducer is the publishing counterpart of BootstrapConsumer.
func BootstrapProducer(ctx context.Context, brokers []string, topic string, logger *zap.Logger) *Producer {
	_ = EnsureTopic(ctx, brokers, TopicSpec{Name: topic, MaxWait: 5 * time.Second}, logger)
	return NewProducer(brokers, topic).WithLogger(logger)
}
