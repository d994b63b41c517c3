package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/thep200/issue-crawler/cfg"
	"github.com/thep200/issue-crawler/pkg/log"
)

// Handler processes one consumed message
type Handler func(key string, value []byte) error

// Consumer handles Kafka message consumption
type Consumer struct {
	Config *cfg.Config
	Logger log.Logger
	reader *kafka.Reader
}

// NewConsumer creates and returns a new Kafka Consumer
func NewConsumer(config *cfg.Config, logger log.Logger, topic, groupID string) *Consumer {
	if len(config.Kafka.Brokers) == 0 {
		panic("no kafka brokers configured")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        config.Kafka.Brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3,        // 10KB
		MaxBytes:       10e6,        // 10MB
		MaxWait:        time.Second, // Maximum amount of time to wait for new data
		StartOffset:    kafka.FirstOffset,
		RetentionTime:  7 * 24 * time.Hour, // 1 week
		CommitInterval: time.Second,        // Flush commits to Kafka every second
	})

	return &Consumer{
		Config: config,
		Logger: logger,
		reader: reader,
	}
}

// Start begins consuming messages from the Kafka topic
func (c *Consumer) Start(ctx context.Context, handler Handler) error {
	c.Logger.Info(ctx, "Starting Kafka consumer for topic: %s", c.reader.Config().Topic)

	for {
		select {
		case <-ctx.Done():
			return c.reader.Close()
		default:
			message, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if err == context.Canceled || err == context.DeadlineExceeded {
					return nil
				}
				c.Logger.Error(ctx, "Error reading message: %v", err)
				continue
			}

			if err := handler(string(message.Key), message.Value); err != nil {
				c.Logger.Error(ctx, "Error handling message with key %s: %v", string(message.Key), err)
			}
		}
	}
}

// Close closes the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
