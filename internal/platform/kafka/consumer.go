package kafka

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler processes one message. A returned error is retried a few times
// before the message is committed anyway.
type MessageHandler func(ctx context.Context, msg kafkago.Message) error

// Consumer reads a topic as part of a consumer group.
type Consumer struct {
	reader     *kafkago.Reader
	logger     *zap.Logger
	maxRetries uint64
}

// NewConsumer creates a Consumer for topic.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafkago.NewReader(kafkago.ReaderConfig{
			Brokers:        brokers,
			GroupID:        groupID,
			Topic:          topic,
			MinBytes:       1,
			MaxBytes:       10e6,
			CommitInterval: 0,
			StartOffset:    kafkago.FirstOffset,
		}),
		logger:     logger.With(zap.String("topic", topic), zap.String("group", groupID)),
		maxRetries: 3,
	}
}

// Consume blocks, feeding messages to handle until ctx is cancelled.
func (c *Consumer) Consume(ctx context.Context, handle MessageHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return context.Canceled
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			c.logger.Error("fetch message", zap.Error(err))
			continue
		}

		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = 200 * time.Millisecond
		policy := backoff.WithContext(backoff.WithMaxRetries(exp, c.maxRetries), ctx)
		if err := backoff.Retry(func() error { return handle(ctx, msg) }, policy); err != nil {
			c.logger.Error("giving up on message",
				zap.Int64("offset", msg.Offset),
				zap.Int("partition", msg.Partition),
				zap.Error(err),
			)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("commit message", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
