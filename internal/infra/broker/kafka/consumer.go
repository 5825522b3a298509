package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

// ErrPermanent marks a message that can never succeed; it is logged and skipped.
var ErrPermanent = errors.New("kafka: permanent message failure")

type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	// Backoff lists the waits between attempts; its length bounds the retries.
	Backoff []time.Duration
	Logger  *slog.Logger
}

func NewConsumer(brokers []string, groupID string, cfg *sarama.Config, handler MessageHandler) (*Consumer, error) {
	if cfg == nil {
		cfg = NewConfig("riide")
	}
	g, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	return &Consumer{group: g, handler: handler}, nil
}

func (c *Consumer) Run(ctx context.Context, topics []string) error {
	for {
		if err := c.group.Consume(ctx, topics, c.groupHandler()); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

func (c *Consumer) groupHandler() consumerGroupHandler {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return consumerGroupHandler{handler: c.handler, backoff: c.Backoff, logger: logger}
}

type consumerGroupHandler struct {
	handler MessageHandler
	backoff []time.Duration
	logger  *slog.Logger
}

func (h consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h consumerGroupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := h.deliver(sess.Context(), message); err != nil {
			// session ended mid-retry: leave the offset for the next owner
			return nil
		}
		sess.MarkMessage(message, "")
	}
	return nil
}

// deliver retries transient failures with backoff. It only returns an error when ctx ends;
// messages that exhaust their retries are logged and skipped so the partition keeps moving.
func (h consumerGroupHandler) deliver(ctx context.Context, msg *sarama.ConsumerMessage) error {
	for attempt := 0; ; attempt++ {
		err := h.handler.Handle(ctx, msg)
		if err == nil {
			return nil
		}
		attrs := []any{"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "attempt", attempt + 1, "error", err}
		if errors.Is(err, ErrPermanent) || attempt >= len(h.backoff) {
			h.logger.ErrorContext(ctx, "kafka message dropped", attrs...)
			return nil
		}
		h.logger.WarnContext(ctx, "kafka message failed, retrying", attrs...)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(h.backoff[attempt]):
		}
	}
}
