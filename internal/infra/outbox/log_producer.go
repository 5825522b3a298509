package outbox

import (
	"context"
	"log/slog"
)

// LogProducer stands in for the broker when Kafka is not configured: events are written
// to the log and counted as delivered.
type LogProducer struct {
	Logger *slog.Logger
}

func (p LogProducer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "event published to log", "topic", topic, "key", key, "type", headers["ce_type"], "bytes", len(payload))
	return nil
}
