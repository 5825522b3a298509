package redis

import (
	"context"
	"encoding/json"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"riide/internal/domain/telemetry"
)

const DefaultMetricsKey = "riide:pricing_metrics"

var ErrInvalidCapacity = errors.New("redis: metrics capacity must be positive")

func NewClient(addr string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{Addr: addr, DB: db})
}

// MetricsStore keeps the most recent pricing metrics in a capped Redis list, oldest at
// the head, so several API instances share one buffer.
type MetricsStore struct {
	client   goredis.Cmdable
	key      string
	capacity int64
}

func NewMetricsStore(client goredis.Cmdable, key string, capacity int) (*MetricsStore, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if key == "" {
		key = DefaultMetricsKey
	}
	return &MetricsStore{client: client, key: key, capacity: int64(capacity)}, nil
}

func (s *MetricsStore) Append(ctx context.Context, m telemetry.Metric) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.RPush(ctx, s.key, raw)
		pipe.LTrim(ctx, s.key, -s.capacity, -1)
		return nil
	})
	return err
}

// Recent returns up to limit metrics, oldest first; limit <= 0 returns the whole buffer.
func (s *MetricsStore) Recent(ctx context.Context, limit int) ([]telemetry.Metric, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	values, err := s.client.LRange(ctx, s.key, start, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]telemetry.Metric, 0, len(values))
	for _, v := range values {
		var m telemetry.Metric
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *MetricsStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

var _ telemetry.Store = (*MetricsStore)(nil)
