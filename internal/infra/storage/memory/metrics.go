package memory

import (
	"context"
	"sync"

	"riide/internal/domain/telemetry"
)

const DefaultMetricsCapacity = 5000

// MetricsStore is a bounded FIFO of pricing metrics.
type MetricsStore struct {
	mu       sync.Mutex
	items    []telemetry.Metric
	capacity int
}

func NewMetricsStore(capacity int) *MetricsStore {
	if capacity <= 0 {
		capacity = DefaultMetricsCapacity
	}
	return &MetricsStore{capacity: capacity}
}

func (s *MetricsStore) Append(_ context.Context, m telemetry.Metric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, m)
	if over := len(s.items) - s.capacity; over > 0 {
		s.items = append(s.items[:0:0], s.items[over:]...)
	}
	return nil
}

func (s *MetricsStore) Recent(_ context.Context, limit int) ([]telemetry.Metric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := 0
	if limit > 0 && len(s.items) > limit {
		start = len(s.items) - limit
	}
	return append([]telemetry.Metric(nil), s.items[start:]...), nil
}

var _ telemetry.Store = (*MetricsStore)(nil)
