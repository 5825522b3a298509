package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrInvalidMetric = errors.New("telemetry: metric must be a JSON object")

// ReceivedAtField is stamped on every stored metric, overriding any client value.
const ReceivedAtField = "receivedAt"

// Metric is an opaque client pricing event. Fields are kept as sent by the browser.
type Metric struct {
	Fields     map[string]json.RawMessage
	ReceivedAt time.Time
}

// NewMetric parses a client payload. Only JSON objects are accepted.
func NewMetric(raw []byte, receivedAt time.Time) (Metric, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Metric{}, ErrInvalidMetric
	}
	delete(fields, ReceivedAtField)
	return Metric{Fields: fields, ReceivedAt: receivedAt.UTC()}, nil
}

// MarshalJSON flattens the client fields and the receipt timestamp into one object.
func (m Metric) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(m.Fields)+1)
	for k, v := range m.Fields {
		out[k] = v
	}
	ts, err := json.Marshal(m.ReceivedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}
	out[ReceivedAtField] = ts
	return json.Marshal(out)
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return ErrInvalidMetric
	}
	if raw, ok := fields[ReceivedAtField]; ok {
		var ts string
		if err := json.Unmarshal(raw, &ts); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return err
		}
		m.ReceivedAt = parsed
		delete(fields, ReceivedAtField)
	}
	m.Fields = fields
	return nil
}

// Store is a bounded sink: once Capacity entries are held the oldest is evicted.
type Store interface {
	Append(ctx context.Context, m Metric) error
	// Recent returns at most limit entries, oldest first.
	Recent(ctx context.Context, limit int) ([]Metric, error)
}
