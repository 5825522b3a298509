package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "riide/internal/app/outbox"
	"riide/internal/infra/outbox"
	"riide/internal/infra/storage/memory"
)

type published struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	mu   sync.Mutex
	err  error
	sent []published
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

var occurred = time.Date(2026, 7, 1, 9, 30, 0, 0, time.UTC)

func TestWorker_DrainPublishesCloudEvents(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOutbox()
	require.NoError(t, store.Add(ctx, appoutbox.EventRecord{
		ID:         "evt-1",
		Name:       "booking.confirmed",
		Payload:    []byte(`{"bookingId":"b1"}`),
		OccurredAt: occurred,
		Aggregate:  "b1",
		Headers:    map[string]string{"traceparent": "00-abc-def-01"},
	}))

	producer := &fakeProducer{}
	w := outbox.NewWorker(store, producer)
	w.TopicPrefix = "riide."
	require.NoError(t, w.Drain(ctx))

	require.Len(t, producer.sent, 1)
	msg := producer.sent[0]
	assert.Equal(t, "riide.booking.events.v1", msg.topic)
	assert.Equal(t, "b1", msg.key)
	assert.Equal(t, "application/cloudevents+json", msg.headers["content-type"])
	assert.Equal(t, "evt-1", msg.headers["ce_id"])
	assert.Equal(t, "booking.confirmed.v1", msg.headers["ce_type"])

	var evt map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &evt))
	assert.Equal(t, "1.0", evt["specversion"])
	assert.Equal(t, "app://riide", evt["source"])
	assert.Equal(t, "b1", evt["subject"])
	assert.Equal(t, "00-abc-def-01", evt["traceparent"])
	assert.Equal(t, occurred.Format(time.RFC3339Nano), evt["time"])
	assert.Equal(t, map[string]any{"bookingId": "b1"}, evt["data"])

	assert.Equal(t, outbox.StateSent, store.Messages()[0].State)
}

func TestWorker_FailedDeliveryIsRescheduled(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOutbox()
	require.NoError(t, store.Add(ctx, appoutbox.EventRecord{ID: "evt-1", Name: "booking.requested", Payload: []byte(`{}`), OccurredAt: occurred}))

	producer := &fakeProducer{err: errors.New("broker down")}
	w := outbox.NewWorker(store, producer)
	w.Backoff = []time.Duration{time.Hour}
	require.NoError(t, w.Drain(ctx))

	msgs := store.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, outbox.StateFailed, msgs[0].State)
	assert.Equal(t, 1, msgs[0].Attempts)
	assert.Equal(t, "broker down", msgs[0].LastError)
	assert.True(t, msgs[0].NextAttempt.After(time.Now().Add(30*time.Minute)))

	// not due yet, so a second drain publishes nothing
	producer.err = nil
	require.NoError(t, w.Drain(ctx))
	assert.Empty(t, producer.sent)
}

func TestWorker_InvalidPayloadIsNotPublished(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOutbox()
	require.NoError(t, store.Add(ctx, appoutbox.EventRecord{ID: "evt-1", Name: "booking.requested", Payload: []byte(`{`), OccurredAt: occurred}))

	producer := &fakeProducer{}
	require.NoError(t, outbox.NewWorker(store, producer).Drain(ctx))
	assert.Empty(t, producer.sent)
	assert.Equal(t, outbox.StateFailed, store.Messages()[0].State)
}

func TestWorker_RunWakesOnNotify(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := memory.NewOutbox()
	producer := &fakeProducer{}
	w := outbox.NewWorker(store, producer)
	w.Interval = time.Hour
	store.OnFlush(w.Notify)

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, store.Add(ctx, appoutbox.EventRecord{ID: "evt-1", Name: "booking.requested", Payload: []byte(`{}`), OccurredAt: occurred}))
	require.NoError(t, store.Flush(ctx))

	assert.Eventually(t, func() bool {
		producer.mu.Lock()
		defer producer.mu.Unlock()
		return len(producer.sent) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWorker_RunRequiresDependencies(t *testing.T) {
	assert.ErrorIs(t, (&outbox.Worker{}).Run(context.Background()), outbox.ErrWorkerNotConfigured)
}
