package telemetry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetric(t *testing.T) {
	at := time.Date(2026, 7, 1, 9, 30, 0, 0, time.UTC)

	m, err := NewMetric([]byte(`{"event":"estimate_shown","finalPrice":130,"receivedAt":"forged"}`), at)
	require.NoError(t, err)
	assert.NotContains(t, m.Fields, ReceivedAtField)

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"estimate_shown","finalPrice":130,"receivedAt":"2026-07-01T09:30:00Z"}`, string(raw))

	var back Metric
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, at.Equal(back.ReceivedAt))
	assert.Len(t, back.Fields, 2)
}

func TestNewMetric_RejectsNonObjects(t *testing.T) {
	for _, raw := range []string{``, `null`, `[1,2]`, `"x"`, `42`, `{`} {
		_, err := NewMetric([]byte(raw), time.Now())
		assert.ErrorIs(t, err, ErrInvalidMetric, raw)
	}
}
