package telemetry

import (
	"context"
	"log/slog"

	"riide/internal/app/commands"
	"riide/internal/app/policies"
	domaintelemetry "riide/internal/domain/telemetry"
)

const recordMetricKey = "telemetry.record_metric"

type RecordMetricCommand struct {
	Payload []byte `validate:"required"`
}

func (RecordMetricCommand) Key() string { return recordMetricKey }

type RecordMetricResult struct {
	Accepted bool `json:"accepted"`
}

type RecordMetricHandler struct {
	Store  domaintelemetry.Store
	Clock  policies.Clock
	Logger *slog.Logger
}

func (h *RecordMetricHandler) Handle(ctx context.Context, cmd RecordMetricCommand) (*RecordMetricResult, error) {
	m, err := domaintelemetry.NewMetric(cmd.Payload, h.Clock.Now())
	if err != nil {
		return nil, err
	}
	if err := h.Store.Append(ctx, m); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.DebugContext(ctx, "pricing metric recorded", "fields", len(m.Fields))
	}
	return &RecordMetricResult{Accepted: true}, nil
}

var _ commands.Handler[RecordMetricCommand, *RecordMetricResult] = (*RecordMetricHandler)(nil)
