package telemetry

import (
	"context"

	"riide/internal/app/dto"
	"riide/internal/app/middleware"
	"riide/internal/app/queries"
	domainauth "riide/internal/domain/auth"
	domaintelemetry "riide/internal/domain/telemetry"
)

const (
	listMetricsKey = "admin.list_metrics"

	DefaultReadLimit = 1000
)

type ListMetricsQuery struct{}

func (ListMetricsQuery) Key() string { return listMetricsKey }

func (ListMetricsQuery) RequiredRole() domainauth.Role { return domainauth.RoleAdmin }

type ListMetricsHandler struct {
	Store domaintelemetry.Store
	// Limit caps the number of most recent metrics returned.
	Limit int
}

func (h *ListMetricsHandler) Handle(ctx context.Context, _ ListMetricsQuery) (dto.MetricCollection, error) {
	limit := h.Limit
	if limit <= 0 {
		limit = DefaultReadLimit
	}
	metrics, err := h.Store.Recent(ctx, limit)
	if err != nil {
		return dto.MetricCollection{}, err
	}
	if metrics == nil {
		metrics = []domaintelemetry.Metric{}
	}
	return dto.MetricCollection{Metrics: metrics}, nil
}

var (
	_ queries.Handler[ListMetricsQuery, dto.MetricCollection] = (*ListMetricsHandler)(nil)
	_ middleware.Restricted                                   = ListMetricsQuery{}
)
