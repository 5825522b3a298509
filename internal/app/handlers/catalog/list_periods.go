package catalog

import (
	"context"

	"riide/internal/app/dto"
	"riide/internal/app/queries"
	"riide/internal/domain/pricing"
)

const listDemandPeriodsKey = "pricing.list_demand_periods"

type ListDemandPeriodsQuery struct{}

func (ListDemandPeriodsQuery) Key() string { return listDemandPeriodsKey }

type ListDemandPeriodsHandler struct {
	Calendar pricing.DemandCalendar
}

func (h *ListDemandPeriodsHandler) Handle(_ context.Context, _ ListDemandPeriodsQuery) (dto.DemandPeriodCollection, error) {
	return dto.DemandPeriodCollection{Periods: h.Calendar.Periods()}, nil
}

var _ queries.Handler[ListDemandPeriodsQuery, dto.DemandPeriodCollection] = (*ListDemandPeriodsHandler)(nil)
