package catalog

import (
	"context"

	"riide/internal/app/handlers/support"
	"riide/internal/app/policies"
	"riide/internal/app/queries"
	"riide/internal/app/uow"
	domainbooking "riide/internal/domain/booking"
	"riide/internal/domain/fleet"
	"riide/internal/domain/pricing"
	"riide/internal/domain/shared/daterange"
)

const getEstimateKey = "pricing.get_estimate"

// GetEstimateQuery prices a stay the same way checkout will, for display.
type GetEstimateQuery struct {
	VehicleID int    `validate:"required,gt=0"`
	StartDate string `validate:"required"`
	EndDate   string `validate:"required"`
}

func (GetEstimateQuery) Key() string { return getEstimateKey }

type GetEstimateHandler struct {
	UoWFactory uow.UoWFactory
	Catalog    fleet.Repository
	Calculator pricing.Calculator
	Clock      policies.Clock
}

func (h *GetEstimateHandler) Handle(ctx context.Context, q GetEstimateQuery) (pricing.Estimate, error) {
	start, err := daterange.ParseDate(q.StartDate)
	if err != nil {
		return pricing.Estimate{}, err
	}
	end, err := daterange.ParseDate(q.EndDate)
	if err != nil {
		return pricing.Estimate{}, err
	}
	if err := domainbooking.ValidateLength(daterange.DateRange{Start: start, End: end}); err != nil {
		return pricing.Estimate{}, err
	}
	vehicle, err := h.Catalog.ByID(ctx, fleet.VehicleID(q.VehicleID))
	if err != nil {
		return pricing.Estimate{}, err
	}

	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return pricing.Estimate{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	confirmed, err := unit.Bookings().List(execCtx, domainbooking.Filter{
		VehicleID: vehicle.ID,
		Status:    domainbooking.StatusConfirmed,
	})
	if err != nil {
		return pricing.Estimate{}, err
	}
	return h.Calculator.Estimate(pricing.EstimateInput{
		Start:        start,
		End:          end,
		Vehicle:      vehicle,
		Reservations: domainbooking.Reservations(confirmed),
		AsOf:         h.Clock.Today(),
	}), nil
}

var _ queries.Handler[GetEstimateQuery, pricing.Estimate] = (*GetEstimateHandler)(nil)
