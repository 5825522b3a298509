package bookings

import (
	"context"

	"riide/internal/app/dto"
	"riide/internal/app/handlers/support"
	"riide/internal/app/policies"
	"riide/internal/app/queries"
	"riide/internal/app/uow"
	domainbooking "riide/internal/domain/booking"
)

const (
	publicRangesKey = "bookings.public_ranges"

	DefaultHorizonMonths = 6
	MaxHorizonMonths     = 24
)

// PublicRangesQuery lists confirmed rentals that are not over yet and start within the
// horizon, so the calendar can grey out unavailable days.
type PublicRangesQuery struct {
	Months int
}

func (PublicRangesQuery) Key() string { return publicRangesKey }

type PublicRangesHandler struct {
	UoWFactory uow.UoWFactory
	Clock      policies.Clock
}

func (h *PublicRangesHandler) Handle(ctx context.Context, q PublicRangesQuery) (dto.PublicRangeCollection, error) {
	months := q.Months
	if months <= 0 {
		months = DefaultHorizonMonths
	}
	if months > MaxHorizonMonths {
		months = MaxHorizonMonths
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PublicRangeCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	confirmed, err := unit.Bookings().List(execCtx, domainbooking.Filter{Status: domainbooking.StatusConfirmed})
	if err != nil {
		return dto.PublicRangeCollection{}, err
	}

	today := h.Clock.Today()
	horizon := today.AddMonths(months)
	out := dto.PublicRangeCollection{Bookings: make([]dto.PublicRange, 0, len(confirmed))}
	for _, b := range confirmed {
		if b.Range.End.Before(today) || b.Range.Start.After(horizon) {
			continue
		}
		out.Bookings = append(out.Bookings, dto.MapPublicRange(b))
	}
	return out, nil
}

var _ queries.Handler[PublicRangesQuery, dto.PublicRangeCollection] = (*PublicRangesHandler)(nil)
