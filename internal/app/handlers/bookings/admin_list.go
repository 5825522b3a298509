package bookings

import (
	"context"

	"riide/internal/app/dto"
	"riide/internal/app/handlers/support"
	"riide/internal/app/middleware"
	"riide/internal/app/queries"
	"riide/internal/app/uow"
	domainauth "riide/internal/domain/auth"
	domainbooking "riide/internal/domain/booking"
)

const adminListKey = "admin.list_bookings"

type AdminListQuery struct {
	Status string `validate:"omitempty,oneof=PENDING CONFIRMED CANCELLED"`
}

func (AdminListQuery) Key() string { return adminListKey }

func (AdminListQuery) RequiredRole() domainauth.Role { return domainauth.RoleAdmin }

type AdminListHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *AdminListHandler) Handle(ctx context.Context, q AdminListQuery) (dto.AdminBookingCollection, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.AdminBookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	list, err := unit.Bookings().List(execCtx, domainbooking.Filter{Status: domainbooking.Status(q.Status)})
	if err != nil {
		return dto.AdminBookingCollection{}, err
	}
	out := dto.AdminBookingCollection{Bookings: make([]dto.AdminBooking, 0, len(list))}
	for _, b := range list {
		out.Bookings = append(out.Bookings, dto.MapAdminBooking(b))
	}
	return out, nil
}

var (
	_ queries.Handler[AdminListQuery, dto.AdminBookingCollection] = (*AdminListHandler)(nil)
	_ middleware.Restricted                                       = AdminListQuery{}
)
