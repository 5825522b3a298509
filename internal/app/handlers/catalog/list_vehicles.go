package catalog

import (
	"context"

	"riide/internal/app/dto"
	"riide/internal/app/queries"
	"riide/internal/domain/fleet"
)

const listVehiclesKey = "fleet.list_vehicles"

type ListVehiclesQuery struct{}

func (ListVehiclesQuery) Key() string { return listVehiclesKey }

type ListVehiclesHandler struct {
	Catalog fleet.Repository
}

func (h *ListVehiclesHandler) Handle(ctx context.Context, _ ListVehiclesQuery) (dto.VehicleCollection, error) {
	vehicles, err := h.Catalog.All(ctx)
	if err != nil {
		return dto.VehicleCollection{}, err
	}
	return dto.VehicleCollection{Vehicles: vehicles}, nil
}

var _ queries.Handler[ListVehiclesQuery, dto.VehicleCollection] = (*ListVehiclesHandler)(nil)
