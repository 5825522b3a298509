package dto

import (
	"riide/internal/domain/fleet"
	"riide/internal/domain/pricing"
)

type VehicleCollection struct {
	Vehicles []fleet.Vehicle `json:"vehicles"`
}

type DemandPeriodCollection struct {
	Periods []pricing.DemandPeriod `json:"periods"`
}
