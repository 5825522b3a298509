package catalog

import (
	"riide/internal/domain/fleet"
	"riide/internal/domain/pricing"
	"riide/internal/domain/shared/daterange"
)

// DefaultVehicles is the fleet served when no catalog file is configured.
func DefaultVehicles() []fleet.Vehicle {
	return []fleet.Vehicle{
		{ID: 1, Category: fleet.CategoryPassenger, Name: "Peugeot 208 GT Auto", BaseWeekday: 48, BaseWeekend: 58, MinPrice: 42, MaxPrice: 95, Deposit: 1000},
		{ID: 2, Category: fleet.CategoryPassenger, Name: "Volkswagen Polo 6", BaseWeekday: 45, BaseWeekend: 55, MinPrice: 39, MaxPrice: 85, Deposit: 800},
		{ID: 5, Category: fleet.CategoryPassenger, Name: "Volkswagen Golf 8 Auto", BaseWeekday: 57, BaseWeekend: 67, MinPrice: 49, MaxPrice: 110, Deposit: 1000},
		{ID: 3, Category: fleet.CategoryUtility, Name: "Citroën Jumpy", BaseWeekday: 55, BaseWeekend: 68, MinPrice: 50, MaxPrice: 120, Deposit: 1200},
		{ID: 4, Category: fleet.CategoryUtility, Name: "Opel Movano 12m³", BaseWeekday: 63, BaseWeekend: 76, MinPrice: 58, MaxPrice: 135, Deposit: 1500},
	}
}

// DefaultDemandPeriods is the 2026 demand calendar. Order matters for reproducible products.
func DefaultDemandPeriods() []pricing.DemandPeriod {
	d := daterange.MustParse
	return []pricing.DemandPeriod{
		{Name: "Vacances scolaires", Start: d("2026-02-14"), End: d("2026-03-02"), Scope: pricing.ScopeCar, Factor: 1.12},
		{Name: "Été utilitaires", Start: d("2026-07-01"), End: d("2026-08-31"), Scope: pricing.ScopeVan, Factor: 1.3},
		{Name: "Été voitures", Start: d("2026-07-01"), End: d("2026-08-31"), Scope: pricing.ScopeCar, Factor: 1.15},
		{Name: "Ponts de mai", Start: d("2026-05-01"), End: d("2026-05-11"), Scope: pricing.ScopeAll, Factor: 1.15},
	}
}
