package pricing

import (
	"math"

	"riide/internal/domain/fleet"
	"riide/internal/domain/shared/daterange"
)

const (
	// OccupancyWindowDays is the length of the rolling window starting at asOf.
	OccupancyWindowDays = 30

	bridgeFactor       = 1.12
	endOfMonthFactor   = 1.15
	lastMinuteFactor   = 0.9
	lastMinuteMaxHours = 48
)

// May long weekends around the 1st and the 8th.
var bridgeDays = map[int]bool{1: true, 2: true, 3: true, 4: true, 8: true, 9: true, 10: true, 11: true}

// BridgeFactor stacks the May bridge boost (every vehicle) with the end-of-month moving
// surge (vans only, day >= 27 or day <= 3).
func BridgeFactor(d daterange.Date, t fleet.Type) float64 {
	factor := 1.0
	if d.Month == 5 && bridgeDays[d.Day] {
		factor *= bridgeFactor
	}
	if (d.Day >= 27 || d.Day <= 3) && t == fleet.TypeVan {
		factor *= endOfMonthFactor
	}
	return factor
}

// LastMinuteFactor discounts days whose midnight is at most 48 hours after asOf's midnight.
// Hours are derived from whole calendar days so DST transitions cannot shift the boundary.
func LastMinuteFactor(d, asOf daterange.Date) float64 {
	hours := d.DaysSince(asOf) * 24
	if hours <= lastMinuteMaxHours {
		return lastMinuteFactor
	}
	return 1
}

// OccupiedDays counts the distinct days of [asOf, asOf+29] covered by at least one
// confirmed reservation of the vehicle.
func OccupiedDays(vehicleID fleet.VehicleID, reservations []Reservation, asOf daterange.Date) int {
	window := daterange.DateRange{Start: asOf, End: asOf.AddDays(OccupancyWindowDays - 1)}
	var booked [OccupancyWindowDays]bool
	for _, r := range reservations {
		if r.VehicleID != vehicleID || r.Status != StatusConfirmed {
			continue
		}
		overlap, ok := window.Intersect(daterange.DateRange{Start: r.Start, End: r.End})
		if !ok {
			continue
		}
		first := overlap.Start.DaysSince(asOf)
		for i := 0; i < overlap.Len(); i++ {
			booked[first+i] = true
		}
	}
	count := 0
	for _, b := range booked {
		if b {
			count++
		}
	}
	return count
}

// OccupancyFactor maps the booked ratio of the rolling window onto its price tier.
// Lower tier edges are inclusive: 0.25 and 0.5 map to 1.0, 0.7 maps to 1.1.
func OccupancyFactor(ratio float64) float64 {
	switch {
	case ratio < 0.25:
		return 0.9
	case ratio <= 0.5:
		return 1
	case ratio <= 0.7:
		return 1.1
	default:
		return 1.2
	}
}

func occupancyFactorFor(vehicleID fleet.VehicleID, reservations []Reservation, asOf daterange.Date) float64 {
	ratio := float64(OccupiedDays(vehicleID, reservations, asOf)) / OccupancyWindowDays
	return OccupancyFactor(ratio)
}

// Round rounds half away from zero, matching how positive amounts are rounded for display.
func Round(v float64) float64 {
	return math.Round(v)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
