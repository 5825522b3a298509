package pricing

import (
	"riide/internal/domain/fleet"
	"riide/internal/domain/shared/daterange"
)

// ReservationStatus mirrors the booking lifecycle; only confirmed rentals occupy a vehicle.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
)

// Reservation is a point-in-time snapshot of an existing booking.
type Reservation struct {
	VehicleID fleet.VehicleID
	Start     daterange.Date
	End       daterange.Date
	Status    ReservationStatus
}

// DailyLine is the per-day price breakdown. Raw is rounded to cents and Clamped to whole
// euros; both are display values.
type DailyLine struct {
	Date             string  `json:"date"`
	BaseDay          float64 `json:"baseDay"`
	SeasonalFactor   float64 `json:"seasonalFactor"`
	BridgeFactor     float64 `json:"bridgeFactor"`
	OccupancyFactor  float64 `json:"occupancyFactor"`
	LastMinuteFactor float64 `json:"lastMinuteFactor"`
	Raw              float64 `json:"raw"`
	Clamped          float64 `json:"clamped"`
}

// Estimate is the aggregate quote. Monetary fields hold whole euros once computed; they are
// typed as float64 so estimates received from clients round-trip without loss.
type Estimate struct {
	BasePrice        float64     `json:"basePrice"`
	FinalPrice       float64     `json:"finalPrice"`
	DemandAdjustment float64     `json:"demandAdjustment"`
	OccupancyFactor  float64     `json:"occupancyFactor"`
	DailyBreakdown   []DailyLine `json:"dailyBreakdown"`
}

type EstimateInput struct {
	Start        daterange.Date
	End          daterange.Date
	Vehicle      fleet.Vehicle
	Reservations []Reservation
	// AsOf is "today": the reference for the occupancy window and last-minute discount.
	AsOf daterange.Date
}

// Calculator computes estimates against a fixed demand calendar. It holds no mutable
// state and is safe for concurrent use.
type Calculator struct {
	Demand DemandCalendar
}

func NewCalculator(demand DemandCalendar) Calculator {
	return Calculator{Demand: demand}
}

// Estimate prices every day of [Start, End]. An inverted range yields an empty breakdown
// and zero totals. FinalPrice rounds the sum of unrounded clamped prices once.
func (c Calculator) Estimate(in EstimateInput) Estimate {
	v := in.Vehicle
	vType := v.Type()
	occupancy := occupancyFactorFor(v.ID, in.Reservations, in.AsOf)

	days := daterange.DateRange{Start: in.Start, End: in.End}.Days()
	breakdown := make([]DailyLine, 0, len(days))
	var baseTotal, adjustedTotal float64
	for _, d := range days {
		base := v.BaseWeekday
		if d.IsWeekend() {
			base = v.BaseWeekend
		}
		seasonal := c.Demand.SeasonalFactor(d, vType)
		bridge := BridgeFactor(d, vType)
		lastMinute := LastMinuteFactor(d, in.AsOf)

		raw := base * seasonal * bridge * occupancy * lastMinute
		clamped := clamp(raw, v.MinPrice, v.MaxPrice)

		baseTotal += base
		adjustedTotal += clamped
		breakdown = append(breakdown, DailyLine{
			Date:             d.String(),
			BaseDay:          base,
			SeasonalFactor:   seasonal,
			BridgeFactor:     bridge,
			OccupancyFactor:  occupancy,
			LastMinuteFactor: lastMinute,
			Raw:              roundCents(raw),
			Clamped:          Round(clamped),
		})
	}

	final := Round(adjustedTotal)
	base := Round(baseTotal)
	return Estimate{
		BasePrice:        base,
		FinalPrice:       final,
		DemandAdjustment: final - base,
		OccupancyFactor:  occupancy,
		DailyBreakdown:   breakdown,
	}
}
