package booking

import (
	"time"

	"riide/internal/domain/fleet"
	"riide/internal/domain/shared/daterange"
	"riide/internal/domain/shared/money"
)

type BookingRequested struct {
	BookingID BookingID       `json:"bookingId"`
	VehicleID fleet.VehicleID `json:"vehicleId"`
	Email     string          `json:"email"`
	Start     daterange.Date  `json:"startDate"`
	End       daterange.Date  `json:"endDate"`
	Total     money.Money     `json:"total"`
	At        time.Time       `json:"at"`
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() string   { return string(e.BookingID) }
func (e BookingRequested) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	BookingID BookingID       `json:"bookingId"`
	VehicleID fleet.VehicleID `json:"vehicleId"`
	Start     daterange.Date  `json:"startDate"`
	End       daterange.Date  `json:"endDate"`
	Total     money.Money     `json:"total"`
	At        time.Time       `json:"at"`
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID BookingID `json:"bookingId"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }
