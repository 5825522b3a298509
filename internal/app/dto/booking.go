package dto

import (
	"time"

	domainbooking "riide/internal/domain/booking"
	"riide/internal/domain/fleet"
	"riide/internal/domain/shared/daterange"
)

// PublicRange is the only booking information exposed anonymously.
type PublicRange struct {
	VehicleID fleet.VehicleID `json:"vehicleId"`
	StartDate daterange.Date  `json:"startDate"`
	EndDate   daterange.Date  `json:"endDate"`
}

type PublicRangeCollection struct {
	Bookings []PublicRange `json:"bookings"`
}

type AdminBooking struct {
	BookingID     string          `json:"bookingId"`
	VehicleID     fleet.VehicleID `json:"vehicleId"`
	VehicleName   string          `json:"vehicleName"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	CustomerPhone string          `json:"customerPhone"`
	StartDate     daterange.Date  `json:"startDate"`
	EndDate       daterange.Date  `json:"endDate"`
	TotalPaidEUR  int64           `json:"totalPaidEUR"`
	Notes         string          `json:"notes"`
	Status        string          `json:"status"`
	PaymentRef    string          `json:"paymentRef,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type AdminBookingCollection struct {
	Bookings []AdminBooking `json:"bookings"`
}

func MapPublicRange(b *domainbooking.Booking) PublicRange {
	return PublicRange{VehicleID: b.VehicleID, StartDate: b.Range.Start, EndDate: b.Range.End}
}

func MapAdminBooking(b *domainbooking.Booking) AdminBooking {
	return AdminBooking{
		BookingID:     string(b.ID),
		VehicleID:     b.VehicleID,
		VehicleName:   b.VehicleName,
		CustomerName:  b.Customer.Name,
		CustomerEmail: b.Customer.Email,
		CustomerPhone: b.Customer.Phone,
		StartDate:     b.Range.Start,
		EndDate:       b.Range.End,
		TotalPaidEUR:  b.Total.Amount,
		Notes:         b.Notes,
		Status:        string(b.Status),
		PaymentRef:    b.PaymentRef,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}
