package policies

import "context"

// TemplateBookingConfirmed is sent once a booking is confirmed, with BookingConfirmedEmail
// as data.
const TemplateBookingConfirmed = "booking_confirmed"

type BookingConfirmedEmail struct {
	BookingID    string
	CustomerName string
	VehicleName  string
	StartDate    string
	EndDate      string
	TotalEUR     int64
}

// Notifier delivers customer emails. Delivery is best effort: callers log failures and
// never roll back a booking because of them.
type Notifier interface {
	Send(ctx context.Context, to string, template string, data any) error
}
