package checkout

import (
	"context"
	"log/slog"

	"riide/internal/app/policies"
	domainbooking "riide/internal/domain/booking"
)

// notifyConfirmed is best effort: a lost email never undoes a paid booking.
func notifyConfirmed(ctx context.Context, notifier policies.Notifier, logger *slog.Logger, b *domainbooking.Booking) {
	if notifier == nil {
		return
	}
	data := policies.BookingConfirmedEmail{
		BookingID:    string(b.ID),
		CustomerName: b.Customer.Name,
		VehicleName:  b.VehicleName,
		StartDate:    b.Range.Start.String(),
		EndDate:      b.Range.End.String(),
		TotalEUR:     b.Total.Amount,
	}
	if err := notifier.Send(ctx, b.Customer.Email, policies.TemplateBookingConfirmed, data); err != nil {
		logger.WarnContext(ctx, "confirmation email failed", "booking_id", b.ID, "error", err)
	}
}
