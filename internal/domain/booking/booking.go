package booking

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"riide/internal/domain/fleet"
	"riide/internal/domain/pricing"
	"riide/internal/domain/shared/daterange"
	"riide/internal/domain/shared/events"
	"riide/internal/domain/shared/money"
)

var (
	ErrInvalidCustomer = errors.New("booking: customer name, email and phone are required")
	ErrInvalidVehicle  = errors.New("booking: vehicle required")
	ErrInvalidTotal    = errors.New("booking: total cannot be negative")
	ErrInvalidState    = errors.New("booking: invalid state transition")
	ErrBookingNotFound = errors.New("booking: not found")
	ErrVersionConflict = errors.New("booking: concurrent modification")
)

type BookingID string

// Status values are shared with pricing reservations so snapshots need no translation.
type Status = pricing.ReservationStatus

const (
	StatusPending   = pricing.StatusPending
	StatusConfirmed = pricing.StatusConfirmed
	StatusCancelled = pricing.StatusCancelled
)

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (c Customer) normalized() Customer {
	return Customer{
		Name:  strings.TrimSpace(c.Name),
		Email: strings.TrimSpace(strings.ToLower(c.Email)),
		Phone: strings.TrimSpace(c.Phone),
	}
}

func (c Customer) Validate() error {
	n := c.normalized()
	if n.Name == "" || n.Email == "" || n.Phone == "" {
		return ErrInvalidCustomer
	}
	if _, err := mail.ParseAddress(n.Email); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCustomer, err)
	}
	return nil
}

type Booking struct {
	ID          BookingID
	VehicleID   fleet.VehicleID
	VehicleName string
	Customer    Customer
	Range       daterange.DateRange
	Total       money.Money
	Notes       string
	Status      Status
	PaymentRef  string
	CancelNote  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
	events.EventRecorder
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Status    Status
	VehicleID fleet.VehicleID
	// CreatedBefore keeps bookings created strictly before the instant.
	CreatedBefore time.Time
}

func (f Filter) Match(b *Booking) bool {
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.VehicleID != 0 && b.VehicleID != f.VehicleID {
		return false
	}
	if !f.CreatedBefore.IsZero() && !b.CreatedAt.Before(f.CreatedBefore) {
		return false
	}
	return true
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	// List returns matching bookings, oldest first.
	List(ctx context.Context, filter Filter) ([]*Booking, error)
}

type CreateParams struct {
	ID        BookingID
	Vehicle   fleet.Vehicle
	Customer  Customer
	Range     daterange.DateRange
	Total     money.Money
	Notes     string
	CreatedAt time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if params.ID == "" {
		return nil, errors.New("booking: id required")
	}
	if params.Vehicle.ID <= 0 {
		return nil, ErrInvalidVehicle
	}
	if err := params.Customer.Validate(); err != nil {
		return nil, err
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if params.Total.Amount < 0 {
		return nil, ErrInvalidTotal
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:          params.ID,
		VehicleID:   params.Vehicle.ID,
		VehicleName: params.Vehicle.Name,
		Customer:    params.Customer.normalized(),
		Range:       params.Range,
		Total:       params.Total,
		Notes:       strings.TrimSpace(params.Notes),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	b.Record(BookingRequested{
		BookingID: b.ID,
		VehicleID: b.VehicleID,
		Email:     b.Customer.Email,
		Start:     b.Range.Start,
		End:       b.Range.End,
		Total:     b.Total,
		At:        now,
	})
	return b, nil
}

// Confirm settles a pending booking. Confirming an already confirmed booking with the same
// payment reference is a no-op so redelivered payment events are harmless.
func (b *Booking) Confirm(paymentRef string, now time.Time) error {
	switch b.Status {
	case StatusPending:
	case StatusConfirmed:
		if b.PaymentRef == paymentRef {
			return nil
		}
		return ErrInvalidState
	default:
		return ErrInvalidState
	}
	b.PaymentRef = paymentRef
	b.Status = StatusConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{
		BookingID: b.ID,
		VehicleID: b.VehicleID,
		Start:     b.Range.Start,
		End:       b.Range.End,
		Total:     b.Total,
		At:        b.UpdatedAt,
	})
	return nil
}

// Cancel releases a pending booking. Confirmed bookings are paid and cannot be cancelled here.
func (b *Booking) Cancel(reason string, now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.Status = StatusCancelled
	b.CancelNote = reason
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, Reason: reason, At: b.UpdatedAt})
	return nil
}

// Expired reports whether a pending booking has waited longer than ttl for its payment.
func (b *Booking) Expired(now time.Time, ttl time.Duration) bool {
	return b.Status == StatusPending && ttl > 0 && now.Sub(b.CreatedAt) > ttl
}

// Reservation projects the booking onto the snapshot the rate calculator consumes.
func (b *Booking) Reservation() pricing.Reservation {
	return pricing.Reservation{
		VehicleID: b.VehicleID,
		Start:     b.Range.Start,
		End:       b.Range.End,
		Status:    b.Status,
	}
}

// Reservations projects a list of bookings.
func Reservations(list []*Booking) []pricing.Reservation {
	out := make([]pricing.Reservation, 0, len(list))
	for _, b := range list {
		out = append(out, b.Reservation())
	}
	return out
}
