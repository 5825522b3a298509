package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	domainbooking "riide/internal/domain/booking"
	"riide/internal/domain/fleet"
	"riide/internal/domain/shared/daterange"
	"riide/internal/domain/shared/money"
)

const uniqueViolation = "23505"

const bookingColumns = `id, vehicle_id, vehicle_name, customer_name, customer_email, customer_phone,
	start_date, end_date, amount, currency, notes, status, payment_ref, cancel_note,
	created_at, updated_at, version`

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, string(id))
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainbooking.ErrBookingNotFound
	}
	return b, err
}

// Save inserts version 0 aggregates and otherwise updates guarded by the version read.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	q := conn(ctx, r.db)
	next := b.Version + 1
	if b.Version == 0 {
		_, err := q.ExecContext(ctx, `INSERT INTO bookings (`+bookingColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
			string(b.ID), int(b.VehicleID), b.VehicleName, b.Customer.Name, b.Customer.Email, b.Customer.Phone,
			b.Range.Start.String(), b.Range.End.String(), b.Total.Amount, b.Total.Currency, b.Notes,
			string(b.Status), b.PaymentRef, b.CancelNote, b.CreatedAt.UTC(), b.UpdatedAt.UTC(), next)
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domainbooking.ErrVersionConflict
		}
		if err != nil {
			return err
		}
		b.Version = next
		return nil
	}
	res, err := q.ExecContext(ctx, `UPDATE bookings SET status = $1, payment_ref = $2, cancel_note = $3,
		notes = $4, updated_at = $5, version = $6 WHERE id = $7 AND version = $8`,
		string(b.Status), b.PaymentRef, b.CancelNote, b.Notes, b.UpdatedAt.UTC(), next, string(b.ID), b.Version)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domainbooking.ErrVersionConflict
	}
	b.Version = next
	return nil
}

func (r *BookingRepository) List(ctx context.Context, filter domainbooking.Filter) ([]*domainbooking.Booking, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.VehicleID != 0 {
		args = append(args, int(filter.VehicleID))
		where = append(where, fmt.Sprintf("vehicle_id = $%d", len(args)))
	}
	if !filter.CreatedBefore.IsZero() {
		args = append(args, filter.CreatedBefore.UTC())
		where = append(where, fmt.Sprintf("created_at < $%d", len(args)))
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domainbooking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(s scanner) (*domainbooking.Booking, error) {
	var (
		b          domainbooking.Booking
		id, status string
		vehicleID  int
		start, end time.Time
	)
	err := s.Scan(&id, &vehicleID, &b.VehicleName, &b.Customer.Name, &b.Customer.Email, &b.Customer.Phone,
		&start, &end, &b.Total.Amount, &b.Total.Currency, &b.Notes, &status, &b.PaymentRef, &b.CancelNote,
		&b.CreatedAt, &b.UpdatedAt, &b.Version)
	if err != nil {
		return nil, err
	}
	b.ID = domainbooking.BookingID(id)
	b.VehicleID = fleet.VehicleID(vehicleID)
	b.Status = domainbooking.Status(status)
	b.Range = daterange.DateRange{Start: daterange.FromTime(start), End: daterange.FromTime(end)}
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	if b.Total.Currency == "" {
		b.Total = money.Euros(b.Total.Amount)
	}
	return &b, nil
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
