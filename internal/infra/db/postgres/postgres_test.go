package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riide/internal/app/middleware"
	appoutbox "riide/internal/app/outbox"
	"riide/internal/app/uow"
	domainbooking "riide/internal/domain/booking"
	"riide/internal/domain/shared/daterange"
	"riide/internal/domain/shared/money"
)

var bookingCols = []string{"id", "vehicle_id", "vehicle_name", "customer_name", "customer_email", "customer_phone",
	"start_date", "end_date", "amount", "currency", "notes", "status", "payment_ref", "cancel_note",
	"created_at", "updated_at", "version"}

var created = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func pendingBooking() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:          "b1",
		VehicleID:   2,
		VehicleName: "Peugeot 208",
		Customer:    domainbooking.Customer{Name: "Ada", Email: "ada@example.com", Phone: "0600000000"},
		Range:       daterange.DateRange{Start: daterange.MustParse("2026-07-03"), End: daterange.MustParse("2026-07-05")},
		Total:       money.Euros(150),
		Status:      domainbooking.StatusPending,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestBookingRepository_ByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepository(db)

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(bookingCols).AddRow("b1", 2, "Peugeot 208", "Ada", "ada@example.com", "0600000000",
			time.Date(2026, 7, 3, 0, 0, 0, 0, time.UTC), time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC),
			150, "EUR", "", "CONFIRMED", "cs_1", "", created, created, 2)
		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1").WithArgs("b1").WillReturnRows(rows)

		b, err := repo.ByID(context.Background(), "b1")
		require.NoError(t, err)
		assert.Equal(t, domainbooking.StatusConfirmed, b.Status)
		assert.Equal(t, "2026-07-03", b.Range.Start.String())
		assert.Equal(t, "2026-07-05", b.Range.End.String())
		assert.Equal(t, money.Euros(150), b.Total)
		assert.Equal(t, int64(2), b.Version)
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1").WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(bookingCols))
		_, err := repo.ByID(context.Background(), "nope")
		assert.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_Save(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	t.Run("insert", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))
		b := pendingBooking()
		require.NoError(t, repo.Save(ctx, b))
		assert.Equal(t, int64(1), b.Version)
	})

	t.Run("duplicate insert", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO bookings").WillReturnError(&pq.Error{Code: uniqueViolation})
		assert.ErrorIs(t, repo.Save(ctx, pendingBooking()), domainbooking.ErrVersionConflict)
	})

	t.Run("update", func(t *testing.T) {
		b := pendingBooking()
		b.Version = 1
		require.NoError(t, b.Confirm("cs_1", created))
		mock.ExpectExec("UPDATE bookings SET").
			WithArgs("CONFIRMED", "cs_1", "", "", sqlmock.AnyArg(), int64(2), "b1", int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.Save(ctx, b))
		assert.Equal(t, int64(2), b.Version)
	})

	t.Run("stale update", func(t *testing.T) {
		b := pendingBooking()
		b.Version = 4
		mock.ExpectExec("UPDATE bookings SET").WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.Save(ctx, b), domainbooking.ErrVersionConflict)
		assert.Equal(t, int64(4), b.Version)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_ListBuildsFilter(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE status = $1 AND vehicle_id = $2 ORDER BY created_at, id")).
		WithArgs("CONFIRMED", 2).
		WillReturnRows(sqlmock.NewRows(bookingCols))
	list, err := repo.List(context.Background(), domainbooking.Filter{Status: domainbooking.StatusConfirmed, VehicleID: 2})
	require.NoError(t, err)
	assert.Empty(t, list)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings ORDER BY created_at, id")).
		WillReturnRows(sqlmock.NewRows(bookingCols))
	_, err = repo.List(context.Background(), domainbooking.Filter{})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnit_WritesThroughTransaction(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepository(db)
	box := NewOutboxStore(db)
	factory := Factory{DB: db, Bookings: repo}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO outbox").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ctx := context.Background()
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	txCtx := uow.Bind(ctx, unit)
	require.NoError(t, unit.Bookings().Save(txCtx, pendingBooking()))
	require.NoError(t, box.Add(txCtx, appoutbox.EventRecord{ID: "e1", Name: "booking.requested", Payload: []byte(`{}`), OccurredAt: created}))
	require.NoError(t, unit.Commit(ctx))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnit_RollbackAfterCommitIsNoop(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	unit, err := Factory{DB: db, Bookings: NewBookingRepository(db)}.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.Commit(context.Background()))
	assert.NoError(t, unit.Rollback(context.Background()))

	_, err = Factory{}.Begin(context.Background(), uow.TxOptions{})
	assert.ErrorIs(t, err, ErrUnitOfWorkNotConfigured)
}

func TestOutboxStore_Claim(t *testing.T) {
	db, mock := newMock(t)
	store := NewOutboxStore(db)

	mock.ExpectQuery("UPDATE outbox SET state").WillReturnRows(sqlmock.NewRows(
		[]string{"id", "name", "payload", "occurred_at", "aggregate", "headers", "state", "attempts", "next_attempt_at"}).
		AddRow("e1", "booking.confirmed", []byte(`{}`), created, "b1", []byte(`{"source":"riide"}`), "CLAIMED", 2, created))
	msg, err := store.Claim(context.Background(), "w1")
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "riide", msg.Headers["source"])
	assert.Equal(t, 2, msg.Attempts)
	assert.Equal(t, "w1", msg.ClaimedBy)

	mock.ExpectQuery("UPDATE outbox SET state").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	msg, err = store.Claim(context.Background(), "w1")
	require.NoError(t, err)
	assert.Nil(t, msg)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyStore_ExpiredIsMiss(t *testing.T) {
	db, mock := newMock(t)
	store := NewIdempotencyStore(db)
	store.now = func() time.Time { return created }

	mock.ExpectQuery("SELECT payload, occurred_at, expires_at FROM app_idempotency").WithArgs("k").
		WillReturnRows(sqlmock.NewRows([]string{"payload", "occurred_at", "expires_at"}).
			AddRow([]byte(`{"ok":true}`), created, created.Add(-time.Second)))
	_, found, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, found)

	mock.ExpectQuery("SELECT payload, occurred_at, expires_at FROM app_idempotency").WithArgs("k").
		WillReturnRows(sqlmock.NewRows([]string{"payload", "occurred_at", "expires_at"}).
			AddRow([]byte(`{"ok":true}`), created, created.Add(time.Hour)))
	rec, found, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"ok":true}`, string(rec.Payload))

	mock.ExpectExec("INSERT INTO app_idempotency").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.Save(context.Background(), middleware.IdempotencyRecord{Key: "k", OccurredAt: created}))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInbox_Seen(t *testing.T) {
	db, mock := newMock(t)
	inbox := NewInbox(db, "payments")

	mock.ExpectExec("INSERT INTO app_inbox").WithArgs("evt", "payments", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	seen, err := inbox.Seen(context.Background(), "evt")
	require.NoError(t, err)
	assert.False(t, seen)

	mock.ExpectExec("INSERT INTO app_inbox").WillReturnResult(sqlmock.NewResult(0, 0))
	seen, err = inbox.Seen(context.Background(), "evt")
	require.NoError(t, err)
	assert.True(t, seen)

	assert.NoError(t, mock.ExpectationsWereMet())
}
