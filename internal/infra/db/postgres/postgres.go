package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS bookings (
	id             TEXT PRIMARY KEY,
	vehicle_id     INTEGER NOT NULL,
	vehicle_name   TEXT NOT NULL,
	customer_name  TEXT NOT NULL,
	customer_email TEXT NOT NULL,
	customer_phone TEXT NOT NULL,
	start_date     DATE NOT NULL,
	end_date       DATE NOT NULL,
	amount         BIGINT NOT NULL,
	currency       TEXT NOT NULL,
	notes          TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL,
	payment_ref    TEXT NOT NULL DEFAULT '',
	cancel_note    TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL,
	version        BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS bookings_status_created_idx ON bookings (status, created_at);
CREATE INDEX IF NOT EXISTS bookings_vehicle_status_idx ON bookings (vehicle_id, status);

CREATE TABLE IF NOT EXISTS outbox (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	payload         BYTEA NOT NULL,
	occurred_at     TIMESTAMPTZ NOT NULL,
	aggregate       TEXT NOT NULL,
	headers         JSONB NOT NULL DEFAULT '{}',
	state           TEXT NOT NULL,
	attempts        INTEGER NOT NULL DEFAULT 0,
	next_attempt_at TIMESTAMPTZ NOT NULL,
	claimed_by      TEXT NOT NULL DEFAULT '',
	claimed_at      TIMESTAMPTZ,
	sent_at         TIMESTAMPTZ,
	last_error      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS outbox_due_idx ON outbox (state, next_attempt_at);

CREATE TABLE IF NOT EXISTS app_idempotency (
	key         TEXT PRIMARY KEY,
	payload     BYTEA,
	occurred_at TIMESTAMPTZ NOT NULL,
	expires_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS app_inbox (
	event_id    TEXT NOT NULL,
	consumer    TEXT NOT NULL,
	received_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (event_id, consumer)
);
`

// querier is the subset shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

func contextWithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// conn returns the transaction bound to ctx by a unit of work, or db.
func conn(ctx context.Context, db *sql.DB) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok && tx != nil {
		return tx
	}
	return db
}

// Open connects with lib/pq and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates the tables when missing. It is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
