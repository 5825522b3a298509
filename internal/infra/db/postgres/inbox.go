package postgres

import (
	"context"
	"database/sql"
	"time"
)

// Inbox deduplicates consumed events per consumer.
type Inbox struct {
	db       *sql.DB
	consumer string
}

func NewInbox(db *sql.DB, consumer string) *Inbox {
	return &Inbox{db: db, consumer: consumer}
}

func (i *Inbox) Seen(ctx context.Context, eventID string) (bool, error) {
	res, err := i.db.ExecContext(ctx, `INSERT INTO app_inbox (event_id, consumer, received_at)
		VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`, eventID, i.consumer, time.Now().UTC())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func (i *Inbox) Release(ctx context.Context, eventID string) error {
	_, err := i.db.ExecContext(ctx, `DELETE FROM app_inbox WHERE event_id = $1 AND consumer = $2`, eventID, i.consumer)
	return err
}
