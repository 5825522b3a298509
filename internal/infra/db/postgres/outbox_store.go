package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	appoutbox "riide/internal/app/outbox"
	infraoutbox "riide/internal/infra/outbox"
)

// OutboxStore persists events in the bookings database; Add joins the unit of work's
// transaction.
type OutboxStore struct {
	db     *sql.DB
	notify func()
}

func NewOutboxStore(db *sql.DB) *OutboxStore {
	return &OutboxStore{db: db}
}

func (s *OutboxStore) OnFlush(fn func()) {
	s.notify = fn
}

func (s *OutboxStore) Add(ctx context.Context, record appoutbox.EventRecord) error {
	headers, err := json.Marshal(record.Headers)
	if err != nil {
		return err
	}
	_, err = conn(ctx, s.db).ExecContext(ctx, `INSERT INTO outbox
		(id, name, payload, occurred_at, aggregate, headers, state, next_attempt_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		record.ID, record.Name, record.Payload, record.OccurredAt.UTC(), record.Aggregate, headers,
		infraoutbox.StateNew, time.Now().UTC())
	return err
}

func (s *OutboxStore) Flush(context.Context) error {
	if s.notify != nil {
		s.notify()
	}
	return nil
}

// Claim locks the oldest due row with SKIP LOCKED so several workers can share the table.
func (s *OutboxStore) Claim(ctx context.Context, workerID string) (*infraoutbox.Message, error) {
	row := s.db.QueryRowContext(ctx, `UPDATE outbox SET state = $1, claimed_by = $2, claimed_at = $3
		WHERE id = (
			SELECT id FROM outbox
			WHERE state IN ($4, $5) AND next_attempt_at <= $3
			ORDER BY next_attempt_at, occurred_at
			LIMIT 1 FOR UPDATE SKIP LOCKED
		)
		RETURNING id, name, payload, occurred_at, aggregate, headers, state, attempts, next_attempt_at`,
		infraoutbox.StateClaimed, workerID, time.Now().UTC(), infraoutbox.StateNew, infraoutbox.StateFailed)

	var (
		msg     infraoutbox.Message
		headers []byte
	)
	err := row.Scan(&msg.ID, &msg.Name, &msg.Payload, &msg.OccurredAt, &msg.Aggregate, &headers,
		&msg.State, &msg.Attempts, &msg.NextAttempt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(headers) > 0 {
		if err := json.Unmarshal(headers, &msg.Headers); err != nil {
			return nil, err
		}
	}
	msg.ClaimedBy = workerID
	return &msg, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE outbox SET state = $1, sent_at = $2 WHERE id = $3`,
		infraoutbox.StateSent, time.Now().UTC(), id)
	return err
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE outbox SET state = $1, next_attempt_at = $2, last_error = $3,
		attempts = attempts + 1 WHERE id = $4`,
		infraoutbox.StateFailed, next.UTC(), errMsg, id)
	return err
}

var (
	_ appoutbox.Outbox  = (*OutboxStore)(nil)
	_ infraoutbox.Store = (*OutboxStore)(nil)
)
