package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"riide/internal/app/middleware"
)

type IdempotencyStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewIdempotencyStore(db *sql.DB) *IdempotencyStore {
	return &IdempotencyStore{db: db, now: time.Now}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	var (
		rec     = middleware.IdempotencyRecord{Key: key}
		expires sql.NullTime
	)
	err := conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT payload, occurred_at, expires_at FROM app_idempotency WHERE key = $1`, key).
		Scan(&rec.Payload, &rec.OccurredAt, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return middleware.IdempotencyRecord{}, false, nil
	}
	if err != nil {
		return middleware.IdempotencyRecord{}, false, err
	}
	if expires.Valid {
		if !s.now().Before(expires.Time) {
			return middleware.IdempotencyRecord{}, false, nil
		}
		rec.ExpiresAt = expires.Time
	}
	return rec, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	expires := sql.NullTime{Time: rec.ExpiresAt.UTC(), Valid: !rec.ExpiresAt.IsZero()}
	_, err := conn(ctx, s.db).ExecContext(ctx, `INSERT INTO app_idempotency (key, payload, occurred_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, occurred_at = EXCLUDED.occurred_at,
			expires_at = EXCLUDED.expires_at`,
		rec.Key, rec.Payload, rec.OccurredAt.UTC(), expires)
	return err
}

// PurgeExpired deletes records past their expiry and returns how many were removed.
func (s *IdempotencyStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM app_idempotency WHERE expires_at IS NOT NULL AND expires_at <= $1`,
		s.now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
