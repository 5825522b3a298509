package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"riide/internal/app/middleware"
	appoutbox "riide/internal/app/outbox"
	"riide/internal/app/uow"
	"riide/internal/infra/broker/kafka"
	"riide/internal/infra/config"
	mongodb "riide/internal/infra/db/mongo"
	"riide/internal/infra/db/postgres"
	infrainbox "riide/internal/infra/inbox"
	"riide/internal/infra/obs"
	infraoutbox "riide/internal/infra/outbox"
	"riide/internal/infra/storage/memory"
)

const inboxConsumer = "payments"

type outboxStore interface {
	appoutbox.Outbox
	infraoutbox.Store
	OnFlush(fn func())
}

// storage is the persistence selected by STORAGE_MODE.
type storage struct {
	factory     uow.UoWFactory
	outbox      outboxStore
	idempotency middleware.IdempotencyStore
	inbox       kafka.Inbox
	// purge is nil when the backend expires idempotency records itself.
	purge  func(ctx context.Context) (int64, error)
	checks map[string]obs.Check
	close  func(ctx context.Context) error
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (*storage, error) {
	switch cfg.StorageMode {
	case config.StorageMongo:
		return openMongo(ctx, cfg, logger)
	case config.StoragePostgres:
		return openPostgres(ctx, cfg, logger)
	default:
		return openMemory(logger), nil
	}
}

func openMemory(logger *slog.Logger) *storage {
	idem := memory.NewIdempotencyStore()
	logger.Warn("using in-memory storage; bookings are lost on restart")
	return &storage{
		factory:     memory.Factory{Bookings: memory.NewBookingRepository()},
		outbox:      memory.NewOutbox(),
		idempotency: idem,
		inbox:       memory.NewInbox(),
		purge:       idem.PurgeExpired,
		checks:      map[string]obs.Check{},
		close:       func(context.Context) error { return nil },
	}
}

func openMongo(ctx context.Context, cfg config.Config, logger *slog.Logger) (*storage, error) {
	client, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	fail := func(step string, err error) (*storage, error) {
		_ = client.Close(context.Background())
		return nil, fmt.Errorf("mongo %s: %w", step, err)
	}
	bookings, err := mongodb.NewBookingRepository(ctx, client.DB)
	if err != nil {
		return fail("bookings", err)
	}
	box, err := infraoutbox.NewMongoStore(ctx, client.DB)
	if err != nil {
		return fail("outbox", err)
	}
	idem, err := mongodb.NewIdempotencyStore(ctx, client.DB)
	if err != nil {
		return fail("idempotency", err)
	}
	inbox, err := infrainbox.NewStore(ctx, client.DB, inboxConsumer)
	if err != nil {
		return fail("inbox", err)
	}
	logger.Info("mongo storage ready", "database", cfg.MongoDB)
	return &storage{
		factory:     mongodb.Factory{DB: client.DB, Bookings: bookings},
		outbox:      box,
		idempotency: idem,
		inbox:       inbox,
		checks:      map[string]obs.Check{"mongo": client.Ping},
		close:       client.Close,
	}, nil
}

func openPostgres(ctx context.Context, cfg config.Config, logger *slog.Logger) (*storage, error) {
	db, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}
	idem := postgres.NewIdempotencyStore(db)
	logger.Info("postgres storage ready")
	return &storage{
		factory:     postgres.Factory{DB: db, Bookings: postgres.NewBookingRepository(db)},
		outbox:      postgres.NewOutboxStore(db),
		idempotency: idem,
		inbox:       postgres.NewInbox(db, inboxConsumer),
		purge:       idem.PurgeExpired,
		checks:      map[string]obs.Check{"postgres": db.PingContext},
		close:       closeSQL(db),
	}, nil
}

func closeSQL(db *sql.DB) func(context.Context) error {
	return func(context.Context) error { return db.Close() }
}
